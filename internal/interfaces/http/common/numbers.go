package common

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// ParsePositiveInt parses positive integers with fallback.
func ParsePositiveInt(value string, fallback int) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, false
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback, false
	}
	return parsed, true
}

// ParseNonNegativeFloat parses a finite float >= 0 with fallback.
func ParseNonNegativeFloat(value string, fallback float64) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, false
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fallback, false
	}
	return parsed, true
}

// ParseBool accepts "true"/"1" and treats anything else as false.
func ParseBool(value string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && v
}

// PagingFromQuery reads page, limit, sortBy and sortOrder. Normalisation is left
// to the application layer.
func PagingFromQuery(q url.Values) domain.Paging {
	page, _ := ParsePositiveInt(q.Get("page"), 1)
	limit, _ := ParsePositiveInt(q.Get("limit"), 0)
	return domain.Paging{
		Page:   page,
		Limit:  limit,
		SortBy: strings.TrimSpace(q.Get("sortBy")),
		Order:  strings.TrimSpace(q.Get("sortOrder")),
	}
}
