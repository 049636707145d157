package domain

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxDescriptionRunes = 1000
	MaxCommentRunes     = 500
	MinRating           = 1
	MaxRating           = 5
)

var allWeekdays = []Weekday{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Coordinates is a WGS84 point. Storage uses GeoJSON order [longitude, latitude].
type Coordinates struct {
	Longitude float64
	Latitude  float64
}

func NewCoordinates(longitude, latitude float64) (Coordinates, error) {
	if !isFinite(longitude) || !isFinite(latitude) {
		return Coordinates{}, fmt.Errorf("%w: coordinates must be finite numbers", ErrInvalidInput)
	}
	if longitude < -180 || longitude > 180 {
		return Coordinates{}, fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidInput)
	}
	if latitude < -90 || latitude > 90 {
		return Coordinates{}, fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidInput)
	}
	return Coordinates{Longitude: longitude, Latitude: latitude}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PriceRange is the owner-declared price band of a mess, in whole rupees.
type PriceRange struct {
	Min int
	Max int
}

func NewPriceRange(min, max int) (PriceRange, error) {
	if min < 0 || max < 0 {
		return PriceRange{}, fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}
	if min > max {
		return PriceRange{}, fmt.Errorf("%w: minimum price must not exceed maximum price", ErrInvalidInput)
	}
	return PriceRange{Min: min, Max: max}, nil
}

// Overlaps reports whether the range intersects [min, max]. A zero bound is open.
func (p PriceRange) Overlaps(min, max int) bool {
	if min > 0 && p.Max < min {
		return false
	}
	if max > 0 && p.Min > max {
		return false
	}
	return true
}

// TimeOfDay is a 24h "HH:MM" clock value.
type TimeOfDay string

func NewTimeOfDay(value string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(value)
	if _, err := time.Parse("15:04", trimmed); err != nil || len(trimmed) != 5 {
		return "", fmt.Errorf("%w: time must be in HH:MM format: %q", ErrInvalidInput, value)
	}
	return TimeOfDay(trimmed), nil
}

func (t TimeOfDay) String() string {
	return string(t)
}

// Timings holds daily opening hours.
type Timings struct {
	Open  TimeOfDay
	Close TimeOfDay
}

func NewTimings(open, close string) (Timings, error) {
	o, err := NewTimeOfDay(open)
	if err != nil {
		return Timings{}, err
	}
	c, err := NewTimeOfDay(close)
	if err != nil {
		return Timings{}, err
	}
	return Timings{Open: o, Close: c}, nil
}

type Weekday string

func NewWeekday(value string) (Weekday, error) {
	trimmed := strings.TrimSpace(value)
	for _, day := range allWeekdays {
		if strings.EqualFold(string(day), trimmed) {
			return day, nil
		}
	}
	return "", fmt.Errorf("%w: invalid weekday: %s", ErrInvalidInput, trimmed)
}

type WeekdayList []Weekday

func NewWeekdayList(values []string) (WeekdayList, error) {
	if len(values) == 0 {
		return nil, nil
	}
	result := make([]Weekday, 0, len(values))
	seen := make(map[Weekday]struct{})
	for _, raw := range values {
		day, err := NewWeekday(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		result = append(result, day)
	}
	return WeekdayList(result), nil
}

func (l WeekdayList) Strings() []string {
	result := make([]string, 0, len(l))
	for _, v := range l {
		result = append(result, string(v))
	}
	return result
}

type MealCategory string

const (
	MealBreakfast MealCategory = "breakfast"
	MealLunch     MealCategory = "lunch"
	MealDinner    MealCategory = "dinner"
	MealSnacks    MealCategory = "snacks"
)

func NewMealCategory(value string) (MealCategory, error) {
	switch c := MealCategory(strings.ToLower(strings.TrimSpace(value))); c {
	case MealBreakfast, MealLunch, MealDinner, MealSnacks:
		return c, nil
	}
	return "", fmt.Errorf("%w: invalid meal category: %s", ErrInvalidInput, value)
}

type Email string

func NewEmail(value string) (Email, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(trimmed) > 254 {
		return "", fmt.Errorf("%w: email too long", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return Email(trimmed), nil
}

func (e Email) String() string {
	return string(e)
}

// RequireText trims value and checks it is non-empty and at most maxRunes long.
func RequireText(field, value string, maxRunes int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if maxRunes > 0 && utf8.RuneCountInString(trimmed) > maxRunes {
		return "", fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, field, maxRunes)
	}
	return trimmed, nil
}
