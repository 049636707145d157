package domain

import "strings"

const (
	DefaultPageLimit   = 20
	MaxPageLimit       = 100
	DefaultRadiusKm    = 5.0
	MaxRadiusKm        = 50.0
	NearbyResultLimit  = 20
	DefaultReviewLimit = 10
)

// NameCollationLocale is the locale listing names sort under. Case is ignored.
const NameCollationLocale = "en"

// Sort keys accepted for listing searches.
const (
	SortByRating       = "averageRating"
	SortByReviewCount  = "totalReviews"
	SortByCreatedAt    = "createdAt"
	SortByPrice        = "priceRange.min"
	SortByName         = "name"
	SortOrderAscending = "asc"
)

var listingSortKeys = map[string]struct{}{
	SortByRating:      {},
	SortByReviewCount: {},
	SortByCreatedAt:   {},
	SortByPrice:       {},
	SortByName:        {},
}

// Paging controls pagination and ordering.
type Paging struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// Normalize clamps page/limit and falls back to defaults for unknown sort keys.
func (p Paging) Normalize(defaultLimit int, defaultSort string) Paging {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if _, ok := listingSortKeys[p.SortBy]; !ok {
		p.SortBy = defaultSort
	}
	if strings.EqualFold(p.Order, SortOrderAscending) {
		p.Order = SortOrderAscending
	} else {
		p.Order = "desc"
	}
	return p
}

// Skip is the number of records before the requested page.
func (p Paging) Skip() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pagination describes a returned page.
type Pagination struct {
	Total int
	Page  int
	Pages int
	Limit int
}

func NewPagination(total int, p Paging) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Total: total, Page: p.Page, Pages: pages, Limit: p.Limit}
}

// ListingFilter expresses listing search criteria. Zero values are ignored.
type ListingFilter struct {
	Status    ListingStatus
	OwnerID   string
	Keyword   string
	MinPrice  int
	MaxPrice  int
	VegOnly   bool
	MinRating float64
}

// Matches evaluates the filter in memory.
func (f ListingFilter) Matches(l Listing) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.OwnerID != "" && l.OwnerID != f.OwnerID {
		return false
	}
	if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
		if !strings.Contains(strings.ToLower(l.Name), kw) &&
			!strings.Contains(strings.ToLower(l.Description), kw) &&
			!strings.Contains(strings.ToLower(l.Address.City), kw) {
			return false
		}
	}
	if !l.PriceRange.Overlaps(f.MinPrice, f.MaxPrice) {
		return false
	}
	if f.VegOnly && !l.IsVegOnly {
		return false
	}
	if f.MinRating > 0 && l.AverageRating < f.MinRating {
		return false
	}
	return true
}

// NearbyQuery locates approved listings around a point.
type NearbyQuery struct {
	Point     Coordinates
	RadiusKm  float64
	VegOnly   bool
	MinRating float64
}

// Normalize applies the default and maximum radius. A non-finite radius reads as
// unset and a non-finite minimum rating as no minimum.
func (q NearbyQuery) Normalize() NearbyQuery {
	if !isFinite(q.RadiusKm) || q.RadiusKm <= 0 {
		q.RadiusKm = DefaultRadiusKm
	}
	if q.RadiusKm > MaxRadiusKm {
		q.RadiusKm = MaxRadiusKm
	}
	if !isFinite(q.MinRating) {
		q.MinRating = 0
	}
	return q
}

// ReviewFilter expresses review listing criteria.
type ReviewFilter struct {
	ListingID string
	Approved  *bool
}

func BoolPtr(v bool) *bool {
	return &v
}
