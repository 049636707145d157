// Package memory provides in-process stores used for local development
// (DATA_STORE=memory) and tests. Every conditional write runs under the store
// mutex so guards and updates are atomic.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// ListingStore is an in-memory mess listing repository.
type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
}

// NewListingStore constructs an empty ListingStore.
func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[string]domain.Listing)}
}

// Create inserts listing, assigning an id when it has none.
func (s *ListingStore) Create(_ context.Context, listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if listing.ID == "" {
		listing.ID = primitive.NewObjectID().Hex()
	}
	s.listings[listing.ID] = cloneListing(*listing)
	return nil
}

func (s *ListingStore) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneListing(existing)
	return &out, nil
}

func (s *ListingStore) Find(_ context.Context, filter domain.ListingFilter, paging domain.Paging) ([]domain.Listing, int, error) {
	s.mu.RLock()
	matched := make([]domain.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if filter.Matches(l) {
			matched = append(matched, cloneListing(l))
		}
	}
	s.mu.RUnlock()

	sortListings(matched, paging.SortBy, paging.Order == domain.SortOrderAscending)
	return pageOf(matched, paging), len(matched), nil
}

// FindNearby returns approved listings within the radius, nearest first.
func (s *ListingStore) FindNearby(_ context.Context, q domain.NearbyQuery, limit int) ([]domain.Listing, error) {
	type hit struct {
		listing  domain.Listing
		distance float64
	}
	maxMeters := q.RadiusKm * 1000

	s.mu.RLock()
	var hits []hit
	for _, l := range s.listings {
		if l.Status != domain.ListingApproved {
			continue
		}
		if q.VegOnly && !l.IsVegOnly {
			continue
		}
		if q.MinRating > 0 && l.AverageRating < q.MinRating {
			continue
		}
		d := distanceMeters(q.Point, l.Location)
		if d > maxMeters {
			continue
		}
		hits = append(hits, hit{listing: cloneListing(l), distance: d})
	}
	s.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].distance == hits[j].distance {
			return hits[i].listing.ID < hits[j].listing.ID
		}
		return hits[i].distance < hits[j].distance
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.Listing, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.listing)
	}
	return out, nil
}

// ApplyTransition checks the guard and writes the new status under one lock.
func (s *ListingStore) ApplyTransition(_ context.Context, id string, t domain.ListingTransition) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !t.Allows(existing.Status) {
		return nil, domain.ErrInvalidStateTransition
	}
	existing.Apply(t)
	s.listings[id] = existing
	out := cloneListing(existing)
	return &out, nil
}

func (s *ListingStore) UpdateByOwner(_ context.Context, id, ownerID string, patch domain.ListingPatch, at time.Time) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if existing.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	existing.ApplyPatch(patch, at)
	s.listings[id] = existing
	out := cloneListing(existing)
	return &out, nil
}

func (s *ListingStore) RatingVersion(_ context.Context, id string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, ok := s.listings[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return existing.RatingVersion, nil
}

// SetRating writes summary only while the rating version still equals expected.
func (s *ListingStore) SetRating(_ context.Context, id string, summary domain.RatingSummary, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.listings[id]
	if !ok {
		return domain.ErrNotFound
	}
	if existing.RatingVersion != expected {
		return domain.ErrStaleRating
	}
	existing.AverageRating = summary.AverageRating
	existing.TotalReviews = summary.TotalReviews
	existing.RatingVersion++
	s.listings[id] = existing
	return nil
}

func (s *ListingStore) CountByStatus(_ context.Context) (map[domain.ListingStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.ListingStatus]int, len(domain.ListingStatuses))
	for _, l := range s.listings {
		counts[l.Status]++
	}
	return counts, nil
}

// sortListings mirrors the Mongo sort, including the case-insensitive name
// collation.
func sortListings(items []domain.Listing, key string, ascending bool) {
	var names *collate.Collator
	if key == domain.SortByName {
		names = collate.New(language.Make(domain.NameCollationLocale), collate.IgnoreCase)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var cmp int
		switch key {
		case domain.SortByReviewCount:
			cmp = compareInt(a.TotalReviews, b.TotalReviews)
		case domain.SortByCreatedAt:
			cmp = compareTime(a.CreatedAt, b.CreatedAt)
		case domain.SortByPrice:
			cmp = compareInt(a.PriceRange.Min, b.PriceRange.Min)
		case domain.SortByName:
			cmp = names.CompareString(a.Name, b.Name)
		default:
			cmp = compareFloat(a.AverageRating, b.AverageRating)
		}
		if cmp == 0 {
			return a.ID < b.ID
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
}

func pageOf[T any](items []T, paging domain.Paging) []T {
	skip := paging.Skip()
	if skip >= len(items) {
		return []T{}
	}
	end := len(items)
	if paging.Limit > 0 && skip+paging.Limit < end {
		end = skip + paging.Limit
	}
	return items[skip:end]
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

const earthRadiusMeters = 6378100.0

// distanceMeters is the haversine distance between two points.
func distanceMeters(a, b domain.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func cloneListing(l domain.Listing) domain.Listing {
	out := l
	out.Menu = append([]domain.MenuItem(nil), l.Menu...)
	out.Photos = append([]string(nil), l.Photos...)
	out.AvailableDays = append(domain.WeekdayList(nil), l.AvailableDays...)
	out.ApprovedAt = cloneTime(l.ApprovedAt)
	out.ModeratedAt = cloneTime(l.ModeratedAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
