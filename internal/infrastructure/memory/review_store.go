package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// ReviewStore is an in-memory review repository. It enforces one review per
// (listing, user) the way the unique index does in MongoDB.
type ReviewStore struct {
	mu      sync.RWMutex
	reviews map[string]domain.Review
}

func NewReviewStore() *ReviewStore {
	return &ReviewStore{reviews: make(map[string]domain.Review)}
}

func (s *ReviewStore) Create(_ context.Context, review *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.ListingID == review.ListingID && r.UserID == review.UserID {
			return domain.ErrDuplicateReview
		}
	}
	if review.ID == "" {
		review.ID = primitive.NewObjectID().Hex()
	}
	s.reviews[review.ID] = cloneReview(*review)
	return nil
}

func (s *ReviewStore) FindByID(_ context.Context, id string) (*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneReview(r)
	return &out, nil
}

// Find returns matching reviews ordered by creation time.
func (s *ReviewStore) Find(_ context.Context, filter domain.ReviewFilter, paging domain.Paging) ([]domain.Review, int, error) {
	s.mu.RLock()
	matched := make([]domain.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if filter.ListingID != "" && r.ListingID != filter.ListingID {
			continue
		}
		if filter.Approved != nil && r.IsApproved != *filter.Approved {
			continue
		}
		matched = append(matched, cloneReview(r))
	}
	s.mu.RUnlock()

	ascending := paging.Order == domain.SortOrderAscending
	sort.SliceStable(matched, func(i, j int) bool {
		cmp := compareTime(matched[i].CreatedAt, matched[j].CreatedAt)
		if cmp == 0 {
			return matched[i].ID < matched[j].ID
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	return pageOf(matched, paging), len(matched), nil
}

func (s *ReviewStore) UpdateByAuthor(_ context.Context, id, userID string, patch domain.ReviewPatch, at time.Time) (*domain.Review, *domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.reviews[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if existing.UserID != userID {
		return nil, nil, domain.ErrForbidden
	}
	before := cloneReview(existing)
	existing.ApplyEdit(patch, at)
	s.reviews[id] = existing
	after := cloneReview(existing)
	return &before, &after, nil
}

func (s *ReviewStore) DeleteByAuthor(_ context.Context, id, userID string) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if existing.UserID != userID {
		return nil, domain.ErrForbidden
	}
	delete(s.reviews, id)
	return &existing, nil
}

func (s *ReviewStore) Approve(_ context.Context, id, moderatorID string, at time.Time) (*domain.Review, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.reviews[id]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	changed := existing.Approve(moderatorID, at)
	s.reviews[id] = existing
	out := cloneReview(existing)
	return &out, changed, nil
}

func (s *ReviewStore) Delete(_ context.Context, id string) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.reviews, id)
	return &existing, nil
}

func (s *ReviewStore) CountByApproval(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var approved, pending int
	for _, r := range s.reviews {
		if r.IsApproved {
			approved++
		} else {
			pending++
		}
	}
	return approved, pending, nil
}

// TallyApproved reads the full approved set of listingID.
func (s *ReviewStore) TallyApproved(_ context.Context, listingID string) (domain.RatingTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tally domain.RatingTally
	for _, r := range s.reviews {
		if r.ListingID == listingID && r.IsApproved {
			tally = tally.Add(r.Rating)
		}
	}
	return tally, nil
}

func cloneReview(r domain.Review) domain.Review {
	out := r
	out.ModeratedAt = cloneTime(r.ModeratedAt)
	return out
}
