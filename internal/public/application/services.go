package application

import (
	"context"
	"time"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// ListingRepository abstracts read access to mess listings.
// ListingRepository は Public コンテキストでメス情報を読み取るためのポート。
type ListingRepository interface {
	Find(ctx context.Context, filter domain.ListingFilter, paging domain.Paging) ([]domain.Listing, int, error)
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
	FindNearby(ctx context.Context, query domain.NearbyQuery, limit int) ([]domain.Listing, error)
}

// ReviewRepository handles review reads/writes.
// ReviewRepository はレビューの読み書きを提供するポート。
type ReviewRepository interface {
	Find(ctx context.Context, filter domain.ReviewFilter, paging domain.Paging) ([]domain.Review, int, error)
	// Create inserts a review and returns domain.ErrDuplicateReview when the
	// (listing, user) pair already has one.
	Create(ctx context.Context, review *domain.Review) error
	// UpdateByAuthor applies the edit only if userID wrote the review and returns the
	// review as it was before the edit together with the edited one.
	UpdateByAuthor(ctx context.Context, id, userID string, patch domain.ReviewPatch, at time.Time) (before, after *domain.Review, err error)
	// DeleteByAuthor removes the review only if userID wrote it.
	DeleteByAuthor(ctx context.Context, id, userID string) (*domain.Review, error)
}

// RatingRecomputer refreshes a listing's derived rating.
type RatingRecomputer interface {
	Recompute(ctx context.Context, listingID string) (domain.RatingSummary, error)
}

// ListingPage is one page of listings.
type ListingPage struct {
	Items      []domain.Listing
	Pagination domain.Pagination
}

// ReviewPage is one page of reviews.
type ReviewPage struct {
	Items      []domain.Review
	Pagination domain.Pagination
}

// ListingQueryService describes read use-cases.
// ListingQueryService はメス検索・詳細表示のユースケースを提供するリーダーモデル。
type ListingQueryService interface {
	Search(ctx context.Context, filter domain.ListingFilter, paging domain.Paging) (*ListingPage, error)
	Nearby(ctx context.Context, query domain.NearbyQuery) ([]domain.Listing, error)
	// Detail hides contact details when viewer is nil.
	Detail(ctx context.Context, id string, viewer domain.Principal) (*domain.Listing, error)
	Contact(ctx context.Context, id string, viewer domain.Principal) (*domain.Listing, error)
	Reviews(ctx context.Context, listingID string, paging domain.Paging) (*ReviewPage, error)
}

// ReviewCommandService handles writing use-cases.
type ReviewCommandService interface {
	Create(ctx context.Context, author domain.UserPrincipal, cmd CreateReviewCommand) (*domain.Review, error)
	Update(ctx context.Context, author domain.UserPrincipal, id string, patch domain.ReviewPatch) (*domain.Review, error)
	Delete(ctx context.Context, author domain.UserPrincipal, id string) error
}

// CreateReviewCommand captures a user's review input.
type CreateReviewCommand struct {
	ListingID string
	Rating    int
	Comment   string
}

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
