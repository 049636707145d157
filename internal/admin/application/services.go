package application

import (
	"context"
	"time"

	admindomain "github.com/sngm3741/mess-finder/api/internal/admin/domain"
	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// ListingRepository exposes admin operations on mess listings.
type ListingRepository interface {
	Find(ctx context.Context, filter domain.ListingFilter, paging domain.Paging) ([]domain.Listing, int, error)
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
	// ApplyTransition performs a single conditional write guarded on t.From. It returns
	// domain.ErrNotFound or domain.ErrInvalidStateTransition and leaves the record as is
	// when the guard fails.
	ApplyTransition(ctx context.Context, id string, t domain.ListingTransition) (*domain.Listing, error)
	CountByStatus(ctx context.Context) (map[domain.ListingStatus]int, error)
}

// ReviewRepository exposes moderator operations on reviews.
type ReviewRepository interface {
	Find(ctx context.Context, filter domain.ReviewFilter, paging domain.Paging) ([]domain.Review, int, error)
	// Approve marks the review approved. changed is false when it already was.
	Approve(ctx context.Context, id, moderatorID string, at time.Time) (review *domain.Review, changed bool, err error)
	// Delete removes the review and returns what was removed.
	Delete(ctx context.Context, id string) (*domain.Review, error)
	CountByApproval(ctx context.Context) (approved, pending int, err error)
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

// ListingModerationService describes the listing side of the moderation workflow.
type ListingModerationService interface {
	Pending(ctx context.Context, paging domain.Paging) (*ListingPage, error)
	List(ctx context.Context, status domain.ListingStatus, paging domain.Paging) (*ListingPage, error)
	Approve(ctx context.Context, id string, actor domain.AdminPrincipal) (*domain.Listing, error)
	Reject(ctx context.Context, id string, actor domain.AdminPrincipal, reason string) (*domain.Listing, error)
	Suspend(ctx context.Context, id string, actor domain.AdminPrincipal, reason string) (*domain.Listing, error)
	Reactivate(ctx context.Context, id string, actor domain.AdminPrincipal) (*domain.Listing, error)
}

// ReviewModerationService describes the review side of the moderation workflow.
type ReviewModerationService interface {
	Pending(ctx context.Context, paging domain.Paging) (*ReviewPage, error)
	Approve(ctx context.Context, id string, actor domain.AdminPrincipal) (*domain.Review, error)
	Delete(ctx context.Context, id string, actor domain.AdminPrincipal) (*domain.Review, error)
}

// StatsService describes dashboard use-cases.
type StatsService interface {
	Platform(ctx context.Context) (*admindomain.PlatformStats, error)
}

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
