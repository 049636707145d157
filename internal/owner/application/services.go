package application

import (
	"context"
	"time"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// ListingRepository is the owner-side port onto mess listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	Find(ctx context.Context, filter domain.ListingFilter, paging domain.Paging) ([]domain.Listing, int, error)
	// UpdateByOwner applies patch only when ownerID owns the listing. It returns
	// domain.ErrNotFound for an unknown id and domain.ErrForbidden for a foreign one.
	UpdateByOwner(ctx context.Context, id, ownerID string, patch domain.ListingPatch, at time.Time) (*domain.Listing, error)
}

// ListingCommandService describes owner use-cases.
type ListingCommandService interface {
	Create(ctx context.Context, owner domain.OwnerPrincipal, cmd ListingInput) (*domain.Listing, error)
	Update(ctx context.Context, owner domain.OwnerPrincipal, id string, cmd ListingUpdate) (*domain.Listing, error)
	ListMine(ctx context.Context, owner domain.OwnerPrincipal, paging domain.Paging) ([]domain.Listing, domain.Pagination, error)
}

// ListingInput is a new listing as submitted by its owner.
type ListingInput struct {
	Name          string
	Description   string
	Longitude     float64
	Latitude      float64
	Address       domain.Address
	Menu          []MenuItemInput
	Photos        []string
	OpenTime      string
	CloseTime     string
	MinPrice      int
	MaxPrice      int
	AvailableDays []string
	ContactPhone  string
	ContactEmail  string
	IsVegOnly     bool
}

// MenuItemInput is one dish as submitted.
type MenuItemInput struct {
	Name        string
	Price       int
	Category    string
	IsVeg       bool
	Description string
}

// ListingUpdate is a partial edit. Nil fields are left unchanged.
type ListingUpdate struct {
	Name          *string
	Description   *string
	Longitude     *float64
	Latitude      *float64
	Address       *domain.Address
	Menu          *[]MenuItemInput
	Photos        *[]string
	OpenTime      *string
	CloseTime     *string
	MinPrice      *int
	MaxPrice      *int
	AvailableDays *[]string
	ContactPhone  *string
	ContactEmail  *string
	IsVegOnly     *bool
}

// Clock returns the current time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
