package application

import (
	"context"
	"fmt"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// listingQueryService is the concrete implementation of ListingQueryService.
type listingQueryService struct {
	listings ListingRepository
	reviews  ReviewRepository
}

// NewListingQueryService creates a new listing query service.
func NewListingQueryService(listings ListingRepository, reviews ReviewRepository) ListingQueryService {
	return &listingQueryService{listings: listings, reviews: reviews}
}

// Search only ever returns approved listings regardless of filter.Status.
func (s *listingQueryService) Search(ctx context.Context, filter domain.ListingFilter, paging domain.Paging) (*ListingPage, error) {
	filter.Status = domain.ListingApproved
	filter.OwnerID = ""
	paging = paging.Normalize(domain.DefaultPageLimit, domain.SortByRating)
	items, total, err := s.listings.Find(ctx, filter, paging)
	if err != nil {
		return nil, fmt.Errorf("search messes: %w", err)
	}
	for i := range items {
		items[i] = items[i].WithoutContact()
	}
	return &ListingPage{Items: items, Pagination: domain.NewPagination(total, paging)}, nil
}

func (s *listingQueryService) Nearby(ctx context.Context, query domain.NearbyQuery) ([]domain.Listing, error) {
	if _, err := domain.NewCoordinates(query.Point.Longitude, query.Point.Latitude); err != nil {
		return nil, err
	}
	items, err := s.listings.FindNearby(ctx, query.Normalize(), domain.NearbyResultLimit)
	if err != nil {
		return nil, fmt.Errorf("find nearby messes: %w", err)
	}
	for i := range items {
		items[i] = items[i].WithoutContact()
	}
	return items, nil
}

func (s *listingQueryService) Detail(ctx context.Context, id string, viewer domain.Principal) (*domain.Listing, error) {
	listing, err := s.visible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		stripped := listing.WithoutContact()
		return &stripped, nil
	}
	return listing, nil
}

func (s *listingQueryService) Contact(ctx context.Context, id string, viewer domain.Principal) (*domain.Listing, error) {
	if viewer == nil {
		return nil, domain.ErrForbidden
	}
	return s.visible(ctx, id, viewer)
}

// visible resolves a listing the viewer may see. Non-approved listings are only
// visible to their owner and to admins; everyone else gets NotFound.
func (s *listingQueryService) visible(ctx context.Context, id string, viewer domain.Principal) (*domain.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status == domain.ListingApproved {
		return listing, nil
	}
	switch p := viewer.(type) {
	case domain.AdminPrincipal:
		return listing, nil
	case domain.OwnerPrincipal:
		if p.ID == listing.OwnerID {
			return listing, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Reviews lists approved reviews of an approved listing, newest first.
func (s *listingQueryService) Reviews(ctx context.Context, listingID string, paging domain.Paging) (*ReviewPage, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.ListingApproved {
		return nil, domain.ErrNotFound
	}
	paging.SortBy = domain.SortByCreatedAt
	paging.Order = ""
	paging = paging.Normalize(domain.DefaultReviewLimit, domain.SortByCreatedAt)
	items, total, err := s.reviews.Find(ctx, domain.ReviewFilter{ListingID: listingID, Approved: domain.BoolPtr(true)}, paging)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return &ReviewPage{Items: items, Pagination: domain.NewPagination(total, paging)}, nil
}
