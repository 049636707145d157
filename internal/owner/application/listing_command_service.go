package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

type listingCommandService struct {
	repo   ListingRepository
	now    Clock
	logger logrus.FieldLogger
}

// NewListingCommandService wires owner-side listing use-cases.
func NewListingCommandService(repo ListingRepository, logger logrus.FieldLogger, clock Clock) ListingCommandService {
	if clock == nil {
		clock = systemClock
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &listingCommandService{repo: repo, now: clock, logger: logger}
}

// Create stores a new listing. It always starts pending with no rating, whatever
// the caller sent.
func (s *listingCommandService) Create(ctx context.Context, owner domain.OwnerPrincipal, cmd ListingInput) (*domain.Listing, error) {
	if owner.ID == "" {
		return nil, domain.ErrForbidden
	}
	listing, err := buildListing(cmd)
	if err != nil {
		return nil, err
	}
	now := s.now()
	listing.OwnerID = owner.ID
	listing.Status = domain.ListingPending
	listing.CreatedAt = now
	listing.UpdatedAt = now

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create mess: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"mess_id":  listing.ID,
		"owner_id": owner.ID,
	}).Info("mess submitted for review")
	return listing, nil
}

func (s *listingCommandService) Update(ctx context.Context, owner domain.OwnerPrincipal, id string, cmd ListingUpdate) (*domain.Listing, error) {
	if owner.ID == "" {
		return nil, domain.ErrForbidden
	}
	patch, err := buildPatch(cmd)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	return s.repo.UpdateByOwner(ctx, id, owner.ID, patch, s.now())
}

func (s *listingCommandService) ListMine(ctx context.Context, owner domain.OwnerPrincipal, paging domain.Paging) ([]domain.Listing, domain.Pagination, error) {
	if owner.ID == "" {
		return nil, domain.Pagination{}, domain.ErrForbidden
	}
	paging.SortBy = domain.SortByCreatedAt
	paging.Order = ""
	paging = paging.Normalize(domain.DefaultPageLimit, domain.SortByCreatedAt)
	items, total, err := s.repo.Find(ctx, domain.ListingFilter{OwnerID: owner.ID}, paging)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("list owner messes: %w", err)
	}
	return items, domain.NewPagination(total, paging), nil
}

func buildListing(cmd ListingInput) (*domain.Listing, error) {
	name, err := domain.RequireText("name", cmd.Name, 0)
	if err != nil {
		return nil, err
	}
	description, err := domain.RequireText("description", cmd.Description, domain.MaxDescriptionRunes)
	if err != nil {
		return nil, err
	}
	location, err := domain.NewCoordinates(cmd.Longitude, cmd.Latitude)
	if err != nil {
		return nil, err
	}
	address, err := normalizeAddress(cmd.Address)
	if err != nil {
		return nil, err
	}
	menu, err := buildMenu(cmd.Menu)
	if err != nil {
		return nil, err
	}
	timings, err := domain.NewTimings(cmd.OpenTime, cmd.CloseTime)
	if err != nil {
		return nil, err
	}
	price, err := domain.NewPriceRange(cmd.MinPrice, cmd.MaxPrice)
	if err != nil {
		return nil, err
	}
	days, err := domain.NewWeekdayList(cmd.AvailableDays)
	if err != nil {
		return nil, err
	}
	email, err := optionalEmail(cmd.ContactEmail)
	if err != nil {
		return nil, err
	}
	return &domain.Listing{
		Name:          name,
		Description:   description,
		Location:      location,
		Address:       address,
		Menu:          menu,
		Photos:        cleanPhotos(cmd.Photos),
		Timings:       timings,
		PriceRange:    price,
		AvailableDays: days,
		ContactPhone:  strings.TrimSpace(cmd.ContactPhone),
		ContactEmail:  email,
		IsVegOnly:     cmd.IsVegOnly,
	}, nil
}

func buildPatch(cmd ListingUpdate) (domain.ListingPatch, error) {
	var patch domain.ListingPatch
	if cmd.Name != nil {
		name, err := domain.RequireText("name", *cmd.Name, 0)
		if err != nil {
			return patch, err
		}
		patch.Name = &name
	}
	if cmd.Description != nil {
		description, err := domain.RequireText("description", *cmd.Description, domain.MaxDescriptionRunes)
		if err != nil {
			return patch, err
		}
		patch.Description = &description
	}
	if (cmd.Longitude == nil) != (cmd.Latitude == nil) {
		return patch, fmt.Errorf("%w: longitude and latitude must be updated together", domain.ErrInvalidInput)
	}
	if cmd.Longitude != nil {
		location, err := domain.NewCoordinates(*cmd.Longitude, *cmd.Latitude)
		if err != nil {
			return patch, err
		}
		patch.Location = &location
	}
	if cmd.Address != nil {
		address, err := normalizeAddress(*cmd.Address)
		if err != nil {
			return patch, err
		}
		patch.Address = &address
	}
	if cmd.Menu != nil {
		menu, err := buildMenu(*cmd.Menu)
		if err != nil {
			return patch, err
		}
		patch.Menu = &menu
	}
	if cmd.Photos != nil {
		photos := cleanPhotos(*cmd.Photos)
		patch.Photos = &photos
	}
	if (cmd.OpenTime == nil) != (cmd.CloseTime == nil) {
		return patch, fmt.Errorf("%w: open and close time must be updated together", domain.ErrInvalidInput)
	}
	if cmd.OpenTime != nil {
		timings, err := domain.NewTimings(*cmd.OpenTime, *cmd.CloseTime)
		if err != nil {
			return patch, err
		}
		patch.Timings = &timings
	}
	if (cmd.MinPrice == nil) != (cmd.MaxPrice == nil) {
		return patch, fmt.Errorf("%w: minimum and maximum price must be updated together", domain.ErrInvalidInput)
	}
	if cmd.MinPrice != nil {
		price, err := domain.NewPriceRange(*cmd.MinPrice, *cmd.MaxPrice)
		if err != nil {
			return patch, err
		}
		patch.PriceRange = &price
	}
	if cmd.AvailableDays != nil {
		days, err := domain.NewWeekdayList(*cmd.AvailableDays)
		if err != nil {
			return patch, err
		}
		patch.AvailableDays = &days
	}
	if cmd.ContactPhone != nil {
		phone := strings.TrimSpace(*cmd.ContactPhone)
		patch.ContactPhone = &phone
	}
	if cmd.ContactEmail != nil {
		email, err := optionalEmail(*cmd.ContactEmail)
		if err != nil {
			return patch, err
		}
		patch.ContactEmail = &email
	}
	if cmd.IsVegOnly != nil {
		veg := *cmd.IsVegOnly
		patch.IsVegOnly = &veg
	}
	return patch, nil
}

func normalizeAddress(a domain.Address) (domain.Address, error) {
	city, err := domain.RequireText("address.city", a.City, 0)
	if err != nil {
		return domain.Address{}, err
	}
	return domain.Address{
		Street:   strings.TrimSpace(a.Street),
		City:     city,
		State:    strings.TrimSpace(a.State),
		Pincode:  strings.TrimSpace(a.Pincode),
		Landmark: strings.TrimSpace(a.Landmark),
	}, nil
}

func buildMenu(items []MenuItemInput) ([]domain.MenuItem, error) {
	menu := make([]domain.MenuItem, 0, len(items))
	for i, item := range items {
		name, err := domain.RequireText(fmt.Sprintf("menu[%d].name", i), item.Name, 0)
		if err != nil {
			return nil, err
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: menu[%d].price must be >= 0", domain.ErrInvalidInput, i)
		}
		category, err := domain.NewMealCategory(item.Category)
		if err != nil {
			return nil, err
		}
		menu = append(menu, domain.MenuItem{
			Name:        name,
			Price:       item.Price,
			Category:    category,
			IsVeg:       item.IsVeg,
			Description: strings.TrimSpace(item.Description),
		})
	}
	return menu, nil
}

func cleanPhotos(photos []string) []string {
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func optionalEmail(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	email, err := domain.NewEmail(value)
	if err != nil {
		return "", err
	}
	return email.String(), nil
}
