package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/infrastructure/memory"
	"github.com/sngm3741/mess-finder/api/internal/owner/application"
)

var owner = domain.OwnerPrincipal{ID: "owner-1"}

func newService() (application.ListingCommandService, *memory.ListingStore) {
	logger, _ := test.NewNullLogger()
	store := memory.NewListingStore()
	clock := func() time.Time { return time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC) }
	return application.NewListingCommandService(store, logger, clock), store
}

func validInput() application.ListingInput {
	return application.ListingInput{
		Name:        "  Sai Tiffin Centre ",
		Description: "Home style thali",
		Longitude:   73.8567,
		Latitude:    18.5204,
		Address:     domain.Address{Street: "FC Road", City: " Pune "},
		Menu: []application.MenuItemInput{
			{Name: "Veg Thali", Price: 90, Category: "Lunch", IsVeg: true},
		},
		Photos:        []string{"https://img.example.com/a.jpg", "  "},
		OpenTime:      "08:00",
		CloseTime:     "22:00",
		MinPrice:      60,
		MaxPrice:      150,
		AvailableDays: []string{"monday", "tuesday"},
		ContactPhone:  "+91 90000 00000",
		ContactEmail:  "Sai@Example.com",
		IsVegOnly:     true,
	}
}

func TestCreateStartsPending(t *testing.T) {
	svc, store := newService()
	created, err := svc.Create(context.Background(), owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.ListingPending {
		t.Fatalf("expected pending got %s", created.Status)
	}
	if created.OwnerID != owner.ID || created.AverageRating != 0 || created.TotalReviews != 0 {
		t.Fatalf("unexpected listing: %+v", created)
	}
	if created.Name != "Sai Tiffin Centre" || created.Address.City != "Pune" {
		t.Fatalf("expected trimmed fields got %q / %q", created.Name, created.Address.City)
	}
	if len(created.Photos) != 1 || created.ContactEmail != "sai@example.com" {
		t.Fatalf("unexpected photos/email: %v %q", created.Photos, created.ContactEmail)
	}
	if created.Menu[0].Category != domain.MealLunch {
		t.Fatalf("expected lunch got %s", created.Menu[0].Category)
	}

	stored, err := store.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Status != domain.ListingPending {
		t.Fatalf("expected stored pending got %s", stored.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService()
	cases := map[string]func(*application.ListingInput){
		"missing name":       func(in *application.ListingInput) { in.Name = " " },
		"missing desc":       func(in *application.ListingInput) { in.Description = "" },
		"bad longitude":      func(in *application.ListingInput) { in.Longitude = 190 },
		"missing city":       func(in *application.ListingInput) { in.Address.City = "" },
		"inverted price":     func(in *application.ListingInput) { in.MinPrice, in.MaxPrice = 200, 100 },
		"bad time":           func(in *application.ListingInput) { in.OpenTime = "25:00" },
		"bad weekday":        func(in *application.ListingInput) { in.AvailableDays = []string{"someday"} },
		"bad meal category":  func(in *application.ListingInput) { in.Menu[0].Category = "brunch" },
		"negative menu cost": func(in *application.ListingInput) { in.Menu[0].Price = -1 },
		"bad contact email":  func(in *application.ListingInput) { in.ContactEmail = "not-an-email" },
	}
	for name, mutate := range cases {
		in := validInput()
		mutate(&in)
		if _, err := svc.Create(context.Background(), owner, in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput got %v", name, err)
		}
	}
}

func TestUpdateOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	created, err := svc.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Renamed"
	update := application.ListingUpdate{Name: &name}
	if _, err := svc.Update(ctx, domain.OwnerPrincipal{ID: "owner-2"}, created.ID, update); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
	if _, err := svc.Update(ctx, owner, "missing", update); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	updated, err := svc.Update(ctx, owner, created.ID, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" || updated.Description != "Home style thali" {
		t.Fatalf("unexpected listing after update: %+v", updated)
	}
	if updated.Status != domain.ListingPending {
		t.Fatalf("owner edit must not change status, got %s", updated.Status)
	}
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	created, err := svc.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, owner, created.ID, application.ListingUpdate{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty update: expected ErrInvalidInput got %v", err)
	}
	lng := 72.0
	if _, err := svc.Update(ctx, owner, created.ID, application.ListingUpdate{Longitude: &lng}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("longitude alone: expected ErrInvalidInput got %v", err)
	}
	open := "09:00"
	if _, err := svc.Update(ctx, owner, created.ID, application.ListingUpdate{OpenTime: &open}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("open time alone: expected ErrInvalidInput got %v", err)
	}
	lo, hi := 300, 100
	if _, err := svc.Update(ctx, owner, created.ID, application.ListingUpdate{MinPrice: &lo, MaxPrice: &hi}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("inverted price: expected ErrInvalidInput got %v", err)
	}
}

func TestListMineScopesToOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, owner, validInput()); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, domain.OwnerPrincipal{ID: "owner-2"}, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, pagination, err := svc.ListMine(ctx, owner, domain.Paging{Limit: 2})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if pagination.Total != 3 || pagination.Pages != 2 || len(items) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", pagination.Total, pagination.Pages, len(items))
	}
	for _, l := range items {
		if l.OwnerID != owner.ID {
			t.Fatalf("foreign listing returned: %s", l.OwnerID)
		}
	}
}
