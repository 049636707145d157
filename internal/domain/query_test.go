package domain

import (
	"errors"
	"math"
	"testing"
)

func TestPagingNormalize(t *testing.T) {
	p := Paging{Page: 0, Limit: 500, SortBy: "bogus", Order: "ASC"}.Normalize(DefaultPageLimit, SortByRating)
	if p.Page != 1 {
		t.Fatalf("expected page 1 got %d", p.Page)
	}
	if p.Limit != MaxPageLimit {
		t.Fatalf("expected limit capped at %d got %d", MaxPageLimit, p.Limit)
	}
	if p.SortBy != SortByRating {
		t.Fatalf("expected default sort got %q", p.SortBy)
	}
	if p.Order != SortOrderAscending {
		t.Fatalf("expected asc got %q", p.Order)
	}

	p = Paging{Page: 3, SortBy: SortByPrice}.Normalize(10, SortByRating)
	if p.Limit != 10 || p.SortBy != SortByPrice || p.Order != "desc" {
		t.Fatalf("unexpected paging: %+v", p)
	}
	if p.Skip() != 20 {
		t.Fatalf("expected skip 20 got %d", p.Skip())
	}
}

func TestNewPagination(t *testing.T) {
	got := NewPagination(41, Paging{Page: 2, Limit: 20})
	if got.Pages != 3 || got.Total != 41 || got.Page != 2 || got.Limit != 20 {
		t.Fatalf("unexpected pagination: %+v", got)
	}
	if empty := NewPagination(0, Paging{Page: 1, Limit: 20}); empty.Pages != 0 {
		t.Fatalf("expected 0 pages got %d", empty.Pages)
	}
}

func TestPriceRangeOverlaps(t *testing.T) {
	band := PriceRange{Min: 60, Max: 120}
	cases := []struct {
		min, max int
		want     bool
	}{
		{0, 0, true},
		{50, 70, true},
		{100, 200, true},
		{121, 0, false},
		{0, 59, false},
		{70, 80, true},
	}
	for _, tc := range cases {
		if got := band.Overlaps(tc.min, tc.max); got != tc.want {
			t.Errorf("[%d,%d]: expected %v got %v", tc.min, tc.max, tc.want, got)
		}
	}
}

func TestListingFilterMatches(t *testing.T) {
	l := Listing{
		Name:          "Annapurna Tiffins",
		Description:   "home food",
		Address:       Address{City: "Pune"},
		Status:        ListingApproved,
		OwnerID:       "owner-1",
		PriceRange:    PriceRange{Min: 50, Max: 100},
		IsVegOnly:     true,
		AverageRating: 4.2,
	}
	cases := []struct {
		name   string
		filter ListingFilter
		want   bool
	}{
		{"empty", ListingFilter{}, true},
		{"status", ListingFilter{Status: ListingPending}, false},
		{"owner", ListingFilter{OwnerID: "owner-2"}, false},
		{"keyword city", ListingFilter{Keyword: "pune"}, true},
		{"keyword miss", ListingFilter{Keyword: "mumbai"}, false},
		{"price overlap", ListingFilter{MinPrice: 90, MaxPrice: 200}, true},
		{"price above", ListingFilter{MinPrice: 150}, false},
		{"veg", ListingFilter{VegOnly: true}, true},
		{"rating", ListingFilter{MinRating: 4.5}, false},
	}
	for _, tc := range cases {
		if got := tc.filter.Matches(l); got != tc.want {
			t.Errorf("%s: expected %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestNearbyQueryNormalize(t *testing.T) {
	cases := []struct {
		name   string
		radius float64
		want   float64
	}{
		{"unset", 0, DefaultRadiusKm},
		{"negative", -3, DefaultRadiusKm},
		{"kept", 7.5, 7.5},
		{"capped", 500, MaxRadiusKm},
		{"nan", math.NaN(), DefaultRadiusKm},
		{"infinite", math.Inf(1), DefaultRadiusKm},
	}
	for _, tc := range cases {
		if q := (NearbyQuery{RadiusKm: tc.radius}).Normalize(); q.RadiusKm != tc.want {
			t.Errorf("%s: expected radius %v got %v", tc.name, tc.want, q.RadiusKm)
		}
	}
	if q := (NearbyQuery{MinRating: math.NaN()}).Normalize(); q.MinRating != 0 {
		t.Fatalf("expected NaN minRating to read as 0 got %v", q.MinRating)
	}
}

func TestValueObjects(t *testing.T) {
	for _, c := range [][2]float64{
		{181, 0},
		{0, -91},
		{math.NaN(), 0},
		{0, math.NaN()},
		{math.Inf(-1), 0},
		{0, math.Inf(1)},
	} {
		if _, err := NewCoordinates(c[0], c[1]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("NewCoordinates(%v, %v): expected ErrInvalidInput got %v", c[0], c[1], err)
		}
	}
	if p, err := NewCoordinates(77.59, 12.97); err != nil || p.Longitude != 77.59 {
		t.Fatalf("expected valid point got %+v (%v)", p, err)
	}
	if _, err := NewPriceRange(100, 50); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected price range error got %v", err)
	}
	if _, err := NewTimings("8:00", "22:00"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected HH:MM error got %v", err)
	}
	days, err := NewWeekdayList([]string{"monday", "Monday", "FRIDAY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := days.Strings(); len(got) != 2 || got[0] != "Monday" || got[1] != "Friday" {
		t.Fatalf("unexpected weekdays: %v", got)
	}
	email, err := NewEmail("  Owner@Example.COM ")
	if err != nil || email != "owner@example.com" {
		t.Fatalf("expected normalised email got %q (%v)", email, err)
	}
	if _, err := NewMealCategory("brunch"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected meal category error got %v", err)
	}
}

func TestNewPrincipal(t *testing.T) {
	p, err := NewPrincipal("u1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(UserPrincipal); !ok {
		t.Fatalf("expected user principal got %T", p)
	}
	p, err = NewPrincipal("a1", "ADMIN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(AdminPrincipal); !ok || p.Role() != RoleAdmin {
		t.Fatalf("expected admin principal got %T", p)
	}
	if _, err := NewPrincipal("x", "superuser"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput got %v", err)
	}
	if _, err := NewPrincipal(" ", RoleOwner); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput got %v", err)
	}
}
