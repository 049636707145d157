package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

func seedListing(t *testing.T, s *ListingStore, l domain.Listing) domain.Listing {
	t.Helper()
	if err := s.Create(context.Background(), &l); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

func TestListingStoreFindFiltersSortsAndPages(t *testing.T) {
	ctx := context.Background()
	s := NewListingStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedListing(t, s, domain.Listing{Name: "A", Status: domain.ListingApproved, AverageRating: 3.5, CreatedAt: base})
	seedListing(t, s, domain.Listing{Name: "B", Status: domain.ListingApproved, AverageRating: 4.8, CreatedAt: base.Add(time.Hour)})
	seedListing(t, s, domain.Listing{Name: "C", Status: domain.ListingPending, AverageRating: 5, CreatedAt: base.Add(2 * time.Hour)})
	seedListing(t, s, domain.Listing{Name: "D", Status: domain.ListingApproved, AverageRating: 4.1, CreatedAt: base.Add(3 * time.Hour)})

	paging := domain.Paging{Page: 1, Limit: 2}.Normalize(domain.DefaultPageLimit, domain.SortByRating)
	items, total, err := s.Find(ctx, domain.ListingFilter{Status: domain.ListingApproved}, paging)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3 got %d", total)
	}
	if len(items) != 2 || items[0].Name != "B" || items[1].Name != "D" {
		t.Fatalf("unexpected first page: %v", names(items))
	}

	paging.Page = 2
	items, _, err = s.Find(ctx, domain.ListingFilter{Status: domain.ListingApproved}, paging)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(items) != 1 || items[0].Name != "A" {
		t.Fatalf("unexpected second page: %v", names(items))
	}

	paging = domain.Paging{Page: 9, Limit: 2}.Normalize(domain.DefaultPageLimit, domain.SortByRating)
	items, _, _ = s.Find(ctx, domain.ListingFilter{}, paging)
	if len(items) != 0 {
		t.Fatalf("expected empty page past the end got %d", len(items))
	}

	paging = domain.Paging{SortBy: domain.SortByName, Order: "asc"}.Normalize(domain.DefaultPageLimit, domain.SortByRating)
	items, _, _ = s.Find(ctx, domain.ListingFilter{}, paging)
	if got := names(items); len(got) != 4 || got[0] != "A" || got[3] != "D" {
		t.Fatalf("expected name ascending got %v", got)
	}
}

func TestListingStoreFindNearby(t *testing.T) {
	ctx := context.Background()
	s := NewListingStore()
	center := domain.Coordinates{Longitude: 73.8567, Latitude: 18.5204}
	seedListing(t, s, domain.Listing{Name: "far", Status: domain.ListingApproved, Location: domain.Coordinates{Longitude: 73.95, Latitude: 18.52}})
	seedListing(t, s, domain.Listing{Name: "near", Status: domain.ListingApproved, Location: domain.Coordinates{Longitude: 73.857, Latitude: 18.521}})
	seedListing(t, s, domain.Listing{Name: "pending", Status: domain.ListingPending, Location: center})
	seedListing(t, s, domain.Listing{Name: "other city", Status: domain.ListingApproved, Location: domain.Coordinates{Longitude: 72.8777, Latitude: 19.0760}})

	items, err := s.FindNearby(ctx, domain.NearbyQuery{Point: center, RadiusKm: 15}, domain.NearbyResultLimit)
	if err != nil {
		t.Fatalf("find nearby: %v", err)
	}
	if got := names(items); len(got) != 2 || got[0] != "near" || got[1] != "far" {
		t.Fatalf("expected [near far] got %v", got)
	}

	items, _ = s.FindNearby(ctx, domain.NearbyQuery{Point: center, RadiusKm: 1}, domain.NearbyResultLimit)
	if got := names(items); len(got) != 1 || got[0] != "near" {
		t.Fatalf("expected [near] got %v", got)
	}
}

func TestListingStoreApplyTransitionIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewListingStore()
	l := seedListing(t, s, domain.Listing{Name: "race", Status: domain.ListingPending})

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, action := range []domain.ListingAction{domain.ActionApprove, domain.ActionReject} {
		tr, err := domain.NewListingTransition(action, "admin", "", time.Now())
		if err != nil {
			t.Fatalf("transition: %v", err)
		}
		wg.Add(1)
		go func(tr domain.ListingTransition) {
			defer wg.Done()
			_, err := s.ApplyTransition(ctx, l.ID, tr)
			results <- err
		}(tr)
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInvalidStateTransition):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("expected one winner and one conflict got ok=%d conflicts=%d", ok, conflicts)
	}

	tr, _ := domain.NewListingTransition(domain.ActionApprove, "admin", "", time.Now())
	if _, err := s.ApplyTransition(ctx, "missing", tr); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestListingStoreUpdateByOwner(t *testing.T) {
	ctx := context.Background()
	s := NewListingStore()
	l := seedListing(t, s, domain.Listing{Name: "old", OwnerID: "owner-1", Status: domain.ListingApproved})

	name := "new"
	if _, err := s.UpdateByOwner(ctx, l.ID, "owner-2", domain.ListingPatch{Name: &name}, time.Now()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
	if _, err := s.UpdateByOwner(ctx, "missing", "owner-1", domain.ListingPatch{Name: &name}, time.Now()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	updated, err := s.UpdateByOwner(ctx, l.ID, "owner-1", domain.ListingPatch{Name: &name}, time.Now())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "new" || updated.Status != domain.ListingApproved {
		t.Fatalf("unexpected listing after update: %+v", updated)
	}
}

func TestListingStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewListingStore()
	l := seedListing(t, s, domain.Listing{Name: "copy", Photos: []string{"a.jpg"}})

	got, err := s.FindByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got.Photos[0] = "mutated.jpg"
	got.Name = "mutated"

	again, _ := s.FindByID(ctx, l.ID)
	if again.Name != "copy" || again.Photos[0] != "a.jpg" {
		t.Fatalf("store state leaked through returned value: %+v", again)
	}
}

func TestListingStoreCountAndRating(t *testing.T) {
	ctx := context.Background()
	s := NewListingStore()
	l := seedListing(t, s, domain.Listing{Status: domain.ListingApproved})
	seedListing(t, s, domain.Listing{Status: domain.ListingPending})
	seedListing(t, s, domain.Listing{Status: domain.ListingPending})

	counts, err := s.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[domain.ListingApproved] != 1 || counts[domain.ListingPending] != 2 || counts[domain.ListingSuspended] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	if err := s.SetRating(ctx, l.ID, domain.RatingSummary{AverageRating: 4.5, TotalReviews: 2}, 0); err != nil {
		t.Fatalf("set rating: %v", err)
	}
	got, _ := s.FindByID(ctx, l.ID)
	if got.AverageRating != 4.5 || got.TotalReviews != 2 {
		t.Fatalf("expected 4.5/2 got %.1f/%d", got.AverageRating, got.TotalReviews)
	}
	if v, _ := s.RatingVersion(ctx, l.ID); v != 1 {
		t.Fatalf("expected rating version 1 got %d", v)
	}
	if err := s.SetRating(ctx, l.ID, domain.RatingSummary{AverageRating: 1, TotalReviews: 1}, 0); !errors.Is(err, domain.ErrStaleRating) {
		t.Fatalf("expected ErrStaleRating for an outdated version got %v", err)
	}
	got, _ = s.FindByID(ctx, l.ID)
	if got.AverageRating != 4.5 || got.TotalReviews != 2 {
		t.Fatalf("stale write must not land, got %.1f/%d", got.AverageRating, got.TotalReviews)
	}
	if err := s.SetRating(ctx, "missing", domain.RatingSummary{}, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	if _, err := s.RatingVersion(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestListingStoreSortsNamesIgnoringCase(t *testing.T) {
	ctx := context.Background()
	s := NewListingStore()
	for _, name := range []string{"cherry", "Bread", "Apple", "banana"} {
		seedListing(t, s, domain.Listing{Name: name, Status: domain.ListingApproved})
	}

	cases := []struct {
		order string
		want  []string
	}{
		{domain.SortOrderAscending, []string{"Apple", "banana", "Bread", "cherry"}},
		{"desc", []string{"cherry", "Bread", "banana", "Apple"}},
	}
	for _, tc := range cases {
		items, _, err := s.Find(ctx, domain.ListingFilter{}, domain.Paging{SortBy: domain.SortByName, Order: tc.order})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		got := names(items)
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: expected %v got %v", tc.order, tc.want, got)
			}
		}
	}
}

func names(items []domain.Listing) []string {
	out := make([]string, 0, len(items))
	for _, l := range items {
		out = append(out, l.Name)
	}
	return out
}
