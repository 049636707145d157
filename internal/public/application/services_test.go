package application_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/infrastructure/memory"
	"github.com/sngm3741/mess-finder/api/internal/public/application"
	"github.com/sngm3741/mess-finder/api/internal/rating"
)

type fixture struct {
	listings *memory.ListingStore
	reviews  *memory.ReviewStore
	queries  application.ListingQueryService
	commands application.ReviewCommandService
}

func newFixture() *fixture {
	logger, _ := test.NewNullLogger()
	listings := memory.NewListingStore()
	reviews := memory.NewReviewStore()
	agg := rating.NewAggregator(reviews, listings, logger)
	clock := func() time.Time { return time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC) }
	return &fixture{
		listings: listings,
		reviews:  reviews,
		queries:  application.NewListingQueryService(listings, reviews),
		commands: application.NewReviewCommandService(listings, reviews, agg, logger, clock),
	}
}

func (f *fixture) listing(t *testing.T, name string, status domain.ListingStatus) domain.Listing {
	t.Helper()
	l := domain.Listing{
		Name:         name,
		OwnerID:      "owner-1",
		Status:       status,
		ContactPhone: "+91-9000000000",
		ContactEmail: "owner@example.com",
		PriceRange:   domain.PriceRange{Min: 60, Max: 120},
		Location:     domain.Coordinates{Longitude: 77.5946, Latitude: 12.9716},
	}
	if err := f.listings.Create(context.Background(), &l); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

func TestSearchReturnsApprovedWithoutContact(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.listing(t, "Approved Mess", domain.ListingApproved)
	f.listing(t, "Pending Mess", domain.ListingPending)
	f.listing(t, "Suspended Mess", domain.ListingSuspended)

	page, err := f.queries.Search(ctx, domain.ListingFilter{Status: domain.ListingPending}, domain.Paging{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Pagination.Total != 1 || page.Items[0].Name != "Approved Mess" {
		t.Fatalf("expected only the approved mess, got %d items", page.Pagination.Total)
	}
	if page.Items[0].ContactPhone != "" || page.Items[0].ContactEmail != "" {
		t.Fatalf("expected contact stripped got %+v", page.Items[0])
	}

	nearby, err := f.queries.Nearby(ctx, domain.NearbyQuery{Point: domain.Coordinates{Longitude: 77.59, Latitude: 12.97}})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(nearby) != 1 || nearby[0].ContactPhone != "" {
		t.Fatalf("expected one approved nearby mess without contact got %+v", nearby)
	}
	if _, err := f.queries.Nearby(ctx, domain.NearbyQuery{Point: domain.Coordinates{Longitude: 200}}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput got %v", err)
	}
}

func TestNearbyRejectsNonFiniteInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.listing(t, "Bengaluru Mess", domain.ListingApproved)
	newYork := domain.Coordinates{Longitude: -74.0, Latitude: 40.7}

	hits, err := f.queries.Nearby(ctx, domain.NearbyQuery{Point: newYork, RadiusKm: math.NaN()})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("a NaN radius must fall back to the default, got %d hits", len(hits))
	}

	for _, point := range []domain.Coordinates{
		{Longitude: math.NaN(), Latitude: math.NaN()},
		{Longitude: 77.59, Latitude: math.Inf(1)},
	} {
		if _, err := f.queries.Nearby(ctx, domain.NearbyQuery{Point: point}); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput got %v", point, err)
		}
	}
}

func TestDetailVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	approved := f.listing(t, "Approved", domain.ListingApproved)
	pending := f.listing(t, "Pending", domain.ListingPending)

	anon, err := f.queries.Detail(ctx, approved.ID, nil)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if anon.ContactPhone != "" {
		t.Fatal("anonymous detail must not include contact")
	}
	signedIn, err := f.queries.Detail(ctx, approved.ID, domain.UserPrincipal{ID: "u1"})
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if signedIn.ContactPhone == "" {
		t.Fatal("signed-in detail should include contact")
	}

	cases := []struct {
		name   string
		viewer domain.Principal
		want   error
	}{
		{"anonymous", nil, domain.ErrNotFound},
		{"user", domain.UserPrincipal{ID: "u1"}, domain.ErrNotFound},
		{"other owner", domain.OwnerPrincipal{ID: "owner-2"}, domain.ErrNotFound},
		{"owner", domain.OwnerPrincipal{ID: "owner-1"}, nil},
		{"admin", domain.AdminPrincipal{ID: "admin"}, nil},
	}
	for _, tc := range cases {
		_, err := f.queries.Detail(ctx, pending.ID, tc.viewer)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v got %v", tc.name, tc.want, err)
		}
	}
}

func TestContactRequiresViewer(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	l := f.listing(t, "Approved", domain.ListingApproved)

	if _, err := f.queries.Contact(ctx, l.ID, nil); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
	got, err := f.queries.Contact(ctx, l.ID, domain.UserPrincipal{ID: "u1"})
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	if got.ContactEmail != "owner@example.com" {
		t.Fatalf("expected contact email got %q", got.ContactEmail)
	}
}

func TestCreateReviewRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	approved := f.listing(t, "Approved", domain.ListingApproved)
	pending := f.listing(t, "Pending", domain.ListingPending)
	author := domain.UserPrincipal{ID: "u1"}

	_, err := f.commands.Create(ctx, author, application.CreateReviewCommand{ListingID: pending.ID, Rating: 4, Comment: "nice"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("review on pending mess: expected ErrNotFound got %v", err)
	}
	_, err = f.commands.Create(ctx, author, application.CreateReviewCommand{ListingID: approved.ID, Rating: 0, Comment: "nice"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("rating 0: expected ErrInvalidInput got %v", err)
	}
	_, err = f.commands.Create(ctx, author, application.CreateReviewCommand{ListingID: approved.ID, Rating: 4, Comment: "   "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank comment: expected ErrInvalidInput got %v", err)
	}

	review, err := f.commands.Create(ctx, author, application.CreateReviewCommand{ListingID: approved.ID, Rating: 4, Comment: " nice "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if review.IsApproved || review.Comment != "nice" || review.UserID != "u1" {
		t.Fatalf("unexpected review: %+v", review)
	}
	_, err = f.commands.Create(ctx, author, application.CreateReviewCommand{ListingID: approved.ID, Rating: 5, Comment: "again"})
	if !errors.Is(err, domain.ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview got %v", err)
	}

	stored, _ := f.listings.FindByID(ctx, approved.ID)
	if stored.TotalReviews != 0 {
		t.Fatalf("pending reviews must not count, got %d", stored.TotalReviews)
	}
}

func TestEditingApprovedReviewRemovesItFromRating(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	l := f.listing(t, "Approved", domain.ListingApproved)
	author := domain.UserPrincipal{ID: "u1"}

	review, err := f.commands.Create(ctx, author, application.CreateReviewCommand{ListingID: l.ID, Rating: 5, Comment: "great"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := f.reviews.Approve(ctx, review.ID, "admin", time.Now()); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := f.listings.SetRating(ctx, l.ID, domain.RatingSummary{AverageRating: 5, TotalReviews: 1}, 0); err != nil {
		t.Fatalf("set rating: %v", err)
	}

	rating := 2
	updated, err := f.commands.Update(ctx, author, review.ID, domain.ReviewPatch{Rating: &rating})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsApproved || updated.Rating != 2 {
		t.Fatalf("expected pending review with rating 2 got %+v", updated)
	}
	stored, _ := f.listings.FindByID(ctx, l.ID)
	if stored.AverageRating != 0 || stored.TotalReviews != 0 {
		t.Fatalf("expected rating reset to 0/0 got %.1f/%d", stored.AverageRating, stored.TotalReviews)
	}

	if _, err := f.commands.Update(ctx, domain.UserPrincipal{ID: "u2"}, review.ID, domain.ReviewPatch{Rating: &rating}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
	if _, err := f.commands.Update(ctx, author, review.ID, domain.ReviewPatch{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput got %v", err)
	}
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	l := f.listing(t, "Approved", domain.ListingApproved)
	author := domain.UserPrincipal{ID: "u1"}
	review, err := f.commands.Create(ctx, author, application.CreateReviewCommand{ListingID: l.ID, Rating: 3, Comment: "fine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := f.reviews.Approve(ctx, review.ID, "admin", time.Now()); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := f.commands.Delete(ctx, domain.UserPrincipal{ID: "u2"}, review.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
	if err := f.commands.Delete(ctx, author, review.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.commands.Delete(ctx, author, review.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestReviewsListsApprovedNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	l := f.listing(t, "Approved", domain.ListingApproved)
	pending := f.listing(t, "Pending", domain.ListingPending)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, approved := range []bool{true, true, false} {
		r := domain.Review{ListingID: l.ID, UserID: string(rune('a' + i)), Rating: 4, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := f.reviews.Create(ctx, &r); err != nil {
			t.Fatalf("create: %v", err)
		}
		if approved {
			if _, _, err := f.reviews.Approve(ctx, r.ID, "admin", time.Now()); err != nil {
				t.Fatalf("approve: %v", err)
			}
		}
	}

	page, err := f.queries.Reviews(ctx, l.ID, domain.Paging{Order: "asc"})
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	if page.Pagination.Total != 2 || page.Pagination.Limit != domain.DefaultReviewLimit {
		t.Fatalf("unexpected pagination: %+v", page.Pagination)
	}
	if page.Items[0].UserID != "b" {
		t.Fatalf("expected newest approved review first got %s", page.Items[0].UserID)
	}
	if _, err := f.queries.Reviews(ctx, pending.ID, domain.Paging{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
