package rating_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/infrastructure/memory"
	"github.com/sngm3741/mess-finder/api/internal/rating"
)

func TestRecomputeUsesApprovedReviewsOnly(t *testing.T) {
	ctx := context.Background()
	listings := memory.NewListingStore()
	reviews := memory.NewReviewStore()
	l := domain.Listing{Name: "Mess", Status: domain.ListingApproved, AverageRating: 1, TotalReviews: 9}
	if err := listings.Create(ctx, &l); err != nil {
		t.Fatalf("create listing: %v", err)
	}

	for i, r := range []struct {
		rating   int
		approved bool
	}{{4, true}, {4, true}, {5, true}, {1, false}} {
		review := domain.Review{ListingID: l.ID, UserID: string(rune('a' + i)), Rating: r.rating}
		if err := reviews.Create(ctx, &review); err != nil {
			t.Fatalf("create review: %v", err)
		}
		if r.approved {
			if _, _, err := reviews.Approve(ctx, review.ID, "admin", time.Now()); err != nil {
				t.Fatalf("approve: %v", err)
			}
		}
	}

	agg := rating.NewAggregator(reviews, listings, nil)
	summary, err := agg.Recompute(ctx, l.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if summary.AverageRating != 4.3 || summary.TotalReviews != 3 {
		t.Fatalf("expected 4.3/3 got %.1f/%d", summary.AverageRating, summary.TotalReviews)
	}

	stored, _ := listings.FindByID(ctx, l.ID)
	if stored.AverageRating != 4.3 || stored.TotalReviews != 3 {
		t.Fatalf("expected stored 4.3/3 got %.1f/%d", stored.AverageRating, stored.TotalReviews)
	}
}

func TestRecomputeResetsToZeroWithoutApprovedReviews(t *testing.T) {
	ctx := context.Background()
	listings := memory.NewListingStore()
	l := domain.Listing{AverageRating: 4.9, TotalReviews: 12}
	if err := listings.Create(ctx, &l); err != nil {
		t.Fatalf("create listing: %v", err)
	}

	summary, err := rating.NewAggregator(memory.NewReviewStore(), listings, nil).Recompute(ctx, l.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if summary.AverageRating != 0 || summary.TotalReviews != 0 {
		t.Fatalf("expected 0/0 got %.1f/%d", summary.AverageRating, summary.TotalReviews)
	}
}

func TestRecomputeMissingListing(t *testing.T) {
	agg := rating.NewAggregator(memory.NewReviewStore(), memory.NewListingStore(), nil)
	_, err := agg.Recompute(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

// pausingTally blocks the first tally after it has read the approved set.
type pausingTally struct {
	inner  rating.ReviewTally
	calls  int32
	read   chan struct{}
	resume chan struct{}
}

func (p *pausingTally) TallyApproved(ctx context.Context, listingID string) (domain.RatingTally, error) {
	tally, err := p.inner.TallyApproved(ctx, listingID)
	if atomic.AddInt32(&p.calls, 1) == 1 {
		close(p.read)
		<-p.resume
	}
	return tally, err
}

func TestRecomputeDoesNotStoreOutdatedTally(t *testing.T) {
	ctx := context.Background()
	listings := memory.NewListingStore()
	reviews := memory.NewReviewStore()
	l := domain.Listing{Name: "Mess", Status: domain.ListingApproved}
	if err := listings.Create(ctx, &l); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	first := domain.Review{ListingID: l.ID, UserID: "a", Rating: 4}
	second := domain.Review{ListingID: l.ID, UserID: "b", Rating: 2}
	for _, r := range []*domain.Review{&first, &second} {
		if err := reviews.Create(ctx, r); err != nil {
			t.Fatalf("create review: %v", err)
		}
	}
	if _, _, err := reviews.Approve(ctx, first.ID, "admin", time.Now()); err != nil {
		t.Fatalf("approve: %v", err)
	}

	gate := &pausingTally{inner: reviews, read: make(chan struct{}), resume: make(chan struct{})}
	type result struct {
		summary domain.RatingSummary
		err     error
	}
	done := make(chan result, 1)
	go func() {
		summary, err := rating.NewAggregator(gate, listings, nil).Recompute(ctx, l.ID)
		done <- result{summary, err}
	}()

	// The slow recompute has read {4} and is paused before writing.
	<-gate.read
	if _, _, err := reviews.Approve(ctx, second.ID, "admin", time.Now()); err != nil {
		t.Fatalf("approve: %v", err)
	}
	fresh, err := rating.NewAggregator(reviews, listings, nil).Recompute(ctx, l.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if fresh.AverageRating != 3 || fresh.TotalReviews != 2 {
		t.Fatalf("expected 3.0/2 got %.1f/%d", fresh.AverageRating, fresh.TotalReviews)
	}
	close(gate.resume)

	res := <-done
	if res.err != nil {
		t.Fatalf("slow recompute: %v", res.err)
	}
	if res.summary.TotalReviews != 2 {
		t.Fatalf("slow recompute should retry with the new approved set, got %.1f/%d", res.summary.AverageRating, res.summary.TotalReviews)
	}
	if calls := atomic.LoadInt32(&gate.calls); calls != 2 {
		t.Fatalf("expected 2 tallies got %d", calls)
	}
	stored, _ := listings.FindByID(ctx, l.ID)
	if stored.AverageRating != 3 || stored.TotalReviews != 2 {
		t.Fatalf("expected stored 3.0/2 got %.1f/%d", stored.AverageRating, stored.TotalReviews)
	}
}

type alwaysStale struct{}

func (alwaysStale) RatingVersion(context.Context, string) (int64, error) { return 0, nil }

func (alwaysStale) SetRating(context.Context, string, domain.RatingSummary, int64) error {
	return domain.ErrStaleRating
}

func TestRecomputeGivesUpUnderContention(t *testing.T) {
	_, err := rating.NewAggregator(memory.NewReviewStore(), alwaysStale{}, nil).Recompute(context.Background(), "m1")
	if !errors.Is(err, domain.ErrStaleRating) {
		t.Fatalf("expected ErrStaleRating got %v", err)
	}
}
