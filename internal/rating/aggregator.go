// Package rating keeps a listing's averageRating/totalReviews in step with its
// approved reviews.
package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// maxAttempts bounds the tally/write loop when other recomputes keep winning.
const maxAttempts = 8

// ReviewTally reads the approved-set of a listing.
type ReviewTally interface {
	TallyApproved(ctx context.Context, listingID string) (domain.RatingTally, error)
}

// ListingRatings reads and writes the derived rating fields. SetRating only
// writes when the stored version still equals expected, and bumps it; otherwise
// it returns domain.ErrStaleRating. Both return domain.ErrNotFound when the
// listing does not exist.
type ListingRatings interface {
	RatingVersion(ctx context.Context, listingID string) (int64, error)
	SetRating(ctx context.Context, listingID string, summary domain.RatingSummary, expected int64) error
}

// Aggregator recomputes derived ratings from scratch on every call. A write
// based on a tally older than another recompute's write is rejected and the
// tally is redone, so concurrent recomputes converge on the latest approved-set.
type Aggregator struct {
	reviews  ReviewTally
	listings ListingRatings
	logger   logrus.FieldLogger
}

func NewAggregator(reviews ReviewTally, listings ListingRatings, logger logrus.FieldLogger) *Aggregator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Aggregator{reviews: reviews, listings: listings, logger: logger}
}

// Recompute tallies approved reviews for listingID and stores the summary.
func (a *Aggregator) Recompute(ctx context.Context, listingID string) (domain.RatingSummary, error) {
	for attempt := 1; ; attempt++ {
		summary, err := a.recomputeOnce(ctx, listingID)
		if err == nil {
			a.logger.WithFields(logrus.Fields{
				"mess_id":        listingID,
				"average_rating": summary.AverageRating,
				"total_reviews":  summary.TotalReviews,
				"attempt":        attempt,
			}).Debug("mess rating recomputed")
			return summary, nil
		}
		if !errors.Is(err, domain.ErrStaleRating) || attempt >= maxAttempts {
			return domain.RatingSummary{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.RatingSummary{}, ctxErr
		}
		a.logger.WithField("mess_id", listingID).Debug("rating changed during recompute, retrying")
	}
}

func (a *Aggregator) recomputeOnce(ctx context.Context, listingID string) (domain.RatingSummary, error) {
	version, err := a.listings.RatingVersion(ctx, listingID)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("read rating version: %w", err)
	}
	tally, err := a.reviews.TallyApproved(ctx, listingID)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("tally approved reviews: %w", err)
	}
	summary := tally.Summary()
	if err := a.listings.SetRating(ctx, listingID, summary, version); err != nil {
		return domain.RatingSummary{}, fmt.Errorf("store rating: %w", err)
	}
	return summary, nil
}
