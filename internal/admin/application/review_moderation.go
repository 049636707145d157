package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

type reviewModerationService struct {
	reviews ReviewRepository
	ratings RatingRecomputer
	now     Clock
	logger  logrus.FieldLogger
}

// NewReviewModerationService wires review approval/removal to the rating aggregator.
func NewReviewModerationService(reviews ReviewRepository, ratings RatingRecomputer, logger logrus.FieldLogger, clock Clock) ReviewModerationService {
	if clock == nil {
		clock = systemClock
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &reviewModerationService{reviews: reviews, ratings: ratings, now: clock, logger: logger}
}

func (s *reviewModerationService) Pending(ctx context.Context, paging domain.Paging) (*ReviewPage, error) {
	paging = paging.Normalize(domain.DefaultPageLimit, domain.SortByCreatedAt)
	items, total, err := s.reviews.Find(ctx, domain.ReviewFilter{Approved: domain.BoolPtr(false)}, paging)
	if err != nil {
		return nil, fmt.Errorf("list pending reviews: %w", err)
	}
	return &ReviewPage{Items: items, Pagination: domain.NewPagination(total, paging)}, nil
}

// Approve is idempotent. Re-approving keeps the first moderator stamp but still
// recomputes. A review whose mess has been removed is approved without a recompute.
func (s *reviewModerationService) Approve(ctx context.Context, id string, actor domain.AdminPrincipal) (*domain.Review, error) {
	if actor.ID == "" {
		return nil, domain.ErrForbidden
	}
	review, changed, err := s.reviews.Approve(ctx, id, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.ratings.Recompute(ctx, review.ListingID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("recompute rating for mess %s: %w", review.ListingID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"review_id": review.ID,
		"mess_id":   review.ListingID,
		"admin_id":  actor.ID,
		"changed":   changed,
	}).Info("review approved")
	return review, nil
}

func (s *reviewModerationService) Delete(ctx context.Context, id string, actor domain.AdminPrincipal) (*domain.Review, error) {
	if actor.ID == "" {
		return nil, domain.ErrForbidden
	}
	review, err := s.reviews.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ratings.Recompute(ctx, review.ListingID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("recompute rating for mess %s: %w", review.ListingID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"review_id": review.ID,
		"mess_id":   review.ListingID,
		"admin_id":  actor.ID,
	}).Info("review removed by moderator")
	return review, nil
}
