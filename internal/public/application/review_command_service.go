package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

type reviewCommandService struct {
	listings ListingRepository
	reviews  ReviewRepository
	ratings  RatingRecomputer
	now      Clock
	logger   logrus.FieldLogger
}

// NewReviewCommandService wires author-side review use-cases.
func NewReviewCommandService(listings ListingRepository, reviews ReviewRepository, ratings RatingRecomputer, logger logrus.FieldLogger, clock Clock) ReviewCommandService {
	if clock == nil {
		clock = systemClock
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &reviewCommandService{listings: listings, reviews: reviews, ratings: ratings, now: clock, logger: logger}
}

// Create stores a pending review. Reviews on listings that are missing or not
// approved are rejected with NotFound.
func (s *reviewCommandService) Create(ctx context.Context, author domain.UserPrincipal, cmd CreateReviewCommand) (*domain.Review, error) {
	if author.ID == "" {
		return nil, domain.ErrForbidden
	}
	if err := domain.ValidateRating(cmd.Rating); err != nil {
		return nil, err
	}
	comment, err := domain.RequireText("comment", cmd.Comment, domain.MaxCommentRunes)
	if err != nil {
		return nil, err
	}
	listing, err := s.listings.FindByID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.ListingApproved {
		return nil, fmt.Errorf("%w: mess is not accepting reviews", domain.ErrNotFound)
	}

	now := s.now()
	review := &domain.Review{
		ListingID: listing.ID,
		UserID:    author.ID,
		Rating:    cmd.Rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"review_id": review.ID,
		"mess_id":   review.ListingID,
		"user_id":   author.ID,
	}).Info("review submitted")
	return review, nil
}

// Update sends the review back to moderation. The rating is recomputed only when
// the edit took an approved review out of the approved set.
func (s *reviewCommandService) Update(ctx context.Context, author domain.UserPrincipal, id string, patch domain.ReviewPatch) (*domain.Review, error) {
	if author.ID == "" {
		return nil, domain.ErrForbidden
	}
	patch, err := patch.Normalize()
	if err != nil {
		return nil, err
	}
	before, after, err := s.reviews.UpdateByAuthor(ctx, id, author.ID, patch, s.now())
	if err != nil {
		return nil, err
	}
	if before.IsApproved {
		if _, err := s.ratings.Recompute(ctx, after.ListingID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("recompute rating for mess %s: %w", after.ListingID, err)
		}
	}
	return after, nil
}

func (s *reviewCommandService) Delete(ctx context.Context, author domain.UserPrincipal, id string) error {
	if author.ID == "" {
		return domain.ErrForbidden
	}
	removed, err := s.reviews.DeleteByAuthor(ctx, id, author.ID)
	if err != nil {
		return err
	}
	if _, err := s.ratings.Recompute(ctx, removed.ListingID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("recompute rating for mess %s: %w", removed.ListingID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"review_id": removed.ID,
		"mess_id":   removed.ListingID,
		"user_id":   author.ID,
	}).Info("review removed by author")
	return nil
}
