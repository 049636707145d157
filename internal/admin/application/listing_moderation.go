package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

type listingModerationService struct {
	repo   ListingRepository
	now    Clock
	logger logrus.FieldLogger
}

// NewListingModerationService wires the listing moderation use-cases.
func NewListingModerationService(repo ListingRepository, logger logrus.FieldLogger, clock Clock) ListingModerationService {
	if clock == nil {
		clock = systemClock
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &listingModerationService{repo: repo, now: clock, logger: logger}
}

func (s *listingModerationService) Pending(ctx context.Context, paging domain.Paging) (*ListingPage, error) {
	return s.List(ctx, domain.ListingPending, paging)
}

func (s *listingModerationService) List(ctx context.Context, status domain.ListingStatus, paging domain.Paging) (*ListingPage, error) {
	paging = paging.Normalize(domain.DefaultPageLimit, domain.SortByCreatedAt)
	items, total, err := s.repo.Find(ctx, domain.ListingFilter{Status: status}, paging)
	if err != nil {
		return nil, fmt.Errorf("list messes: %w", err)
	}
	return &ListingPage{Items: items, Pagination: domain.NewPagination(total, paging)}, nil
}

func (s *listingModerationService) Approve(ctx context.Context, id string, actor domain.AdminPrincipal) (*domain.Listing, error) {
	return s.transition(ctx, id, domain.ActionApprove, actor, "")
}

func (s *listingModerationService) Reject(ctx context.Context, id string, actor domain.AdminPrincipal, reason string) (*domain.Listing, error) {
	return s.transition(ctx, id, domain.ActionReject, actor, reason)
}

func (s *listingModerationService) Suspend(ctx context.Context, id string, actor domain.AdminPrincipal, reason string) (*domain.Listing, error) {
	return s.transition(ctx, id, domain.ActionSuspend, actor, reason)
}

func (s *listingModerationService) Reactivate(ctx context.Context, id string, actor domain.AdminPrincipal) (*domain.Listing, error) {
	return s.transition(ctx, id, domain.ActionReactivate, actor, "")
}

func (s *listingModerationService) transition(ctx context.Context, id string, action domain.ListingAction, actor domain.AdminPrincipal, reason string) (*domain.Listing, error) {
	if actor.ID == "" {
		return nil, domain.ErrForbidden
	}
	t, err := domain.NewListingTransition(action, actor.ID, reason, s.now())
	if err != nil {
		return nil, err
	}
	listing, err := s.repo.ApplyTransition(ctx, id, t)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"mess_id":  id,
		"action":   string(action),
		"status":   listing.Status.String(),
		"admin_id": actor.ID,
	}).Info("mess moderated")
	return listing, nil
}
