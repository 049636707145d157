package application

import (
	"context"
	"fmt"

	admindomain "github.com/sngm3741/mess-finder/api/internal/admin/domain"
	"github.com/sngm3741/mess-finder/api/internal/domain"
)

type statsService struct {
	listings ListingRepository
	reviews  ReviewRepository
}

func NewStatsService(listings ListingRepository, reviews ReviewRepository) StatsService {
	return &statsService{listings: listings, reviews: reviews}
}

func (s *statsService) Platform(ctx context.Context) (*admindomain.PlatformStats, error) {
	byStatus, err := s.listings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count messes: %w", err)
	}
	approved, pending, err := s.reviews.CountByApproval(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	stats := &admindomain.PlatformStats{
		ApprovedMesses:  byStatus[domain.ListingApproved],
		PendingMesses:   byStatus[domain.ListingPending],
		RejectedMesses:  byStatus[domain.ListingRejected],
		SuspendedMesses: byStatus[domain.ListingSuspended],
		ApprovedReviews: approved,
		PendingReviews:  pending,
		TotalReviews:    approved + pending,
	}
	for _, n := range byStatus {
		stats.TotalMesses += n
	}
	return stats, nil
}
