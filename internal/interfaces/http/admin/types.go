package admin

import (
	"time"

	admindomain "github.com/sngm3741/mess-finder/api/internal/admin/domain"
	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
	publicdomain "github.com/sngm3741/mess-finder/api/internal/public/domain"
)

// adminMessResponse は公開用の詳細ビューにモデレーション履歴を加えたもの。
type adminMessResponse struct {
	publicdomain.MessDetail
	StatusReason string `json:"statusReason,omitempty"`
	ApprovedBy   string `json:"approvedBy,omitempty"`
	ApprovedAt   string `json:"approvedAt,omitempty"`
	ModeratedBy  string `json:"moderatedBy,omitempty"`
	ModeratedAt  string `json:"moderatedAt,omitempty"`
}

type adminMessListResponse struct {
	Messes     []adminMessResponse       `json:"messes"`
	Pagination common.PaginationResponse `json:"pagination"`
}

type adminReviewResponse struct {
	publicdomain.ReviewView
	ModeratedBy string `json:"moderatedBy,omitempty"`
	ModeratedAt string `json:"moderatedAt,omitempty"`
}

type adminReviewListResponse struct {
	Reviews    []adminReviewResponse     `json:"reviews"`
	Pagination common.PaginationResponse `json:"pagination"`
}

type moderationRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type statsResponse struct {
	Messes  messStatsResponse   `json:"messes"`
	Reviews reviewStatsResponse `json:"reviews"`
}

type messStatsResponse struct {
	Total     int `json:"total"`
	Approved  int `json:"approved"`
	Pending   int `json:"pending"`
	Rejected  int `json:"rejected"`
	Suspended int `json:"suspended"`
}

type reviewStatsResponse struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
}

func newAdminMessResponse(l domain.Listing) adminMessResponse {
	return adminMessResponse{
		MessDetail:   publicdomain.NewMessDetail(l),
		StatusReason: l.StatusReason,
		ApprovedBy:   l.ApprovedBy,
		ApprovedAt:   formatTimePtr(l.ApprovedAt),
		ModeratedBy:  l.ModeratedBy,
		ModeratedAt:  formatTimePtr(l.ModeratedAt),
	}
}

func newAdminReviewResponse(r domain.Review) adminReviewResponse {
	return adminReviewResponse{
		ReviewView:  publicdomain.NewReviewView(r),
		ModeratedBy: r.ModeratedBy,
		ModeratedAt: formatTimePtr(r.ModeratedAt),
	}
}

func newStatsResponse(s admindomain.PlatformStats) statsResponse {
	return statsResponse{
		Messes: messStatsResponse{
			Total:     s.TotalMesses,
			Approved:  s.ApprovedMesses,
			Pending:   s.PendingMesses,
			Rejected:  s.RejectedMesses,
			Suspended: s.SuspendedMesses,
		},
		Reviews: reviewStatsResponse{
			Total:    s.TotalReviews,
			Approved: s.ApprovedReviews,
			Pending:  s.PendingReviews,
		},
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
