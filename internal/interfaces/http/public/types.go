package public

import (
	"time"

	"github.com/sngm3741/mess-finder/api/internal/interfaces/http/common"
	publicdomain "github.com/sngm3741/mess-finder/api/internal/public/domain"
)

type messSummaryResponse = publicdomain.MessSummary
type messDetailResponse = publicdomain.MessDetail
type reviewResponse = publicdomain.ReviewView

type messListResponse struct {
	Messes     []messSummaryResponse     `json:"messes"`
	Pagination common.PaginationResponse `json:"pagination"`
}

type messNearbyResponse struct {
	Messes []messSummaryResponse `json:"messes"`
	Count  int                   `json:"count"`
}

type reviewListResponse struct {
	Reviews    []reviewResponse          `json:"reviews"`
	Pagination common.PaginationResponse `json:"pagination"`
}

type createReviewRequest struct {
	MessID  string `json:"messId" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=500"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

type ownerRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type accountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      accountResponse `json:"user"`
}
