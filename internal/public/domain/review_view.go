package domain

import core "github.com/sngm3741/mess-finder/api/internal/domain"

// ReviewView is the public representation of a review.
type ReviewView struct {
	ID         string `json:"id"`
	MessID     string `json:"messId"`
	UserID     string `json:"userId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	IsApproved bool   `json:"isApproved"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func NewReviewView(r core.Review) ReviewView {
	return ReviewView{
		ID:         r.ID,
		MessID:     r.ListingID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		IsApproved: r.IsApproved,
		CreatedAt:  formatTime(r.CreatedAt),
		UpdatedAt:  formatTime(r.UpdatedAt),
	}
}
