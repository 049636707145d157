package domain

import (
	"fmt"
	"time"
)

// Review is one user's rating of one mess. At most one exists per (listing, user).
type Review struct {
	ID          string
	ListingID   string
	UserID      string
	Rating      int
	Comment     string
	IsApproved  bool
	ModeratedBy string
	ModeratedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReviewPatch carries an author's edit. Nil fields are left unchanged.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

func ValidateRating(value int) error {
	if value < MinRating || value > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinRating, MaxRating)
	}
	return nil
}

// Normalize validates the patch and trims the comment.
func (p ReviewPatch) Normalize() (ReviewPatch, error) {
	if p.Rating == nil && p.Comment == nil {
		return ReviewPatch{}, fmt.Errorf("%w: rating or comment is required", ErrInvalidInput)
	}
	out := ReviewPatch{}
	if p.Rating != nil {
		if err := ValidateRating(*p.Rating); err != nil {
			return ReviewPatch{}, err
		}
		v := *p.Rating
		out.Rating = &v
	}
	if p.Comment != nil {
		comment, err := RequireText("comment", *p.Comment, MaxCommentRunes)
		if err != nil {
			return ReviewPatch{}, err
		}
		out.Comment = &comment
	}
	return out, nil
}

// ApplyEdit applies an author edit and sends the review back to moderation.
func (r *Review) ApplyEdit(p ReviewPatch, at time.Time) {
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
	r.IsApproved = false
	r.ModeratedBy = ""
	r.ModeratedAt = nil
	r.UpdatedAt = at
}

// Approve marks the review approved unless it already is.
func (r *Review) Approve(moderatorID string, at time.Time) bool {
	if r.IsApproved {
		return false
	}
	r.IsApproved = true
	r.ModeratedBy = moderatorID
	r.ModeratedAt = &at
	r.UpdatedAt = at
	return true
}
