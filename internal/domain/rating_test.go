package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRatingSummaryRounding(t *testing.T) {
	cases := []struct {
		ratings []int
		want    float64
	}{
		{nil, 0},
		{[]int{5}, 5},
		{[]int{4, 5}, 4.5},
		{[]int{4, 4, 5}, 4.3},
		{[]int{4, 5, 5}, 4.7},
		{[]int{1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}, 2.0},
		// 3.05 exactly: half-up.
		{[]int{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 4}, 3.1},
		{[]int{1, 1, 2}, 1.3},
	}
	for _, tc := range cases {
		got := TallyRatings(tc.ratings).Summary()
		if got.AverageRating != tc.want {
			t.Errorf("ratings %v: expected %.1f got %.2f", tc.ratings, tc.want, got.AverageRating)
		}
		if got.TotalReviews != len(tc.ratings) {
			t.Errorf("ratings %v: expected count %d got %d", tc.ratings, len(tc.ratings), got.TotalReviews)
		}
	}
}

func TestReviewPatchNormalize(t *testing.T) {
	if _, err := (ReviewPatch{}).Normalize(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty patch: expected ErrInvalidInput got %v", err)
	}

	bad := 6
	if _, err := (ReviewPatch{Rating: &bad}).Normalize(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("rating 6: expected ErrInvalidInput got %v", err)
	}

	long := strings.Repeat("a", MaxCommentRunes+1)
	if _, err := (ReviewPatch{Comment: &long}).Normalize(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("long comment: expected ErrInvalidInput got %v", err)
	}

	comment := "  tasty  "
	p, err := (ReviewPatch{Comment: &comment}).Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *p.Comment != "tasty" || p.Rating != nil {
		t.Fatalf("unexpected patch: %+v", p)
	}
}

func TestReviewEditResetsApproval(t *testing.T) {
	approvedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Review{Rating: 5, Comment: "great", IsApproved: true, ModeratedBy: "admin", ModeratedAt: &approvedAt}

	rating := 2
	editedAt := approvedAt.Add(time.Hour)
	r.ApplyEdit(ReviewPatch{Rating: &rating}, editedAt)

	if r.IsApproved || r.ModeratedBy != "" || r.ModeratedAt != nil {
		t.Fatalf("expected approval cleared, got %+v", r)
	}
	if r.Rating != 2 || r.Comment != "great" {
		t.Fatalf("unexpected content after edit: %+v", r)
	}
}

func TestReviewApproveIsIdempotent(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Review{}
	if !r.Approve("admin-1", first) {
		t.Fatal("first approval should change the review")
	}
	if r.Approve("admin-2", first.Add(time.Hour)) {
		t.Fatal("second approval should be a no-op")
	}
	if r.ModeratedBy != "admin-1" || !r.ModeratedAt.Equal(first) {
		t.Fatalf("expected first stamp kept, got %s %v", r.ModeratedBy, r.ModeratedAt)
	}
}
