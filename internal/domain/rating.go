package domain

// RatingTally is the count and sum of approved ratings for one listing.
type RatingTally struct {
	Count int
	Sum   int
}

// Add folds one rating into the tally.
func (t RatingTally) Add(rating int) RatingTally {
	return RatingTally{Count: t.Count + 1, Sum: t.Sum + rating}
}

// RatingSummary is the derived rating stored on a listing.
type RatingSummary struct {
	AverageRating float64
	TotalReviews  int
}

// Summary returns the mean rounded half-up to one decimal, or zero when empty.
// Rounding is done on integers so x.x5 means never drift below the half.
func (t RatingTally) Summary() RatingSummary {
	if t.Count <= 0 {
		return RatingSummary{}
	}
	tenths := (20*t.Sum + t.Count) / (2 * t.Count)
	return RatingSummary{
		AverageRating: float64(tenths) / 10,
		TotalReviews:  t.Count,
	}
}

// TallyRatings builds a tally from raw ratings.
func TallyRatings(ratings []int) RatingTally {
	var t RatingTally
	for _, r := range ratings {
		t = t.Add(r)
	}
	return t
}
