package domain

// PlatformStats aggregates moderation queue and catalogue counts for the admin dashboard.
type PlatformStats struct {
	ApprovedMesses  int
	PendingMesses   int
	RejectedMesses  int
	SuspendedMesses int
	ApprovedReviews int
	PendingReviews  int
	TotalMesses     int
	TotalReviews    int
}
