package domain

import (
	"fmt"
	"strings"
	"time"
)

// ListingStatus is the moderation lifecycle state of a mess listing.
type ListingStatus string

const (
	ListingPending   ListingStatus = "pending"
	ListingApproved  ListingStatus = "approved"
	ListingRejected  ListingStatus = "rejected"
	ListingSuspended ListingStatus = "suspended"
)

// ListingStatuses lists every status in display order.
var ListingStatuses = []ListingStatus{ListingPending, ListingApproved, ListingRejected, ListingSuspended}

func ParseListingStatus(value string) (ListingStatus, error) {
	s := ListingStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range ListingStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown listing status: %s", ErrInvalidInput, value)
}

func (s ListingStatus) String() string {
	return string(s)
}

// ListingAction is a moderator action on a listing.
type ListingAction string

const (
	ActionApprove    ListingAction = "approve"
	ActionReject     ListingAction = "reject"
	ActionSuspend    ListingAction = "suspend"
	ActionReactivate ListingAction = "reactivate"
)

type transitionRule struct {
	from []ListingStatus
	to   ListingStatus
}

var listingTransitions = map[ListingAction]transitionRule{
	ActionApprove:    {from: []ListingStatus{ListingPending}, to: ListingApproved},
	ActionReject:     {from: []ListingStatus{ListingPending}, to: ListingRejected},
	ActionSuspend:    {from: []ListingStatus{ListingApproved}, to: ListingSuspended},
	ActionReactivate: {from: []ListingStatus{ListingSuspended, ListingRejected}, to: ListingApproved},
}

// ListingTransition is a fully resolved status change. Stores apply it as a single
// conditional write guarded on From.
type ListingTransition struct {
	Action  ListingAction
	From    []ListingStatus
	To      ListingStatus
	ActorID string
	At      time.Time
	// Reason is stored on reject/suspend and cleared on reactivate.
	Reason      string
	ClearReason bool
	// MarkApproved records ActorID/At as the approver.
	MarkApproved bool
}

// NewListingTransition resolves the guard and side effects for action.
func NewListingTransition(action ListingAction, actorID, reason string, at time.Time) (ListingTransition, error) {
	rule, ok := listingTransitions[action]
	if !ok {
		return ListingTransition{}, fmt.Errorf("%w: unknown listing action: %s", ErrInvalidInput, action)
	}
	t := ListingTransition{
		Action:  action,
		From:    append([]ListingStatus(nil), rule.from...),
		To:      rule.to,
		ActorID: actorID,
		At:      at.UTC(),
	}
	switch action {
	case ActionApprove:
		t.MarkApproved = true
	case ActionReject, ActionSuspend:
		t.Reason = strings.TrimSpace(reason)
	case ActionReactivate:
		t.ClearReason = true
		t.MarkApproved = true
	}
	return t, nil
}

// Allows reports whether the transition may start from status.
func (t ListingTransition) Allows(status ListingStatus) bool {
	for _, s := range t.From {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether action is legal from status.
func CanTransition(status ListingStatus, action ListingAction) bool {
	rule, ok := listingTransitions[action]
	if !ok {
		return false
	}
	for _, s := range rule.from {
		if s == status {
			return true
		}
	}
	return false
}

// Address is the postal address of a mess.
type Address struct {
	Street   string
	City     string
	State    string
	Pincode  string
	Landmark string
}

// MenuItem is one dish on a mess menu.
type MenuItem struct {
	Name        string
	Price       int
	Category    MealCategory
	IsVeg       bool
	Description string
}

// Listing is a mess/tiffin service subject to moderation.
type Listing struct {
	ID            string
	OwnerID       string
	Name          string
	Description   string
	Location      Coordinates
	Address       Address
	Menu          []MenuItem
	Photos        []string
	Timings       Timings
	PriceRange    PriceRange
	AvailableDays WeekdayList
	ContactPhone  string
	ContactEmail  string
	IsVegOnly     bool

	Status       ListingStatus
	StatusReason string
	ApprovedBy   string
	ApprovedAt   *time.Time
	ModeratedBy  string
	ModeratedAt  *time.Time

	AverageRating float64
	TotalReviews  int
	// RatingVersion increases on every rating write.
	RatingVersion int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply mutates l according to t. Callers must check t.Allows(l.Status) first.
func (l *Listing) Apply(t ListingTransition) {
	at := t.At
	l.Status = t.To
	l.ModeratedBy = t.ActorID
	l.ModeratedAt = &at
	if t.Reason != "" {
		l.StatusReason = t.Reason
	}
	if t.ClearReason {
		l.StatusReason = ""
	}
	if t.MarkApproved {
		l.ApprovedBy = t.ActorID
		l.ApprovedAt = &at
	}
	l.UpdatedAt = at
}

// WithoutContact returns a copy with contact details removed for anonymous viewers.
func (l Listing) WithoutContact() Listing {
	l.ContactPhone = ""
	l.ContactEmail = ""
	return l
}

// ListingPatch is an owner edit. Nil fields are left unchanged; moderation and
// rating fields are not patchable.
type ListingPatch struct {
	Name          *string
	Description   *string
	Location      *Coordinates
	Address       *Address
	Menu          *[]MenuItem
	Photos        *[]string
	Timings       *Timings
	PriceRange    *PriceRange
	AvailableDays *WeekdayList
	ContactPhone  *string
	ContactEmail  *string
	IsVegOnly     *bool
}

// Empty reports whether the patch changes nothing.
func (p ListingPatch) Empty() bool {
	return p == ListingPatch{}
}

// ApplyPatch mutates l with the non-nil fields of p.
func (l *Listing) ApplyPatch(p ListingPatch, at time.Time) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.Address != nil {
		l.Address = *p.Address
	}
	if p.Menu != nil {
		l.Menu = append([]MenuItem(nil), (*p.Menu)...)
	}
	if p.Photos != nil {
		l.Photos = append([]string(nil), (*p.Photos)...)
	}
	if p.Timings != nil {
		l.Timings = *p.Timings
	}
	if p.PriceRange != nil {
		l.PriceRange = *p.PriceRange
	}
	if p.AvailableDays != nil {
		l.AvailableDays = append(WeekdayList(nil), (*p.AvailableDays)...)
	}
	if p.ContactPhone != nil {
		l.ContactPhone = *p.ContactPhone
	}
	if p.ContactEmail != nil {
		l.ContactEmail = *p.ContactEmail
	}
	if p.IsVegOnly != nil {
		l.IsVegOnly = *p.IsVegOnly
	}
	l.UpdatedAt = at
}
