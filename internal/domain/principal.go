package domain

import (
	"fmt"
	"strings"
)

// Role names as they appear in token claims.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// Principal is the authenticated caller. It is a closed set: UserPrincipal,
// OwnerPrincipal or AdminPrincipal.
type Principal interface {
	PrincipalID() string
	Role() string
	sealed()
}

// UserPrincipal is an end user who can review approved messes.
type UserPrincipal struct{ ID string }

// OwnerPrincipal is a mess owner who can submit and edit listings.
type OwnerPrincipal struct{ ID string }

// AdminPrincipal is the moderator.
type AdminPrincipal struct{ ID string }

func (p UserPrincipal) PrincipalID() string  { return p.ID }
func (p OwnerPrincipal) PrincipalID() string { return p.ID }
func (p AdminPrincipal) PrincipalID() string { return p.ID }

func (UserPrincipal) Role() string  { return RoleUser }
func (OwnerPrincipal) Role() string { return RoleOwner }
func (AdminPrincipal) Role() string { return RoleAdmin }

func (UserPrincipal) sealed()  {}
func (OwnerPrincipal) sealed() {}
func (AdminPrincipal) sealed() {}

// NewPrincipal builds the variant named by role.
func NewPrincipal(id, role string) (Principal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: principal id is required", ErrInvalidInput)
	}
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleUser, "":
		return UserPrincipal{ID: id}, nil
	case RoleOwner:
		return OwnerPrincipal{ID: id}, nil
	case RoleAdmin:
		return AdminPrincipal{ID: id}, nil
	}
	return nil, fmt.Errorf("%w: unknown role: %s", ErrInvalidInput, role)
}
