package domain

import "time"

// Account is a password-authenticated principal (mess owner or admin).
// End users sign in through the external identity provider and have no Account.
type Account struct {
	ID           string
	Email        Email
	PasswordHash string
	Name         string
	Phone        string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal returns the variant matching the account role.
func (a Account) Principal() (Principal, error) {
	return NewPrincipal(a.ID, a.Role)
}
