package application

import (
	"context"
	"time"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// AccountRepository persists owner/admin accounts.
type AccountRepository interface {
	// Create returns domain.ErrDuplicateAccount when the email is taken.
	Create(ctx context.Context, account *domain.Account) error
	FindByEmail(ctx context.Context, email domain.Email) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// InsertIfAbsent stores account unless one with the same email exists. The
	// existing record is never modified.
	InsertIfAbsent(ctx context.Context, account *domain.Account) (created bool, err error)
}

// TokenIssuer mints bearer tokens for authenticated principals.
type TokenIssuer interface {
	Issue(principal domain.Principal, name string) (token string, expiresAt time.Time, err error)
}

// Service describes account use-cases.
type Service interface {
	RegisterOwner(ctx context.Context, cmd RegisterOwnerCommand) (*domain.Account, error)
	Login(ctx context.Context, role, email, password string) (*Session, error)
	EnsureDefaultAdmin(ctx context.Context, email, password string) (bool, error)
	Profile(ctx context.Context, principal domain.Principal) (*domain.Account, error)
}

// RegisterOwnerCommand captures owner sign-up input.
type RegisterOwnerCommand struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// Session is the result of a successful login.
type Session struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Clock returns the current time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
