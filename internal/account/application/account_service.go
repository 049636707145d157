package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// hashCost is lowered in tests.
var hashCost = bcrypt.DefaultCost

type accountService struct {
	repo   AccountRepository
	tokens TokenIssuer
	now    Clock
	logger logrus.FieldLogger
}

// NewService wires account use-cases.
func NewService(repo AccountRepository, tokens TokenIssuer, logger logrus.FieldLogger, clock Clock) Service {
	if clock == nil {
		clock = systemClock
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &accountService{repo: repo, tokens: tokens, now: clock, logger: logger}
}

func (s *accountService) RegisterOwner(ctx context.Context, cmd RegisterOwnerCommand) (*domain.Account, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	name, err := domain.RequireText("name", cmd.Name, 0)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	account := &domain.Account{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        strings.TrimSpace(cmd.Phone),
		Role:         domain.RoleOwner,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.WithField("account_id", account.ID).Info("owner registered")
	return account, nil
}

// Login checks the password of an active account holding role. Every failure
// reads as ErrInvalidCredentials so callers cannot probe for emails.
func (s *accountService) Login(ctx context.Context, role, email, password string) (*Session, error) {
	addr, err := domain.NewEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	account, err := s.repo.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !account.IsActive || account.Role != role {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	principal, err := account.Principal()
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.tokens.Issue(principal, account.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}

// EnsureDefaultAdmin creates the bootstrap admin once. An existing account with
// the same email is left as is.
func (s *accountService) EnsureDefaultAdmin(ctx context.Context, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		s.logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set; default admin not created")
		return false, nil
	}
	addr, err := domain.NewEmail(email)
	if err != nil {
		return false, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	now := s.now()
	created, err := s.repo.InsertIfAbsent(ctx, &domain.Account{
		Email:        addr,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, fmt.Errorf("ensure default admin: %w", err)
	}
	if created {
		s.logger.WithField("email", addr.String()).Info("default admin created")
	}
	return created, nil
}

// Profile resolves the account behind an owner or admin principal. End users have
// no account and get ErrNotFound.
func (s *accountService) Profile(ctx context.Context, principal domain.Principal) (*domain.Account, error) {
	switch principal.(type) {
	case domain.OwnerPrincipal, domain.AdminPrincipal:
	default:
		return nil, domain.ErrNotFound
	}
	account, err := s.repo.FindByID(ctx, principal.PrincipalID())
	if err != nil {
		return nil, err
	}
	if account.Role != principal.Role() {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func hashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return string(hash), nil
}
