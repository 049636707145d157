package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/sngm3741/mess-finder/api/internal/domain"
	"github.com/sngm3741/mess-finder/api/internal/infrastructure/memory"
)

func init() {
	hashCost = bcrypt.MinCost
}

type stubIssuer struct {
	issued []domain.Principal
}

func (s *stubIssuer) Issue(principal domain.Principal, name string) (string, time.Time, error) {
	s.issued = append(s.issued, principal)
	return "token-" + principal.Role() + "-" + name, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func newTestService() (Service, *stubIssuer, *test.Hook) {
	logger, hook := test.NewNullLogger()
	issuer := &stubIssuer{}
	return NewService(memory.NewAccountStore(), issuer, logger, nil), issuer, hook
}

func TestRegisterOwnerAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, issuer, _ := newTestService()

	account, err := svc.RegisterOwner(ctx, RegisterOwnerCommand{Email: " Owner@Example.com ", Password: "secret1", Name: "Ravi"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.Email != "owner@example.com" || account.Role != domain.RoleOwner || !account.IsActive {
		t.Fatalf("unexpected account: %+v", account)
	}
	if account.PasswordHash == "secret1" || account.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}

	if _, err := svc.RegisterOwner(ctx, RegisterOwnerCommand{Email: "owner@example.com", Password: "another", Name: "Copy"}); !errors.Is(err, domain.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount got %v", err)
	}

	session, err := svc.Login(ctx, domain.RoleOwner, "OWNER@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token != "token-owner-Ravi" || session.Account.ID != account.ID {
		t.Fatalf("unexpected session: %+v", session)
	}
	if p, ok := issuer.issued[0].(domain.OwnerPrincipal); !ok || p.ID != account.ID {
		t.Fatalf("expected owner principal for %s got %#v", account.ID, issuer.issued[0])
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	if _, err := svc.RegisterOwner(ctx, RegisterOwnerCommand{Email: "owner@example.com", Password: "secret1", Name: "Ravi"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name, role, email, password string
	}{
		{"wrong password", domain.RoleOwner, "owner@example.com", "wrong!!"},
		{"wrong role", domain.RoleAdmin, "owner@example.com", "secret1"},
		{"unknown email", domain.RoleOwner, "nobody@example.com", "secret1"},
		{"malformed email", domain.RoleOwner, "nobody", "secret1"},
	}
	for _, tc := range cases {
		if _, err := svc.Login(ctx, tc.role, tc.email, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("%s: expected ErrInvalidCredentials got %v", tc.name, err)
		}
	}
}

func TestRegisterOwnerValidation(t *testing.T) {
	svc, _, _ := newTestService()
	cases := []RegisterOwnerCommand{
		{Email: "bad", Password: "secret1", Name: "Ravi"},
		{Email: "a@example.com", Password: "short", Name: "Ravi"},
		{Email: "a@example.com", Password: "secret1", Name: "  "},
	}
	for _, cmd := range cases {
		if _, err := svc.RegisterOwner(context.Background(), cmd); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput got %v", cmd, err)
		}
	}
}

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, hook := newTestService()

	created, err := svc.EnsureDefaultAdmin(ctx, "", "")
	if err != nil || created {
		t.Fatalf("expected skip without credentials, got created=%v err=%v", created, err)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "ADMIN_EMAIL or ADMIN_PASSWORD not set; default admin not created" {
		t.Fatal("expected a warning when admin credentials are missing")
	}

	created, err = svc.EnsureDefaultAdmin(ctx, "admin@example.com", "admin123")
	if err != nil || !created {
		t.Fatalf("expected admin created, got created=%v err=%v", created, err)
	}
	created, err = svc.EnsureDefaultAdmin(ctx, "admin@example.com", "changed-password")
	if err != nil || created {
		t.Fatalf("expected second call to be a no-op, got created=%v err=%v", created, err)
	}

	if _, err := svc.Login(ctx, domain.RoleAdmin, "admin@example.com", "admin123"); err != nil {
		t.Fatalf("original admin password should still work: %v", err)
	}
	if _, err := svc.Login(ctx, domain.RoleAdmin, "admin@example.com", "changed-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("existing admin must not be overwritten, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	account, err := svc.RegisterOwner(ctx, RegisterOwnerCommand{Email: "owner@example.com", Password: "secret1", Name: "Ravi"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Profile(ctx, domain.OwnerPrincipal{ID: account.ID})
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.Name != "Ravi" {
		t.Fatalf("expected Ravi got %s", got.Name)
	}
	if _, err := svc.Profile(ctx, domain.AdminPrincipal{ID: account.ID}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("role mismatch: expected ErrNotFound got %v", err)
	}
	if _, err := svc.Profile(ctx, domain.UserPrincipal{ID: "u1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("user: expected ErrNotFound got %v", err)
	}
}
