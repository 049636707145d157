package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// AccountStore is an in-memory account repository keyed by id with a unique email.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]domain.Account)}
}

func (s *AccountStore) Create(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byEmailLocked(account.Email) != nil {
		return domain.ErrDuplicateAccount
	}
	s.insertLocked(account)
	return nil
}

func (s *AccountStore) InsertIfAbsent(_ context.Context, account *domain.Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.byEmailLocked(account.Email); existing != nil {
		account.ID = existing.ID
		return false, nil
	}
	s.insertLocked(account)
	return true, nil
}

func (s *AccountStore) FindByEmail(_ context.Context, email domain.Email) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing := s.byEmailLocked(email)
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	out := *existing
	return &out, nil
}

func (s *AccountStore) FindByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &existing, nil
}

func (s *AccountStore) insertLocked(account *domain.Account) {
	if account.ID == "" {
		account.ID = primitive.NewObjectID().Hex()
	}
	s.accounts[account.ID] = *account
}

func (s *AccountStore) byEmailLocked(email domain.Email) *domain.Account {
	for _, a := range s.accounts {
		if a.Email == email {
			found := a
			return &found
		}
	}
	return nil
}
