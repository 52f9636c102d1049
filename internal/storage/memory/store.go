package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rupayana/backend/internal/models"
	"github.com/rupayana/backend/internal/storage"
)

// Compile-time check: the memory store covers the full storage surface.
var _ storage.Store = (*Store)(nil)

// Store is an in-memory implementation of storage.Store. A single mutex
// serializes every operation, so multi-step writes (ExecTransaction) are
// atomic with respect to concurrent callers. Used by tests and local runs
// without a database.
type Store struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
	txns   []models.Transaction
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{users: make(map[int64]*models.User)}
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	cp := user
	s.users[user.ID] = &cp
	return user, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return *u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return *u, nil
}

func (s *Store) UpdateProfile(_ context.Context, id int64, name, phone *string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if phone != nil {
		u.Phone = *phone
	}
	return *u, nil
}

func (s *Store) SetResetToken(_ context.Context, id int64, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.ResetToken = token
	exp := expiry
	u.ResetExpiry = &exp
	return nil
}

func (s *Store) ConsumeResetToken(_ context.Context, id int64, token, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	if u.ResetToken == "" || u.ResetToken != token {
		return storage.ErrTokenMismatch
	}
	u.PasswordHash = passwordHash
	u.ResetToken = ""
	u.ResetExpiry = nil
	return nil
}

func (s *Store) AdjustBalance(_ context.Context, id int64, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustLocked(id, delta)
}

func (s *Store) adjustLocked(id int64, delta int64) error {
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	if u.Balance+delta < 0 {
		return storage.ErrInsufficientFunds
	}
	u.Balance += delta
	return nil
}

// ExecTransaction applies every delta and appends the log entry under one
// lock hold. Deltas are staged into a scratch balance map first, so the
// non-negative guard sees the cumulative effect of several deltas on the
// same account, and a failure leaves no partial state behind.
func (s *Store) ExecTransaction(_ context.Context, deltas []storage.BalanceDelta, txn models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[int64]int64, len(deltas))
	for _, d := range deltas {
		bal, seen := staged[d.UserID]
		if !seen {
			u, ok := s.users[d.UserID]
			if !ok {
				return storage.ErrNotFound
			}
			bal = u.Balance
		}
		bal += d.Amount
		if bal < 0 {
			return storage.ErrInsufficientFunds
		}
		staged[d.UserID] = bal
	}
	for id, bal := range staged {
		s.users[id].Balance = bal
	}
	s.txns = append(s.txns, txn)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, email string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Transaction
	for _, t := range s.txns {
		if strings.EqualFold(t.FromEmail, email) || strings.EqualFold(t.ToEmail, email) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
