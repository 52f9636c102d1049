// Package accounts is the auth façade: it composes the credential store and
// the account repository behind Register/Login so the HTTP layer touches
// neither directly.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/rupayana/backend/internal/auth"
	"github.com/rupayana/backend/internal/ledger"
	"github.com/rupayana/backend/internal/models"
	"github.com/rupayana/backend/internal/storage"
)

var (
	// ErrValidation flags missing or malformed input the caller can fix.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so a caller cannot probe which one was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLen = 8

// Service orchestrates registration and login over the user store. When an
// initial balance is configured, registration finishes with a best-effort
// bootstrap deposit through the ledger so the credit lands in the
// transaction log.
type Service struct {
	users       storage.UserStore
	ledger      *ledger.Ledger
	initBalance int64
}

// NewService wires the façade. ledgerEngine may be nil only when
// initBalance is zero.
func NewService(users storage.UserStore, ledgerEngine *ledger.Ledger, initBalance int64) *Service {
	return &Service{users: users, ledger: ledgerEngine, initBalance: initBalance}
}

// Register hashes the password, creates the account with a zero balance,
// and applies the configured signup credit. The returned user never carries
// the password hash into JSON.
func (s *Service) Register(ctx context.Context, name, email, phone, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.User{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if strings.TrimSpace(password) == "" {
		return models.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(password) < minPasswordLen || !utf8.ValidString(password) {
		return models.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		Phone:        strings.TrimSpace(phone),
		PasswordHash: hash,
	}
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}

	// The account row is committed at this point. The signup credit is a
	// separate best-effort ledger operation: if it fails the registration
	// still stands, with a zero balance and no phantom log entry.
	if s.initBalance > 0 {
		if _, err := s.ledger.Deposit(ctx, created.Email, s.initBalance, "signup bonus"); err != nil {
			log.Printf("signup bonus for account %d: %v", created.ID, err)
			return created, nil
		}
		created.Balance = s.initBalance
	}
	return created, nil
}

// Login verifies the password for the account. Unknown email and wrong
// password yield the same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return models.User{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Logout acknowledges the request. Session invalidation lives in the HTTP
// layer; the core holds no session state.
func (s *Service) Logout() {}

// UpdateProfile applies a partial name/phone update for the account.
func (s *Service) UpdateProfile(ctx context.Context, email string, name, phone *string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return models.User{}, err
	}
	return s.users.UpdateProfile(ctx, user.ID, name, phone)
}
