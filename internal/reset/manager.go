// Package reset issues and consumes single-use password-reset tokens.
// A user holds at most one active token; issuing again overwrites it, and
// a successful consume clears it so the token cannot be replayed.
package reset

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rupayana/backend/internal/auth"
	"github.com/rupayana/backend/internal/events"
	"github.com/rupayana/backend/internal/storage"
)

var (
	// ErrInvalidToken covers a mismatched, absent, or already-used token.
	ErrInvalidToken = errors.New("invalid reset token")

	// ErrTokenExpired indicates the token window has passed.
	ErrTokenExpired = errors.New("reset token expired")
)

// tokenBytes yields 128 bits of entropy per token.
const tokenBytes = 16

// Manager owns the reset-token fields on user records.
type Manager struct {
	users     storage.UserStore
	publisher events.Publisher
	ttl       time.Duration
	now       func() time.Time
}

// NewManager builds a manager with the given token lifetime. publisher may
// be nil; issued-token events are then discarded.
func NewManager(users storage.UserStore, publisher events.Publisher, ttl time.Duration) *Manager {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Manager{users: users, publisher: publisher, ttl: ttl, now: time.Now}
}

// Issue generates a fresh token for the account and stores it with an
// expiry one TTL from now, replacing any prior token. The token is handed
// to the notifier; delivery is not this package's concern.
func (m *Manager) Issue(ctx context.Context, email string) (string, error) {
	user, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)
	expiry := m.now().Add(m.ttl)

	if err := m.users.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return "", err
	}

	event := events.ResetTokenIssued{Email: user.Email, Token: token, ExpiresAt: expiry}
	if err := m.publisher.Publish(events.TopicResetTokenIssued, event); err != nil {
		log.Printf("publish %s: %v", events.TopicResetTokenIssued, err)
	}
	return token, nil
}

// Consume validates the token and, on success, atomically stores the new
// password hash and clears the token so it cannot be used again.
func (m *Manager) Consume(ctx context.Context, email, token, newPassword string) error {
	user, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.ResetToken == "" || subtle.ConstantTimeCompare([]byte(user.ResetToken), []byte(token)) != 1 {
		return ErrInvalidToken
	}
	if user.ResetExpiry == nil || m.now().After(*user.ResetExpiry) {
		return ErrTokenExpired
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	// The store re-checks the token inside the write itself, so a
	// concurrent consume that won the race leaves this one with a
	// mismatch instead of a second success.
	if err := m.users.ConsumeResetToken(ctx, user.ID, token, hash); err != nil {
		if errors.Is(err, storage.ErrTokenMismatch) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}
