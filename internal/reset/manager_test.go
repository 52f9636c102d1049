package reset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupayana/backend/internal/auth"
	"github.com/rupayana/backend/internal/models"
	"github.com/rupayana/backend/internal/storage"
	"github.com/rupayana/backend/internal/storage/memory"
)

func newFixture(t *testing.T) (*Manager, *memory.Store, models.User) {
	t.Helper()
	store := memory.NewStore()
	m := NewManager(store, nil, time.Hour)
	hash, err := auth.HashPassword("original-pass")
	require.NoError(t, err)
	u, err := store.CreateUser(context.Background(), models.User{
		Email:        "user@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return m, store, u
}

func TestIssueGeneratesFreshToken(t *testing.T) {
	m, store, u := newFixture(t)
	ctx := context.Background()

	first, err := m.Issue(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Len(t, first, 32) // 128 bits hex-encoded

	// A second issue replaces the first; only one token is ever active.
	second, err := m.Issue(ctx, "User@Example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, second, stored.ResetToken)
	require.NotNil(t, stored.ResetExpiry)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *stored.ResetExpiry, time.Minute)

	assert.Error(t, m.Consume(ctx, "user@example.com", first, "whatever-pass"))

	_, err = m.Issue(ctx, "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConsumeIsSingleUse(t *testing.T) {
	m, store, u := newFixture(t)
	ctx := context.Background()

	token, err := m.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	require.NoError(t, m.Consume(ctx, "user@example.com", token, "brand-new-pass"))

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ResetToken)
	assert.Nil(t, stored.ResetExpiry)
	assert.True(t, auth.VerifyPassword("brand-new-pass", stored.PasswordHash))
	assert.False(t, auth.VerifyPassword("original-pass", stored.PasswordHash))

	// Same token again fails: it was cleared on first consume.
	err = m.Consume(ctx, "user@example.com", token, "another-pass")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConsumeRejectsMismatch(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := m.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	err = m.Consume(ctx, "user@example.com", "deadbeefdeadbeefdeadbeefdeadbeef", "new-pass")
	assert.ErrorIs(t, err, ErrInvalidToken)

	err = m.Consume(ctx, "missing@example.com", "whatever", "new-pass")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConsumeRejectsExpiredToken(t *testing.T) {
	m, _, _ := newFixture(t)
	ctx := context.Background()

	token, err := m.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	// Move the manager clock past the expiry window.
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	err = m.Consume(ctx, "user@example.com", token, "new-pass")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// Many goroutines racing to consume the same token must produce exactly
// one success; the store's guarded clear rejects every other attempt.
func TestConsumeConcurrentSingleWinner(t *testing.T) {
	m, store, u := newFixture(t)
	ctx := context.Background()

	token, err := m.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := m.Consume(ctx, "user@example.com", token, fmt.Sprintf("new-pass-%d", n))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("unexpected consume error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ResetToken)
}

func TestConsumeWithoutIssuedToken(t *testing.T) {
	m, _, _ := newFixture(t)

	err := m.Consume(context.Background(), "user@example.com", "", "new-pass")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
