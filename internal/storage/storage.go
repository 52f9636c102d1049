package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rupayana/backend/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInsufficientFunds indicates a debit would drive a balance negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrTokenMismatch indicates the stored reset token differs from the one
// presented, or was already cleared.
var ErrTokenMismatch = errors.New("reset token mismatch")

// BalanceDelta is one signed balance change applied by the ledger.
type BalanceDelta struct {
	UserID int64
	Amount int64
}

// UserStore captures persistence operations over account records.
// Email lookups are case-insensitive.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	UpdateProfile(ctx context.Context, id int64, name, phone *string) (models.User, error)
	SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error
	// ConsumeResetToken stores the new password hash and clears the reset
	// token in one write, and only when the stored token still equals the
	// one presented. Concurrent consumes of the same token therefore
	// produce exactly one winner; losers get ErrTokenMismatch.
	ConsumeResetToken(ctx context.Context, id int64, token, passwordHash string) error
}

// LedgerStore captures the balance-affecting operations. AdjustBalance is
// the single balance-mutation primitive: it applies the delta only when the
// resulting balance stays non-negative, and returns ErrInsufficientFunds
// otherwise. ExecTransaction applies every delta and appends the transaction
// as one atomic unit; on any failure no balance changes and no log entry
// persist.
type LedgerStore interface {
	AdjustBalance(ctx context.Context, id int64, delta int64) error
	ExecTransaction(ctx context.Context, deltas []BalanceDelta, txn models.Transaction) error
	ListTransactions(ctx context.Context, email string) ([]models.Transaction, error)
}

// Store is the full persistence surface the process wires once at startup.
type Store interface {
	UserStore
	LedgerStore
}
