package events

import (
	"time"
)

// Topics published by the core.
const (
	TopicTransactionCompleted = "transaction_completed"
	TopicResetTokenIssued     = "reset_token_issued"
)

// Publisher delivers domain notifications to an external system. The core
// treats delivery as best-effort: publish failures are logged by callers,
// never surfaced as operation failures.
type Publisher interface {
	Publish(topic string, event any) error
}

// TransactionCompleted is emitted after a ledger operation commits.
type TransactionCompleted struct {
	TransactionID string    `json:"transaction_id"`
	FromEmail     string    `json:"from_email,omitempty"`
	ToEmail       string    `json:"to_email,omitempty"`
	Amount        int64     `json:"amount"`
	Kind          string    `json:"kind"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ResetTokenIssued is emitted when a password-reset token is created.
// Whatever consumes the topic owns delivering the token to the user.
type ResetTokenIssued struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Noop discards every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(string, any) error { return nil }
