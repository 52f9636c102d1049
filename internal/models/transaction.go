package models

import "time"

// Transaction kinds recorded in the ledger.
const (
	KindTransfer = "transfer"
	KindBillPay  = "billpay"
	KindDeposit  = "deposit"
)

// Transaction is one committed ledger entry. Entries are append-only:
// once written they are never updated or deleted.
type Transaction struct {
	ID        string    `json:"id"`
	FromEmail string    `json:"from_email,omitempty"`
	ToEmail   string    `json:"to_email,omitempty"`
	Amount    int64     `json:"amount"`
	Kind      string    `json:"kind"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
