// Package ledger executes every balance-affecting operation as one atomic
// unit: balance deltas plus an appended transaction-log entry commit
// together or not at all. Committed operations on the same account form a
// total order; concurrent debits can never observe a stale balance check.
package ledger

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rupayana/backend/internal/events"
	"github.com/rupayana/backend/internal/models"
	"github.com/rupayana/backend/internal/storage"
)

// Ledger is the sole writer of account balances and the transaction log.
type Ledger struct {
	store     storage.LedgerStore
	users     storage.UserStore
	publisher events.Publisher

	mapMu sync.Mutex
	muMap map[int64]*sync.Mutex // one mutex per account id
}

// New wires the engine to its store. publisher may be nil; events are then
// discarded.
func New(store storage.LedgerStore, users storage.UserStore, publisher events.Publisher) *Ledger {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Ledger{
		store:     store,
		users:     users,
		publisher: publisher,
		muMap:     make(map[int64]*sync.Mutex),
	}
}

func (l *Ledger) accountLock(id int64) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	mu, ok := l.muMap[id]
	if !ok {
		mu = &sync.Mutex{}
		l.muMap[id] = mu
	}
	return mu
}

// lockAccounts acquires the per-account mutexes in ascending id order, so
// two concurrent opposite-direction transfers cannot deadlock. The returned
// func releases them.
func (l *Ledger) lockAccounts(ids ...int64) func() {
	ordered := make([]int64, len(ids))
	copy(ordered, ids)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	locked := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		mu := l.accountLock(id)
		mu.Lock()
		locked = append(locked, mu)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

// Transfer moves amount from one account to another and appends one
// transaction. Either both balances change and the entry persists, or
// nothing does.
func (l *Ledger) Transfer(ctx context.Context, fromEmail, toEmail string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	if strings.EqualFold(strings.TrimSpace(fromEmail), strings.TrimSpace(toEmail)) {
		return models.Transaction{}, ErrSameAccount
	}

	from, err := l.users.FindByEmail(ctx, fromEmail)
	if err != nil {
		return models.Transaction{}, err
	}
	to, err := l.users.FindByEmail(ctx, toEmail)
	if err != nil {
		return models.Transaction{}, err
	}

	unlock := l.lockAccounts(from.ID, to.ID)
	defer unlock()

	txn := models.Transaction{
		ID:        uuid.New().String(),
		FromEmail: from.Email,
		ToEmail:   to.Email,
		Amount:    amount,
		Kind:      models.KindTransfer,
		CreatedAt: time.Now(),
	}
	deltas := []storage.BalanceDelta{
		{UserID: from.ID, Amount: -amount},
		{UserID: to.ID, Amount: amount},
	}
	if err := l.store.ExecTransaction(ctx, deltas, txn); err != nil {
		return models.Transaction{}, err
	}

	l.publishCompleted(txn)
	return txn, nil
}

// BillPay debits the account and records the biller in the entry details.
func (l *Ledger) BillPay(ctx context.Context, email, biller string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}

	user, err := l.users.FindByEmail(ctx, email)
	if err != nil {
		return models.Transaction{}, err
	}

	unlock := l.lockAccounts(user.ID)
	defer unlock()

	txn := models.Transaction{
		ID:        uuid.New().String(),
		FromEmail: user.Email,
		Amount:    amount,
		Kind:      models.KindBillPay,
		Details:   biller,
		CreatedAt: time.Now(),
	}
	deltas := []storage.BalanceDelta{{UserID: user.ID, Amount: -amount}}
	if err := l.store.ExecTransaction(ctx, deltas, txn); err != nil {
		return models.Transaction{}, err
	}

	l.publishCompleted(txn)
	return txn, nil
}

// Deposit credits the account with no balance precondition. Used by the
// registration bootstrap and administrative credits.
func (l *Ledger) Deposit(ctx context.Context, email string, amount int64, source string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}

	user, err := l.users.FindByEmail(ctx, email)
	if err != nil {
		return models.Transaction{}, err
	}

	unlock := l.lockAccounts(user.ID)
	defer unlock()

	txn := models.Transaction{
		ID:        uuid.New().String(),
		ToEmail:   user.Email,
		Amount:    amount,
		Kind:      models.KindDeposit,
		Details:   source,
		CreatedAt: time.Now(),
	}
	deltas := []storage.BalanceDelta{{UserID: user.ID, Amount: amount}}
	if err := l.store.ExecTransaction(ctx, deltas, txn); err != nil {
		return models.Transaction{}, err
	}

	l.publishCompleted(txn)
	return txn, nil
}

// History returns the account's transactions, newest first. The ordering is
// derived from creation time with ties broken by id, so repeating the query
// yields the same sequence.
func (l *Ledger) History(ctx context.Context, email string) ([]models.Transaction, error) {
	if _, err := l.users.FindByEmail(ctx, email); err != nil {
		return nil, err
	}
	return l.store.ListTransactions(ctx, email)
}

func (l *Ledger) publishCompleted(txn models.Transaction) {
	event := events.TransactionCompleted{
		TransactionID: txn.ID,
		FromEmail:     txn.FromEmail,
		ToEmail:       txn.ToEmail,
		Amount:        txn.Amount,
		Kind:          txn.Kind,
		OccurredAt:    txn.CreatedAt,
	}
	if err := l.publisher.Publish(events.TopicTransactionCompleted, event); err != nil {
		log.Printf("publish %s: %v", events.TopicTransactionCompleted, err)
	}
}
