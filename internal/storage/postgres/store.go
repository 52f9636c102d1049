package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rupayana/backend/internal/models"
	"github.com/rupayana/backend/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const userColumns = `id, name, email, phone, password_hash, balance, reset_token, reset_expiry, created_at`

// Store provides Postgres-backed persistence for accounts and the
// transaction log.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects a pool and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
			reset_token TEXT NOT NULL DEFAULT '',
			reset_expiry TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS balance BIGINT NOT NULL DEFAULT 0;`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS reset_token TEXT NOT NULL DEFAULT '';`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS reset_expiry TIMESTAMPTZ;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (LOWER(email));`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			from_email TEXT NOT NULL DEFAULT '',
			to_email TEXT NOT NULL DEFAULT '',
			amount BIGINT NOT NULL CHECK (amount > 0),
			kind TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS transactions_from_email_idx ON transactions (LOWER(from_email));`,
		`CREATE INDEX IF NOT EXISTS transactions_to_email_idx ON transactions (LOWER(to_email));`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new account row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (name, email, phone, password_hash, balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns + `;`
	row := s.pool.QueryRow(ctx, query, user.Name, user.Email, user.Phone, user.PasswordHash, user.Balance)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByEmail fetches an account by email, case-insensitively.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1);`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// FindByID fetches an account by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// UpdateProfile applies a partial update of name and phone.
func (s *Store) UpdateProfile(ctx context.Context, id int64, name, phone *string) (models.User, error) {
	const query = `
		UPDATE users
		SET name = COALESCE($2, name), phone = COALESCE($3, phone)
		WHERE id = $1
		RETURNING ` + userColumns + `;`
	return scanUser(s.pool.QueryRow(ctx, query, id, name, phone))
}

// SetResetToken overwrites any prior token and expiry for the account.
func (s *Store) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	const query = `UPDATE users SET reset_token = $2, reset_expiry = $3 WHERE id = $1;`
	tag, err := s.pool.Exec(ctx, query, id, token, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ConsumeResetToken stores the new hash and clears the token, guarded by a
// token-equality predicate in the WHERE clause. The check and the clear are
// one atomic statement, so two concurrent consumes of the same token cannot
// both succeed.
func (s *Store) ConsumeResetToken(ctx context.Context, id int64, token, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $3, reset_token = '', reset_expiry = NULL
		WHERE id = $1 AND reset_token <> '' AND reset_token = $2;`
	tag, err := s.pool.Exec(ctx, query, id, token, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrTokenMismatch
	}
	return nil
}

// AdjustBalance applies the delta only when the resulting balance stays
// non-negative. The guard lives in the WHERE clause so the check and the
// write are one atomic statement.
func (s *Store) AdjustBalance(ctx context.Context, id int64, delta int64) error {
	return adjustBalance(ctx, s.pool, id, delta)
}

// execer covers both the pool and a pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func adjustBalance(ctx context.Context, db execer, id int64, delta int64) error {
	const query = `UPDATE users SET balance = balance + $2 WHERE id = $1 AND balance + $2 >= 0;`
	tag, err := db.Exec(ctx, query, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing account from a failed balance guard.
		exists, qerr := userExists(ctx, db, id)
		if qerr != nil {
			return qerr
		}
		if !exists {
			return storage.ErrNotFound
		}
		return storage.ErrInsufficientFunds
	}
	return nil
}

func userExists(ctx context.Context, db execer, id int64) (bool, error) {
	q, ok := db.(interface {
		QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	})
	if !ok {
		return false, fmt.Errorf("store: exec handle cannot query")
	}
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1);`, id).Scan(&exists)
	return exists, err
}

// ExecTransaction applies every balance delta and appends the transaction
// log entry inside a single database transaction. Rows are updated in
// ascending account ID order so two concurrent opposite-direction transfers
// cannot deadlock.
func (s *Store) ExecTransaction(ctx context.Context, deltas []storage.BalanceDelta, txn models.Transaction) error {
	dbTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	ordered := make([]storage.BalanceDelta, len(deltas))
	copy(ordered, deltas)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].UserID < ordered[j].UserID })

	for _, d := range ordered {
		if err := adjustBalance(ctx, dbTx, d.UserID, d.Amount); err != nil {
			return err
		}
	}

	const insert = `
		INSERT INTO transactions (id, from_email, to_email, amount, kind, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`
	if _, err := dbTx.Exec(ctx, insert,
		txn.ID, txn.FromEmail, txn.ToEmail, txn.Amount, txn.Kind, txn.Details, txn.CreatedAt); err != nil {
		return err
	}

	return dbTx.Commit(ctx)
}

// ListTransactions returns the account's ledger entries, newest first.
// Ordering is by creation time with ties broken by id, so re-querying
// derives the same sequence.
func (s *Store) ListTransactions(ctx context.Context, email string) ([]models.Transaction, error) {
	const query = `
		SELECT id, from_email, to_email, amount, kind, details, created_at
		FROM transactions
		WHERE LOWER(from_email) = LOWER($1) OR LOWER(to_email) = LOWER($1)
		ORDER BY created_at DESC, id DESC;`
	rows, err := s.pool.Query(ctx, query, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.FromEmail, &t.ToEmail, &t.Amount, &t.Kind, &t.Details, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash,
		&user.Balance, &user.ResetToken, &user.ResetExpiry, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
