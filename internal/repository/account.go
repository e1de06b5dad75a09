// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"discord-lootbox-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrAccountNotFound = errors.New("account not found")
)

// AccountRepository handles account persistence. Every write is an upsert;
// a missing row is equivalent to an all-zero account.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository instance.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Get retrieves an account by Discord user ID.
// Returns ErrAccountNotFound if no row exists.
func (r *AccountRepository) Get(ctx context.Context, userID string) (*model.Account, error) {
	const query = `
		SELECT user_id, balance, privilege_expires_at, stats, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var acc model.Account
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&acc.UserID,
		&acc.Balance,
		&acc.PrivilegeExpiresAt,
		&acc.Stats,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if acc.Stats == nil {
		acc.Stats = make(map[string]int64)
	}

	return &acc, nil
}

// Upsert writes the full account state, inserting or replacing the row.
func (r *AccountRepository) Upsert(ctx context.Context, acc *model.Account) error {
	const query = `
		INSERT INTO accounts (user_id, balance, privilege_expires_at, stats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			balance = $2,
			privilege_expires_at = $3,
			stats = $4,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, acc.UserID, acc.Balance, acc.PrivilegeExpiresAt, acc.Stats)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

// List retrieves every persisted account. Used to warm the ledger cache on
// startup and by the startup privilege reconciliation.
func (r *AccountRepository) List(ctx context.Context) ([]*model.Account, error) {
	const query = `
		SELECT user_id, balance, privilege_expires_at, stats, created_at, updated_at
		FROM accounts
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		var acc model.Account
		err := rows.Scan(
			&acc.UserID,
			&acc.Balance,
			&acc.PrivilegeExpiresAt,
			&acc.Stats,
			&acc.CreatedAt,
			&acc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if acc.Stats == nil {
			acc.Stats = make(map[string]int64)
		}
		accounts = append(accounts, &acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}
