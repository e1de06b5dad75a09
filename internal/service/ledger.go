// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"discord-lootbox-bot/internal/model"
	"discord-lootbox-bot/internal/repository"
)

// persistTimeout bounds each background durable write.
const persistTimeout = 10 * time.Second

// AccountStore is the durable side of the ledger.
type AccountStore interface {
	Get(ctx context.Context, userID string) (*model.Account, error)
	Upsert(ctx context.Context, acc *model.Account) error
	List(ctx context.Context) ([]*model.Account, error)
}

// TransactionStore records balance change audit entries.
type TransactionStore interface {
	Create(ctx context.Context, userID string, amount int64, txType string, description *string) error
}

// Ledger owns per-user balances and stats. The in-memory cache is the commit
// point: mutations apply synchronously and the durable write is a best-effort
// replication step issued on a goroutine. A failed write is logged and
// repaired by the periodic Flush, never rolled back.
type Ledger struct {
	mu    sync.Mutex
	cache map[string]*model.Account
	store AccountStore
	txs   TransactionStore

	persisting sync.WaitGroup
}

// NewLedger creates a Ledger backed by the given stores.
func NewLedger(store AccountStore, txs TransactionStore) *Ledger {
	return &Ledger{
		cache: make(map[string]*model.Account),
		store: store,
		txs:   txs,
	}
}

// LoadAll warms the cache with every persisted account. Called once at
// startup before any command is handled.
func (l *Ledger) LoadAll(ctx context.Context) (int, error) {
	accounts, err := l.store.List(ctx)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, acc := range accounts {
		l.cache[acc.UserID] = acc
	}
	return len(accounts), nil
}

// Account returns a copy of the account for a user, lazily materializing it:
// the durable store is consulted first, then a zero-balance account is
// created. A store read failure also falls back to a zero account, since the
// cache is authoritative for the running process. Callers only ever see
// copies; mutation goes through Credit, Debit, IncrementStat and Update.
func (l *Ledger) Account(ctx context.Context, userID string) *model.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accountLocked(ctx, userID).Clone()
}

// Cached returns a copy of the account if it is already in the cache. Unlike
// Account it never materializes one or consults the store.
func (l *Ledger) Cached(userID string) (*model.Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.cache[userID]
	if !ok {
		return nil, false
	}
	return acc.Clone(), true
}

func (l *Ledger) accountLocked(ctx context.Context, userID string) *model.Account {
	if acc, ok := l.cache[userID]; ok {
		return acc
	}

	acc, err := l.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrAccountNotFound) {
			log.Warn().Err(err).Str("user_id", userID).
				Msg("Account read failed, materializing zero account")
		}
		acc = model.NewAccount(userID)
	}
	if acc.Stats == nil {
		acc.Stats = make(map[string]int64)
	}

	l.cache[userID] = acc
	return acc
}

// Balance returns a user's current balance.
func (l *Ledger) Balance(ctx context.Context, userID string) int64 {
	return l.Account(ctx, userID).Balance
}

// Credit adds amount to a user's balance and returns the new balance.
// The cache mutation is synchronous; the durable write is asynchronous.
func (l *Ledger) Credit(ctx context.Context, userID string, amount int64, txType string) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	acc := l.accountLocked(ctx, userID)
	acc.Balance += amount
	acc.UpdatedAt = time.Now()
	balance := acc.Balance
	snapshot := acc.Clone()
	l.mu.Unlock()

	l.persistAsync(snapshot, amount, txType)
	return balance, nil
}

// Debit subtracts amount from a user's balance and returns the new balance.
// The result is floor-clamped at zero: purchase paths pre-validate
// sufficiency and never hit the clamp, wager settlement relies on it.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int64, txType string) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	acc := l.accountLocked(ctx, userID)
	debited := amount
	if debited > acc.Balance {
		debited = acc.Balance
	}
	acc.Balance -= debited
	acc.UpdatedAt = time.Now()
	balance := acc.Balance
	snapshot := acc.Clone()
	l.mu.Unlock()

	l.persistAsync(snapshot, -debited, txType)
	return balance, nil
}

// IncrementStat bumps a named counter on the account.
func (l *Ledger) IncrementStat(ctx context.Context, userID, stat string) {
	l.mu.Lock()
	acc := l.accountLocked(ctx, userID)
	acc.Stats[stat]++
	acc.UpdatedAt = time.Now()
	snapshot := acc.Clone()
	l.mu.Unlock()

	l.persistAsync(snapshot, 0, "")
}

// Update applies fn to the account under the ledger lock, then persists the
// result asynchronously. Used for privilege expiry changes.
func (l *Ledger) Update(ctx context.Context, userID string, fn func(*model.Account)) {
	l.mu.Lock()
	acc := l.accountLocked(ctx, userID)
	fn(acc)
	acc.UpdatedAt = time.Now()
	snapshot := acc.Clone()
	l.mu.Unlock()

	l.persistAsync(snapshot, 0, "")
}

// UpdateIf applies fn to the account under the ledger lock and reports
// whether fn committed a change. When fn returns false nothing is persisted.
// Revocation paths use it so the liveness check and the clear are one
// critical section: of two racing revokers exactly one observes the grant.
func (l *Ledger) UpdateIf(ctx context.Context, userID string, fn func(*model.Account) bool) bool {
	l.mu.Lock()
	acc := l.accountLocked(ctx, userID)
	if !fn(acc) {
		l.mu.Unlock()
		return false
	}
	acc.UpdatedAt = time.Now()
	snapshot := acc.Clone()
	l.mu.Unlock()

	l.persistAsync(snapshot, 0, "")
	return true
}

// Snapshot returns a copy of every cached account.
func (l *Ledger) Snapshot() []*model.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts := make([]*model.Account, 0, len(l.cache))
	for _, acc := range l.cache {
		accounts = append(accounts, acc.Clone())
	}
	return accounts
}

// Flush upserts every cached account to the durable store. This is the
// autosave backstop that repairs any per-action write that failed.
func (l *Ledger) Flush(ctx context.Context) error {
	var errs []error
	for _, acc := range l.Snapshot() {
		if err := l.store.Upsert(ctx, acc); err != nil {
			errs = append(errs, err)
			log.Error().Err(err).Str("user_id", acc.UserID).Msg("Autosave upsert failed")
		}
	}
	return errors.Join(errs...)
}

// WaitPersisted blocks until all in-flight background writes complete.
// Used by tests and graceful shutdown.
func (l *Ledger) WaitPersisted() {
	l.persisting.Wait()
}

// persistAsync replicates the account snapshot to the durable store without
// blocking the event path. A non-zero amount also records an audit
// transaction. Failures are logged; the cache remains authoritative.
func (l *Ledger) persistAsync(snapshot *model.Account, amount int64, txType string) {
	l.persisting.Add(1)
	go func() {
		defer l.persisting.Done()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := l.store.Upsert(ctx, snapshot); err != nil {
			log.Error().Err(err).Str("user_id", snapshot.UserID).
				Msg("Durable write failed, will be repaired by autosave")
			return
		}

		if amount != 0 && txType != "" && l.txs != nil {
			if err := l.txs.Create(ctx, snapshot.UserID, amount, txType, nil); err != nil {
				log.Warn().Err(err).Str("user_id", snapshot.UserID).
					Msg("Transaction audit record failed")
			}
		}
	}()
}
