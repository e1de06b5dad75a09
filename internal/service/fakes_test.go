package service

import (
	"context"
	"errors"
	"sync"

	"discord-lootbox-bot/internal/model"
	"discord-lootbox-bot/internal/repository"
)

// fakeAccountStore is an in-memory AccountStore with optional failure
// injection for exercising the fire-and-forget persistence contract.
type fakeAccountStore struct {
	mu       sync.Mutex
	rows     map[string]*model.Account
	failNext bool
	upserts  int
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{rows: make(map[string]*model.Account)}
}

func (f *fakeAccountStore) Get(_ context.Context, userID string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.rows[userID]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (f *fakeAccountStore) Upsert(_ context.Context, acc *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("store unreachable")
	}
	f.rows[acc.UserID] = acc.Clone()
	f.upserts++
	return nil
}

func (f *fakeAccountStore) List(_ context.Context) ([]*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts := make([]*model.Account, 0, len(f.rows))
	for _, acc := range f.rows {
		accounts = append(accounts, acc.Clone())
	}
	return accounts, nil
}

func (f *fakeAccountStore) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *fakeAccountStore) persisted(userID string) *model.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if acc, ok := f.rows[userID]; ok {
		return acc.Clone()
	}
	return nil
}

// fakeTxStore records audit transactions in memory.
type fakeTxStore struct {
	mu      sync.Mutex
	records []model.Transaction
}

func (f *fakeTxStore) Create(_ context.Context, userID string, amount int64, txType string, description *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, model.Transaction{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
	})
	return nil
}

func (f *fakeTxStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeRoleManager records role mutations; it can fail on demand.
type fakeRoleManager struct {
	mu      sync.Mutex
	granted []string
	revoked []string
	failAll bool
}

func (f *fakeRoleManager) GrantRole(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("member not found")
	}
	f.granted = append(f.granted, userID)
	return nil
}

func (f *fakeRoleManager) RevokeRole(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("member not found")
	}
	f.revoked = append(f.revoked, userID)
	return nil
}

func (f *fakeRoleManager) revokedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.revoked)
}
