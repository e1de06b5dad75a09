// Package model defines the data models for the lootbox economy bot.
package model

import "time"

// Account represents a Discord user's economy account.
// The in-memory copy held by the ledger is authoritative for a running
// process; the accounts table is a recovery mirror written asynchronously.
type Account struct {
	UserID             string           `db:"user_id"`
	Balance            int64            `db:"balance"`
	PrivilegeExpiresAt *time.Time       `db:"privilege_expires_at"`
	Stats              map[string]int64 `db:"stats"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

// NewAccount returns a zero-balance account for a user seen for the first time.
func NewAccount(userID string) *Account {
	now := time.Now()
	return &Account{
		UserID:    userID,
		Stats:     make(map[string]int64),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasPrivilege reports whether the account holds a live privilege grant.
func (a *Account) HasPrivilege(now time.Time) bool {
	return a.PrivilegeExpiresAt != nil && a.PrivilegeExpiresAt.After(now)
}

// Clone returns a deep copy safe to hand to a persistence goroutine while the
// original keeps being mutated on the event path.
func (a *Account) Clone() *Account {
	cp := *a
	if a.PrivilegeExpiresAt != nil {
		t := *a.PrivilegeExpiresAt
		cp.PrivilegeExpiresAt = &t
	}
	cp.Stats = make(map[string]int64, len(a.Stats))
	for k, v := range a.Stats {
		cp.Stats[k] = v
	}
	return &cp
}

// Transaction represents a balance change audit record.
type Transaction struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	Amount      int64     `db:"amount"`
	Type        string    `db:"type"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Transaction types for categorizing balance changes.
const (
	TxTypeLootbox    = "lootbox"     // Lootbox draw reward
	TxTypeVipBuy     = "vip_buy"     // VIP privilege purchase
	TxTypeAdminGrant = "admin_grant" // Admin balance grant
	TxTypeBlackjack  = "blackjack"   // Blackjack settlement
	TxTypeSlots      = "slots"       // Slots settlement
)

// Stat counter names stored in the account's stats map.
const (
	StatBlackjackWins = "blackjack_wins"
	StatSlotsWins     = "slots_wins"
)

// StatTier returns the stat counter name for a reward tier.
func StatTier(tier string) string {
	return "tier_" + tier
}
