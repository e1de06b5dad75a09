// Package game defines the common interface and registry for wager games.
package game

import "context"

// Result represents the settled outcome of a single game round.
type Result struct {
	Payout      int64          // Net payout (positive = win, negative = loss, 0 = push)
	NewBalance  int64          // Balance after settlement
	Description string         // Human-readable result description
	Details     map[string]any // Additional game-specific details
}

// Ledger is the balance surface games settle against.
type Ledger interface {
	Balance(ctx context.Context, userID string) int64
	Credit(ctx context.Context, userID string, amount int64, txType string) (int64, error)
	Debit(ctx context.Context, userID string, amount int64, txType string) (int64, error)
	IncrementStat(ctx context.Context, userID, stat string)
}

// Game defines the interface that single-round games implement. Adding a new
// game only requires implementing this interface and registering it.
type Game interface {
	// Name returns the game's display name (e.g., "Slot Machine").
	Name() string

	// Command returns the command that triggers this game (e.g., "slots").
	Command() string

	// Description returns a brief description of the game.
	Description() string

	// Play validates the wager, runs one round and settles it against the
	// ledger. The returned Result describes the settled round.
	Play(ctx context.Context, userID string, bet int64) (*Result, error)

	// ValidateBet checks if the bet amount is valid for this game.
	ValidateBet(bet int64) error

	// MaxBet returns the maximum allowed bet, 0 for no maximum.
	MaxBet() int64
}
