// Package slots implements the three-reel slot machine game.
package slots

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"discord-lootbox-bot/internal/game"
	"discord-lootbox-bot/internal/model"
)

// DefaultMaxBet is the maximum allowed bet when none is configured.
const DefaultMaxBet = 1000

// winMultiplier is the payout factor when all three reels match.
const winMultiplier = 3

// Symbols are the reel faces; each reel draws uniformly from this set.
var Symbols = []string{"🍒", "🍋", "🍇", "🔔", "7️⃣"}

// Errors for the slots game.
var (
	ErrInvalidBet          = errors.New("bet amount must be positive")
	ErrBetTooHigh          = errors.New("bet exceeds maximum allowed")
	ErrInsufficientBalance = errors.New("balance too low for this bet")
)

// SlotGame implements game.Game for the slot machine. A spin is a single
// round: three uniform symbol draws settled immediately against the ledger.
type SlotGame struct {
	ledger game.Ledger
	maxBet int64

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a SlotGame. The random source is injected so tests can seed it.
func New(ledger game.Ledger, maxBet int64, rnd *rand.Rand) *SlotGame {
	if maxBet <= 0 {
		maxBet = DefaultMaxBet
	}
	return &SlotGame{ledger: ledger, maxBet: maxBet, rnd: rnd}
}

// Name returns the game's display name.
func (s *SlotGame) Name() string {
	return "Slot Machine"
}

// Command returns the command that triggers this game.
func (s *SlotGame) Command() string {
	return "slots"
}

// Description returns a brief description of the game.
func (s *SlotGame) Description() string {
	return "Spin three reels: 3 matches pays 3x, 2 matches is a push, no match loses the bet"
}

// MaxBet returns the maximum allowed bet.
func (s *SlotGame) MaxBet() int64 {
	return s.maxBet
}

// ValidateBet checks if the bet amount is valid.
func (s *SlotGame) ValidateBet(bet int64) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if bet > s.maxBet {
		return fmt.Errorf("%w: max bet is %d", ErrBetTooHigh, s.maxBet)
	}
	return nil
}

// Play spins the reels once and settles the round. The bet must be covered
// by the current balance, so a loss never reaches the ledger's zero clamp.
func (s *SlotGame) Play(ctx context.Context, userID string, bet int64) (*game.Result, error) {
	if err := s.ValidateBet(bet); err != nil {
		return nil, err
	}
	if s.ledger.Balance(ctx, userID) < bet {
		return nil, ErrInsufficientBalance
	}

	reels := s.spin()

	var payout int64
	var description string

	switch matches(reels) {
	case 3:
		payout = bet * winMultiplier
		description = "Jackpot! Three of a kind"
	case 2:
		payout = 0
		description = "Two of a kind, push"
	default:
		payout = -bet
		description = "No match"
	}

	balance, err := s.settle(ctx, userID, payout)
	if err != nil {
		return nil, err
	}

	return &game.Result{
		Payout:      payout,
		NewBalance:  balance,
		Description: description,
		Details: map[string]any{
			"reels": reels,
		},
	}, nil
}

func (s *SlotGame) spin() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	reels := make([]string, 3)
	for i := range reels {
		reels[i] = Symbols[s.rnd.Intn(len(Symbols))]
	}
	return reels
}

func (s *SlotGame) settle(ctx context.Context, userID string, payout int64) (int64, error) {
	switch {
	case payout > 0:
		s.ledger.IncrementStat(ctx, userID, model.StatSlotsWins)
		return s.ledger.Credit(ctx, userID, payout, model.TxTypeSlots)
	case payout < 0:
		return s.ledger.Debit(ctx, userID, -payout, model.TxTypeSlots)
	default:
		return s.ledger.Balance(ctx, userID), nil
	}
}

// matches counts the best symbol multiplicity across the three reels.
func matches(reels []string) int {
	counts := make(map[string]int, len(reels))
	best := 0
	for _, r := range reels {
		counts[r]++
		if counts[r] > best {
			best = counts[r]
		}
	}
	return best
}
