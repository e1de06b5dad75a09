package slots

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discord-lootbox-bot/internal/model"
)

// fakeLedger is a minimal in-memory game.Ledger.
type fakeLedger struct {
	balances map[string]int64
	stats    map[string]int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]int64), stats: make(map[string]int64)}
}

func (f *fakeLedger) Balance(_ context.Context, userID string) int64 {
	return f.balances[userID]
}

func (f *fakeLedger) Credit(_ context.Context, userID string, amount int64, _ string) (int64, error) {
	f.balances[userID] += amount
	return f.balances[userID], nil
}

func (f *fakeLedger) Debit(_ context.Context, userID string, amount int64, _ string) (int64, error) {
	if amount > f.balances[userID] {
		amount = f.balances[userID]
	}
	f.balances[userID] -= amount
	return f.balances[userID], nil
}

func (f *fakeLedger) IncrementStat(_ context.Context, userID, stat string) {
	f.stats[userID+"/"+stat]++
}

func TestValidateBet(t *testing.T) {
	g := New(newFakeLedger(), 100, rand.New(rand.NewSource(1)))

	tests := []struct {
		name    string
		bet     int64
		wantErr error
	}{
		{"valid", 50, nil},
		{"zero", 0, ErrInvalidBet},
		{"negative", -5, ErrInvalidBet},
		{"at max", 100, nil},
		{"over max", 101, ErrBetTooHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateBet(tt.bet)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPlayRejectsUncoveredBet(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances["100"] = 10
	g := New(ledger, 100, rand.New(rand.NewSource(1)))

	_, err := g.Play(context.Background(), "100", 20)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(10), ledger.balances["100"], "rejected spin must not touch the balance")
}

func TestPlaySettlementAccounting(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances["100"] = 1_000_000
	g := New(ledger, 100, rand.New(rand.NewSource(42)))
	ctx := context.Background()

	const bet = int64(10)
	jackpots := 0
	for i := 0; i < 1000; i++ {
		before := ledger.balances["100"]
		res, err := g.Play(ctx, "100", bet)
		require.NoError(t, err)

		assert.Contains(t, []int64{bet * winMultiplier, 0, -bet}, res.Payout)
		assert.Equal(t, before+res.Payout, res.NewBalance, "payout must equal the balance delta")
		assert.Equal(t, res.NewBalance, ledger.balances["100"])
		require.Len(t, res.Details["reels"], 3)

		if res.Payout > 0 {
			jackpots++
		}
	}

	// P(three of a kind) = 1/25 per spin, so 1000 spins all but guarantee one.
	assert.Greater(t, jackpots, 0)
	assert.Equal(t, int64(jackpots), ledger.stats["100/"+model.StatSlotsWins])
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name  string
		reels []string
		want  int
	}{
		{"three of a kind", []string{"🍒", "🍒", "🍒"}, 3},
		{"pair first", []string{"🍒", "🍒", "🍋"}, 2},
		{"pair split", []string{"🍒", "🍋", "🍒"}, 2},
		{"all distinct", []string{"🍒", "🍋", "🍇"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matches(tt.reels))
		})
	}
}
