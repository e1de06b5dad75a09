package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-lootbox-bot/internal/game"
	"discord-lootbox-bot/internal/game/blackjack"
	"discord-lootbox-bot/internal/pkg/lock"
)

// GameHandler handles wager game commands. Per-user locking serializes a
// user's game actions against each other and against balance mutations from
// other commands.
type GameHandler struct {
	registry  *game.Registry
	blackjack *blackjack.Engine
	userLock  *lock.UserLock
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(registry *game.Registry, engine *blackjack.Engine, userLock *lock.UserLock) *GameHandler {
	return &GameHandler{registry: registry, blackjack: engine, userLock: userLock}
}

// HandleGame runs one round of a registered single-round game, e.g.
// "!slots 20".
func (h *GameHandler) HandleGame(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, command string, args []string) {
	g, ok := h.registry.Get(command)
	if !ok {
		return
	}

	bet, err := parseBet(args)
	if err != nil {
		replyTo(s, m, fmt.Sprintf("❌ Usage: !%s <bet>", command))
		return
	}

	userID := m.Author.ID
	var res *game.Result
	playErr := h.userLock.WithLock(userID, func() error {
		var err error
		res, err = g.Play(ctx, userID, bet)
		return err
	})
	if playErr != nil {
		replyTo(s, m, "❌ "+playErr.Error())
		return
	}

	var b strings.Builder
	if reels, ok := res.Details["reels"].([]string); ok {
		b.WriteString(strings.Join(reels, " | "))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s. Balance: %d", res.Description, res.NewBalance)
	replyTo(s, m, b.String())
}

// HandleBlackjackStart deals a new blackjack round.
func (h *GameHandler) HandleBlackjackStart(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	wager, err := parseBet(args)
	if err != nil {
		replyTo(s, m, "❌ Usage: !blackjack <wager>")
		return
	}

	userID := m.Author.ID
	var round *blackjack.Round
	playErr := h.userLock.WithLock(userID, func() error {
		var err error
		round, err = h.blackjack.Start(ctx, userID, wager)
		return err
	})
	if playErr != nil {
		replyTo(s, m, "❌ "+playErr.Error())
		return
	}

	replyTo(s, m, formatRound(round))
}

// HandleBlackjackHit draws another card for the player.
func (h *GameHandler) HandleBlackjackHit(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	h.resolveAction(ctx, s, m, h.blackjack.Hit)
}

// HandleBlackjackStand ends the player's turn and settles the round.
func (h *GameHandler) HandleBlackjackStand(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	h.resolveAction(ctx, s, m, h.blackjack.Stand)
}

func (h *GameHandler) resolveAction(
	ctx context.Context,
	s *discordgo.Session,
	m *discordgo.MessageCreate,
	action func(context.Context, string) (*blackjack.Round, error),
) {
	userID := m.Author.ID
	var round *blackjack.Round
	actErr := h.userLock.WithLock(userID, func() error {
		var err error
		round, err = action(ctx, userID)
		return err
	})
	switch {
	case errors.Is(actErr, blackjack.ErrNoSession):
		replyTo(s, m, "❌ No blackjack round in progress. Start one with !blackjack <wager>.")
	case actErr != nil:
		log.Error().Err(actErr).Str("user_id", userID).Msg("Blackjack action failed")
		replyTo(s, m, "❌ "+actErr.Error())
	default:
		replyTo(s, m, formatRound(round))
	}
}

// formatRound renders a blackjack round. While the round is still playing
// only the dealer's up card is shown.
func formatRound(r *blackjack.Round) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🃏 Your hand: %s (%d)\n", formatHand(r.Player), r.PlayerValue)

	if r.State == blackjack.StatePlaying {
		fmt.Fprintf(&b, "Dealer shows: %s ❓\n", r.Dealer[0])
		b.WriteString("!hit or !stand?")
		return b.String()
	}

	fmt.Fprintf(&b, "Dealer hand: %s (%d)\n", formatHand(r.Dealer), r.DealerValue)

	switch r.State {
	case blackjack.StateWon:
		fmt.Fprintf(&b, "🎉 You win %d! Balance: %d", r.Payout, r.NewBalance)
	case blackjack.StateLost:
		fmt.Fprintf(&b, "💀 You lose %d. Balance: %d", -r.Payout, r.NewBalance)
	default:
		fmt.Fprintf(&b, "🤝 Push. Balance: %d", r.NewBalance)
	}
	return b.String()
}

func formatHand(hand []blackjack.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func parseBet(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("missing bet amount")
	}
	return strconv.ParseInt(args[0], 10, 64)
}
