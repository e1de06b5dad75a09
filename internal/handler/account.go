package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"discord-lootbox-bot/internal/model"
	"discord-lootbox-bot/internal/service"
)

// AccountHandler handles balance and leaderboard commands.
type AccountHandler struct {
	ledger      *service.Ledger
	leaderboard *service.LeaderboardService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledger *service.Ledger, leaderboard *service.LeaderboardService) *AccountHandler {
	return &AccountHandler{ledger: ledger, leaderboard: leaderboard}
}

// HandleBalance replies with the user's balance, privilege state and stats.
func (h *AccountHandler) HandleBalance(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	acc := h.ledger.Account(ctx, m.Author.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "💰 Balance: **%d** coins", acc.Balance)
	if acc.HasPrivilege(time.Now()) {
		fmt.Fprintf(&b, "\n⭐ VIP until <t:%d>", acc.PrivilegeExpiresAt.Unix())
	}
	if wins := acc.Stats[model.StatBlackjackWins]; wins > 0 {
		fmt.Fprintf(&b, "\n🃏 Blackjack wins: %d", wins)
	}
	if wins := acc.Stats[model.StatSlotsWins]; wins > 0 {
		fmt.Fprintf(&b, "\n🎰 Slots wins: %d", wins)
	}

	replyTo(s, m, b.String())
}

// HandleLeaderboard replies with the top balances plus the requester's own
// rank when outside the top.
func (h *AccountHandler) HandleLeaderboard(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	board := h.leaderboard.Top(ctx, m.Author.ID)

	var b strings.Builder
	b.WriteString("🏆 **Leaderboard**\n")
	for _, e := range board.Top {
		fmt.Fprintf(&b, "%d. %s — %d coins\n", e.Rank, mention(e.UserID), e.Balance)
	}
	if board.Requester != nil {
		fmt.Fprintf(&b, "...\n%d. %s — %d coins\n",
			board.Requester.Rank, mention(board.Requester.UserID), board.Requester.Balance)
	}

	reply(s, m.ChannelID, b.String())
}
