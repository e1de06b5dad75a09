package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-lootbox-bot/internal/config"
	"discord-lootbox-bot/internal/model"
	"discord-lootbox-bot/internal/service"
)

// AdminHandler handles admin-only commands.
type AdminHandler struct {
	cfg    *config.Config
	ledger *service.Ledger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cfg *config.Config, ledger *service.Ledger) *AdminHandler {
	return &AdminHandler{cfg: cfg, ledger: ledger}
}

// HandleGrant credits coins to a user: "!grant @user 100".
func (h *AdminHandler) HandleGrant(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !h.cfg.IsAdmin(m.Author.ID) {
		replyTo(s, m, "❌ You don't have permission to do that.")
		return
	}

	if len(args) < 2 {
		replyTo(s, m, "❌ Usage: !grant <@user> <amount>")
		return
	}

	targetID, ok := parseUserID(args[0])
	if !ok {
		replyTo(s, m, "❌ Usage: !grant <@user> <amount>")
		return
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		replyTo(s, m, "❌ Amount must be a positive number.")
		return
	}

	balance, err := h.ledger.Credit(ctx, targetID, amount, model.TxTypeAdminGrant)
	if err != nil {
		log.Error().Err(err).Str("user_id", targetID).Msg("Admin grant failed")
		replyTo(s, m, "❌ Grant failed.")
		return
	}

	log.Info().Str("admin_id", m.Author.ID).Str("user_id", targetID).
		Int64("amount", amount).Msg("Admin grant")
	replyTo(s, m, fmt.Sprintf("✅ Granted %d coins to %s (balance %d).", amount, mention(targetID), balance))
}
