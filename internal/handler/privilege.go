package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-lootbox-bot/internal/service"
)

// PrivilegeHandler handles the VIP purchase command.
type PrivilegeHandler struct {
	privilege *service.PrivilegeService
}

// NewPrivilegeHandler creates a new PrivilegeHandler.
func NewPrivilegeHandler(privilege *service.PrivilegeService) *PrivilegeHandler {
	return &PrivilegeHandler{privilege: privilege}
}

// HandleBuyVip charges the privilege price and grants the VIP role until the
// configured duration elapses.
func (h *PrivilegeHandler) HandleBuyVip(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	expiry, err := h.privilege.Purchase(ctx, m.Author.ID)
	switch {
	case errors.Is(err, service.ErrAlreadyPrivileged):
		replyTo(s, m, "⭐ You already have VIP.")
	case errors.Is(err, service.ErrInsufficientBalance):
		replyTo(s, m, fmt.Sprintf("❌ VIP costs %d coins and your balance is too low.", h.privilege.Price()))
	case err != nil:
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("VIP purchase failed")
		replyTo(s, m, "❌ Something went wrong, try again later.")
	default:
		replyTo(s, m, fmt.Sprintf("⭐ VIP active until <t:%d>. Enjoy the better odds!", expiry.Unix()))
	}
}
