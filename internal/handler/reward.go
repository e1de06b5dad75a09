package handler

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-lootbox-bot/internal/service"
)

// tierDisplay maps reward tiers to their chat rendering.
var tierDisplay = map[string]string{
	"blue":   "Blue 🔵",
	"purple": "Purple 🟣",
	"gold":   "Gold 🟡",
}

// RewardHandler handles the lootbox draw command.
type RewardHandler struct {
	rewards    *service.RewardService
	operatorID string
}

// NewRewardHandler creates a new RewardHandler.
func NewRewardHandler(rewards *service.RewardService, operatorID string) *RewardHandler {
	return &RewardHandler{rewards: rewards, operatorID: operatorID}
}

// HandleLootbox resolves one lootbox draw for the triggering message. A
// duplicate message ID resolves to nothing and stays silent, so gateway
// redelivery and edit replays never double-reward or double-reply.
func (h *RewardHandler) HandleLootbox(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	res, err := h.rewards.Resolve(ctx, m.Author.ID, m.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("Lootbox draw failed")
		return
	}
	if res == nil {
		return
	}

	display, ok := tierDisplay[res.Tier]
	if !ok {
		display = res.Tier
	}

	if res.NotifyOperator && h.operatorID != "" {
		replyTo(s, m, fmt.Sprintf("%s %s %s", mention(m.Author.ID), mention(h.operatorID), display))
		return
	}

	if res.Coins > 0 {
		replyTo(s, m, fmt.Sprintf("%s (+%d coin, balance %d)", display, res.Coins, res.NewBalance))
		return
	}
	replyTo(s, m, display)
}
