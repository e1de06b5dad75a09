// Package bot provides the Discord session wiring, command routing and
// member-event handling.
package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-lootbox-bot/internal/config"
	"discord-lootbox-bot/internal/game"
	"discord-lootbox-bot/internal/game/blackjack"
	"discord-lootbox-bot/internal/handler"
	"discord-lootbox-bot/internal/pkg/lock"
	"discord-lootbox-bot/internal/service"
)

// Bot wraps the discordgo session with application dependencies.
type Bot struct {
	session   *discordgo.Session
	cfg       *config.Config
	privilege *service.PrivilegeService

	accountHandler   *handler.AccountHandler
	rewardHandler    *handler.RewardHandler
	privilegeHandler *handler.PrivilegeHandler
	gameHandler      *handler.GameHandler
	adminHandler     *handler.AdminHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config      *config.Config
	Ledger      *service.Ledger
	Privilege   *service.PrivilegeService
	Rewards     *service.RewardService
	Leaderboard *service.LeaderboardService
	Registry    *game.Registry
	Blackjack   *blackjack.Engine
	UserLock    *lock.UserLock
}

// New creates a Bot, wires the handlers and registers the gateway callbacks.
// The session is not opened until Start.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	session, err := discordgo.New("Bot " + deps.Config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMembers |
		discordgo.IntentMessageContent

	b := &Bot{
		session:   session,
		cfg:       deps.Config,
		privilege: deps.Privilege,
	}

	b.accountHandler = handler.NewAccountHandler(deps.Ledger, deps.Leaderboard)
	b.rewardHandler = handler.NewRewardHandler(deps.Rewards, deps.Config.Bot.OperatorID)
	b.privilegeHandler = handler.NewPrivilegeHandler(deps.Privilege)
	b.gameHandler = handler.NewGameHandler(deps.Registry, deps.Blackjack, deps.UserLock)
	b.adminHandler = handler.NewAdminHandler(deps.Config, deps.Ledger)

	deps.Privilege.SetNotify(b.notifyExpiry)

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onGuildMemberUpdate)

	return b, nil
}

// Session exposes the underlying discordgo session for role management.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	log.Info().Str("username", r.User.Username).Msg("Bot connected")
}

// onMessageCreate routes prefixed commands. Bot authors are ignored and
// messages outside the allow-listed channels are silently dropped.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !b.cfg.IsChannelAllowed(m.ChannelID) {
		return
	}

	content := strings.TrimSpace(m.Content)
	prefix := b.cfg.Bot.Prefix
	if !strings.HasPrefix(content, prefix) {
		return
	}

	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	log.Debug().Str("user_id", m.Author.ID).Str("command", command).Msg("Command received")

	ctx := context.Background()
	switch command {
	case "lootbox":
		b.rewardHandler.HandleLootbox(ctx, s, m)
	case "balance":
		b.accountHandler.HandleBalance(ctx, s, m)
	case "leaderboard":
		b.accountHandler.HandleLeaderboard(ctx, s, m)
	case "buyvip":
		b.privilegeHandler.HandleBuyVip(ctx, s, m)
	case "grant":
		b.adminHandler.HandleGrant(ctx, s, m, args)
	case "blackjack":
		b.gameHandler.HandleBlackjackStart(ctx, s, m, args)
	case "hit":
		b.gameHandler.HandleBlackjackHit(ctx, s, m)
	case "stand":
		b.gameHandler.HandleBlackjackStand(ctx, s, m)
	default:
		// Registered single-round games answer to their own command.
		b.gameHandler.HandleGame(ctx, s, m, command, args)
	}
}

// onGuildMemberUpdate watches for the privilege role disappearing from a
// member, which means an admin revoked it manually (the bot's own removals
// are marked and skipped downstream).
func (b *Bot) onGuildMemberUpdate(_ *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	roleID := b.cfg.Privilege.RoleID
	if roleID == "" || e.User == nil {
		return
	}
	if b.cfg.Bot.GuildID != "" && e.GuildID != b.cfg.Bot.GuildID {
		return
	}

	for _, r := range e.Roles {
		if r == roleID {
			return
		}
	}

	b.privilege.HandleExternalRoleRemoval(e.User.ID)
}

// notifyExpiry tells a user their privilege ended, via DM.
func (b *Bot) notifyExpiry(userID string) {
	ch, err := b.session.UserChannelCreate(userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to open DM channel")
		return
	}
	if _, err := b.session.ChannelMessageSend(ch.ID, "⭐ Your VIP has expired."); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to send expiry notice")
	}
}
