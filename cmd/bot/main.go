// Package main is the entry point for the Discord lootbox economy bot.
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-lootbox-bot/internal/bot"
	"discord-lootbox-bot/internal/config"
	"discord-lootbox-bot/internal/game"
	"discord-lootbox-bot/internal/game/blackjack"
	"discord-lootbox-bot/internal/game/slots"
	"discord-lootbox-bot/internal/jobs"
	"discord-lootbox-bot/internal/pkg/db"
	"discord-lootbox-bot/internal/pkg/dedup"
	"discord-lootbox-bot/internal/pkg/lock"
	"discord-lootbox-bot/internal/pkg/timers"
	"discord-lootbox-bot/internal/repository"
	"discord-lootbox-bot/internal/reward"
	"discord-lootbox-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(dbPool.Pool)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)

	// Initialize the ledger and warm the cache
	ledger := service.NewLedger(accountRepo, txRepo)
	loaded, err := ledger.LoadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load accounts")
	}
	log.Info().Int("accounts", loaded).Msg("Ledger cache warmed")

	// Initialize privilege scheduling
	timerRegistry := timers.NewRegistry()
	roleManager := bot.NewRoleManager(cfg.Bot.GuildID, cfg.Privilege.RoleID)
	privilegeService := service.NewPrivilegeService(
		ledger,
		timerRegistry,
		roleManager,
		cfg.Privilege.Price,
		cfg.Privilege.Duration,
		cfg.Privilege.MarkerTTL,
	)

	// Initialize the reward engine
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	drawer := reward.NewDrawer(rnd)
	guard := dedup.New(cfg.Reward.DedupCapacity)
	rewardService := service.NewRewardService(
		ledger,
		privilegeService,
		drawer,
		guard,
		reward.TableFromConfig(cfg.Reward.Standard),
		reward.TableFromConfig(cfg.Reward.Privileged),
	)

	leaderboardService := service.NewLeaderboardService(ledger, service.DefaultTopN)

	// Initialize user lock
	userLock := lock.NewUserLock()

	// Initialize game registry and register games
	gameRegistry := game.NewRegistry()

	slotsGame := slots.New(ledger, cfg.Games.Slots.MaxBet, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err := gameRegistry.Register(slotsGame); err != nil {
		log.Fatal().Err(err).Msg("Failed to register slots game")
	}

	blackjackEngine := blackjack.NewEngine(ledger, cfg.Games.Blackjack.MaxBet, rand.New(rand.NewSource(time.Now().UnixNano())))

	log.Info().
		Int("game_count", gameRegistry.Count()).
		Strs("games", gameRegistry.Commands()).
		Msg("Games registered")

	// Initialize bot
	deps := &bot.Dependencies{
		Config:      cfg,
		Ledger:      ledger,
		Privilege:   privilegeService,
		Rewards:     rewardService,
		Leaderboard: leaderboardService,
		Registry:    gameRegistry,
		Blackjack:   blackjackEngine,
		UserLock:    userLock,
	}

	discordBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	roleManager.Bind(discordBot.Session())

	// Reconcile persisted privilege grants: past expiries revoke immediately,
	// live grants get fresh timers.
	privilegeService.Reconcile(ctx)

	// Start the autosave scheduler
	scheduler := jobs.NewScheduler(ledger, cfg.Autosave.Interval)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msg("Bot is starting...")
	if err := discordBot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown: stop inbound events and timers, wait for in-flight
	// writes, then flush the whole ledger one last time.
	if err := discordBot.Stop(); err != nil {
		log.Warn().Err(err).Msg("Failed to close session")
	}
	scheduler.Stop()
	timerRegistry.StopAll()
	ledger.WaitPersisted()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer flushCancel()
	if err := ledger.Flush(flushCtx); err != nil {
		log.Error().Err(err).Msg("Final flush failed")
	}

	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create accounts table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			user_id VARCHAR(32) PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 0,
			privilege_expires_at TIMESTAMPTZ,
			stats JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_accounts_balance ON accounts(balance DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: accounts table created")

	// Migration 2: Create transactions table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(32) NOT NULL,
			amount BIGINT NOT NULL,
			type VARCHAR(50) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_user_time ON transactions(user_id, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: transactions table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
