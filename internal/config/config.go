// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Privilege PrivilegeConfig `mapstructure:"privilege"`
	Reward    RewardConfig    `mapstructure:"reward"`
	Games     GamesConfig     `mapstructure:"games"`
	Autosave  AutosaveConfig  `mapstructure:"autosave"`
}

// BotConfig holds Discord bot configuration.
type BotConfig struct {
	Token      string   `mapstructure:"token"`
	Prefix     string   `mapstructure:"prefix"`
	GuildID    string   `mapstructure:"guild_id"`
	ChannelIDs []string `mapstructure:"channel_ids"`
	OperatorID string   `mapstructure:"operator_id"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []string `mapstructure:"ids"`
}

// PrivilegeConfig holds VIP privilege configuration.
type PrivilegeConfig struct {
	Price     int64         `mapstructure:"price"`
	Duration  time.Duration `mapstructure:"duration"`
	RoleID    string        `mapstructure:"role_id"`
	MarkerTTL time.Duration `mapstructure:"marker_ttl"`
}

// OutcomeConfig describes one reward tier in a weight table.
// Tables are ordered lowest tier first; weights need not sum to 100.
type OutcomeConfig struct {
	Tier   string  `mapstructure:"tier"`
	Weight float64 `mapstructure:"weight"`
	Coins  int64   `mapstructure:"coins"`
	Notify bool    `mapstructure:"notify"`
}

// RewardConfig holds lootbox reward configuration.
type RewardConfig struct {
	DedupCapacity int             `mapstructure:"dedup_capacity"`
	Standard      []OutcomeConfig `mapstructure:"standard"`
	Privileged    []OutcomeConfig `mapstructure:"privileged"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Slots     SlotsConfig     `mapstructure:"slots"`
	Blackjack BlackjackConfig `mapstructure:"blackjack"`
}

// SlotsConfig holds reel game configuration.
type SlotsConfig struct {
	MaxBet int64 `mapstructure:"max_bet"`
}

// BlackjackConfig holds card game configuration.
type BlackjackConfig struct {
	MaxBet int64 `mapstructure:"max_bet"`
}

// AutosaveConfig holds the periodic full-state flush configuration.
type AutosaveConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the given directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, PRIVILEGE_PRICE.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Bot defaults
	v.SetDefault("bot.prefix", "!")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "lootbot")
	v.SetDefault("database.name", "lootbot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Privilege defaults: 40 coins buys better lootbox odds for 5 days
	v.SetDefault("privilege.price", 40)
	v.SetDefault("privilege.duration", "120h")
	v.SetDefault("privilege.marker_ttl", "10s")

	// Reward defaults. The privileged table improves the rare tiers.
	v.SetDefault("reward.dedup_capacity", 100)
	v.SetDefault("reward.standard", []map[string]any{
		{"tier": "blue", "weight": 99.75, "coins": 1},
		{"tier": "purple", "weight": 0.2, "notify": true},
		{"tier": "gold", "weight": 0.05, "notify": true},
	})
	v.SetDefault("reward.privileged", []map[string]any{
		{"tier": "blue", "weight": 99.0, "coins": 1},
		{"tier": "purple", "weight": 0.75, "notify": true},
		{"tier": "gold", "weight": 0.25, "notify": true},
	})

	// Game defaults
	v.SetDefault("games.slots.max_bet", 1000)
	v.SetDefault("games.blackjack.max_bet", 1000)

	// Autosave defaults
	v.SetDefault("autosave.interval", "5m")
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChannelAllowed checks if a channel ID is in the allow list.
func (c *Config) IsChannelAllowed(channelID string) bool {
	// Empty allow list means all channels are allowed
	if len(c.Bot.ChannelIDs) == 0 {
		return true
	}
	for _, id := range c.Bot.ChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}
