package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Archive database (optional - leave empty to disable archival)
	ArchiveDatabaseURL      string `env:"ARCHIVE_DATABASE_URL" envDefault:""`
	ArchiveDatabaseMaxConns int    `env:"ARCHIVE_DATABASE_MAX_CONNS" envDefault:"10"`
	ArchiveDatabaseMinConns int    `env:"ARCHIVE_DATABASE_MIN_CONNS" envDefault:"2"`
	MigrationsPath          string `env:"MIGRATIONS_PATH" envDefault:"migrations"`

	// Redis (optional - leave empty to run without idempotency and
	// rate snapshots)
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Rate limiting
	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"50"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST"      envDefault:"100"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Exchange
	RateRefreshInterval time.Duration `env:"RATE_REFRESH_INTERVAL" envDefault:"1m"`

	// Approvals
	InstantCeilingUSD  string        `env:"INSTANT_CEILING_USD"  envDefault:"10000"`
	DefaultCeilingUSD  string        `env:"DEFAULT_CEILING_USD"  envDefault:"1000"`
	PendingTransferTTL time.Duration `env:"PENDING_TRANSFER_TTL" envDefault:"72h"`
	ExpirySweepEvery   time.Duration `env:"EXPIRY_SWEEP_EVERY"   envDefault:"10m"`

	// Fraud
	BlockedIPRanges []string `env:"BLOCKED_IP_RANGES" envSeparator:"," envDefault:""`
	ScamAddresses   []string `env:"SCAM_ADDRESSES"    envSeparator:"," envDefault:""`

	// Payout provider
	PayoutProviderURL string `env:"PAYOUT_PROVIDER_URL" envDefault:""`
	PayoutProviderKey string `env:"PAYOUT_PROVIDER_KEY" envDefault:""`

	// Notifications
	NotificationBuffer  int    `env:"NOTIFICATION_BUFFER"  envDefault:"256"`
	NotificationChannel string `env:"NOTIFICATION_CHANNEL" envDefault:"walletcore:notifications"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
