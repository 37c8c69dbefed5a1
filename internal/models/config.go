package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Chain    ChainConfig
	Engine   EngineConfig
	Giveaway GiveawayConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ChainConfig holds RPC node connection settings
type ChainConfig struct {
	RPCURL              string
	ChainId             int64
	RequestTimeout      time.Duration
	ConfirmationTimeout time.Duration
	ReceiptPollInterval time.Duration
}

// EngineConfig holds settlement engine settings
type EngineConfig struct {
	FeeRate          decimal.Decimal
	FeeAddress       string
	NetworkFeeBuffer decimal.Decimal
	MaxAttempts      int
	MinCallInterval  time.Duration
	RetryBackoff     time.Duration
}

// GiveawayConfig holds giveaway state machine settings
type GiveawayConfig struct {
	Duration     time.Duration
	TriggersFile string
}
