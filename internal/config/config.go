package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"monad-tipbot-go/internal/models"

	"github.com/shopspring/decimal"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	requestTimeout, err := getEnvDuration("CHAIN_REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	confirmationTimeout, err := getEnvDuration("CHAIN_CONFIRMATION_TIMEOUT", 90*time.Second)
	if err != nil {
		return nil, err
	}

	receiptPollInterval, err := getEnvDuration("CHAIN_RECEIPT_POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, err
	}

	minCallInterval, err := getEnvDuration("CHAIN_MIN_CALL_INTERVAL", 100*time.Millisecond)
	if err != nil {
		return nil, err
	}

	retryBackoff, err := getEnvDuration("TRANSFER_RETRY_BACKOFF", 2*time.Second)
	if err != nil {
		return nil, err
	}

	giveawayDuration, err := getEnvDuration("GIVEAWAY_DURATION", 60*time.Second)
	if err != nil {
		return nil, err
	}

	feeRate, err := getEnvDecimal("TIP_FEE_RATE", "0.10")
	if err != nil {
		return nil, err
	}

	networkFeeBuffer, err := getEnvDecimal("NETWORK_FEE_BUFFER", "0.01")
	if err != nil {
		return nil, err
	}

	feeAddress := os.Getenv("TIP_FEE_ADDRESS")
	if feeAddress == "" {
		return nil, fmt.Errorf("TIP_FEE_ADDRESS is required")
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "tipbot.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Chain: models.ChainConfig{
			RPCURL:              getEnvString("MONAD_RPC_URL", "https://testnet-rpc.monad.xyz"),
			ChainId:             int64(getEnvInt("MONAD_CHAIN_ID", 10143)),
			RequestTimeout:      requestTimeout,
			ConfirmationTimeout: confirmationTimeout,
			ReceiptPollInterval: receiptPollInterval,
		},
		Engine: models.EngineConfig{
			FeeRate:          feeRate,
			FeeAddress:       feeAddress,
			NetworkFeeBuffer: networkFeeBuffer,
			MaxAttempts:      getEnvInt("TRANSFER_MAX_ATTEMPTS", 3),
			MinCallInterval:  minCallInterval,
			RetryBackoff:     retryBackoff,
		},
		Giveaway: models.GiveawayConfig{
			Duration:     giveawayDuration,
			TriggersFile: getEnvString("GIVEAWAY_TRIGGERS_FILE", "triggers.yaml"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal for %s: %q (%w)", key, value, err)
	}
	return d, nil
}
