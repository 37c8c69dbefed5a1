package database

import (
	"context"
	"database/sql"
	"fmt"

	"monad-tipbot-go/internal/models"
	"monad-tipbot-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time checks: *Service must satisfy the store contracts.
var (
	_ store.WalletStore = (*Service)(nil)
	_ store.TipLedger   = (*Service)(nil)
)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

// NewServiceFromDB wraps an existing connection. Used by tests with an
// in-memory database.
func NewServiceFromDB(db *sql.DB) (*Service, error) {
	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Funding wallets, one per sending platform user
	CREATE TABLE IF NOT EXISTS funding_wallets (
		user_key TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		private_key TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_funding_wallets_address ON funding_wallets(address);

	-- Claim wallets, one per lowercased recipient username, with the
	-- unclaimed-balance accrual cache
	CREATE TABLE IF NOT EXISTS claim_wallets (
		username_key TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		private_key TEXT NOT NULL,
		accrued TEXT NOT NULL DEFAULT '0',
		accrued_from TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_claim_wallets_address ON claim_wallets(address);

	-- Immutable audit trail, one row per settled tip
	CREATE TABLE IF NOT EXISTS tip_records (
		id TEXT PRIMARY KEY,
		from_identity TEXT NOT NULL,
		to_username TEXT NOT NULL,
		amount TEXT NOT NULL,
		fee_amount TEXT NOT NULL,
		tx_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tip_records_to_username ON tip_records(to_username);
	CREATE INDEX IF NOT EXISTS idx_tip_records_created_at ON tip_records(created_at);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_tip_records_tx_hash ON tip_records(tx_hash);
	`

	_, err := s.db.Exec(schema)
	return err
}
