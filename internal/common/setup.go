package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"monad-tipbot-go/internal/chain"
	"monad-tipbot-go/internal/database"
	"monad-tipbot-go/internal/engine"
	"monad-tipbot-go/internal/executor"
	"monad-tipbot-go/internal/ledger"
	"monad-tipbot-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService   *database.Service
	ChainClient chain.Client
	Executor    *executor.Executor
	Funding     *ledger.FundingRegistry
	Engine      *engine.Engine
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	if !chain.IsValidAddress(cfg.Engine.FeeAddress) {
		return nil, fmt.Errorf("invalid fee address: %s", cfg.Engine.FeeAddress)
	}

	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Connecting to chain RPC", zap.String("url", cfg.Chain.RPCURL))
	chainClient, err := chain.NewEVMClient(ctx, cfg.Chain)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	governor := executor.NewRateGovernor(cfg.Engine.MinCallInterval)
	exec := executor.NewExecutor(chainClient, governor, cfg.Engine)

	funding, err := ledger.NewFundingRegistry(ctx, dbService, chain.NewKeypair)
	if err != nil {
		chainClient.Close()
		dbService.Close()
		return nil, err
	}

	claimLedger, err := ledger.NewClaimLedger(ctx, dbService, chain.NewKeypair)
	if err != nil {
		chainClient.Close()
		dbService.Close()
		return nil, err
	}

	return &Services{
		DbService:   dbService,
		ChainClient: chainClient,
		Executor:    exec,
		Funding:     funding,
		Engine:      engine.NewEngine(chainClient, exec, claimLedger, dbService, cfg.Engine),
	}, nil
}

// InitializeDatabaseOnly initializes just the database service without a
// chain connection. Useful for read-only operations like listing accruals.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.ChainClient != nil {
		cs.ChainClient.Close()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
