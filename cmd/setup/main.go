package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"monad-tipbot-go/internal/chain"
	"monad-tipbot-go/internal/common"
	"monad-tipbot-go/internal/config"
	"monad-tipbot-go/internal/ledger"

	"go.uber.org/zap"
)

// createFundingWallets generates and persists a funding wallet for each of the
// requested platform user ids, skipping ids that already have one.
func createFundingWallets(ctx context.Context, registry *ledger.FundingRegistry, userKeys []string) {
	var created, existing, failed int

	for _, userKey := range userKeys {
		userKey = strings.TrimSpace(userKey)
		if userKey == "" {
			continue
		}

		if _, ok := registry.Get(userKey); ok {
			existing++
			zap.L().Info("User already has a funding wallet", zap.String("user_key", userKey))
			continue
		}

		wallet, err := registry.GetOrCreate(ctx, userKey)
		if err != nil {
			failed++
			zap.L().Error("Failed to create funding wallet",
				zap.String("user_key", userKey),
				zap.Error(err))
			continue
		}

		created++
		fmt.Printf("Created funding wallet for %s: %s\n", userKey, wallet.Address)
	}

	if failed > 0 {
		zap.L().Warn("Wallet creation completed with some failures",
			zap.Int("created", created),
			zap.Int("existing", existing),
			zap.Int("failed", failed))
	} else {
		zap.L().Info("Wallet creation completed",
			zap.Int("created", created),
			zap.Int("existing", existing))
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	usersFlag := flag.String("users", "", "Comma-separated platform user ids to create funding wallets for")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	// Setup only touches the local database and the key generator; it never
	// needs a chain connection.
	zap.L().Info("Setting up SQLite database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	registry, err := ledger.NewFundingRegistry(ctx, dbService, chain.NewKeypair)
	if err != nil {
		zap.L().Fatal("Failed to load funding wallets", zap.Error(err))
	}

	if *usersFlag == "" {
		zap.L().Info("Database initialized; no users requested")
		return
	}

	createFundingWallets(ctx, registry, strings.Split(*usersFlag, ","))
	zap.L().Info("Initialization complete")
}
