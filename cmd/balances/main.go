package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"monad-tipbot-go/internal/chain"
	"monad-tipbot-go/internal/common"
	"monad-tipbot-go/internal/config"
	"monad-tipbot-go/internal/ledger"
	"monad-tipbot-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type balanceStats struct {
	fundingWallets int
	claimWallets   int
	queryFailures  int
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printFundingWallets(ctx context.Context, client chain.Client, wallets map[string]*models.Wallet, stats *balanceStats) {
	fmt.Printf("\n┌─ Funding wallets: %d\n", len(wallets))
	common.PrintBoxSeparator(78)

	keys := sortedKeys(wallets)
	for i, key := range keys {
		wallet := wallets[key]
		balance, err := client.BalanceAt(ctx, wallet.Address)
		if err != nil {
			stats.queryFailures++
			zap.L().Error("Failed to query balance",
				zap.String("address", wallet.Address),
				zap.Error(err))
			balance = decimal.Zero
		}
		fmt.Printf("%s %-20s %s  %20s MON\n",
			common.BoxPrefix(i == len(keys)-1), key, wallet.Address, balance.String())
		stats.fundingWallets++
	}
}

func printClaimWallets(ctx context.Context, client chain.Client, wallets map[string]*models.ClaimWallet, stats *balanceStats) {
	fmt.Printf("\n┌─ Claim wallets: %d\n", len(wallets))
	common.PrintBoxSeparator(78)

	keys := sortedKeys(wallets)
	for i, key := range keys {
		wallet := wallets[key]
		balance, err := client.BalanceAt(ctx, wallet.Address)
		if err != nil {
			stats.queryFailures++
			zap.L().Error("Failed to query balance",
				zap.String("address", wallet.Address),
				zap.Error(err))
			balance = decimal.Zero
		}
		fmt.Printf("%s @%-19s %s  %20s MON (accrued: %s)\n",
			common.BoxPrefix(i == len(keys)-1), key, wallet.Address, balance.String(), wallet.Accrued.String())
		stats.claimWallets++
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "Filter by specific platform user id (optional)")
	usernameFlag := flag.String("username", "", "Filter by specific recipient username (optional)")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	fundingWallets, err := services.DbService.LoadFundingWallets(ctx)
	if err != nil {
		logger.Fatal("Failed to load funding wallets", zap.Error(err))
	}
	claimWallets, err := services.DbService.LoadClaimWallets(ctx)
	if err != nil {
		logger.Fatal("Failed to load claim wallets", zap.Error(err))
	}

	if *userFlag != "" {
		filtered := make(map[string]*models.Wallet)
		if wallet, ok := fundingWallets[*userFlag]; ok {
			filtered[*userFlag] = wallet
		}
		fundingWallets = filtered
	}
	if *usernameFlag != "" {
		key := ledger.NormalizeKey(*usernameFlag)
		filtered := make(map[string]*models.ClaimWallet)
		if wallet, ok := claimWallets[key]; ok {
			filtered[key] = wallet
		}
		claimWallets = filtered
	}

	common.PrintHeader("WALLET BALANCE REPORT", common.DefaultWidth)

	stats := balanceStats{}
	printFundingWallets(ctx, services.ChainClient, fundingWallets, &stats)
	printClaimWallets(ctx, services.ChainClient, claimWallets, &stats)

	summary := fmt.Sprintf("SUMMARY: %d funding wallets, %d claim wallets (%d balance queries failed)",
		stats.fundingWallets, stats.claimWallets, stats.queryFailures)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("funding_wallets", stats.fundingWallets),
		zap.Int("claim_wallets", stats.claimWallets),
		zap.Int("query_failures", stats.queryFailures))
}
