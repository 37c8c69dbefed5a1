package main

import (
	"context"
	"flag"
	"fmt"

	"monad-tipbot-go/internal/chain"
	"monad-tipbot-go/internal/common"
	"monad-tipbot-go/internal/config"
	"monad-tipbot-go/internal/executor"
	"monad-tipbot-go/internal/ledger"
	"monad-tipbot-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type claimRequest struct {
	username    string
	destination string
}

func parseAndValidateFlags() (*claimRequest, error) {
	usernameFlag := flag.String("username", "", "Recipient username whose claim wallet to sweep (required)")
	destinationFlag := flag.String("destination", "", "Destination address (required)")
	flag.Parse()

	if *usernameFlag == "" || *destinationFlag == "" {
		return nil, fmt.Errorf("all flags are required: --username, --destination")
	}

	if !chain.IsValidAddress(*destinationFlag) {
		return nil, fmt.Errorf("invalid destination address: %s", *destinationFlag)
	}

	return &claimRequest{
		username:    ledger.NormalizeKey(*usernameFlag),
		destination: *destinationFlag,
	}, nil
}

func printClaimSummary(req *claimRequest, wallet *models.ClaimWallet, balance, networkFee, sweep decimal.Decimal) {
	common.PrintHeader("CLAIM REQUEST", common.DefaultWidth)
	fmt.Printf("Username:         @%s\n", req.username)
	fmt.Printf("Claim Wallet:     %s\n", wallet.Address)
	fmt.Printf("On-chain Balance: %s MON\n", balance.String())
	fmt.Printf("Accrued Total:    %s MON\n", wallet.Accrued.String())
	fmt.Printf("Network Fee:      %s MON (estimated)\n", networkFee.String())
	fmt.Printf("Sweep Amount:     %s MON\n", sweep.String())
	fmt.Printf("Destination:      %s\n", req.destination)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	zap.L().Info("Starting claim",
		zap.String("username", req.username),
		zap.String("destination", req.destination))

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Initializing services")
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	claimLedger := services.Engine.Ledger()
	wallet, ok := claimLedger.Get(req.username)
	if !ok {
		common.PrintHeader("CLAIM FAILED", common.DefaultWidth)
		fmt.Printf("No claim wallet exists for @%s - has anyone tipped them?\n", req.username)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Unknown claim wallet", zap.String("username", req.username))
	}

	balance, err := services.ChainClient.BalanceAt(ctx, wallet.Address)
	if err != nil {
		zap.L().Fatal("Failed to query claim wallet balance", zap.Error(err))
	}

	networkFee, err := services.ChainClient.EstimateTransferFee(ctx)
	if err != nil {
		zap.L().Fatal("Failed to estimate network fee", zap.Error(err))
	}

	// The chain balance, not the accrual counter, bounds what can move. The
	// sweep leaves nothing behind except the network fee.
	sweep := balance.Sub(networkFee)
	if sweep.LessThanOrEqual(decimal.Zero) {
		common.PrintHeader("NOTHING TO CLAIM", common.DefaultWidth)
		fmt.Printf("Balance %s MON does not cover the network fee %s MON\n",
			balance.String(), networkFee.String())
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Info("Nothing to claim",
			zap.String("username", req.username),
			zap.String("balance", balance.String()))
		return
	}

	printClaimSummary(req, wallet, balance, networkFee, sweep)

	receipt, err := services.Executor.Execute(ctx, &wallet.Wallet, req.destination, sweep, &executor.Callbacks{
		Submitted: func(txHash string) error {
			fmt.Printf("Transaction submitted: %s\n", txHash)
			return nil
		},
	})
	if err != nil {
		common.PrintHeader("CLAIM FAILED", common.DefaultWidth)
		fmt.Printf("Transfer failed: %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Claim transfer failed", zap.Error(err))
	}

	// Zero the accrual only after the funds have actually moved.
	drained, err := claimLedger.Drain(ctx, req.username)
	if err != nil {
		zap.L().Error("Swept on chain but accrual reset failed - manual reconciliation required",
			zap.String("username", req.username),
			zap.String("tx_hash", receipt.TxHash),
			zap.Error(err))
	}

	common.PrintHeader("CLAIM SETTLED", common.DefaultWidth)
	fmt.Printf("Swept:       %s MON\n", receipt.Amount.String())
	fmt.Printf("Tx Hash:     %s\n", receipt.TxHash)
	fmt.Printf("Accrual Was: %s MON\n", drained.String())
	common.PrintSeparator("=", common.DefaultWidth)

	zap.L().Info("Claim completed",
		zap.String("username", req.username),
		zap.String("tx_hash", receipt.TxHash),
		zap.String("amount", receipt.Amount.String()))
}
