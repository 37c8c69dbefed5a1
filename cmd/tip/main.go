package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"monad-tipbot-go/internal/common"
	"monad-tipbot-go/internal/config"
	"monad-tipbot-go/internal/engine"
	"monad-tipbot-go/internal/executor"
	"monad-tipbot-go/internal/ledger"
	"monad-tipbot-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type tipRequest struct {
	from   string
	to     string
	amount decimal.Decimal
}

func parseAndValidateFlags() (*tipRequest, error) {
	fromFlag := flag.String("from", "", "Sender platform user id (required)")
	toFlag := flag.String("to", "", "Recipient username (required)")
	amountFlag := flag.String("amount", "", "Amount of MON to tip (required)")
	flag.Parse()

	if *fromFlag == "" || *toFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("all flags are required: --from, --to, --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &tipRequest{
		from:   *fromFlag,
		to:     ledger.NormalizeKey(*toFlag),
		amount: amount,
	}, nil
}

func printTipSummary(req *tipRequest, sender *models.Wallet, balance, fee, required decimal.Decimal) {
	common.PrintHeader("TIP REQUEST", common.DefaultWidth)
	fmt.Printf("From:             %s (%s)\n", req.from, sender.Address)
	fmt.Printf("To:               @%s\n", req.to)
	fmt.Printf("Current Balance:  %s MON\n", balance.String())
	fmt.Printf("Tip Amount:       %s MON\n", req.amount.String())
	fmt.Printf("Service Fee:      %s MON\n", fee.String())
	fmt.Printf("Required Balance: %s MON (incl. network buffer)\n", required.String())
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}

func progressCallbacks() *executor.Callbacks {
	return &executor.Callbacks{
		Submitted: func(txHash string) error {
			fmt.Printf("Transaction submitted: %s\n", txHash)
			return nil
		},
		AwaitingConfirmation: func(txHash string) error {
			fmt.Println("Waiting for confirmation...")
			return nil
		},
		Confirmed: func(receipt *models.TransferReceipt) error {
			fmt.Printf("Confirmed after %d attempt(s)\n", receipt.Attempts)
			return nil
		},
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	zap.L().Info("Starting tip",
		zap.String("from", req.from),
		zap.String("to", req.to),
		zap.String("amount", req.amount.String()))

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

	sender, err := services.Funding.GetOrCreate(ctx, req.from)
	if err != nil {
		zap.L().Fatal("Failed to resolve funding wallet", zap.Error(err))
	}

	balance, err := services.ChainClient.BalanceAt(ctx, sender.Address)
	if err != nil {
		zap.L().Fatal("Failed to query balance", zap.Error(err))
	}

	printTipSummary(req, sender, balance,
		services.Engine.FeeFor(req.amount), services.Engine.RequiredBalance(req.amount))

	receipt, err := services.Engine.Settle(ctx, sender, req.to, req.amount, progressCallbacks())
	if err != nil {
		var transferErr *executor.TransferError
		switch {
		case errors.Is(err, engine.ErrInsufficientBalance):
			common.PrintHeader("TIP FAILED", common.DefaultWidth)
			fmt.Printf("Insufficient balance: have %s MON, need %s MON\n",
				balance.String(), services.Engine.RequiredBalance(req.amount).String())
			common.PrintSeparator("=", common.DefaultWidth)
			zap.L().Fatal("Insufficient balance", zap.Error(err))
		case errors.As(err, &transferErr):
			common.PrintHeader("TIP FAILED", common.DefaultWidth)
			fmt.Printf("Transfer failed after %d attempt(s): %v\n", transferErr.Attempts, transferErr.Cause)
			common.PrintSeparator("=", common.DefaultWidth)
			zap.L().Fatal("Transfer failed", zap.Error(err))
		case errors.Is(err, engine.ErrLedgerPersist):
			// Funds moved; only the local bookkeeping failed. Surface the
			// receipt so the operator can reconcile by hand.
			zap.L().Error("Settled on chain but bookkeeping failed - manual reconciliation required",
				zap.String("principal_tx", receipt.PrincipalTx),
				zap.Error(err))
		default:
			zap.L().Fatal("Settlement failed", zap.Error(err))
		}
	}

	common.PrintHeader("TIP SETTLED", common.DefaultWidth)
	fmt.Printf("Recipient:    @%s (%s)\n", receipt.ToUsername, receipt.ToAddress)
	fmt.Printf("Amount:       %s MON\n", receipt.Amount.String())
	fmt.Printf("Principal Tx: %s\n", receipt.PrincipalTx)
	if receipt.FeeErr != nil {
		fmt.Printf("Fee:          FAILED (%v)\n", receipt.FeeErr)
	} else {
		fmt.Printf("Fee:          %s MON (tx %s)\n", receipt.FeeAmount.String(), receipt.FeeTx)
	}
	common.PrintSeparator("=", common.DefaultWidth)

	zap.L().Info("Tip completed",
		zap.String("from", req.from),
		zap.String("to", req.to),
		zap.String("principal_tx", receipt.PrincipalTx))
}
