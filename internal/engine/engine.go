package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monad-tipbot-go/internal/chain"
	"monad-tipbot-go/internal/executor"
	"monad-tipbot-go/internal/ledger"
	"monad-tipbot-go/internal/models"
	"monad-tipbot-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidAmount       = errors.New("invalid tip amount")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrLedgerPersist marks the worst failure class: funds moved on-chain
	// but the bookkeeping write failed. Surfaced alongside the receipt so
	// operators can reconcile manually.
	ErrLedgerPersist = errors.New("ledger persist failed")
)

// Engine composes a principal transfer and a protocol fee transfer into one
// settled tip, updating the recipient's claim ledger on success.
type Engine struct {
	chain  chain.Client
	exec   *executor.Executor
	ledger *ledger.ClaimLedger
	tips   store.TipLedger
	cfg    models.EngineConfig
}

func NewEngine(client chain.Client, exec *executor.Executor, claimLedger *ledger.ClaimLedger, tips store.TipLedger, cfg models.EngineConfig) *Engine {
	return &Engine{
		chain:  client,
		exec:   exec,
		ledger: claimLedger,
		tips:   tips,
		cfg:    cfg,
	}
}

// FeeFor returns the protocol fee charged on top of a tip amount.
func (e *Engine) FeeFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(e.cfg.FeeRate)
}

// RequiredBalance returns the sender balance needed to settle a tip:
// principal + protocol fee + a buffer for network fees.
func (e *Engine) RequiredBalance(amount decimal.Decimal) decimal.Decimal {
	return amount.Add(e.FeeFor(amount)).Add(e.cfg.NetworkFeeBuffer)
}

// Ledger exposes the claim ledger backing this engine.
func (e *Engine) Ledger() *ledger.ClaimLedger {
	return e.ledger
}

// Settle executes one tip: principal to the recipient's claim wallet, then
// the protocol fee to the fee address, then bookkeeping. The two transfers
// run strictly in sequence and each resolves its own nonce; a fee-transfer
// failure never rolls back a delivered principal — it is reported on the
// receipt's FeeErr instead, since the recipient-visible effect is the
// primary contract.
func (e *Engine) Settle(ctx context.Context, sender *models.Wallet, recipientUsername string, amount decimal.Decimal, cbs *executor.Callbacks) (*models.SettlementReceipt, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}

	balance, err := e.chain.BalanceAt(ctx, sender.Address)
	if err != nil {
		return nil, fmt.Errorf("unable to check sender balance: %w", err)
	}

	required := e.RequiredBalance(amount)
	if balance.LessThan(required) {
		return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, balance.String(), required.String())
	}

	claimWallet, err := e.ledger.GetOrCreate(ctx, recipientUsername)
	if err != nil {
		return nil, err
	}

	recipientKey := ledger.NormalizeKey(recipientUsername)
	fee := e.FeeFor(amount)

	zap.L().Info("Settling tip",
		zap.String("from", sender.Identity),
		zap.String("to_username", recipientKey),
		zap.String("amount", amount.String()),
		zap.String("fee", fee.String()))

	principal, err := e.exec.Execute(ctx, sender, claimWallet.Address, amount, cbs)
	if err != nil {
		return nil, fmt.Errorf("principal transfer: %w", err)
	}

	// The fee transfer resolves a fresh nonce inside the executor; the
	// principal's nonce is never reused.
	var feeTx string
	feeReceipt, feeErr := e.exec.Execute(ctx, sender, e.cfg.FeeAddress, fee, nil)
	if feeErr != nil {
		zap.L().Error("Fee transfer failed after successful principal - uncollected fee requires reconciliation",
			zap.String("from", sender.Identity),
			zap.String("to_username", recipientKey),
			zap.String("principal_tx", principal.TxHash),
			zap.String("fee", fee.String()),
			zap.Error(feeErr))
	} else {
		feeTx = feeReceipt.TxHash
	}

	receipt := &models.SettlementReceipt{
		From:        sender.Identity,
		ToUsername:  recipientKey,
		ToAddress:   claimWallet.Address,
		Amount:      amount,
		FeeAmount:   fee,
		PrincipalTx: principal.TxHash,
		FeeTx:       feeTx,
		FeeErr:      feeErr,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := e.ledger.Accrue(ctx, recipientKey, sender.Identity, amount); err != nil {
		zap.L().Error("Funds moved but accrual update failed - manual reconciliation required",
			zap.String("principal_tx", principal.TxHash),
			zap.String("to_username", recipientKey),
			zap.Error(err))
		return receipt, fmt.Errorf("%w: accrual for %s (tx %s): %v", ErrLedgerPersist, recipientKey, principal.TxHash, err)
	}

	if err := e.tips.AppendTipRecord(ctx, models.TipRecord{
		From:       sender.Identity,
		ToUsername: recipientKey,
		Amount:     amount,
		FeeAmount:  fee,
		TxHash:     principal.TxHash,
	}); err != nil {
		zap.L().Error("Funds moved but tip record write failed - manual reconciliation required",
			zap.String("principal_tx", principal.TxHash),
			zap.String("to_username", recipientKey),
			zap.Error(err))
		return receipt, fmt.Errorf("%w: tip record for %s (tx %s): %v", ErrLedgerPersist, recipientKey, principal.TxHash, err)
	}

	return receipt, nil
}
