package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monad-tipbot-go/internal/chain"
	"monad-tipbot-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferError reports a transfer that exhausted its attempts or hit a
// fatal submission error.
type TransferError struct {
	Attempts int
	Cause    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *TransferError) Unwrap() error {
	return e.Cause
}

// Callbacks are optional lifecycle checkpoints fired during a transfer.
// A callback error or panic is logged and swallowed; it never aborts the
// transfer.
type Callbacks struct {
	Submitted            func(txHash string) error
	AwaitingConfirmation func(txHash string) error
	Confirmed            func(receipt *models.TransferReceipt) error
}

// Executor submits a single value transfer with nonce-conflict recovery and
// rate-limited submission.
type Executor struct {
	chain       chain.Client
	governor    *RateGovernor
	maxAttempts int
	backoff     time.Duration
}

func NewExecutor(client chain.Client, governor *RateGovernor, cfg models.EngineConfig) *Executor {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Executor{
		chain:       client,
		governor:    governor,
		maxAttempts: maxAttempts,
		backoff:     cfg.RetryBackoff,
	}
}

// Execute moves amount from the wallet to the destination address. On a
// retryable rejection (nonce conflict, fee race, rate limit) it pauses,
// refreshes the nonce from latest confirmed state and tries again, up to the
// attempt cap. Any other rejection is fatal immediately.
//
// When submission succeeded but the confirmation wait itself failed, Execute
// re-polls the transaction once; if still unresolved it returns the receipt
// together with an error wrapping chain.ErrConfirmationAmbiguous. Callers
// must not treat that as outright failure: a blind retry of an actually
// confirmed transfer pays out twice.
func (e *Executor) Execute(ctx context.Context, wallet *models.Wallet, to string, amount decimal.Decimal, cbs *Callbacks) (*models.TransferReceipt, error) {
	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		nonce, err := e.resolveNonce(ctx, wallet.Address, attempt)
		if err != nil {
			return nil, &TransferError{Attempts: attempt, Cause: err}
		}

		if err := e.governor.Wait(ctx); err != nil {
			return nil, &TransferError{Attempts: attempt, Cause: err}
		}

		txHash, err := e.chain.Submit(ctx, chain.TransferIntent{
			Wallet: wallet,
			To:     to,
			Amount: amount,
			Nonce:  nonce,
		})
		if err != nil {
			if chain.IsRetryable(err) {
				lastErr = err
				zap.L().Warn("Transfer submission rejected, will retry with refreshed nonce",
					zap.String("from", wallet.Address),
					zap.String("to", to),
					zap.Uint64("nonce", nonce),
					zap.Int("attempt", attempt),
					zap.Error(err))
				continue
			}
			return nil, &TransferError{Attempts: attempt, Cause: err}
		}

		receipt := &models.TransferReceipt{
			TxHash:   txHash,
			Nonce:    nonce,
			Amount:   amount,
			To:       to,
			Attempts: attempt,
		}

		e.fire("submitted", func() error { return cbs.submitted(txHash) }, cbs)
		e.fire("awaiting_confirmation", func() error { return cbs.awaitingConfirmation(txHash) }, cbs)

		if err := e.governor.Wait(ctx); err != nil {
			return receipt, fmt.Errorf("%w: tx %s: %v", chain.ErrConfirmationAmbiguous, txHash, err)
		}

		if err := e.chain.WaitForReceipt(ctx, txHash); err != nil {
			if !errors.Is(err, chain.ErrConfirmationAmbiguous) {
				// Definite on-chain failure.
				return nil, &TransferError{Attempts: attempt, Cause: err}
			}

			// Submission went through; re-poll once before surfacing
			// ambiguity to the caller.
			confirmed, pollErr := e.chain.TransactionConfirmed(ctx, txHash)
			if pollErr == nil && confirmed {
				zap.L().Info("Transaction confirmed on re-poll after ambiguous wait",
					zap.String("tx_hash", txHash))
				e.fire("confirmed", func() error { return cbs.confirmed(receipt) }, cbs)
				return receipt, nil
			}
			return receipt, err
		}

		e.fire("confirmed", func() error { return cbs.confirmed(receipt) }, cbs)
		return receipt, nil
	}

	return nil, &TransferError{Attempts: e.maxAttempts, Cause: lastErr}
}

// resolveNonce picks the nonce for this attempt: the pending view on the
// first try, the latest confirmed state after a conflict. Retries also pause
// for the configured backoff before touching the chain again.
func (e *Executor) resolveNonce(ctx context.Context, address string, attempt int) (uint64, error) {
	if attempt == 1 {
		if err := e.governor.Wait(ctx); err != nil {
			return 0, err
		}
		return e.chain.PendingNonceAt(ctx, address)
	}

	timer := time.NewTimer(e.backoff)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	if err := e.governor.Wait(ctx); err != nil {
		return 0, err
	}
	return e.chain.LatestNonceAt(ctx, address)
}

func (e *Executor) fire(checkpoint string, call func() error, cbs *Callbacks) {
	if cbs == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Transfer callback panicked",
				zap.String("checkpoint", checkpoint),
				zap.Any("panic", r))
		}
	}()
	if err := call(); err != nil {
		zap.L().Error("Transfer callback failed",
			zap.String("checkpoint", checkpoint),
			zap.Error(err))
	}
}

func (c *Callbacks) submitted(txHash string) error {
	if c.Submitted == nil {
		return nil
	}
	return c.Submitted(txHash)
}

func (c *Callbacks) awaitingConfirmation(txHash string) error {
	if c.AwaitingConfirmation == nil {
		return nil
	}
	return c.AwaitingConfirmation(txHash)
}

func (c *Callbacks) confirmed(receipt *models.TransferReceipt) error {
	if c.Confirmed == nil {
		return nil
	}
	return c.Confirmed(receipt)
}
