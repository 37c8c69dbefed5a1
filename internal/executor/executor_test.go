package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"monad-tipbot-go/internal/chain"
	"monad-tipbot-go/internal/models"

	"github.com/shopspring/decimal"
)

// fakeChain is a scripted chain.Client for executor tests.
type fakeChain struct {
	mu sync.Mutex

	pendingNonce uint64
	latestNonce  uint64

	submitErrs    []error // consumed one per Submit call
	submitCalls   []chain.TransferIntent
	waitErr       error
	repollConfirm bool
	repollErr     error
}

func (f *fakeChain) BalanceAt(ctx context.Context, address string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeChain) PendingNonceAt(ctx context.Context, address string) (uint64, error) {
	return f.pendingNonce, nil
}

func (f *fakeChain) LatestNonceAt(ctx context.Context, address string) (uint64, error) {
	return f.latestNonce, nil
}

func (f *fakeChain) EstimateTransferFee(ctx context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeChain) Submit(ctx context.Context, intent chain.TransferIntent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls = append(f.submitCalls, intent)
	if len(f.submitErrs) > 0 {
		err := f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("0xtx%d", len(f.submitCalls)), nil
}

func (f *fakeChain) WaitForReceipt(ctx context.Context, txHash string) error {
	return f.waitErr
}

func (f *fakeChain) TransactionConfirmed(ctx context.Context, txHash string) (bool, error) {
	return f.repollConfirm, f.repollErr
}

func (f *fakeChain) Close() {}

func newTestExecutor(client chain.Client) *Executor {
	return NewExecutor(client, NewRateGovernor(0), models.EngineConfig{
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	})
}

func testWallet() *models.Wallet {
	return &models.Wallet{
		Identity:      "12345",
		Address:       "0xsender",
		PrivateKeyHex: "k",
	}
}

func TestExecute_Success(t *testing.T) {
	fc := &fakeChain{pendingNonce: 5}
	exec := newTestExecutor(fc)

	receipt, err := exec.Execute(context.Background(), testWallet(), "0xdest", decimal.RequireFromString("1.0"), nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if receipt.TxHash != "0xtx1" {
		t.Errorf("Expected tx hash 0xtx1, got %s", receipt.TxHash)
	}
	if receipt.Nonce != 5 {
		t.Errorf("Expected nonce 5, got %d", receipt.Nonce)
	}
	if receipt.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", receipt.Attempts)
	}
}

func TestExecute_NonceConflictRetriesWithRefreshedNonce(t *testing.T) {
	fc := &fakeChain{
		pendingNonce: 5,
		latestNonce:  7,
		submitErrs:   []error{chain.ClassifySubmitError(errors.New("nonce too low"))},
	}
	exec := newTestExecutor(fc)

	receipt, err := exec.Execute(context.Background(), testWallet(), "0xdest", decimal.RequireFromString("1.0"), nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if receipt.Attempts != 2 {
		t.Errorf("Expected success on attempt 2, got %d", receipt.Attempts)
	}
	if receipt.TxHash != "0xtx2" {
		t.Errorf("Expected attempt 2's tx hash, got %s", receipt.TxHash)
	}
	if len(fc.submitCalls) != 2 {
		t.Fatalf("Expected 2 submissions, got %d", len(fc.submitCalls))
	}
	if fc.submitCalls[0].Nonce == fc.submitCalls[1].Nonce {
		t.Error("Expected refreshed nonce on retry")
	}
	if fc.submitCalls[1].Nonce != 7 {
		t.Errorf("Expected retry to use latest confirmed nonce 7, got %d", fc.submitCalls[1].Nonce)
	}
}

func TestExecute_FatalErrorNoRetry(t *testing.T) {
	fatal := errors.New("insufficient funds for gas * price + value")
	fc := &fakeChain{submitErrs: []error{fatal}}
	exec := newTestExecutor(fc)

	_, err := exec.Execute(context.Background(), testWallet(), "0xdest", decimal.RequireFromString("1.0"), nil)
	if err == nil {
		t.Fatal("Expected error for fatal submission failure")
	}
	if len(fc.submitCalls) != 1 {
		t.Errorf("Expected exactly 1 submission for a fatal error, got %d", len(fc.submitCalls))
	}
	var transferErr *TransferError
	if !errors.As(err, &transferErr) {
		t.Fatalf("Expected TransferError, got %T", err)
	}
	if !errors.Is(err, fatal) {
		t.Error("Expected cause to be preserved")
	}
}

func TestExecute_ExhaustsAttempts(t *testing.T) {
	conflict := chain.ClassifySubmitError(errors.New("nonce too low"))
	fc := &fakeChain{submitErrs: []error{conflict, conflict, conflict}}
	exec := newTestExecutor(fc)

	_, err := exec.Execute(context.Background(), testWallet(), "0xdest", decimal.RequireFromString("1.0"), nil)
	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if len(fc.submitCalls) != 3 {
		t.Errorf("Expected 3 submissions, got %d", len(fc.submitCalls))
	}
	var transferErr *TransferError
	if !errors.As(err, &transferErr) {
		t.Fatalf("Expected TransferError, got %T", err)
	}
	if transferErr.Attempts != 3 {
		t.Errorf("Expected 3 attempts reported, got %d", transferErr.Attempts)
	}
	if !errors.Is(err, chain.ErrNonceConflict) {
		t.Error("Expected nonce conflict cause to be preserved")
	}
}

func TestExecute_CallbackFailuresAreSwallowed(t *testing.T) {
	fc := &fakeChain{}
	exec := newTestExecutor(fc)

	var checkpoints []string
	cbs := &Callbacks{
		Submitted: func(txHash string) error {
			checkpoints = append(checkpoints, "submitted")
			return errors.New("notification failed")
		},
		AwaitingConfirmation: func(txHash string) error {
			checkpoints = append(checkpoints, "awaiting")
			panic("renderer blew up")
		},
		Confirmed: func(receipt *models.TransferReceipt) error {
			checkpoints = append(checkpoints, "confirmed")
			return nil
		},
	}

	receipt, err := exec.Execute(context.Background(), testWallet(), "0xdest", decimal.RequireFromString("1.0"), cbs)
	if err != nil {
		t.Fatalf("Execute failed despite callback errors: %v", err)
	}
	if receipt == nil {
		t.Fatal("Expected a receipt")
	}
	if len(checkpoints) != 3 {
		t.Errorf("Expected all 3 checkpoints fired, got %v", checkpoints)
	}
}

func TestExecute_AmbiguousConfirmationResolvedByRepoll(t *testing.T) {
	fc := &fakeChain{
		waitErr:       fmt.Errorf("%w: timeout", chain.ErrConfirmationAmbiguous),
		repollConfirm: true,
	}
	exec := newTestExecutor(fc)

	receipt, err := exec.Execute(context.Background(), testWallet(), "0xdest", decimal.RequireFromString("1.0"), nil)
	if err != nil {
		t.Fatalf("Expected re-poll to resolve ambiguity, got %v", err)
	}
	if receipt.TxHash != "0xtx1" {
		t.Errorf("Expected receipt for confirmed tx, got %s", receipt.TxHash)
	}
}

func TestExecute_AmbiguousConfirmationSurfacedWithReceipt(t *testing.T) {
	fc := &fakeChain{
		waitErr:       fmt.Errorf("%w: timeout", chain.ErrConfirmationAmbiguous),
		repollConfirm: false,
	}
	exec := newTestExecutor(fc)

	receipt, err := exec.Execute(context.Background(), testWallet(), "0xdest", decimal.RequireFromString("1.0"), nil)
	if !errors.Is(err, chain.ErrConfirmationAmbiguous) {
		t.Fatalf("Expected ambiguous confirmation error, got %v", err)
	}
	if receipt == nil || receipt.TxHash != "0xtx1" {
		t.Error("Expected receipt alongside ambiguous error so callers can reconcile")
	}
	if len(fc.submitCalls) != 1 {
		t.Errorf("Expected no blind retry after ambiguous confirmation, got %d submissions", len(fc.submitCalls))
	}
}

func TestRateGovernor_EnforcesMinimumInterval(t *testing.T) {
	governor := NewRateGovernor(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := governor.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	elapsed := time.Since(start)

	// First call is free; the two subsequent calls must each wait.
	if elapsed < 40*time.Millisecond {
		t.Errorf("Expected at least 40ms for 3 governed calls, got %v", elapsed)
	}
}

func TestRateGovernor_CancelledContext(t *testing.T) {
	governor := NewRateGovernor(time.Hour)
	ctx := context.Background()

	if err := governor.Wait(ctx); err != nil {
		t.Fatalf("First wait failed: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := governor.Wait(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
