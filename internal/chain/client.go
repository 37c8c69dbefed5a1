package chain

import (
	"context"

	"monad-tipbot-go/internal/models"

	"github.com/shopspring/decimal"
)

// TransferIntent describes a single value transfer ready for submission.
// It is ephemeral and never persisted.
type TransferIntent struct {
	Wallet *models.Wallet
	To     string
	Amount decimal.Decimal
	Nonce  uint64
}

// Client defines the contract with the blockchain RPC node. All amounts are
// denominated in MON; wei conversion happens inside the implementation.
type Client interface {
	// BalanceAt returns the confirmed balance of an address.
	BalanceAt(ctx context.Context, address string) (decimal.Decimal, error)

	// PendingNonceAt returns the next nonce including pending transactions.
	PendingNonceAt(ctx context.Context, address string) (uint64, error)

	// LatestNonceAt returns the next nonce from latest confirmed state only.
	// Retries after a nonce conflict must use this, not the pending view.
	LatestNonceAt(ctx context.Context, address string) (uint64, error)

	// EstimateTransferFee returns the network fee of a plain value transfer
	// at current gas prices.
	EstimateTransferFee(ctx context.Context) (decimal.Decimal, error)

	// Submit signs and broadcasts the transfer, returning the tx hash.
	// Submission rejections are classified (see IsRetryable).
	Submit(ctx context.Context, intent TransferIntent) (string, error)

	// WaitForReceipt blocks until the transaction is mined or the
	// confirmation window elapses. A timeout or transport failure while the
	// transaction may still confirm is reported as ErrConfirmationAmbiguous.
	WaitForReceipt(ctx context.Context, txHash string) error

	// TransactionConfirmed re-polls a transaction by hash once.
	TransactionConfirmed(ctx context.Context, txHash string) (bool, error)

	Close()
}
