package store

import (
	"context"
	"errors"

	"monad-tipbot-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrDuplicateTip   = errors.New("duplicate tip record")
)

// WalletStore defines the persistence contract for custodial wallets.
// Both tables are bulk-loaded into memory at process start and written back
// on every mutation; keys are the platform user id (funding) and the
// lowercased username (claim).
type WalletStore interface {
	GetFundingWallet(ctx context.Context, userKey string) (*models.Wallet, error)
	UpsertFundingWallet(ctx context.Context, wallet *models.Wallet) error
	LoadFundingWallets(ctx context.Context) (map[string]*models.Wallet, error)

	GetClaimWallet(ctx context.Context, usernameKey string) (*models.ClaimWallet, error)
	UpsertClaimWallet(ctx context.Context, wallet *models.ClaimWallet) error
	LoadClaimWallets(ctx context.Context) (map[string]*models.ClaimWallet, error)
}

// TipLedger is the append-only audit trail of settled tips.
type TipLedger interface {
	AppendTipRecord(ctx context.Context, record models.TipRecord) error
	GetTipHistory(ctx context.Context, usernameKey string, limit, offset int) ([]models.TipRecord, error)
}
