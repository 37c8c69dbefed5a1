package ledger

import (
	"context"
	"fmt"
	"sync"

	"monad-tipbot-go/internal/models"
	"monad-tipbot-go/internal/store"

	"go.uber.org/zap"
)

// FundingRegistry owns the funding wallets, one per sending platform user,
// bulk-loaded at start and created lazily on first need.
type FundingRegistry struct {
	mu         sync.Mutex
	cache      map[string]*models.Wallet
	store      store.WalletStore
	newKeypair KeyGenerator
}

func NewFundingRegistry(ctx context.Context, walletStore store.WalletStore, newKeypair KeyGenerator) (*FundingRegistry, error) {
	wallets, err := walletStore.LoadFundingWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load funding wallets: %w", err)
	}

	return &FundingRegistry{
		cache:      wallets,
		store:      walletStore,
		newKeypair: newKeypair,
	}, nil
}

// GetOrCreate resolves the funding wallet for a platform user key,
// generating and persisting a fresh keypair on first use. Idempotent.
func (r *FundingRegistry) GetOrCreate(ctx context.Context, userKey string) (*models.Wallet, error) {
	if userKey == "" {
		return nil, fmt.Errorf("empty user key")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if wallet, ok := r.cache[userKey]; ok {
		return wallet, nil
	}

	wallet, err := r.newKeypair(userKey)
	if err != nil {
		return nil, fmt.Errorf("unable to generate funding wallet for %s: %w", userKey, err)
	}

	if err := r.store.UpsertFundingWallet(ctx, wallet); err != nil {
		return nil, fmt.Errorf("unable to persist funding wallet for %s: %w", userKey, err)
	}

	r.cache[userKey] = wallet
	zap.L().Info("Funding wallet created",
		zap.String("user_key", userKey),
		zap.String("address", wallet.Address))

	return wallet, nil
}

// Get returns the funding wallet for a user key if one exists.
func (r *FundingRegistry) Get(userKey string) (*models.Wallet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.cache[userKey]
	return wallet, ok
}
