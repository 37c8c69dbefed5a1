package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"monad-tipbot-go/internal/models"
	"monad-tipbot-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// KeyGenerator produces a fresh custodial keypair for a claim wallet.
// Injected so tests run without the chain package's real key generation.
type KeyGenerator func(identity string) (*models.Wallet, error)

// ClaimLedger tracks, per recipient username, an unclaimed-balance wallet
// and its accrual cache. All claim wallets are held in memory (bulk-loaded
// at start) and written through to the store on every mutation.
//
// Every mutating operation for a given key runs under that key's lock, so a
// drain can never race another drain on the same key into double-counting
// the claimable figure.
type ClaimLedger struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	cache      map[string]*models.ClaimWallet
	store      store.WalletStore
	newKeypair KeyGenerator
}

func NewClaimLedger(ctx context.Context, walletStore store.WalletStore, newKeypair KeyGenerator) (*ClaimLedger, error) {
	wallets, err := walletStore.LoadClaimWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load claim wallets: %w", err)
	}

	return &ClaimLedger{
		locks:      make(map[string]*sync.Mutex),
		cache:      wallets,
		store:      walletStore,
		newKeypair: newKeypair,
	}, nil
}

// NormalizeKey maps a username to its claim wallet key: trimmed, lowercased,
// without the leading @.
func NormalizeKey(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

func (l *ClaimLedger) keyLock(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}

// GetOrCreate resolves the claim wallet for a username, generating and
// persisting a fresh keypair on first use. Idempotent: repeated calls return
// the same wallet and perform no further writes.
func (l *ClaimLedger) GetOrCreate(ctx context.Context, username string) (*models.ClaimWallet, error) {
	key := NormalizeKey(username)
	if key == "" {
		return nil, fmt.Errorf("empty username key")
	}

	lock := l.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if wallet, ok := l.cache[key]; ok {
		return wallet, nil
	}

	keypair, err := l.newKeypair(key)
	if err != nil {
		return nil, fmt.Errorf("unable to generate claim wallet for %s: %w", key, err)
	}

	wallet := &models.ClaimWallet{
		Wallet:  *keypair,
		Accrued: decimal.Zero,
	}
	wallet.Identity = key

	// Persist before first use: funds must never target an address whose
	// key material only exists in memory.
	if err := l.store.UpsertClaimWallet(ctx, wallet); err != nil {
		return nil, fmt.Errorf("unable to persist claim wallet for %s: %w", key, err)
	}

	l.cache[key] = wallet
	zap.L().Info("Claim wallet created",
		zap.String("username_key", key),
		zap.String("address", wallet.Address))

	return wallet, nil
}

// Get returns the claim wallet for a username if one exists.
func (l *ClaimLedger) Get(username string) (*models.ClaimWallet, bool) {
	key := NormalizeKey(username)
	lock := l.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	wallet, ok := l.cache[key]
	return wallet, ok
}

// Accrue adds delta to the recipient's unclaimed running total and records
// the tipping identity, then persists the wallet.
func (l *ClaimLedger) Accrue(ctx context.Context, username, from string, delta decimal.Decimal) (decimal.Decimal, error) {
	key := NormalizeKey(username)
	lock := l.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	wallet, ok := l.cache[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: claim wallet for %s", store.ErrWalletNotFound, key)
	}

	prevAmount, prevFrom := wallet.Accrued, wallet.AccruedFrom
	wallet.Accrued = wallet.Accrued.Add(delta)
	wallet.AccruedFrom = from

	if err := l.store.UpsertClaimWallet(ctx, wallet); err != nil {
		wallet.Accrued, wallet.AccruedFrom = prevAmount, prevFrom
		return decimal.Zero, fmt.Errorf("unable to persist accrual for %s: %w", key, err)
	}

	return wallet.Accrued, nil
}

// Drain zeroes the accrual cache and returns what it was. It moves no funds:
// the on-chain balance is authoritative for how much can actually move, the
// accrual only for what the recipient has been told is waiting.
func (l *ClaimLedger) Drain(ctx context.Context, username string) (decimal.Decimal, error) {
	key := NormalizeKey(username)
	lock := l.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	wallet, ok := l.cache[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: claim wallet for %s", store.ErrWalletNotFound, key)
	}

	prevAmount, prevFrom := wallet.Accrued, wallet.AccruedFrom
	if prevAmount.IsZero() {
		return decimal.Zero, nil
	}

	wallet.Accrued = decimal.Zero
	wallet.AccruedFrom = ""

	if err := l.store.UpsertClaimWallet(ctx, wallet); err != nil {
		wallet.Accrued, wallet.AccruedFrom = prevAmount, prevFrom
		return decimal.Zero, fmt.Errorf("unable to persist drain for %s: %w", key, err)
	}

	zap.L().Info("Claim accrual drained",
		zap.String("username_key", key),
		zap.String("previous_amount", prevAmount.String()))

	return prevAmount, nil
}
