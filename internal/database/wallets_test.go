package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"monad-tipbot-go/internal/models"
	"monad-tipbot-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service, err := NewServiceFromDB(db)
	if err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func TestFundingWallet_UpsertAndGet(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	wallet := &models.Wallet{
		Identity:      "12345",
		Address:       "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		PrivateKeyHex: "deadbeef",
	}

	if err := service.UpsertFundingWallet(ctx, wallet); err != nil {
		t.Fatalf("UpsertFundingWallet failed: %v", err)
	}

	got, err := service.GetFundingWallet(ctx, "12345")
	if err != nil {
		t.Fatalf("GetFundingWallet failed: %v", err)
	}
	if got.Address != wallet.Address {
		t.Errorf("Expected address %s, got %s", wallet.Address, got.Address)
	}
	if got.PrivateKeyHex != wallet.PrivateKeyHex {
		t.Errorf("Expected key material to round-trip")
	}
}

func TestFundingWallet_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.GetFundingWallet(context.Background(), "missing")
	if !errors.Is(err, store.ErrWalletNotFound) {
		t.Errorf("Expected ErrWalletNotFound, got %v", err)
	}
}

func TestFundingWallet_UpsertIsIdempotent(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	wallet := &models.Wallet{Identity: "12345", Address: "0xabc", PrivateKeyHex: "k1"}

	if err := service.UpsertFundingWallet(ctx, wallet); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if err := service.UpsertFundingWallet(ctx, wallet); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	wallets, err := service.LoadFundingWallets(ctx)
	if err != nil {
		t.Fatalf("LoadFundingWallets failed: %v", err)
	}
	if len(wallets) != 1 {
		t.Errorf("Expected 1 wallet after repeated upsert, got %d", len(wallets))
	}
}

func TestClaimWallet_AccrualRoundTrip(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	wallet := &models.ClaimWallet{
		Wallet: models.Wallet{
			Identity:      "alice",
			Address:       "0xdef",
			PrivateKeyHex: "k2",
		},
		Accrued:     decimal.RequireFromString("1.25"),
		AccruedFrom: "12345",
	}

	if err := service.UpsertClaimWallet(ctx, wallet); err != nil {
		t.Fatalf("UpsertClaimWallet failed: %v", err)
	}

	got, err := service.GetClaimWallet(ctx, "alice")
	if err != nil {
		t.Fatalf("GetClaimWallet failed: %v", err)
	}
	if !got.Accrued.Equal(wallet.Accrued) {
		t.Errorf("Expected accrued %s, got %s", wallet.Accrued.String(), got.Accrued.String())
	}
	if got.AccruedFrom != "12345" {
		t.Errorf("Expected accrued_from 12345, got %s", got.AccruedFrom)
	}
}

func TestLoadClaimWallets(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	for _, username := range []string{"alice", "bob"} {
		wallet := &models.ClaimWallet{
			Wallet:  models.Wallet{Identity: username, Address: "0x" + username, PrivateKeyHex: "k"},
			Accrued: decimal.Zero,
		}
		if err := service.UpsertClaimWallet(ctx, wallet); err != nil {
			t.Fatalf("UpsertClaimWallet failed: %v", err)
		}
	}

	wallets, err := service.LoadClaimWallets(ctx)
	if err != nil {
		t.Fatalf("LoadClaimWallets failed: %v", err)
	}
	if len(wallets) != 2 {
		t.Fatalf("Expected 2 claim wallets, got %d", len(wallets))
	}
	if _, ok := wallets["alice"]; !ok {
		t.Error("Expected alice in loaded wallets")
	}
	if _, ok := wallets["bob"]; !ok {
		t.Error("Expected bob in loaded wallets")
	}
}
