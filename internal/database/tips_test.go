package database

import (
	"context"
	"errors"
	"testing"

	"monad-tipbot-go/internal/models"
	"monad-tipbot-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestAppendTipRecord(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	record := models.TipRecord{
		From:       "12345",
		ToUsername: "alice",
		Amount:     decimal.RequireFromString("1.0"),
		FeeAmount:  decimal.RequireFromString("0.1"),
		TxHash:     "0xaaa",
	}

	if err := service.AppendTipRecord(ctx, record); err != nil {
		t.Fatalf("AppendTipRecord failed: %v", err)
	}

	history, err := service.GetTipHistory(ctx, "alice", 10, 0)
	if err != nil {
		t.Fatalf("GetTipHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(history))
	}
	if !history[0].Amount.Equal(record.Amount) {
		t.Errorf("Expected amount %s, got %s", record.Amount.String(), history[0].Amount.String())
	}
	if !history[0].FeeAmount.Equal(record.FeeAmount) {
		t.Errorf("Expected fee %s, got %s", record.FeeAmount.String(), history[0].FeeAmount.String())
	}
	if history[0].Id == "" {
		t.Error("Expected generated record id")
	}
}

func TestAppendTipRecord_DuplicateTxHash(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	record := models.TipRecord{
		From:       "12345",
		ToUsername: "alice",
		Amount:     decimal.RequireFromString("1.0"),
		FeeAmount:  decimal.RequireFromString("0.1"),
		TxHash:     "0xbbb",
	}

	if err := service.AppendTipRecord(ctx, record); err != nil {
		t.Fatalf("First append failed: %v", err)
	}

	err := service.AppendTipRecord(ctx, record)
	if !errors.Is(err, store.ErrDuplicateTip) {
		t.Errorf("Expected ErrDuplicateTip, got %v", err)
	}

	history, err := service.GetTipHistory(ctx, "alice", 10, 0)
	if err != nil {
		t.Fatalf("GetTipHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 record after duplicate append, got %d", len(history))
	}
}

func TestGetTipHistory_Pagination(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	hashes := []string{"0x1", "0x2", "0x3"}
	for _, hash := range hashes {
		record := models.TipRecord{
			From:       "12345",
			ToUsername: "alice",
			Amount:     decimal.RequireFromString("0.5"),
			FeeAmount:  decimal.RequireFromString("0.05"),
			TxHash:     hash,
		}
		if err := service.AppendTipRecord(ctx, record); err != nil {
			t.Fatalf("AppendTipRecord failed: %v", err)
		}
	}

	page, err := service.GetTipHistory(ctx, "alice", 2, 0)
	if err != nil {
		t.Fatalf("GetTipHistory failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("Expected page of 2 records, got %d", len(page))
	}

	rest, err := service.GetTipHistory(ctx, "alice", 2, 2)
	if err != nil {
		t.Fatalf("GetTipHistory failed: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("Expected 1 remaining record, got %d", len(rest))
	}
}
