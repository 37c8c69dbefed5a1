package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"monad-tipbot-go/internal/models"
	"monad-tipbot-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AppendTipRecord writes one immutable audit row for a settled tip. The tx
// hash is unique: re-recording the same settlement is a duplicate.
func (s *Service) AppendTipRecord(ctx context.Context, record models.TipRecord) error {
	var existingId string
	err := s.db.QueryRowContext(ctx, queryCheckDuplicateTipRecord, record.TxHash).Scan(&existingId)
	if err == nil {
		zap.L().Warn("Duplicate tip record detected, skipping",
			zap.String("tx_hash", record.TxHash),
			zap.String("existing_id", existingId))
		return fmt.Errorf("%w: tx_hash %s already recorded", store.ErrDuplicateTip, record.TxHash)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for duplicate tip record: %w", err)
	}

	if record.Id == "" {
		record.Id = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, queryInsertTipRecord,
		record.Id, record.From, record.ToUsername,
		record.Amount.String(), record.FeeAmount.String(),
		record.TxHash, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tip record: %w", err)
	}

	zap.L().Info("Tip record appended",
		zap.String("id", record.Id),
		zap.String("from", record.From),
		zap.String("to_username", record.ToUsername),
		zap.String("amount", record.Amount.String()),
		zap.String("fee_amount", record.FeeAmount.String()),
		zap.String("tx_hash", record.TxHash))

	return nil
}

func (s *Service) GetTipHistory(ctx context.Context, usernameKey string, limit, offset int) ([]models.TipRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryGetTipHistory, usernameKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tip history: %w", err)
	}
	defer rows.Close()

	var records []models.TipRecord
	for rows.Next() {
		var record models.TipRecord
		var amount, feeAmount string
		if err := rows.Scan(&record.Id, &record.From, &record.ToUsername,
			&amount, &feeAmount, &record.TxHash, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tip record: %w", err)
		}
		record.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tip amount %q: %w", amount, err)
		}
		record.FeeAmount, err = decimal.NewFromString(feeAmount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fee amount %q: %w", feeAmount, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tip records: %w", err)
	}

	return records, nil
}
