package database

import (
	"context"
	"database/sql"
	"fmt"

	"monad-tipbot-go/internal/models"
	"monad-tipbot-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) GetFundingWallet(ctx context.Context, userKey string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.QueryRowContext(ctx, queryGetFundingWallet, userKey).
		Scan(&wallet.Identity, &wallet.Address, &wallet.PrivateKeyHex, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: funding wallet for %s", store.ErrWalletNotFound, userKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get funding wallet: %w", err)
	}
	return &wallet, nil
}

func (s *Service) UpsertFundingWallet(ctx context.Context, wallet *models.Wallet) error {
	_, err := s.db.ExecContext(ctx, queryUpsertFundingWallet,
		wallet.Identity, wallet.Address, wallet.PrivateKeyHex)
	if err != nil {
		return fmt.Errorf("failed to upsert funding wallet for %s: %w", wallet.Identity, err)
	}
	return nil
}

func (s *Service) LoadFundingWallets(ctx context.Context) (map[string]*models.Wallet, error) {
	rows, err := s.db.QueryContext(ctx, queryLoadFundingWallets)
	if err != nil {
		return nil, fmt.Errorf("failed to load funding wallets: %w", err)
	}
	defer rows.Close()

	wallets := make(map[string]*models.Wallet)
	for rows.Next() {
		var wallet models.Wallet
		if err := rows.Scan(&wallet.Identity, &wallet.Address, &wallet.PrivateKeyHex,
			&wallet.CreatedAt, &wallet.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan funding wallet: %w", err)
		}
		wallets[wallet.Identity] = &wallet
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funding wallets: %w", err)
	}

	zap.L().Info("Loaded funding wallets", zap.Int("count", len(wallets)))
	return wallets, nil
}

func (s *Service) GetClaimWallet(ctx context.Context, usernameKey string) (*models.ClaimWallet, error) {
	var wallet models.ClaimWallet
	var accrued string
	err := s.db.QueryRowContext(ctx, queryGetClaimWallet, usernameKey).
		Scan(&wallet.Identity, &wallet.Address, &wallet.PrivateKeyHex,
			&accrued, &wallet.AccruedFrom, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: claim wallet for %s", store.ErrWalletNotFound, usernameKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim wallet: %w", err)
	}

	wallet.Accrued, err = decimal.NewFromString(accrued)
	if err != nil {
		return nil, fmt.Errorf("failed to parse accrued amount %q: %w", accrued, err)
	}
	return &wallet, nil
}

func (s *Service) UpsertClaimWallet(ctx context.Context, wallet *models.ClaimWallet) error {
	_, err := s.db.ExecContext(ctx, queryUpsertClaimWallet,
		wallet.Identity, wallet.Address, wallet.PrivateKeyHex,
		wallet.Accrued.String(), wallet.AccruedFrom)
	if err != nil {
		return fmt.Errorf("failed to upsert claim wallet for %s: %w", wallet.Identity, err)
	}
	return nil
}

func (s *Service) LoadClaimWallets(ctx context.Context) (map[string]*models.ClaimWallet, error) {
	rows, err := s.db.QueryContext(ctx, queryLoadClaimWallets)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim wallets: %w", err)
	}
	defer rows.Close()

	wallets := make(map[string]*models.ClaimWallet)
	for rows.Next() {
		var wallet models.ClaimWallet
		var accrued string
		if err := rows.Scan(&wallet.Identity, &wallet.Address, &wallet.PrivateKeyHex,
			&accrued, &wallet.AccruedFrom, &wallet.CreatedAt, &wallet.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan claim wallet: %w", err)
		}
		wallet.Accrued, err = decimal.NewFromString(accrued)
		if err != nil {
			return nil, fmt.Errorf("failed to parse accrued amount %q: %w", accrued, err)
		}
		wallets[wallet.Identity] = &wallet
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claim wallets: %w", err)
	}

	zap.L().Info("Loaded claim wallets", zap.Int("count", len(wallets)))
	return wallets, nil
}
