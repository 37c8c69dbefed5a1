package database

const (
	// Funding wallet queries
	queryUpsertFundingWallet = `
		INSERT INTO funding_wallets (user_key, address, private_key)
		VALUES (?, ?, ?)
		ON CONFLICT(user_key) DO UPDATE SET
			address = excluded.address,
			private_key = excluded.private_key,
			updated_at = CURRENT_TIMESTAMP`

	queryGetFundingWallet = `
		SELECT user_key, address, private_key, created_at, updated_at
		FROM funding_wallets
		WHERE user_key = ?`

	queryLoadFundingWallets = `
		SELECT user_key, address, private_key, created_at, updated_at
		FROM funding_wallets
		ORDER BY created_at`

	// Claim wallet queries
	queryUpsertClaimWallet = `
		INSERT INTO claim_wallets (username_key, address, private_key, accrued, accrued_from)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username_key) DO UPDATE SET
			address = excluded.address,
			private_key = excluded.private_key,
			accrued = excluded.accrued,
			accrued_from = excluded.accrued_from,
			updated_at = CURRENT_TIMESTAMP`

	queryGetClaimWallet = `
		SELECT username_key, address, private_key, accrued, accrued_from, created_at, updated_at
		FROM claim_wallets
		WHERE username_key = ?`

	queryLoadClaimWallets = `
		SELECT username_key, address, private_key, accrued, accrued_from, created_at, updated_at
		FROM claim_wallets
		ORDER BY created_at`

	// Tip record queries
	queryInsertTipRecord = `
		INSERT INTO tip_records (id, from_identity, to_username, amount, fee_amount, tx_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryCheckDuplicateTipRecord = `
		SELECT id FROM tip_records WHERE tx_hash = ? LIMIT 1`

	queryGetTipHistory = `
		SELECT id, from_identity, to_username, amount, fee_amount, tx_hash, created_at
		FROM tip_records
		WHERE to_username = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`
)
