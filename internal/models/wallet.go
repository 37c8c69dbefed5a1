package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a custodial keypair held on behalf of a platform identity.
// Funding wallets are keyed by the sender's platform user id; claim wallets
// are keyed by the lowercased recipient username.
type Wallet struct {
	Identity      string    `db:"identity"`
	Address       string    `db:"address"`
	PrivateKeyHex string    `db:"private_key"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ClaimWallet is a claim wallet plus its accrual cache. Accrued is a running
// total of unclaimed tips, not a ledger: the authoritative history lives in
// tip_records, and the on-chain balance is authoritative for movable funds.
type ClaimWallet struct {
	Wallet
	Accrued     decimal.Decimal `db:"accrued"`
	AccruedFrom string          `db:"accrued_from"`
}

// TipRecord is the immutable audit record of one successful principal transfer.
type TipRecord struct {
	Id         string          `db:"id"`
	From       string          `db:"from_identity"`
	ToUsername string          `db:"to_username"`
	Amount     decimal.Decimal `db:"amount"`
	FeeAmount  decimal.Decimal `db:"fee_amount"`
	TxHash     string          `db:"tx_hash"`
	CreatedAt  time.Time       `db:"created_at"`
}
