package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferReceipt reports one confirmed on-chain transfer.
type TransferReceipt struct {
	TxHash   string          `json:"tx_hash"`
	Nonce    uint64          `json:"nonce"`
	Amount   decimal.Decimal `json:"amount"`
	To       string          `json:"to"`
	Attempts int             `json:"attempts"`
}

// SettlementReceipt reports one settled tip: the principal transfer to the
// recipient's claim wallet plus the protocol fee transfer. FeeErr is non-nil
// when the principal succeeded but fee collection failed; the tip still
// counts as settled and the error is kept for operator reconciliation.
type SettlementReceipt struct {
	From        string          `json:"from"`
	ToUsername  string          `json:"to_username"`
	ToAddress   string          `json:"to_address"`
	Amount      decimal.Decimal `json:"amount"`
	FeeAmount   decimal.Decimal `json:"fee_amount"`
	PrincipalTx string          `json:"principal_tx"`
	FeeTx       string          `json:"fee_tx,omitempty"`
	FeeErr      error           `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
}
