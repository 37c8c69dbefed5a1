package chain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// MON uses 18 decimal places, same as ether.
const decimals = 18

// ToWei converts a MON amount to wei, truncating sub-wei precision.
func ToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}

// FromWei converts a wei amount to MON.
func FromWei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -decimals)
}
