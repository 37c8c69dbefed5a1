package store

import (
	"testing"
)

// Compile-time checks that the interfaces are importable and usable.
func TestStoreInterfacesExist(t *testing.T) {
	_ = ErrWalletNotFound
	_ = ErrDuplicateTip

	var _ WalletStore
	var _ TipLedger
}
