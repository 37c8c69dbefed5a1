package chain

import (
	"testing"
)

func TestNewKeypair(t *testing.T) {
	wallet, err := NewKeypair("alice")
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}

	if wallet.Identity != "alice" {
		t.Errorf("Expected identity alice, got %s", wallet.Identity)
	}
	if !IsValidAddress(wallet.Address) {
		t.Errorf("Generated address is not valid: %s", wallet.Address)
	}
	if wallet.PrivateKeyHex == "" {
		t.Error("Expected non-empty private key material")
	}

	// The stored key material must derive back to the same address.
	derived, err := AddressFromPrivateKey(wallet.PrivateKeyHex)
	if err != nil {
		t.Fatalf("AddressFromPrivateKey failed: %v", err)
	}
	if derived != wallet.Address {
		t.Errorf("Derived address %s does not match generated %s", derived, wallet.Address)
	}
}

func TestNewKeypair_Distinct(t *testing.T) {
	first, err := NewKeypair("a")
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}
	second, err := NewKeypair("b")
	if err != nil {
		t.Fatalf("NewKeypair failed: %v", err)
	}
	if first.Address == second.Address {
		t.Error("Expected distinct keypairs for distinct calls")
	}
}

func TestIsValidAddress(t *testing.T) {
	if !IsValidAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72") {
		t.Error("Expected well-formed address to validate")
	}
	if IsValidAddress("not-an-address") {
		t.Error("Expected malformed address to fail validation")
	}
	if IsValidAddress("") {
		t.Error("Expected empty address to fail validation")
	}
}
