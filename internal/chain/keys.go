package chain

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"monad-tipbot-go/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// NewKeypair generates a fresh secp256k1 custodial wallet for the given
// identity key.
func NewKeypair(identity string) (*models.Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("unable to generate keypair: %w", err)
	}

	now := time.Now().UTC()
	return &models.Wallet{
		Identity:      identity,
		Address:       crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
		PrivateKeyHex: hex.EncodeToString(crypto.FromECDSA(privateKey)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// AddressFromPrivateKey derives the wallet address from stored key material.
func AddressFromPrivateKey(privateKeyHex string) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("invalid private key material: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

// IsValidAddress reports whether s is a well-formed hex address.
func IsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}
