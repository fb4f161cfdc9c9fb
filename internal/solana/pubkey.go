package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PubkeyLength is the byte length of a Solana public key.
const PubkeyLength = 32

// DecodePubkey decodes a base58 public key and checks its length.
func DecodePubkey(pubkey string) ([]byte, error) {
	raw, err := base58.Decode(pubkey)
	if err != nil {
		return nil, fmt.Errorf("decode pubkey: %w", err)
	}
	if len(raw) != PubkeyLength {
		return nil, fmt.Errorf("pubkey must be %d bytes, got %d", PubkeyLength, len(raw))
	}
	return raw, nil
}

// IsValidPubkey reports whether s is a well-formed base58 public key.
func IsValidPubkey(s string) bool {
	_, err := DecodePubkey(s)
	return err == nil
}

// IsOnCurve reports whether the public key lies on the ed25519 curve.
// Wallet addresses are on-curve; program-derived addresses are not.
func IsOnCurve(pubkey string) (bool, error) {
	raw, err := DecodePubkey(pubkey)
	if err != nil {
		return false, err
	}

	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil, nil
}

// ValidateWalletAddress checks that addr is a well-formed, on-curve pubkey.
func ValidateWalletAddress(addr string) error {
	onCurve, err := IsOnCurve(addr)
	if err != nil {
		return err
	}
	if !onCurve {
		return fmt.Errorf("address %s is not on the ed25519 curve", addr)
	}
	return nil
}
