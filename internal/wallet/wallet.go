// Package wallet abstracts the requester's signing identity. The
// creation pipeline never touches private key material; it hands a
// partially signed transaction across this boundary and gets it back
// signed or refused.
package wallet

import (
	"context"
	"errors"

	"solana-token-forge/internal/keys"
	"solana-token-forge/internal/txn"
)

var (
	// ErrNotConnected is returned when no identity is available.
	ErrNotConnected = errors.New("wallet not connected")

	// ErrRejected is returned when the user declines to sign.
	ErrRejected = errors.New("signing rejected by wallet")
)

// Wallet exposes the requester's identity and interactive signing.
type Wallet interface {
	// PublicKey returns the connected identity, or ErrNotConnected.
	PublicKey() (keys.Pubkey, error)

	// SignTransaction adds the identity's signature to the
	// transaction, or returns ErrRejected.
	SignTransaction(ctx context.Context, tx *txn.Transaction) error
}
