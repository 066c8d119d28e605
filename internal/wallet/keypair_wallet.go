package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"solana-token-forge/internal/keys"
	"solana-token-forge/internal/txn"
)

// KeypairWallet signs with a locally held keypair. It backs the CLI;
// interactive browser wallets implement the same interface out of
// process.
type KeypairWallet struct {
	kp *keys.Keypair
}

// NewKeypairWallet wraps an existing keypair.
func NewKeypairWallet(kp *keys.Keypair) *KeypairWallet {
	return &KeypairWallet{kp: kp}
}

// LoadKeypairWallet reads a keypair from the standard Solana keypair
// file format: a JSON array of 64 byte values.
func LoadKeypairWallet(path string) (*KeypairWallet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair file: %w", err)
	}
	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse keypair file: %w", err)
	}
	material := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("keypair file byte %d out of range: %d", i, v)
		}
		material[i] = byte(v)
	}
	kp, err := keys.KeypairFromBytes(material)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}
	return &KeypairWallet{kp: kp}, nil
}

// PublicKey returns the keypair's public half.
func (w *KeypairWallet) PublicKey() (keys.Pubkey, error) {
	if w.kp == nil {
		return keys.Pubkey{}, ErrNotConnected
	}
	return w.kp.Pubkey(), nil
}

// SignTransaction signs immediately; a local keypair never rejects.
func (w *KeypairWallet) SignTransaction(_ context.Context, tx *txn.Transaction) error {
	if w.kp == nil {
		return ErrNotConnected
	}
	return tx.Sign(w.kp)
}
