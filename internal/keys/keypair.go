package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// Keypair is an ed25519 signing identity. A fresh keypair backs each
// newly created mint account and signs exactly once, during assembly.
type Keypair struct {
	pub  Pubkey
	priv ed25519.PrivateKey
}

// NewKeypair generates a fresh random keypair.
func NewKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	var pk Pubkey
	copy(pk[:], pub)
	return &Keypair{pub: pk, priv: priv}, nil
}

// KeypairFromBytes restores a keypair from the 64-byte form used by
// Solana keypair files (32-byte seed followed by 32-byte public key).
func KeypairFromBytes(raw []byte) (*Keypair, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	priv := ed25519.PrivateKey(append([]byte(nil), raw...))
	var pk Pubkey
	copy(pk[:], priv.Public().(ed25519.PublicKey))
	return &Keypair{pub: pk, priv: priv}, nil
}

// Pubkey returns the public half.
func (k *Keypair) Pubkey() Pubkey {
	return k.pub
}

// Sign signs the message and returns the 64-byte signature.
func (k *Keypair) Sign(message []byte) [64]byte {
	var sig [64]byte
	copy(sig[:], ed25519.Sign(k.priv, message))
	return sig
}
