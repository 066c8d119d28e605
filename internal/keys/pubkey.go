// Package keys provides Solana public keys, keypairs, and address
// derivation (program derived addresses and associated token accounts).
package keys

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Pubkey is a 32-byte ed25519 public key identifying a Solana account.
type Pubkey [32]byte

// ParsePubkey decodes a base58-encoded public key.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode pubkey: %w", err)
	}
	if len(raw) != 32 {
		return pk, fmt.Errorf("pubkey must be 32 bytes, got %d", len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustParsePubkey decodes a base58 public key or panics.
// Intended for well-known program ID constants only.
func MustParsePubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(fmt.Sprintf("invalid pubkey %q: %v", s, err))
	}
	return pk
}

// String returns the base58 encoding.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Bytes returns a copy of the raw 32 bytes.
func (p Pubkey) Bytes() []byte {
	b := make([]byte, 32)
	copy(b, p[:])
	return b
}

// IsZero reports whether the key is all zeroes (unset).
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// Well-known program identifiers.
var (
	SystemProgramID          = MustParsePubkey("11111111111111111111111111111111")
	TokenProgramID           = MustParsePubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgramID = MustParsePubkey("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	TokenMetadataProgramID   = MustParsePubkey("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	ComputeBudgetProgramID   = MustParsePubkey("ComputeBudget111111111111111111111111111111")
	SysvarRentPubkey         = MustParsePubkey("SysvarRent111111111111111111111111111111111")
)

// pdaMarker terminates seed material during PDA derivation.
var pdaMarker = []byte("ProgramDerivedAddress")

// FindProgramAddress derives a program derived address for the given
// seeds. It searches bump seeds from 255 downward until the resulting
// hash falls off the ed25519 curve, so the address can have no private
// key. Any party repeating the derivation obtains the same address.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	for bump := 255; bump > 0; bump-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, byte(bump))
		data = append(data, programID[:]...)
		data = append(data, pdaMarker...)

		hash := sha256.Sum256(data)
		if !isOnCurve(hash[:]) {
			return Pubkey(hash), uint8(bump), nil
		}
	}
	return Pubkey{}, 0, fmt.Errorf("no viable bump seed for program %s", programID)
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// FindAssociatedTokenAddress derives the canonical holding account for
// an (owner, mint) pair under the associated token program.
func FindAssociatedTokenAddress(owner, mint Pubkey) (Pubkey, error) {
	seeds := [][]byte{owner[:], TokenProgramID[:], mint[:]}
	addr, _, err := FindProgramAddress(seeds, AssociatedTokenProgramID)
	if err != nil {
		return Pubkey{}, fmt.Errorf("derive associated token address: %w", err)
	}
	return addr, nil
}

// FindMetadataAddress derives the metadata record account for a mint
// under the token metadata program, namespaced by the literal "metadata"
// seed tag.
func FindMetadataAddress(mint Pubkey) (Pubkey, error) {
	seeds := [][]byte{[]byte("metadata"), TokenMetadataProgramID[:], mint[:]}
	addr, _, err := FindProgramAddress(seeds, TokenMetadataProgramID)
	if err != nil {
		return Pubkey{}, fmt.Errorf("derive metadata address: %w", err)
	}
	return addr, nil
}
