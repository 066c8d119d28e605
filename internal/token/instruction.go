// Package token builds the ledger instructions for creating an SPL
// token: account allocation, mint initialization, associated account
// creation, initial supply mint, metadata record, service fee transfer,
// and optional authority revocations.
package token

import "solana-token-forge/internal/keys"

// AccountMeta describes one account referenced by an instruction.
type AccountMeta struct {
	Pubkey     keys.Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program invocation: target program, ordered
// account references, and opaque instruction data.
type Instruction struct {
	ProgramID keys.Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// meta is shorthand for constructing AccountMeta values.
func meta(pk keys.Pubkey, signer, writable bool) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: signer, IsWritable: writable}
}
