package txn

import (
	"fmt"

	"solana-token-forge/internal/keys"
	"solana-token-forge/internal/token"
)

// Compute budget hints prepended to every creation transaction. The
// metadata instruction is heavy enough to blow through the default
// per-transaction allowance, so the limit sits well above the measured
// cost.
const (
	ComputeUnitPriceMicroLamports uint64 = 1_500_000
	ComputeUnitLimit              uint32 = 1_350_000
)

// Assemble wraps a creation sequence into a partially signed
// transaction: two compute budget directives are prepended, the fee
// payer and checkpoint are bound, and the asset identity signs (it must,
// as the to-be-created account on the allocation instruction). The
// requester's signature slot is left open for the wallet. Assemble never
// submits; submission is a separate, explicit step.
func Assemble(ixs []token.Instruction, feePayer keys.Pubkey, recentBlockhash Blockhash, asset *keys.Keypair) (*Transaction, error) {
	if len(ixs) == 0 {
		return nil, fmt.Errorf("empty instruction sequence")
	}
	if asset == nil {
		return nil, fmt.Errorf("asset keypair is required")
	}

	full := make([]token.Instruction, 0, len(ixs)+2)
	full = append(full,
		token.NewSetComputeUnitPriceInstruction(ComputeUnitPriceMicroLamports),
		token.NewSetComputeUnitLimitInstruction(ComputeUnitLimit),
	)
	full = append(full, ixs...)

	msg, err := CompileMessage(feePayer, recentBlockhash, full)
	if err != nil {
		return nil, fmt.Errorf("compile message: %w", err)
	}

	tx := NewTransaction(msg)
	if err := tx.Sign(asset); err != nil {
		return nil, fmt.Errorf("asset identity sign: %w", err)
	}
	return tx, nil
}
