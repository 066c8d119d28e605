package token

import (
	"encoding/binary"

	"solana-token-forge/internal/keys"
)

// Compute budget program instruction tags.
const (
	cbSetComputeUnitLimit byte = 2
	cbSetComputeUnitPrice byte = 3
)

// NewSetComputeUnitLimitInstruction caps the transaction's compute
// units. The metadata creation instruction alone can exceed the default
// allowance, so the limit is raised well above the measured need.
func NewSetComputeUnitLimitInstruction(units uint32) Instruction {
	data := make([]byte, 1+4)
	data[0] = cbSetComputeUnitLimit
	binary.LittleEndian.PutUint32(data[1:], units)

	return Instruction{
		ProgramID: keys.ComputeBudgetProgramID,
		Accounts:  []AccountMeta{},
		Data:      data,
	}
}

// NewSetComputeUnitPriceInstruction sets the priority fee in
// micro-lamports per compute unit.
func NewSetComputeUnitPriceInstruction(microLamports uint64) Instruction {
	data := make([]byte, 1+8)
	data[0] = cbSetComputeUnitPrice
	binary.LittleEndian.PutUint64(data[1:], microLamports)

	return Instruction{
		ProgramID: keys.ComputeBudgetProgramID,
		Accounts:  []AccountMeta{},
		Data:      data,
	}
}
