package token

import (
	"encoding/binary"

	"solana-token-forge/internal/keys"
)

// System program instruction indexes (little-endian u32 prefix).
const (
	sysCreateAccount uint32 = 0
	sysTransfer      uint32 = 2
)

// NewCreateAccountInstruction allocates a new account at newAccount's
// address, funded by funder with lamports, sized to space bytes, and
// owned by the given program. Both funder and the new account must sign.
func NewCreateAccountInstruction(funder, newAccount, owner keys.Pubkey, lamports uint64, space uint64) Instruction {
	data := make([]byte, 4+8+8+32)
	binary.LittleEndian.PutUint32(data[0:], sysCreateAccount)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[12:], space)
	copy(data[20:], owner[:])

	return Instruction{
		ProgramID: keys.SystemProgramID,
		Accounts: []AccountMeta{
			meta(funder, true, true),
			meta(newAccount, true, true),
		},
		Data: data,
	}
}

// NewTransferInstruction moves lamports from one system account to
// another.
func NewTransferInstruction(from, to keys.Pubkey, lamports uint64) Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data[0:], sysTransfer)
	binary.LittleEndian.PutUint64(data[4:], lamports)

	return Instruction{
		ProgramID: keys.SystemProgramID,
		Accounts: []AccountMeta{
			meta(from, true, true),
			meta(to, false, true),
		},
		Data: data,
	}
}
