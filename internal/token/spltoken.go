package token

import (
	"encoding/binary"

	"solana-token-forge/internal/keys"
)

// MintAccountSize is the serialized size of an SPL mint account:
// mint authority option+key (36) | supply (8) | decimals (1) |
// initialized (1) | freeze authority option+key (36).
const MintAccountSize = 82

// SPL token program instruction tags (single-byte prefix).
const (
	tokInitializeMint byte = 0
	tokSetAuthority   byte = 6
	tokMintTo         byte = 7
)

// AuthorityType selects which mint privilege a SetAuthority instruction
// targets.
type AuthorityType byte

const (
	AuthorityMintTokens    AuthorityType = 0
	AuthorityFreezeAccount AuthorityType = 1
)

// NewInitializeMintInstruction initializes an allocated mint account
// with the given decimal precision. Both authorities are always set at
// initialization; revocation is a separate, later instruction.
func NewInitializeMintInstruction(mint keys.Pubkey, decimals uint8, mintAuthority, freezeAuthority keys.Pubkey) Instruction {
	data := make([]byte, 1+1+32+1+32)
	data[0] = tokInitializeMint
	data[1] = decimals
	copy(data[2:], mintAuthority[:])
	data[34] = 1 // freeze authority present
	copy(data[35:], freezeAuthority[:])

	return Instruction{
		ProgramID: keys.TokenProgramID,
		Accounts: []AccountMeta{
			meta(mint, false, true),
			meta(keys.SysvarRentPubkey, false, false),
		},
		Data: data,
	}
}

// NewMintToInstruction mints amount base units into the destination
// token account, authorized by the current mint authority.
func NewMintToInstruction(mint, destination, authority keys.Pubkey, amount uint64) Instruction {
	data := make([]byte, 1+8)
	data[0] = tokMintTo
	binary.LittleEndian.PutUint64(data[1:], amount)

	return Instruction{
		ProgramID: keys.TokenProgramID,
		Accounts: []AccountMeta{
			meta(mint, false, true),
			meta(destination, false, true),
			meta(authority, true, false),
		},
		Data: data,
	}
}

// NewRevokeAuthorityInstruction sets the selected authority on the mint
// to none. Irreversible: once revoked, the privilege cannot be
// reassigned.
func NewRevokeAuthorityInstruction(mint, currentAuthority keys.Pubkey, authType AuthorityType) Instruction {
	data := make([]byte, 1+1+1)
	data[0] = tokSetAuthority
	data[1] = byte(authType)
	data[2] = 0 // new authority: none

	return Instruction{
		ProgramID: keys.TokenProgramID,
		Accounts: []AccountMeta{
			meta(mint, false, true),
			meta(currentAuthority, true, false),
		},
		Data: data,
	}
}

// NewCreateAssociatedTokenAccountInstruction creates the canonical
// holding account for (owner, mint), funded by payer. The address is
// derived, never chosen, so the instruction carries no data.
func NewCreateAssociatedTokenAccountInstruction(payer, associatedAccount, owner, mint keys.Pubkey) Instruction {
	return Instruction{
		ProgramID: keys.AssociatedTokenProgramID,
		Accounts: []AccountMeta{
			meta(payer, true, true),
			meta(associatedAccount, false, true),
			meta(owner, false, false),
			meta(mint, false, false),
			meta(keys.SystemProgramID, false, false),
			meta(keys.TokenProgramID, false, false),
		},
		Data: []byte{},
	}
}
