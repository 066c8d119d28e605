package token

import (
	"encoding/binary"

	"solana-token-forge/internal/keys"
)

// createMetadataAccountV3 is the token metadata program's instruction
// discriminator for creating a metadata record.
const createMetadataAccountV3 byte = 33

// MetadataArgs carries the on-chain metadata record contents. Mutability
// is fixed at creation time; the program offers no later instruction to
// change it.
type MetadataArgs struct {
	Name      string
	Symbol    string
	URI       string
	IsMutable bool
}

// NewCreateMetadataInstruction creates the metadata record for a mint.
// The record account is a derived address; the mint authority must sign
// because the record binds to the mint it controls.
func NewCreateMetadataInstruction(metadata, mint, mintAuthority, payer, updateAuthority keys.Pubkey, args MetadataArgs) Instruction {
	data := make([]byte, 0, 1+serializedDataV2Size(args)+2)
	data = append(data, createMetadataAccountV3)

	// DataV2: name, symbol, uri, seller fee basis points, then three
	// absent optional fields (creators, collection, uses).
	data = appendBorshString(data, args.Name)
	data = appendBorshString(data, args.Symbol)
	data = appendBorshString(data, args.URI)
	data = binary.LittleEndian.AppendUint16(data, 0) // sellerFeeBasisPoints
	data = append(data, 0, 0, 0)                     // creators, collection, uses: none

	if args.IsMutable {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	data = append(data, 0) // collection details: none

	return Instruction{
		ProgramID: keys.TokenMetadataProgramID,
		Accounts: []AccountMeta{
			meta(metadata, false, true),
			meta(mint, false, false),
			meta(mintAuthority, true, false),
			meta(payer, true, true),
			meta(updateAuthority, false, false),
			meta(keys.SystemProgramID, false, false),
			meta(keys.SysvarRentPubkey, false, false),
		},
		Data: data,
	}
}

// appendBorshString appends a u32 length prefix followed by the raw
// bytes, the borsh encoding for strings.
func appendBorshString(data []byte, s string) []byte {
	data = binary.LittleEndian.AppendUint32(data, uint32(len(s)))
	return append(data, s...)
}

func serializedDataV2Size(args MetadataArgs) int {
	return 4 + len(args.Name) + 4 + len(args.Symbol) + 4 + len(args.URI) + 2 + 3
}

// ParseMetadataMutability reads the isMutable flag back out of a
// create-metadata instruction's data. Used by tests to assert the flag
// without re-deriving borsh offsets by hand.
func ParseMetadataMutability(data []byte) (bool, bool) {
	if len(data) < 2 || data[0] != createMetadataAccountV3 {
		return false, false
	}
	// isMutable sits second from the end, ahead of the collection
	// details option byte.
	return data[len(data)-2] == 1, true
}
