// Package txn compiles instruction lists into Solana legacy wire
// messages, applies signatures, and serializes transactions for
// submission.
package txn

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-token-forge/internal/keys"
	"solana-token-forge/internal/token"
)

// Blockhash is a recent network checkpoint bounding transaction
// validity. A transaction referencing an expired blockhash is rejected,
// which is what makes submitted transactions replay-safe.
type Blockhash [32]byte

// ParseBlockhash decodes a base58 blockhash.
func ParseBlockhash(s string) (Blockhash, error) {
	var bh Blockhash
	raw, err := base58.Decode(s)
	if err != nil {
		return bh, fmt.Errorf("decode blockhash: %w", err)
	}
	if len(raw) != 32 {
		return bh, fmt.Errorf("blockhash must be 32 bytes, got %d", len(raw))
	}
	copy(bh[:], raw)
	return bh, nil
}

// String returns the base58 encoding.
func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

// MessageHeader counts signing and read-only accounts, in the order the
// runtime expects them in the key table.
type MessageHeader struct {
	NumRequiredSignatures uint8
	NumReadonlySigned     uint8
	NumReadonlyUnsigned   uint8
}

// CompiledInstruction references accounts by index into the message key
// table.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	AccountIndexes []uint8
	Data           []byte
}

// Message is a compiled legacy transaction message.
type Message struct {
	Header          MessageHeader
	AccountKeys     []keys.Pubkey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

// accountEntry accumulates merged flags for one pubkey during
// compilation.
type accountEntry struct {
	pubkey   keys.Pubkey
	signer   bool
	writable bool
}

// CompileMessage builds a message from instructions. The fee payer is
// forced to the front as a writable signer; remaining accounts keep
// first-appearance order within their class (writable signers, readonly
// signers, writable non-signers, readonly non-signers). Flags for an
// account referenced more than once are merged with OR.
func CompileMessage(feePayer keys.Pubkey, recentBlockhash Blockhash, ixs []token.Instruction) (*Message, error) {
	if feePayer.IsZero() {
		return nil, fmt.Errorf("fee payer is required")
	}
	if len(ixs) == 0 {
		return nil, fmt.Errorf("no instructions to compile")
	}

	entries := []*accountEntry{{pubkey: feePayer, signer: true, writable: true}}
	index := map[keys.Pubkey]*accountEntry{feePayer: entries[0]}

	upsert := func(pk keys.Pubkey, signer, writable bool) {
		if e, ok := index[pk]; ok {
			e.signer = e.signer || signer
			e.writable = e.writable || writable
			return
		}
		e := &accountEntry{pubkey: pk, signer: signer, writable: writable}
		index[pk] = e
		entries = append(entries, e)
	}

	for _, ix := range ixs {
		for _, acc := range ix.Accounts {
			upsert(acc.Pubkey, acc.IsSigner, acc.IsWritable)
		}
		upsert(ix.ProgramID, false, false)
	}

	// Classify, preserving first-appearance order. The fee payer is the
	// first writable signer by construction.
	var writableSigners, readonlySigners, writableOthers, readonlyOthers []*accountEntry
	for _, e := range entries {
		switch {
		case e.signer && e.writable:
			writableSigners = append(writableSigners, e)
		case e.signer:
			readonlySigners = append(readonlySigners, e)
		case e.writable:
			writableOthers = append(writableOthers, e)
		default:
			readonlyOthers = append(readonlyOthers, e)
		}
	}

	ordered := make([]*accountEntry, 0, len(entries))
	ordered = append(ordered, writableSigners...)
	ordered = append(ordered, readonlySigners...)
	ordered = append(ordered, writableOthers...)
	ordered = append(ordered, readonlyOthers...)

	msg := &Message{
		Header: MessageHeader{
			NumRequiredSignatures: uint8(len(writableSigners) + len(readonlySigners)),
			NumReadonlySigned:     uint8(len(readonlySigners)),
			NumReadonlyUnsigned:   uint8(len(readonlyOthers)),
		},
		RecentBlockhash: recentBlockhash,
	}

	keyIndex := make(map[keys.Pubkey]uint8, len(ordered))
	for i, e := range ordered {
		msg.AccountKeys = append(msg.AccountKeys, e.pubkey)
		keyIndex[e.pubkey] = uint8(i)
	}

	for _, ix := range ixs {
		ci := CompiledInstruction{
			ProgramIDIndex: keyIndex[ix.ProgramID],
			AccountIndexes: make([]uint8, 0, len(ix.Accounts)),
			Data:           ix.Data,
		}
		for _, acc := range ix.Accounts {
			ci.AccountIndexes = append(ci.AccountIndexes, keyIndex[acc.Pubkey])
		}
		msg.Instructions = append(msg.Instructions, ci)
	}

	return msg, nil
}

// Serialize encodes the message in the legacy wire layout.
func (m *Message) Serialize() []byte {
	var buf bytes.Buffer
	buf.WriteByte(m.Header.NumRequiredSignatures)
	buf.WriteByte(m.Header.NumReadonlySigned)
	buf.WriteByte(m.Header.NumReadonlyUnsigned)

	writeCompactU16(&buf, len(m.AccountKeys))
	for _, k := range m.AccountKeys {
		buf.Write(k[:])
	}

	buf.Write(m.RecentBlockhash[:])

	writeCompactU16(&buf, len(m.Instructions))
	for _, ix := range m.Instructions {
		buf.WriteByte(ix.ProgramIDIndex)
		writeCompactU16(&buf, len(ix.AccountIndexes))
		buf.Write(ix.AccountIndexes)
		writeCompactU16(&buf, len(ix.Data))
		buf.Write(ix.Data)
	}

	return buf.Bytes()
}

// DecodeMessage parses a serialized legacy message. Inverse of
// Serialize.
func DecodeMessage(data []byte) (*Message, error) {
	r := &byteReader{data: data}

	var msg Message
	var err error
	if msg.Header.NumRequiredSignatures, err = r.readByte(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if msg.Header.NumReadonlySigned, err = r.readByte(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if msg.Header.NumReadonlyUnsigned, err = r.readByte(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	numKeys, err := r.readCompactU16()
	if err != nil {
		return nil, fmt.Errorf("read key count: %w", err)
	}
	for i := 0; i < numKeys; i++ {
		raw, err := r.readBytes(32)
		if err != nil {
			return nil, fmt.Errorf("read account key %d: %w", i, err)
		}
		var pk keys.Pubkey
		copy(pk[:], raw)
		msg.AccountKeys = append(msg.AccountKeys, pk)
	}

	bh, err := r.readBytes(32)
	if err != nil {
		return nil, fmt.Errorf("read blockhash: %w", err)
	}
	copy(msg.RecentBlockhash[:], bh)

	numIxs, err := r.readCompactU16()
	if err != nil {
		return nil, fmt.Errorf("read instruction count: %w", err)
	}
	for i := 0; i < numIxs; i++ {
		var ci CompiledInstruction
		if ci.ProgramIDIndex, err = r.readByte(); err != nil {
			return nil, fmt.Errorf("read instruction %d: %w", i, err)
		}
		numAccounts, err := r.readCompactU16()
		if err != nil {
			return nil, fmt.Errorf("read instruction %d accounts: %w", i, err)
		}
		accs, err := r.readBytes(numAccounts)
		if err != nil {
			return nil, fmt.Errorf("read instruction %d accounts: %w", i, err)
		}
		ci.AccountIndexes = append([]uint8(nil), accs...)
		dataLen, err := r.readCompactU16()
		if err != nil {
			return nil, fmt.Errorf("read instruction %d data: %w", i, err)
		}
		ixData, err := r.readBytes(dataLen)
		if err != nil {
			return nil, fmt.Errorf("read instruction %d data: %w", i, err)
		}
		ci.Data = append([]byte(nil), ixData...)
		msg.Instructions = append(msg.Instructions, ci)
	}

	if r.remaining() != 0 {
		return nil, fmt.Errorf("trailing bytes after message: %d", r.remaining())
	}

	return &msg, nil
}

// writeCompactU16 encodes a length in Solana's compact-u16 form: 7 bits
// per byte, continuation bit high.
func writeCompactU16(buf *bytes.Buffer, n int) {
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *byteReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("unexpected end of input at %d", r.pos)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) readBytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("need %d bytes, have %d", n, r.remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) readCompactU16() (int, error) {
	var value uint16
	var shift uint
	for i := 0; i < 3; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		value |= uint16(b&0x7f) << shift
		if b&0x80 == 0 {
			return int(value), nil
		}
		shift += 7
	}
	return 0, fmt.Errorf("compact-u16 too long")
}
