package txn

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-token-forge/internal/keys"
)

// Transaction pairs a compiled message with its signature slots. A slot
// stays zeroed until the matching signer key signs. The transaction is
// consumed exactly once by submission; the referenced blockhash makes a
// replay invalid on its own.
type Transaction struct {
	Message    *Message
	Signatures [][64]byte
}

// NewTransaction allocates signature slots for a compiled message.
func NewTransaction(msg *Message) *Transaction {
	return &Transaction{
		Message:    msg,
		Signatures: make([][64]byte, msg.Header.NumRequiredSignatures),
	}
}

// Sign signs the message with the keypair and stores the signature in
// the slot matching the keypair's position in the required-signer set.
func (t *Transaction) Sign(kp *keys.Keypair) error {
	idx, err := t.signerIndex(kp.Pubkey())
	if err != nil {
		return err
	}
	t.Signatures[idx] = kp.Sign(t.Message.Serialize())
	return nil
}

// SetSignature stores an externally produced signature (a wallet's) for
// the given signer key after verifying it against the message bytes.
func (t *Transaction) SetSignature(signer keys.Pubkey, sig [64]byte) error {
	idx, err := t.signerIndex(signer)
	if err != nil {
		return err
	}
	if !ed25519.Verify(signer.Bytes(), t.Message.Serialize(), sig[:]) {
		return fmt.Errorf("signature for %s does not verify", signer)
	}
	t.Signatures[idx] = sig
	return nil
}

func (t *Transaction) signerIndex(pk keys.Pubkey) (int, error) {
	n := int(t.Message.Header.NumRequiredSignatures)
	for i := 0; i < n && i < len(t.Message.AccountKeys); i++ {
		if t.Message.AccountKeys[i] == pk {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s is not a required signer", pk)
}

// IsFullySigned reports whether every signature slot is populated.
func (t *Transaction) IsFullySigned() bool {
	for _, sig := range t.Signatures {
		if sig == ([64]byte{}) {
			return false
		}
	}
	return true
}

// Signature returns the transaction's identifying signature (the fee
// payer's, slot zero) in base58, or empty if unsigned.
func (t *Transaction) Signature() string {
	if len(t.Signatures) == 0 || t.Signatures[0] == ([64]byte{}) {
		return ""
	}
	return base58.Encode(t.Signatures[0][:])
}

// Serialize encodes the wire form: compact signature count, signatures,
// then the message.
func (t *Transaction) Serialize() ([]byte, error) {
	if !t.IsFullySigned() {
		return nil, fmt.Errorf("transaction has unsigned slots")
	}
	var buf bytes.Buffer
	writeCompactU16(&buf, len(t.Signatures))
	for _, sig := range t.Signatures {
		buf.Write(sig[:])
	}
	buf.Write(t.Message.Serialize())
	return buf.Bytes(), nil
}

// DecodeTransaction parses a serialized transaction. Inverse of
// Serialize; signature slots may be zeroed.
func DecodeTransaction(data []byte) (*Transaction, error) {
	r := &byteReader{data: data}
	numSigs, err := r.readCompactU16()
	if err != nil {
		return nil, fmt.Errorf("read signature count: %w", err)
	}
	sigs := make([][64]byte, numSigs)
	for i := 0; i < numSigs; i++ {
		raw, err := r.readBytes(64)
		if err != nil {
			return nil, fmt.Errorf("read signature %d: %w", i, err)
		}
		copy(sigs[i][:], raw)
	}
	msg, err := DecodeMessage(r.data[r.pos:])
	if err != nil {
		return nil, err
	}
	return &Transaction{Message: msg, Signatures: sigs}, nil
}
