package solana

// Commitment is a confirmation level for queries and confirmation
// waits.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// LatestBlockhash from getLatestBlockhash.
type LatestBlockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// SendOpts configures sendTransaction.
type SendOpts struct {
	// SkipPreflight bypasses the RPC node's local simulation. The
	// pipeline validates transactions during assembly, so the extra
	// round trip buys nothing.
	SkipPreflight bool
}

// SignatureStatus from getSignatureStatuses.
type SignatureStatus struct {
	Slot               uint64
	Confirmations      *uint64
	ConfirmationStatus Commitment
	Err                interface{}
}

// Finalized reports whether the status reached the strongest
// confirmation level.
func (s *SignatureStatus) Finalized() bool {
	return s != nil && s.ConfirmationStatus == CommitmentFinalized
}
