package solana

import "context"

// RPCClient defines the ledger RPC surface the creation pipeline needs.
type RPCClient interface {
	// GetMinimumBalanceForRentExemption returns the lamports an account
	// of the given size must hold to be rent exempt.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	// GetLatestBlockhash returns the most recent blockhash at the given
	// commitment, with the last block height it remains valid for.
	GetLatestBlockhash(ctx context.Context, commitment Commitment) (*LatestBlockhash, error)

	// SendTransaction submits a fully signed, base64-encoded
	// transaction and returns its signature.
	SendTransaction(ctx context.Context, txBase64 string, opts SendOpts) (string, error)

	// GetSignatureStatuses returns confirmation status for each
	// signature; a nil entry means the network has not seen it.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)

	// GetBlockHeight returns the current block height at the given
	// commitment. Compared against a blockhash's last valid height to
	// detect expiry while awaiting confirmation.
	GetBlockHeight(ctx context.Context, commitment Commitment) (uint64, error)
}
