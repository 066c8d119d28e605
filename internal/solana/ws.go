package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface used to
// await transaction confirmation.
type WSClient interface {
	// SubscribeSignature subscribes to the one-shot notification sent
	// when the signature reaches the given commitment.
	SubscribeSignature(ctx context.Context, signature string, commitment Commitment) (<-chan SignatureNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// SignatureNotification is the message delivered when a watched
// signature reaches the requested commitment. Err carries the on-chain
// execution error, if any.
type SignatureNotification struct {
	Signature string
	Slot      uint64
	Err       interface{}
}
