package stub

import (
	"context"
	"errors"
	"sync"

	"solana-token-forge/internal/solana"
)

// RPCClient implements solana.RPCClient for testing. Responses are
// seeded up front; sends are recorded for assertions.
type RPCClient struct {
	mu sync.Mutex

	RentExemption uint64
	RentErr       error

	Blockhash    *solana.LatestBlockhash
	BlockhashErr error

	SendSignature string
	SendErr       error
	Sent          []string // base64 payloads, in submission order

	BlockHeight uint64
	HeightErr   error

	// StatusQueue is consumed one entry per GetSignatureStatuses call,
	// letting tests script a pending → finalized progression. When the
	// queue empties, the last entry repeats.
	StatusQueue [][]*solana.SignatureStatus
	StatusErr   error
	StatusCalls int
}

// NewRPCClient creates a stub with workable defaults.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		RentExemption: 1_461_600,
		Blockhash: &solana.LatestBlockhash{
			Blockhash:            "GfVcyD4kkTrj4bKc7WA9sZCin9JDbdT4Zkd3EittNR1W",
			LastValidBlockHeight: 250_000_000,
		},
		BlockHeight: 249_999_700,
	}
}

// GetMinimumBalanceForRentExemption returns the seeded rent value.
func (c *RPCClient) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	if c.RentErr != nil {
		return 0, c.RentErr
	}
	return c.RentExemption, nil
}

// GetLatestBlockhash returns the seeded blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context, _ solana.Commitment) (*solana.LatestBlockhash, error) {
	if c.BlockhashErr != nil {
		return nil, c.BlockhashErr
	}
	if c.Blockhash == nil {
		return nil, errors.New("no blockhash seeded")
	}
	return c.Blockhash, nil
}

// GetBlockHeight returns the seeded block height.
func (c *RPCClient) GetBlockHeight(_ context.Context, _ solana.Commitment) (uint64, error) {
	if c.HeightErr != nil {
		return 0, c.HeightErr
	}
	return c.BlockHeight, nil
}

// SendTransaction records the payload and returns the seeded signature.
func (c *RPCClient) SendTransaction(_ context.Context, txBase64 string, _ solana.SendOpts) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return "", c.SendErr
	}
	c.Sent = append(c.Sent, txBase64)
	return c.SendSignature, nil
}

// GetSignatureStatuses pops the next scripted status set.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StatusCalls++
	if c.StatusErr != nil {
		return nil, c.StatusErr
	}
	if len(c.StatusQueue) == 0 {
		return make([]*solana.SignatureStatus, len(signatures)), nil
	}
	statuses := c.StatusQueue[0]
	if len(c.StatusQueue) > 1 {
		c.StatusQueue = c.StatusQueue[1:]
	}
	return statuses, nil
}
