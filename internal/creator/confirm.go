package creator

import (
	"context"
	"fmt"
	"time"

	"solana-token-forge/internal/solana"
)

// awaitFinalized waits until the signature reaches finalized
// commitment. A WebSocket subscription is preferred; if no WS client is
// configured or the subscription drops, status polling takes over. The
// total wait is bounded by the confirm timeout and by the referenced
// blockhash's validity window, after which the outcome is reported as
// ambiguous rather than retried.
func (c *Creator) awaitFinalized(ctx context.Context, signature string, lastValidHeight uint64) error {
	deadline := time.Now().Add(c.confirmTimeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if c.ws != nil {
		done, err := c.awaitViaSubscription(ctx, signature)
		if done || err != nil {
			return err
		}
		// Subscription path unavailable; fall through to polling.
	}

	return c.awaitViaPolling(ctx, signature, lastValidHeight)
}

// awaitViaSubscription returns done=false if polling should take over.
func (c *Creator) awaitViaSubscription(ctx context.Context, signature string) (bool, error) {
	ch, err := c.ws.SubscribeSignature(ctx, signature, solana.CommitmentFinalized)
	if err != nil {
		return false, nil
	}

	select {
	case notif, ok := <-ch:
		if !ok {
			// Subscription dropped without a verdict.
			return false, nil
		}
		if notif.Err != nil {
			return true, &SubmissionError{Signature: signature, Err: fmt.Errorf("transaction failed on chain: %v", notif.Err)}
		}
		return true, nil
	case <-ctx.Done():
		return true, c.timeoutError(ctx, signature)
	}
}

func (c *Creator) awaitViaPolling(ctx context.Context, signature string, lastValidHeight uint64) error {
	start := time.Now()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.timeoutError(ctx, signature)
		case <-ticker.C:
		}

		statuses, err := c.rpc.GetSignatureStatuses(ctx, []string{signature})
		if err != nil {
			// Transient status failures do not decide the outcome;
			// keep polling until the deadline does.
			continue
		}
		if len(statuses) > 0 && statuses[0] != nil {
			status := statuses[0]
			if status.Err != nil {
				return &SubmissionError{Signature: signature, Err: fmt.Errorf("transaction failed on chain: %v", status.Err)}
			}
			if status.Finalized() {
				return nil
			}
			continue
		}

		// The signature is unseen. Once the network passes the
		// blockhash's last valid height the transaction can no longer
		// land, so waiting out the full timeout buys nothing.
		if lastValidHeight > 0 {
			height, err := c.rpc.GetBlockHeight(ctx, solana.CommitmentFinalized)
			if err == nil && height > lastValidHeight {
				return &ConfirmationTimeoutError{Signature: signature, Waited: time.Since(start)}
			}
		}
	}
}

// timeoutError distinguishes caller cancellation from the confirmation
// deadline.
func (c *Creator) timeoutError(ctx context.Context, signature string) error {
	if err := context.Cause(ctx); err != nil && err != context.DeadlineExceeded {
		return err
	}
	return &ConfirmationTimeoutError{Signature: signature, Waited: c.confirmTimeout}
}
