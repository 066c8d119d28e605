package creator

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRequest is returned for malformed input, before any
	// collaborator is invoked.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrWalletNotConnected is returned when no signing identity is
	// available.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrUserRejected is returned when the wallet declines to sign.
	ErrUserRejected = errors.New("user rejected signing")
)

// ArtifactUploadError reports a failed publisher round trip.
type ArtifactUploadError struct {
	Kind string // "image" or "metadata"
	Err  error
}

func (e *ArtifactUploadError) Error() string {
	return fmt.Sprintf("artifact upload failed (%s): %v", e.Kind, e.Err)
}

func (e *ArtifactUploadError) Unwrap() error {
	return e.Err
}

// SubmissionError reports a network rejection, carrying the node's
// diagnostic. Signature is empty if the rejection preceded submission.
type SubmissionError struct {
	Signature string
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Signature == "" {
		return fmt.Sprintf("submission failed: %v", e.Err)
	}
	return fmt.Sprintf("submission failed (%s): %v", e.Signature, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ConfirmationTimeoutError reports an ambiguous outcome: the
// transaction was submitted but never observed at finalized commitment
// within the wait budget. It may still have landed. The signature is
// included so a caller can check out of band; the pipeline itself never
// retries, because a retry would mint under a fresh identity while this
// one may have succeeded.
type ConfirmationTimeoutError struct {
	Signature string
	Waited    time.Duration
}

func (e *ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("confirmation timed out after %s (signature %s): outcome unknown", e.Waited, e.Signature)
}
