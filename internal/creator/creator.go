// Package creator coordinates the token creation pipeline end to end:
// validate → pin artifacts → sequence instructions → assemble → wallet
// sign → submit → await finalization. One sequential flow per call, a
// fresh asset identity every time, nothing persisted.
package creator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-token-forge/internal/fees"
	"solana-token-forge/internal/keys"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/pinata"
	"solana-token-forge/internal/solana"
	"solana-token-forge/internal/token"
	"solana-token-forge/internal/txn"
	"solana-token-forge/internal/wallet"
)

// Default confirmation wait parameters.
const (
	DefaultConfirmTimeout = 90 * time.Second
	DefaultPollInterval   = 2 * time.Second
)

// Request is the immutable user input for one token creation.
type Request struct {
	Name        string
	Symbol      string
	Description string
	Decimals    uint8
	Supply      uint64 // whole tokens, pre-scaling
	Image       []byte
	ImageName   string // filename hint for the publisher, e.g. "logo.png"

	RevokeMint   bool
	RevokeFreeze bool
	RevokeUpdate bool
}

// Result identifies the created token.
type Result struct {
	MintAddress string
	MetadataURI string
	Signature   string
}

// Options configures a Creator.
type Options struct {
	RPC       solana.RPCClient
	WS        solana.WSClient // optional; polling is used when nil
	Publisher pinata.Publisher
	Wallet    wallet.Wallet

	// PlatformWallet receives the service fee.
	PlatformWallet keys.Pubkey

	ConfirmTimeout time.Duration
	PollInterval   time.Duration

	Metrics *observability.Metrics // optional
	Logger  *log.Logger            // optional
	Verbose bool
}

// Creator runs the creation pipeline.
type Creator struct {
	rpc            solana.RPCClient
	ws             solana.WSClient
	publisher      pinata.Publisher
	wallet         wallet.Wallet
	platformWallet keys.Pubkey
	confirmTimeout time.Duration
	pollInterval   time.Duration
	metrics        *observability.Metrics
	logger         *log.Logger
	verbose        bool
}

// New creates a Creator, validating required collaborators.
func New(opts Options) (*Creator, error) {
	if opts.RPC == nil {
		return nil, errors.New("rpc client is required")
	}
	if opts.Publisher == nil {
		return nil, errors.New("artifact publisher is required")
	}
	if opts.Wallet == nil {
		return nil, errors.New("wallet is required")
	}
	if opts.PlatformWallet.IsZero() {
		return nil, errors.New("platform fee wallet is required")
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = DefaultConfirmTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Creator{
		rpc:            opts.RPC,
		ws:             opts.WS,
		publisher:      opts.Publisher,
		wallet:         opts.Wallet,
		platformWallet: opts.PlatformWallet,
		confirmTimeout: opts.ConfirmTimeout,
		pollInterval:   opts.PollInterval,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		verbose:        opts.Verbose,
	}, nil
}

// metadataDocument is the off-chain JSON document the metadata URI
// points at.
type metadataDocument struct {
	Name        string             `json:"name"`
	Symbol      string             `json:"symbol"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Properties  metadataProperties `json:"properties"`
}

type metadataProperties struct {
	Files []metadataFile `json:"files"`
}

type metadataFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// CreateToken runs the full pipeline once. The first failing stage
// surfaces its error verbatim; nothing retries or rolls back. An
// already-pinned image left behind by a later failure is an accepted
// leftover.
func (c *Creator) CreateToken(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	requester, err := c.wallet.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWalletNotConnected, err)
	}

	// Phase 1: pin artifacts (image first; the metadata document
	// references its URI).
	c.log("Phase 1: Pinning artifacts...")
	imageURI, err := c.pinImage(ctx, req)
	if err != nil {
		return nil, err
	}
	metadataURI, err := c.pinMetadata(ctx, req, imageURI)
	if err != nil {
		return nil, err
	}
	c.log("  Metadata pinned at %s", metadataURI)

	// Phase 2: resolve identities and ledger inputs.
	c.log("Phase 2: Resolving identities...")
	asset, err := keys.NewKeypair()
	if err != nil {
		return nil, fmt.Errorf("generate asset identity: %w", err)
	}
	mint := asset.Pubkey()

	associated, err := keys.FindAssociatedTokenAddress(requester, mint)
	if err != nil {
		return nil, err
	}
	metadataAddr, err := keys.FindMetadataAddress(mint)
	if err != nil {
		return nil, err
	}
	rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return nil, fmt.Errorf("rent exemption query: %w", err)
	}

	// Phase 3: sequence and assemble.
	c.log("Phase 3: Building transaction...")
	flags := fees.RevokeFlags{Mint: req.RevokeMint, Freeze: req.RevokeFreeze, Update: req.RevokeUpdate}
	fee := fees.Compute(flags)

	ixs, err := token.BuildSequence(token.SequenceParams{
		Requester:    requester,
		Mint:         mint,
		Associated:   associated,
		Metadata:     metadataAddr,
		FeeRecipient: c.platformWallet,
		Name:         req.Name,
		Symbol:       req.Symbol,
		MetadataURI:  metadataURI,
		Decimals:     req.Decimals,
		Supply:       req.Supply,
		RentLamports: rent,
		FeeLamports:  fee,
		RevokeMint:   req.RevokeMint,
		RevokeFreeze: req.RevokeFreeze,
		RevokeUpdate: req.RevokeUpdate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	latest, err := c.rpc.GetLatestBlockhash(ctx, solana.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("latest blockhash: %w", err)
	}
	blockhash, err := txn.ParseBlockhash(latest.Blockhash)
	if err != nil {
		return nil, err
	}

	tx, err := txn.Assemble(ixs, requester, blockhash, asset)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if c.metrics != nil {
		c.metrics.TransactionsAssembled.Inc()
	}

	// Phase 4: wallet signature and submission.
	c.log("Phase 4: Submitting...")
	sig, err := c.submit(ctx, tx, latest.LastValidBlockHeight)
	if err != nil {
		c.countFailure(err)
		return nil, err
	}
	c.recordSuccess(flags, fee)
	c.log("  Confirmed: https://solscan.io/tx/%s", sig)

	return &Result{
		MintAddress: mint.String(),
		MetadataURI: metadataURI,
		Signature:   sig,
	}, nil
}

// validate rejects malformed requests before any side effect.
func validate(req Request) error {
	switch {
	case req.Name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidRequest)
	case req.Symbol == "":
		return fmt.Errorf("%w: symbol is empty", ErrInvalidRequest)
	case req.Description == "":
		return fmt.Errorf("%w: description is empty", ErrInvalidRequest)
	case len(req.Image) == 0:
		return fmt.Errorf("%w: image is empty", ErrInvalidRequest)
	case req.Decimals > 18:
		return fmt.Errorf("%w: decimals %d out of range", ErrInvalidRequest, req.Decimals)
	case req.Supply == 0:
		return fmt.Errorf("%w: supply is zero", ErrInvalidRequest)
	}
	if _, err := token.ScaleSupply(req.Supply, req.Decimals); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func (c *Creator) pinImage(ctx context.Context, req Request) (string, error) {
	name := req.ImageName
	if name == "" {
		name = "image.png"
	}
	start := time.Now()
	uri, err := c.publisher.PinFile(ctx, name, req.Image)
	c.observePin("image", start, err)
	if err != nil {
		return "", &ArtifactUploadError{Kind: "image", Err: err}
	}
	return uri, nil
}

func (c *Creator) pinMetadata(ctx context.Context, req Request, imageURI string) (string, error) {
	doc := metadataDocument{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		Image:       imageURI,
		Properties: metadataProperties{
			Files: []metadataFile{{URI: imageURI, Type: "image/png"}},
		},
	}
	start := time.Now()
	uri, err := c.publisher.PinJSON(ctx, doc)
	c.observePin("metadata", start, err)
	if err != nil {
		return "", &ArtifactUploadError{Kind: "metadata", Err: err}
	}
	return uri, nil
}

// submit requests the wallet signature, transmits the transaction with
// preflight skipped, and awaits finalized confirmation.
func (c *Creator) submit(ctx context.Context, tx *txn.Transaction, lastValidHeight uint64) (string, error) {
	if err := c.wallet.SignTransaction(ctx, tx); err != nil {
		if errors.Is(err, wallet.ErrRejected) {
			return "", fmt.Errorf("%w: %v", ErrUserRejected, err)
		}
		if errors.Is(err, wallet.ErrNotConnected) {
			return "", fmt.Errorf("%w: %v", ErrWalletNotConnected, err)
		}
		return "", &SubmissionError{Err: fmt.Errorf("wallet sign: %w", err)}
	}

	raw, err := tx.Serialize()
	if err != nil {
		return "", &SubmissionError{Err: err}
	}

	sig, err := c.rpc.SendTransaction(ctx, base64.StdEncoding.EncodeToString(raw), solana.SendOpts{
		SkipPreflight: true,
	})
	if err != nil {
		return "", &SubmissionError{Err: err}
	}
	if c.metrics != nil {
		c.metrics.TransactionsSubmitted.Inc()
	}
	c.log("  Sent %s, awaiting finalization...", sig)

	start := time.Now()
	if err := c.awaitFinalized(ctx, sig, lastValidHeight); err != nil {
		return "", err
	}
	if c.metrics != nil {
		c.metrics.TransactionsConfirmed.Inc()
		c.metrics.ConfirmationLatency.Observe(time.Since(start).Seconds())
	}
	return sig, nil
}

func (c *Creator) observePin(kind string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.ArtifactPinLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ArtifactPinErrors.WithLabelValues(kind).Inc()
	} else {
		c.metrics.ArtifactsPinned.WithLabelValues(kind).Inc()
	}
}

func (c *Creator) recordSuccess(flags fees.RevokeFlags, fee uint64) {
	if c.metrics == nil {
		return
	}
	c.metrics.FeeLamportsCharged.Add(float64(fee))
	if flags.Mint {
		c.metrics.RevokesRequested.WithLabelValues("mint").Inc()
	}
	if flags.Freeze {
		c.metrics.RevokesRequested.WithLabelValues("freeze").Inc()
	}
	if flags.Update {
		c.metrics.RevokesRequested.WithLabelValues("update").Inc()
	}
}

func (c *Creator) countFailure(err error) {
	if c.metrics == nil {
		return
	}
	var timeoutErr *ConfirmationTimeoutError
	var subErr *SubmissionError
	switch {
	case errors.Is(err, ErrUserRejected):
		c.metrics.TransactionsFailed.WithLabelValues("rejected").Inc()
	case errors.As(err, &timeoutErr):
		c.metrics.TransactionsFailed.WithLabelValues("timeout").Inc()
	case errors.As(err, &subErr):
		c.metrics.TransactionsFailed.WithLabelValues("submission").Inc()
	}
}

func (c *Creator) log(format string, args ...interface{}) {
	if !c.verbose {
		return
	}
	if c.logger != nil {
		c.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
