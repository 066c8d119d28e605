package creator

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"solana-token-forge/internal/keys"
	"solana-token-forge/internal/solana"
	"solana-token-forge/internal/solana/stub"
	"solana-token-forge/internal/txn"
	"solana-token-forge/internal/wallet"
)

// stubPublisher records pin calls and returns canned URIs.
type stubPublisher struct {
	fileCalls int
	jsonCalls int
	fileErr   error
	jsonErr   error
	lastDoc   interface{}
}

func (p *stubPublisher) PinFile(_ context.Context, _ string, _ []byte) (string, error) {
	p.fileCalls++
	if p.fileErr != nil {
		return "", p.fileErr
	}
	return "https://gateway.pinata.cloud/ipfs/QmImage", nil
}

func (p *stubPublisher) PinJSON(_ context.Context, doc interface{}) (string, error) {
	p.jsonCalls++
	p.lastDoc = doc
	if p.jsonErr != nil {
		return "", p.jsonErr
	}
	return "https://gateway.pinata.cloud/ipfs/QmMeta", nil
}

// rejectingWallet declines every signing request.
type rejectingWallet struct {
	pk keys.Pubkey
}

func (w *rejectingWallet) PublicKey() (keys.Pubkey, error) {
	return w.pk, nil
}

func (w *rejectingWallet) SignTransaction(context.Context, *txn.Transaction) error {
	return wallet.ErrRejected
}

func validRequest() Request {
	return Request{
		Name:        "Foo",
		Symbol:      "FOO",
		Description: "x",
		Decimals:    9,
		Supply:      1_000_000,
		Image:       []byte{0x89, 'P', 'N', 'G'},
		ImageName:   "logo.png",
	}
}

func finalizedStatus() []*solana.SignatureStatus {
	return []*solana.SignatureStatus{{
		Slot:               98123569,
		ConfirmationStatus: solana.CommitmentFinalized,
	}}
}

func newTestCreator(t *testing.T, rpc *stub.RPCClient, pub *stubPublisher, w wallet.Wallet) *Creator {
	t.Helper()
	platform, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	c, err := New(Options{
		RPC:            rpc,
		Publisher:      pub,
		Wallet:         w,
		PlatformWallet: platform.Pubkey(),
		ConfirmTimeout: 2 * time.Second,
		PollInterval:   10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestCreateToken_HappyPath(t *testing.T) {
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rpc := stub.NewRPCClient()
	rpc.SendSignature = "5happysig"
	rpc.StatusQueue = [][]*solana.SignatureStatus{
		{nil}, // first poll: not yet seen
		finalizedStatus(),
	}
	pub := &stubPublisher{}
	c := newTestCreator(t, rpc, pub, wallet.NewKeypairWallet(requester))

	result, err := c.CreateToken(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if result.MintAddress == "" {
		t.Error("empty mint address")
	}
	if result.MetadataURI != "https://gateway.pinata.cloud/ipfs/QmMeta" {
		t.Errorf("unexpected metadata URI %s", result.MetadataURI)
	}
	if result.Signature != "5happysig" {
		t.Errorf("unexpected signature %s", result.Signature)
	}
	if pub.fileCalls != 1 || pub.jsonCalls != 1 {
		t.Errorf("expected one pin of each kind, got file=%d json=%d", pub.fileCalls, pub.jsonCalls)
	}
	if len(rpc.Sent) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(rpc.Sent))
	}

	// The submitted payload must decode back into the assembled
	// transaction: 2 compute budget + 6 creation instructions, fee
	// payer first, fully signed.
	raw, err := base64.StdEncoding.DecodeString(rpc.Sent[0])
	if err != nil {
		t.Fatalf("decode submitted payload: %v", err)
	}
	tx, err := txn.DecodeTransaction(raw)
	if err != nil {
		t.Fatalf("DecodeTransaction: %v", err)
	}
	if len(tx.Message.Instructions) != 8 {
		t.Errorf("submitted %d instructions, want 8", len(tx.Message.Instructions))
	}
	if tx.Message.AccountKeys[0] != requester.Pubkey() {
		t.Error("fee payer is not the requester")
	}
	if !tx.IsFullySigned() {
		t.Error("submitted transaction is not fully signed")
	}
}

func TestCreateToken_InvalidRequestSkipsCollaborators(t *testing.T) {
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rpc := stub.NewRPCClient()
	pub := &stubPublisher{}
	c := newTestCreator(t, rpc, pub, wallet.NewKeypairWallet(requester))

	for name, mutate := range map[string]func(*Request){
		"empty name":        func(r *Request) { r.Name = "" },
		"empty symbol":      func(r *Request) { r.Symbol = "" },
		"empty description": func(r *Request) { r.Description = "" },
		"missing image":     func(r *Request) { r.Image = nil },
		"zero supply":       func(r *Request) { r.Supply = 0 },
		"decimals too high": func(r *Request) { r.Decimals = 19 },
	} {
		req := validRequest()
		mutate(&req)
		_, err := c.CreateToken(context.Background(), req)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%s: expected ErrInvalidRequest, got %v", name, err)
		}
	}

	if pub.fileCalls != 0 || pub.jsonCalls != 0 {
		t.Errorf("publisher invoked for invalid request: file=%d json=%d", pub.fileCalls, pub.jsonCalls)
	}
	if len(rpc.Sent) != 0 {
		t.Error("transaction submitted for invalid request")
	}
}

func TestCreateToken_ImageUploadFailure(t *testing.T) {
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rpc := stub.NewRPCClient()
	pub := &stubPublisher{fileErr: errors.New("503 from pinning service")}
	c := newTestCreator(t, rpc, pub, wallet.NewKeypairWallet(requester))

	_, err = c.CreateToken(context.Background(), validRequest())
	var uploadErr *ArtifactUploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected ArtifactUploadError, got %v", err)
	}
	if uploadErr.Kind != "image" {
		t.Errorf("Kind = %s, want image", uploadErr.Kind)
	}
	if pub.jsonCalls != 0 {
		t.Error("metadata pinned after image failure")
	}
	if len(rpc.Sent) != 0 {
		t.Error("transaction submitted after upload failure")
	}
}

func TestCreateToken_UserRejection(t *testing.T) {
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rpc := stub.NewRPCClient()
	pub := &stubPublisher{}
	c := newTestCreator(t, rpc, pub, &rejectingWallet{pk: requester.Pubkey()})

	_, err = c.CreateToken(context.Background(), validRequest())
	if !errors.Is(err, ErrUserRejected) {
		t.Fatalf("expected ErrUserRejected, got %v", err)
	}
	if len(rpc.Sent) != 0 {
		t.Error("rejected transaction was still submitted")
	}
}

func TestCreateToken_SubmissionFailure(t *testing.T) {
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rpc := stub.NewRPCClient()
	rpc.SendErr = errors.New("Blockhash not found")
	pub := &stubPublisher{}
	c := newTestCreator(t, rpc, pub, wallet.NewKeypairWallet(requester))

	_, err = c.CreateToken(context.Background(), validRequest())
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
}

func TestCreateToken_OnChainFailureSurfacesDiagnostic(t *testing.T) {
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rpc := stub.NewRPCClient()
	rpc.SendSignature = "5failsig"
	rpc.StatusQueue = [][]*solana.SignatureStatus{
		{{
			Slot:               98123570,
			ConfirmationStatus: solana.CommitmentFinalized,
			Err:                map[string]interface{}{"InstructionError": []interface{}{5, "InsufficientFunds"}},
		}},
	}
	pub := &stubPublisher{}
	c := newTestCreator(t, rpc, pub, wallet.NewKeypairWallet(requester))

	_, err = c.CreateToken(context.Background(), validRequest())
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if subErr.Signature != "5failsig" {
		t.Errorf("Signature = %s, want 5failsig", subErr.Signature)
	}
}

func TestCreateToken_ConfirmationTimeout(t *testing.T) {
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rpc := stub.NewRPCClient()
	rpc.SendSignature = "5slowsig"
	// Status never resolves: every poll sees an unknown signature.
	rpc.StatusQueue = [][]*solana.SignatureStatus{{nil}}
	pub := &stubPublisher{}

	platform, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	c, err := New(Options{
		RPC:            rpc,
		Publisher:      pub,
		Wallet:         wallet.NewKeypairWallet(requester),
		PlatformWallet: platform.Pubkey(),
		ConfirmTimeout: 50 * time.Millisecond,
		PollInterval:   5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.CreateToken(context.Background(), validRequest())
	var timeoutErr *ConfirmationTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected ConfirmationTimeoutError, got %v", err)
	}
	if timeoutErr.Signature != "5slowsig" {
		t.Errorf("Signature = %s, want 5slowsig", timeoutErr.Signature)
	}
	// The ambiguous outcome is surfaced, never retried.
	if len(rpc.Sent) != 1 {
		t.Errorf("expected exactly one submission, got %d", len(rpc.Sent))
	}
}

func TestCreateToken_BlockhashExpiry(t *testing.T) {
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rpc := stub.NewRPCClient()
	rpc.SendSignature = "5expiredsig"
	// The signature is never seen and the network has moved past the
	// blockhash's validity window.
	rpc.StatusQueue = [][]*solana.SignatureStatus{{nil}}
	rpc.BlockHeight = rpc.Blockhash.LastValidBlockHeight + 1
	pub := &stubPublisher{}
	c := newTestCreator(t, rpc, pub, wallet.NewKeypairWallet(requester))

	start := time.Now()
	_, err = c.CreateToken(context.Background(), validRequest())
	var timeoutErr *ConfirmationTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected ConfirmationTimeoutError, got %v", err)
	}
	// Expiry short-circuits the wait instead of running out the clock.
	if time.Since(start) >= 2*time.Second {
		t.Error("expired blockhash should end the wait before the confirm timeout")
	}
}

func TestCreateToken_NotConnectedWallet(t *testing.T) {
	rpc := stub.NewRPCClient()
	pub := &stubPublisher{}
	c := newTestCreator(t, rpc, pub, &wallet.KeypairWallet{})

	_, err := c.CreateToken(context.Background(), validRequest())
	if !errors.Is(err, ErrWalletNotConnected) {
		t.Fatalf("expected ErrWalletNotConnected, got %v", err)
	}
	if pub.fileCalls != 0 {
		t.Error("publisher invoked without a connected wallet")
	}
}

func TestCreateToken_MetadataDocumentShape(t *testing.T) {
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	rpc := stub.NewRPCClient()
	rpc.SendSignature = "5docsig"
	rpc.StatusQueue = [][]*solana.SignatureStatus{finalizedStatus()}
	pub := &stubPublisher{}
	c := newTestCreator(t, rpc, pub, wallet.NewKeypairWallet(requester))

	if _, err := c.CreateToken(context.Background(), validRequest()); err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	doc, ok := pub.lastDoc.(metadataDocument)
	if !ok {
		t.Fatalf("unexpected document type %T", pub.lastDoc)
	}
	if doc.Name != "Foo" || doc.Symbol != "FOO" || doc.Description != "x" {
		t.Errorf("document fields wrong: %+v", doc)
	}
	if doc.Image != "https://gateway.pinata.cloud/ipfs/QmImage" {
		t.Errorf("document image = %s", doc.Image)
	}
	if len(doc.Properties.Files) != 1 || doc.Properties.Files[0].Type != "image/png" {
		t.Errorf("document properties wrong: %+v", doc.Properties)
	}
}
