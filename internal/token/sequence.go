package token

import (
	"errors"
	"fmt"
	"math/big"

	"solana-token-forge/internal/keys"
)

// Sequencer builder errors.
var (
	ErrStageOutOfOrder = errors.New("sequence stage appended out of order")
	ErrSupplyOverflow  = errors.New("scaled supply exceeds u64 range")
	ErrZeroSupply      = errors.New("supply must be positive")
)

// SequenceParams are the fully resolved inputs to instruction
// sequencing: identities are generated or derived, URIs are already
// pinned, and the rent minimum was fetched from the ledger.
type SequenceParams struct {
	Requester    keys.Pubkey // fee payer, both initial authorities
	Mint         keys.Pubkey // freshly generated asset identity
	Associated   keys.Pubkey // derived holding account for (requester, mint)
	Metadata     keys.Pubkey // derived metadata record for the mint
	FeeRecipient keys.Pubkey // platform wallet, credited once

	Name        string
	Symbol      string
	MetadataURI string
	Decimals    uint8
	Supply      uint64 // whole tokens, pre-scaling

	RentLamports uint64 // rent-exempt minimum for MintAccountSize
	FeeLamports  uint64 // from fees.Compute

	RevokeMint   bool
	RevokeFreeze bool
	RevokeUpdate bool
}

// Sequencer assembles the creation instruction list stage by stage.
// Each stage method refuses to run unless its predecessor ran, so a
// finalized sequence is correct by construction: the mint is always
// initialized with both authorities, the fee transfer appears exactly
// once after the metadata stage, and revocations always trail the
// supply mint.
type Sequencer struct {
	params SequenceParams
	ixs    []Instruction
	stage  int
}

// Stage ordinals. A stage may only follow its predecessor.
const (
	stageNew = iota
	stageAllocated
	stageInitialized
	stageHolding
	stageMinted
	stageFeeCharged
	stageFinal
)

// NewSequencer validates params and prepares an empty sequence.
func NewSequencer(params SequenceParams) (*Sequencer, error) {
	if params.Requester.IsZero() || params.Mint.IsZero() ||
		params.Associated.IsZero() || params.Metadata.IsZero() ||
		params.FeeRecipient.IsZero() {
		return nil, errors.New("sequence params missing an identity")
	}
	if params.Supply == 0 {
		return nil, ErrZeroSupply
	}
	return &Sequencer{params: params}, nil
}

// BuildSequence runs all stages in the required order and returns the
// finalized instruction list.
func BuildSequence(params SequenceParams) ([]Instruction, error) {
	s, err := NewSequencer(params)
	if err != nil {
		return nil, err
	}
	if err := s.AllocateMint(); err != nil {
		return nil, err
	}
	if err := s.InitializeMint(); err != nil {
		return nil, err
	}
	if err := s.CreateHoldingAccount(); err != nil {
		return nil, err
	}
	if err := s.MintSupplyAndMetadata(); err != nil {
		return nil, err
	}
	if err := s.ChargeFee(); err != nil {
		return nil, err
	}
	return s.Finalize()
}

func (s *Sequencer) advance(from int) error {
	if s.stage != from {
		return fmt.Errorf("%w: at stage %d", ErrStageOutOfOrder, s.stage)
	}
	s.stage = from + 1
	return nil
}

// AllocateMint creates the mint account at the asset identity's
// address, funded with the rent-exempt minimum.
func (s *Sequencer) AllocateMint() error {
	if err := s.advance(stageNew); err != nil {
		return err
	}
	s.ixs = append(s.ixs, NewCreateAccountInstruction(
		s.params.Requester, s.params.Mint, keys.TokenProgramID,
		s.params.RentLamports, MintAccountSize))
	return nil
}

// InitializeMint initializes the allocated account as a mint. The
// requester becomes both mint and freeze authority regardless of the
// revoke flags; a requested revocation is applied later so the trailing
// revoke instruction always has an authority to remove.
func (s *Sequencer) InitializeMint() error {
	if err := s.advance(stageAllocated); err != nil {
		return err
	}
	s.ixs = append(s.ixs, NewInitializeMintInstruction(
		s.params.Mint, s.params.Decimals, s.params.Requester, s.params.Requester))
	return nil
}

// CreateHoldingAccount creates the requester's associated token account
// for the new mint. The mint is fresh, so the address cannot collide
// with an existing account.
func (s *Sequencer) CreateHoldingAccount() error {
	if err := s.advance(stageInitialized); err != nil {
		return err
	}
	s.ixs = append(s.ixs, NewCreateAssociatedTokenAccountInstruction(
		s.params.Requester, s.params.Associated, s.params.Requester, s.params.Mint))
	return nil
}

// MintSupplyAndMetadata mints the full scaled supply into the holding
// account and immediately binds the metadata record. Mutability is the
// inverse of RevokeUpdate and is decided here because the metadata
// program fixes it at creation.
func (s *Sequencer) MintSupplyAndMetadata() error {
	if err := s.advance(stageHolding); err != nil {
		return err
	}
	amount, err := ScaleSupply(s.params.Supply, s.params.Decimals)
	if err != nil {
		return err
	}
	s.ixs = append(s.ixs,
		NewMintToInstruction(s.params.Mint, s.params.Associated, s.params.Requester, amount),
		NewCreateMetadataInstruction(
			s.params.Metadata, s.params.Mint, s.params.Requester,
			s.params.Requester, s.params.Requester,
			MetadataArgs{
				Name:      s.params.Name,
				Symbol:    s.params.Symbol,
				URI:       s.params.MetadataURI,
				IsMutable: !s.params.RevokeUpdate,
			}))
	return nil
}

// ChargeFee appends the single fee transfer to the platform wallet.
// One transfer regardless of how many options are active.
func (s *Sequencer) ChargeFee() error {
	if err := s.advance(stageMinted); err != nil {
		return err
	}
	s.ixs = append(s.ixs, NewTransferInstruction(
		s.params.Requester, s.params.FeeRecipient, s.params.FeeLamports))
	return nil
}

// Finalize appends the requested authority revocations and returns the
// completed sequence. Revocations must trail the supply mint: removing
// the mint authority first would make minting impossible. RevokeUpdate
// has no instruction of its own; it was encoded as metadata
// immutability.
func (s *Sequencer) Finalize() ([]Instruction, error) {
	if err := s.advance(stageFeeCharged); err != nil {
		return nil, err
	}
	if s.params.RevokeMint {
		s.ixs = append(s.ixs, NewRevokeAuthorityInstruction(
			s.params.Mint, s.params.Requester, AuthorityMintTokens))
	}
	if s.params.RevokeFreeze {
		s.ixs = append(s.ixs, NewRevokeAuthorityInstruction(
			s.params.Mint, s.params.Requester, AuthorityFreezeAccount))
	}
	return s.ixs, nil
}

// ScaleSupply converts a whole-token supply to base units
// (supply × 10^decimals), rejecting values that do not fit the ledger's
// u64 amount field.
func ScaleSupply(supply uint64, decimals uint8) (uint64, error) {
	if supply == 0 {
		return 0, ErrZeroSupply
	}
	scaled := new(big.Int).Mul(
		new(big.Int).SetUint64(supply),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil),
	)
	if !scaled.IsUint64() {
		return 0, fmt.Errorf("%w: %d with %d decimals", ErrSupplyOverflow, supply, decimals)
	}
	return scaled.Uint64(), nil
}
