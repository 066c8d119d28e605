package token

import (
	"encoding/binary"
	"errors"
	"testing"

	"solana-token-forge/internal/keys"
)

func testParams(t *testing.T) SequenceParams {
	t.Helper()
	requester, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	mint, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	ata, err := keys.FindAssociatedTokenAddress(requester.Pubkey(), mint.Pubkey())
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress: %v", err)
	}
	metadata, err := keys.FindMetadataAddress(mint.Pubkey())
	if err != nil {
		t.Fatalf("FindMetadataAddress: %v", err)
	}
	platform, err := keys.NewKeypair()
	if err != nil {
		t.Fatalf("NewKeypair: %v", err)
	}
	return SequenceParams{
		Requester:    requester.Pubkey(),
		Mint:         mint.Pubkey(),
		Associated:   ata,
		Metadata:     metadata,
		FeeRecipient: platform.Pubkey(),
		Name:         "Foo",
		Symbol:       "FOO",
		MetadataURI:  "https://gateway.pinata.cloud/ipfs/QmFoo",
		Decimals:     9,
		Supply:       1_000_000,
		RentLamports: 1_461_600,
		FeeLamports:  100_000_000,
	}
}

// instruction kind helpers keyed on program + leading data bytes.
func isTransfer(ix Instruction) bool {
	return ix.ProgramID == keys.SystemProgramID && len(ix.Data) >= 4 &&
		binary.LittleEndian.Uint32(ix.Data[0:4]) == sysTransfer
}

func isRevoke(ix Instruction) bool {
	return ix.ProgramID == keys.TokenProgramID && len(ix.Data) > 0 && ix.Data[0] == tokSetAuthority
}

func isMintTo(ix Instruction) bool {
	return ix.ProgramID == keys.TokenProgramID && len(ix.Data) > 0 && ix.Data[0] == tokMintTo
}

func TestBuildSequence_NoRevokes(t *testing.T) {
	ixs, err := BuildSequence(testParams(t))
	if err != nil {
		t.Fatalf("BuildSequence: %v", err)
	}

	// create, init, ATA, mintTo, metadata, transfer. No revokes.
	if len(ixs) != 6 {
		t.Fatalf("expected 6 instructions, got %d", len(ixs))
	}
	for _, ix := range ixs {
		if isRevoke(ix) {
			t.Error("unexpected revoke instruction with all flags false")
		}
	}
	if !isTransfer(ixs[5]) {
		t.Error("fee transfer must be the final instruction when nothing is revoked")
	}
}

func TestBuildSequence_OrderingWithAllRevokes(t *testing.T) {
	params := testParams(t)
	params.RevokeMint = true
	params.RevokeFreeze = true
	params.RevokeUpdate = true

	ixs, err := BuildSequence(params)
	if err != nil {
		t.Fatalf("BuildSequence: %v", err)
	}

	// create, init, ATA, mintTo, metadata, transfer, revoke×2.
	// RevokeUpdate adds no instruction: it is the mutability flag.
	if len(ixs) != 8 {
		t.Fatalf("expected 8 instructions, got %d", len(ixs))
	}

	var transferIdx, mintToIdx, firstRevokeIdx, revokes int
	firstRevokeIdx = -1
	for i, ix := range ixs {
		switch {
		case isTransfer(ix):
			transferIdx = i
		case isMintTo(ix):
			mintToIdx = i
		case isRevoke(ix):
			revokes++
			if firstRevokeIdx < 0 {
				firstRevokeIdx = i
			}
		}
	}
	if revokes != 2 {
		t.Errorf("expected exactly 2 revoke instructions, got %d", revokes)
	}
	if !(mintToIdx < transferIdx && transferIdx < firstRevokeIdx) {
		t.Errorf("ordering violated: mintTo=%d transfer=%d firstRevoke=%d",
			mintToIdx, transferIdx, firstRevokeIdx)
	}
}

func TestBuildSequence_SingleFeeTransferForEveryFlagCombination(t *testing.T) {
	for _, mint := range []bool{false, true} {
		for _, freeze := range []bool{false, true} {
			for _, update := range []bool{false, true} {
				params := testParams(t)
				params.RevokeMint = mint
				params.RevokeFreeze = freeze
				params.RevokeUpdate = update

				ixs, err := BuildSequence(params)
				if err != nil {
					t.Fatalf("BuildSequence(%v,%v,%v): %v", mint, freeze, update, err)
				}
				transfers := 0
				for _, ix := range ixs {
					if isTransfer(ix) {
						transfers++
					}
				}
				if transfers != 1 {
					t.Errorf("flags (%v,%v,%v): %d fee transfers, want exactly 1",
						mint, freeze, update, transfers)
				}
			}
		}
	}
}

func TestBuildSequence_FreezeAuthorityAlwaysSetAtInit(t *testing.T) {
	params := testParams(t)
	params.RevokeFreeze = true

	ixs, err := BuildSequence(params)
	if err != nil {
		t.Fatalf("BuildSequence: %v", err)
	}

	init := ixs[1]
	if init.ProgramID != keys.TokenProgramID || init.Data[0] != tokInitializeMint {
		t.Fatalf("second instruction is not initialize mint")
	}
	// Freeze authority option byte must be set even though the freeze
	// authority is revoked later in the same transaction.
	if init.Data[34] != 1 {
		t.Error("initialize mint omitted the freeze authority")
	}

	last := ixs[len(ixs)-1]
	if !isRevoke(last) || AuthorityType(last.Data[1]) != AuthorityFreezeAccount {
		t.Error("expected trailing freeze authority revocation")
	}
}

func TestBuildSequence_MutabilityTracksRevokeUpdate(t *testing.T) {
	for _, revokeUpdate := range []bool{false, true} {
		params := testParams(t)
		params.RevokeUpdate = revokeUpdate

		ixs, err := BuildSequence(params)
		if err != nil {
			t.Fatalf("BuildSequence: %v", err)
		}
		metadataIx := ixs[4]
		if metadataIx.ProgramID != keys.TokenMetadataProgramID {
			t.Fatalf("fifth instruction is not metadata creation")
		}
		mutable, ok := ParseMetadataMutability(metadataIx.Data)
		if !ok {
			t.Fatal("could not parse mutability flag")
		}
		if mutable != !revokeUpdate {
			t.Errorf("revokeUpdate=%v: isMutable=%v, want %v", revokeUpdate, mutable, !revokeUpdate)
		}
	}
}

func TestBuildSequence_ZeroSupplyRejected(t *testing.T) {
	params := testParams(t)
	params.Supply = 0
	if _, err := BuildSequence(params); !errors.Is(err, ErrZeroSupply) {
		t.Errorf("expected ErrZeroSupply, got %v", err)
	}
}

func TestBuildSequence_MissingIdentityRejected(t *testing.T) {
	params := testParams(t)
	params.FeeRecipient = keys.Pubkey{}
	if _, err := BuildSequence(params); err == nil {
		t.Error("expected error for missing fee recipient")
	}
}

func TestSequencer_RefusesStagesOutOfOrder(t *testing.T) {
	s, err := NewSequencer(testParams(t))
	if err != nil {
		t.Fatalf("NewSequencer: %v", err)
	}
	// Fee before anything else is structurally impossible.
	if err := s.ChargeFee(); !errors.Is(err, ErrStageOutOfOrder) {
		t.Errorf("expected ErrStageOutOfOrder, got %v", err)
	}
	// Finalize before required stages is refused too.
	if _, err := s.Finalize(); !errors.Is(err, ErrStageOutOfOrder) {
		t.Errorf("expected ErrStageOutOfOrder, got %v", err)
	}
}

func TestScaleSupply(t *testing.T) {
	cases := []struct {
		supply   uint64
		decimals uint8
		want     uint64
		wantErr  bool
	}{
		{1_000_000, 9, 1_000_000_000_000_000, false},
		{1, 0, 1, false},
		{1_000_000_000_000_000_000, 0, 1_000_000_000_000_000_000, false},
		{1_000_000_000_000, 9, 0, true}, // 10^21 overflows u64
		{0, 9, 0, true},
	}
	for _, c := range cases {
		got, err := ScaleSupply(c.supply, c.decimals)
		if c.wantErr {
			if err == nil {
				t.Errorf("ScaleSupply(%d, %d): expected error", c.supply, c.decimals)
			}
			continue
		}
		if err != nil {
			t.Errorf("ScaleSupply(%d, %d): %v", c.supply, c.decimals, err)
			continue
		}
		if got != c.want {
			t.Errorf("ScaleSupply(%d, %d) = %d, want %d", c.supply, c.decimals, got, c.want)
		}
	}
}

func TestMintToAmountEncoding(t *testing.T) {
	params := testParams(t)
	ixs, err := BuildSequence(params)
	if err != nil {
		t.Fatalf("BuildSequence: %v", err)
	}
	mintTo := ixs[3]
	if !isMintTo(mintTo) {
		t.Fatalf("fourth instruction is not mintTo")
	}
	amount := binary.LittleEndian.Uint64(mintTo.Data[1:9])
	if amount != 1_000_000*1_000_000_000 {
		t.Errorf("scaled amount = %d, want %d", amount, uint64(1_000_000)*1_000_000_000)
	}
}
