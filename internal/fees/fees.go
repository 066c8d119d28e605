// Package fees prices the token creation service. The schedule is flat:
// a base charge plus a fixed increment per revoked authority, independent
// of supply or decimal precision.
package fees

// LamportsPerSOL is the number of base currency units in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

// Fee schedule constants, in lamports.
const (
	BaseFeeLamports      = LamportsPerSOL / 10
	PerOptionFeeLamports = LamportsPerSOL / 10
)

// RevokeFlags selects which authorities the requester gives up at
// creation time.
type RevokeFlags struct {
	Mint   bool
	Freeze bool
	Update bool
}

// Count returns how many revoke options are active.
func (f RevokeFlags) Count() int {
	n := 0
	if f.Mint {
		n++
	}
	if f.Freeze {
		n++
	}
	if f.Update {
		n++
	}
	return n
}

// Compute returns the total service fee in lamports for the given
// option set. Total, pure, and defined for every flag combination.
func Compute(flags RevokeFlags) uint64 {
	return BaseFeeLamports + uint64(flags.Count())*PerOptionFeeLamports
}
