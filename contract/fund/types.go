package fund

import (
	"github.com/holiman/uint256"

	"juice_treasury/sdk"
)

const (
	// MaxPercent is the base for fee, reserved rate and both bonding curve rates.
	MaxPercent uint64 = 10_000

	// SplitsTotalPercent is the denominator of Split.Percent.
	SplitsTotalPercent uint64 = 10_000

	// MaxDiscountRate is a 100% discount per elapsed period.
	MaxDiscountRate uint64 = 1_000_000_000

	// NonRecurringDiscountRate marks a cycle that expires instead of rolling over.
	NonRecurringDiscountRate = MaxDiscountRate + 1

	MaxFee        uint64 = 1_000
	MaxCycleLimit uint64 = 32
	MaxDuration   int64  = 1<<32 - 1
)

var (
	// WeightScale is the fixed-point base of weights and prices (18 decimals).
	WeightScale = uint256.NewInt(1_000_000_000_000_000_000)
	// DefaultWeight issues 1 000 000 tokens per base unit.
	DefaultWeight = new(uint256.Int).Mul(WeightScale, uint256.NewInt(1_000_000))
)

// BallotState is what a ballot answers about a pending reconfiguration.
type BallotState uint8

const (
	BallotActive   BallotState = 0
	BallotApproved BallotState = 1
	BallotFailed   BallotState = 2
)

// String serializes the BallotState enum into log friendly words.
// Example payload: fund.BallotApproved.String()
func (s BallotState) String() string {
	switch s {
	case BallotActive:
		return "active"
	case BallotApproved:
		return "approved"
	default:
		return "failed"
	}
}

// SplitGroup separates payout splits from reserved token splits of the same epoch.
type SplitGroup uint8

const (
	GroupPayouts        SplitGroup = 1
	GroupReservedTokens SplitGroup = 2
)

func (g SplitGroup) String() string {
	switch g {
	case GroupPayouts:
		return "payouts"
	case GroupReservedTokens:
		return "reserved"
	default:
		return "unknown"
	}
}

// Metadata carries the auxiliary rates of a configuration, all out of MaxPercent.
type Metadata struct {
	ReservedRate                    uint64
	BondingCurveRate                uint64
	ReconfigurationBondingCurveRate uint64
}

// Properties are the owner supplied parameters of a new configuration.
type Properties struct {
	Target       *uint256.Int
	Currency     sdk.Currency
	Duration     int64
	CycleLimit   uint64
	DiscountRate uint64
	// Ballot is a registry address, empty means no ballot.
	Ballot string
	// Weight 0 derives the weight from the base cycle.
	Weight *uint256.Int
}

// FundingCycle is one configuration epoch of a project.
type FundingCycle struct {
	ID           uint64
	ProjectID    uint64
	Number       uint64
	BasedOn      uint64
	Configured   int64
	CycleLimit   uint64
	Weight       *uint256.Int
	Ballot       string
	Start        int64
	Duration     int64
	Target       *uint256.Int
	Currency     sdk.Currency
	Fee          uint64
	DiscountRate uint64
	Tapped       *uint256.Int
	Metadata     Metadata
}

// Exists is false for the empty cycle. Derived cycles that are not stored yet have ID 0
// but a non-zero Number.
func (fc FundingCycle) Exists() bool {
	return fc.Number > 0
}

// Materialized reports whether the cycle is backed by a stored record.
func (fc FundingCycle) Materialized() bool {
	return fc.ID > 0
}

// IsRecurring is false for the non-recurring sentinel.
func (fc FundingCycle) IsRecurring() bool {
	return fc.DiscountRate != NonRecurringDiscountRate
}

// End is the first second after the cycle, 0 for never ending cycles.
func (fc FundingCycle) End() int64 {
	if fc.Duration == 0 {
		return 0
	}
	return fc.Start + fc.Duration
}

// Remaining is target minus tapped, floored at zero.
func (fc FundingCycle) Remaining() *uint256.Int {
	if fc.Tapped.Gt(fc.Target) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(fc.Target, fc.Tapped)
}

// Clone deep copies the amount pointers so derived cycles never alias stored ones.
func (fc FundingCycle) Clone() FundingCycle {
	out := fc
	out.Weight = cloneOrZero(fc.Weight)
	out.Target = cloneOrZero(fc.Target)
	out.Tapped = cloneOrZero(fc.Tapped)
	return out
}

func cloneOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v.Clone()
}

// Split is one percent-weighted recipient. Exactly where the share goes depends on
// which target is set: Allocator wins over ProjectID which wins over Beneficiary.
type Split struct {
	Percent       uint64
	LockedUntil   int64
	Beneficiary   sdk.Address
	Allocator     sdk.Address
	ProjectID     uint64
	PreferClaimed bool
}

// SameTarget compares everything but percent and lock.
func (s Split) SameTarget(o Split) bool {
	return s.Beneficiary == o.Beneficiary &&
		s.Allocator == o.Allocator &&
		s.ProjectID == o.ProjectID &&
		s.PreferClaimed == o.PreferClaimed
}

// HasTarget is false when nobody would receive the share.
func (s Split) HasTarget() bool {
	return s.Beneficiary != "" || s.Allocator != "" || s.ProjectID != 0
}
