package fund

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(t *testing.T, s string) *uint256.Int {
	t.Helper()
	v, err := uint256.FromDecimal(s)
	require.NoError(t, err)
	return v
}

// TestFeeAmountFivePercent checks the fee taken from a 40 ether tap at 5%.
func TestFeeAmountFivePercent(t *testing.T) {
	tapped := amount(t, "40000000000000000000")
	fee := FeeAmount(tapped, 500)
	assert.Equal(t, "1904761904761904762", fee.Dec())
	assert.Equal(t, "38095238095238095238", new(uint256.Int).Sub(tapped, fee).Dec())
}

func TestFeeAmountZero(t *testing.T) {
	assert.True(t, FeeAmount(uint256.NewInt(1000), 0).IsZero())
	assert.True(t, FeeAmount(new(uint256.Int), 500).IsZero())
}

// TestClaimableOverflowQuadratic is the half-supply redemption at rate 0.
func TestClaimableOverflowQuadratic(t *testing.T) {
	got := ClaimableOverflow(uint256.NewInt(1000), uint256.NewInt(50), uint256.NewInt(100), 0)
	assert.Equal(t, uint64(250), got.Uint64())
}

func TestClaimableOverflowFullSupplyIgnoresRate(t *testing.T) {
	for _, rate := range []uint64{0, 1, 3333, 9999, MaxPercent} {
		got := ClaimableOverflow(uint256.NewInt(1000), uint256.NewInt(100), uint256.NewInt(100), rate)
		assert.Equal(t, uint64(1000), got.Uint64(), "rate %d", rate)
	}
}

func TestClaimableOverflowLinear(t *testing.T) {
	for _, count := range []uint64{1, 10, 33, 50, 99} {
		got := ClaimableOverflow(uint256.NewInt(1000), uint256.NewInt(count), uint256.NewInt(100), MaxPercent)
		assert.Equal(t, 1000*count/100, got.Uint64(), "count %d", count)
	}
}

func TestClaimableOverflowInterpolates(t *testing.T) {
	overflow, count, total := uint256.NewInt(1000), uint256.NewInt(50), uint256.NewInt(100)
	quadratic := ClaimableOverflow(overflow, count, total, 0)
	half := ClaimableOverflow(overflow, count, total, 5000)
	linear := ClaimableOverflow(overflow, count, total, MaxPercent)
	// base 500, factor 5000 + 50*5000/100 = 7500
	assert.Equal(t, uint64(375), half.Uint64())
	assert.True(t, quadratic.Lt(half))
	assert.True(t, half.Lt(linear))
}

func TestClaimableOverflowEmpty(t *testing.T) {
	assert.True(t, ClaimableOverflow(new(uint256.Int), uint256.NewInt(5), uint256.NewInt(10), 0).IsZero())
	assert.True(t, ClaimableOverflow(uint256.NewInt(5), new(uint256.Int), uint256.NewInt(10), 0).IsZero())
	assert.True(t, ClaimableOverflow(uint256.NewInt(5), uint256.NewInt(1), new(uint256.Int), 0).IsZero())
}

// TestDiscountedWeightCompounds compares one jump with applying the rate period by period.
func TestDiscountedWeightCompounds(t *testing.T) {
	w := DiscountedWeight(DefaultWeight, 100_000_000, 3) // 10% per period
	assert.Equal(t, "729000000000000000000000", w.Dec())

	stepwise := DefaultWeight.Clone()
	for i := 0; i < 3; i++ {
		stepwise = DiscountedWeight(stepwise, 100_000_000, 1)
	}
	assert.True(t, w.Eq(stepwise))
}

// TestDiscountedWeightOddRateStaysClose checks a jump and single steps only differ by
// per-step flooring.
func TestDiscountedWeightOddRateStaysClose(t *testing.T) {
	jump := DiscountedWeight(DefaultWeight, 123_456_789, 20)
	stepwise := DefaultWeight.Clone()
	for i := 0; i < 20; i++ {
		stepwise = DiscountedWeight(stepwise, 123_456_789, 1)
	}
	assert.Equal(t, "71691325139432923009763", jump.Dec())
	assert.Equal(t, "71691325139432923009759", stepwise.Dec())
}

// TestDiscountedWeightManyPeriods runs a hundred million one second periods.
func TestDiscountedWeightManyPeriods(t *testing.T) {
	started := time.Now()
	w := DiscountedWeight(DefaultWeight, 1, 100_000_000)
	assert.Equal(t, "904837417990717702233420", w.Dec())
	assert.Less(t, time.Since(started), time.Second)

	base := FundingCycle{
		ID: 1, Number: 1, Start: 0, Duration: 1, DiscountRate: 1,
		Weight: DefaultWeight.Clone(), Target: new(uint256.Int), Tapped: new(uint256.Int),
	}
	cur := DeriveCurrent(base, 100_000_000)
	assert.Equal(t, uint64(100_000_001), cur.Number)
	assert.True(t, cur.Weight.Eq(w))
}

func TestDiscountedWeightEdges(t *testing.T) {
	assert.True(t, DiscountedWeight(DefaultWeight, 0, 1_000_000).Eq(DefaultWeight))
	assert.True(t, DiscountedWeight(DefaultWeight, 5, 0).Eq(DefaultWeight))
	assert.True(t, DiscountedWeight(DefaultWeight, MaxDiscountRate, 1).IsZero())
	// floors to zero long before the period count runs out
	assert.True(t, DiscountedWeight(uint256.NewInt(10), 500_000_000, 1<<40).IsZero())
}

func TestConvertToBase(t *testing.T) {
	// 2000 usd per eth: 100 usd is 0.05 eth
	price := amount(t, "2000000000000000000000")
	got := ConvertToBase(amount(t, "100000000000000000000"), price)
	assert.Equal(t, "50000000000000000", got.Dec())
	assert.Panics(t, func() { ConvertToBase(uint256.NewInt(1), new(uint256.Int)) })
}

func TestTokensAndPercent(t *testing.T) {
	tokens := Tokens(amount(t, "50000000000000000000"), DefaultWeight)
	assert.Equal(t, "50000000000000000000000000", tokens.Dec())
	assert.Equal(t, uint64(2500), PercentOf(uint256.NewInt(10_000), 2500, MaxPercent).Uint64())
}

func TestMulDivOverflowReported(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	_, ok := MulDiv(max, uint256.NewInt(2), uint256.NewInt(1))
	assert.False(t, ok)
	z, ok := MulDiv(max, uint256.NewInt(2), uint256.NewInt(2))
	assert.True(t, ok)
	assert.True(t, z.Eq(max))
}
