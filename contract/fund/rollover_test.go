package fund

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

const week = int64(7 * 24 * 3600)

func baseCycle() FundingCycle {
	return FundingCycle{
		ID:           3,
		ProjectID:    1,
		Number:       2,
		Configured:   900,
		CycleLimit:   3,
		Weight:       DefaultWeight.Clone(),
		Start:        1000,
		Duration:     week,
		Target:       uint256.NewInt(100),
		DiscountRate: 100_000_000,
		Tapped:       uint256.NewInt(40),
	}
}

func TestElapsedPeriods(t *testing.T) {
	assert.Equal(t, uint64(0), ElapsedPeriods(1000, week, 999))
	assert.Equal(t, uint64(0), ElapsedPeriods(1000, week, 1000+week-1))
	assert.Equal(t, uint64(1), ElapsedPeriods(1000, week, 1000+week))
	assert.Equal(t, uint64(5), ElapsedPeriods(1000, week, 1000+5*week+3))
	assert.Equal(t, uint64(0), ElapsedPeriods(1000, 0, 1<<40))
}

func TestDeriveCurrentWithinPeriodKeepsRecord(t *testing.T) {
	base := baseCycle()
	cur := DeriveCurrent(base, base.Start+10)
	assert.Equal(t, base.ID, cur.ID)
	assert.Equal(t, uint64(40), cur.Tapped.Uint64())
	// clone, not alias
	cur.Tapped.SetUint64(0)
	assert.Equal(t, uint64(40), base.Tapped.Uint64())
}

func TestDeriveCurrentRollsOver(t *testing.T) {
	base := baseCycle()
	cur := DeriveCurrent(base, base.Start+2*week+5)
	assert.Equal(t, uint64(0), cur.ID)
	assert.True(t, cur.Exists())
	assert.False(t, cur.Materialized())
	assert.Equal(t, base.ID, cur.BasedOn)
	assert.Equal(t, uint64(4), cur.Number)
	assert.Equal(t, uint64(1), cur.CycleLimit)
	assert.Equal(t, base.Start+2*week, cur.Start)
	assert.True(t, cur.Tapped.IsZero())
	assert.Equal(t, "810000000000000000000000", cur.Weight.Dec())
	assert.Equal(t, base.Configured, cur.Configured)
}

// TestDeriveCurrentStepwiseEqualsJump walks period by period and compares with one jump.
func TestDeriveCurrentStepwiseEqualsJump(t *testing.T) {
	base := baseCycle()
	jump := DeriveCurrent(base, base.Start+6*week)

	step := base
	for k := int64(1); k <= 6; k++ {
		step = DeriveCurrent(step, base.Start+k*week)
	}
	assert.Equal(t, jump.Number, step.Number)
	assert.Equal(t, jump.Start, step.Start)
	assert.Equal(t, jump.CycleLimit, step.CycleLimit)
	assert.True(t, jump.Weight.Eq(step.Weight))
}

func TestDeriveCurrentIsPure(t *testing.T) {
	base := baseCycle()
	a := DeriveCurrent(base, base.Start+3*week)
	b := DeriveCurrent(base, base.Start+3*week)
	assert.Equal(t, a, b)
}

func TestCycleLimitFloorsAtZero(t *testing.T) {
	base := baseCycle()
	cur := DeriveCurrent(base, base.Start+10*week)
	assert.Equal(t, uint64(0), cur.CycleLimit)
}

func TestNonRecurringExpires(t *testing.T) {
	base := baseCycle()
	base.DiscountRate = NonRecurringDiscountRate
	assert.True(t, DeriveCurrent(base, base.Start+week-1).Exists())
	assert.False(t, DeriveCurrent(base, base.Start+week).Exists())
	assert.False(t, DeriveNext(base).Exists())
}

func TestDeriveNext(t *testing.T) {
	base := baseCycle()
	next := DeriveNext(base)
	assert.Equal(t, base.Number+1, next.Number)
	assert.Equal(t, base.Start+week, next.Start)

	base.Duration = 0
	assert.False(t, DeriveNext(base).Exists())
	assert.False(t, DeriveNext(FundingCycle{}).Exists())
}
