package fund

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"juice_treasury/sdk"
)

func TestFundingCycleCodec(t *testing.T) {
	fc := baseCycle()
	fc.Ballot = "contract:ballot-3d"
	fc.Currency = sdk.CurrencyUSD
	fc.Fee = 500
	fc.Metadata = Metadata{ReservedRate: 1000, BondingCurveRate: 6000, ReconfigurationBondingCurveRate: 10000}

	got, err := DecodeFundingCycle(EncodeFundingCycle(&fc))
	require.NoError(t, err)
	assert.Equal(t, fc, *got)
}

func TestFundingCycleCodecRejectsGarbage(t *testing.T) {
	fc := baseCycle()
	data := EncodeFundingCycle(&fc)

	_, err := DecodeFundingCycle(data[:len(data)-1])
	assert.Error(t, err)
	_, err = DecodeFundingCycle(append(data, 0))
	assert.Error(t, err)
}

func TestSplitsCodecKeepsOrder(t *testing.T) {
	splits := []Split{
		{Percent: 5000, LockedUntil: 1234, Beneficiary: "hive:bob"},
		{Percent: 2500, Allocator: "contract:alloc", Beneficiary: "hive:carol", PreferClaimed: true},
		{Percent: 100, ProjectID: 7},
	}
	got, err := DecodeSplits(EncodeSplits(splits))
	require.NoError(t, err)
	assert.Equal(t, splits, got)

	empty, err := DecodeSplits(EncodeSplits(nil))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAmountsUseFullWidth(t *testing.T) {
	fc := baseCycle()
	fc.Target = new(uint256.Int).SetAllOne()
	got, err := DecodeFundingCycle(EncodeFundingCycle(&fc))
	require.NoError(t, err)
	assert.True(t, got.Target.Eq(fc.Target))
}
