package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"juice_treasury/contract"
	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

func TestPriceFeeds(t *testing.T) {
	prices := contract.NewPriceStore(sdk.NewMemState())

	same, err := prices.PriceFor(sdk.CurrencyETH, sdk.CurrencyETH)
	require.NoError(t, err)
	assert.Equal(t, fund.WeightScale, same)

	_, err = prices.PriceFor(sdk.CurrencyUSD, sdk.CurrencyETH)
	assert.ErrorIs(t, err, contract.ErrPriceFeedNotFound)

	assert.ErrorIs(t, prices.SetFeed(sdk.CurrencyUSD, sdk.CurrencyETH, ether(0)), contract.ErrInvalidConfig)
	assert.ErrorIs(t, prices.SetFeed(sdk.CurrencyETH, sdk.CurrencyETH, ether(1)), contract.ErrInvalidConfig)
	require.NoError(t, prices.SetFeed(sdk.CurrencyUSD, sdk.CurrencyETH, ether(2_000)))

	direct, err := prices.PriceFor(sdk.CurrencyUSD, sdk.CurrencyETH)
	require.NoError(t, err)
	assert.Equal(t, ether(2_000), direct)

	inverse, err := prices.PriceFor(sdk.CurrencyETH, sdk.CurrencyUSD)
	require.NoError(t, err)
	assert.Equal(t, "500000000000000", inverse.Dec())
}

func TestAddPriceFeedNeedsProtocolOwner(t *testing.T) {
	f := setup(t)
	err := f.engine.AddPriceFeed(projectOwner, sdk.CurrencyUSD, sdk.CurrencyETH, ether(2_000))
	assert.ErrorIs(t, err, contract.ErrUnauthorized)

	require.NoError(t, f.engine.AddPriceFeed(protocolOwner, sdk.CurrencyUSD, sdk.CurrencyETH, ether(2_000)))
	price, err := f.engine.PriceFor(sdk.CurrencyUSD, sdk.CurrencyETH)
	require.NoError(t, err)
	assert.Equal(t, ether(2_000), price)
}
