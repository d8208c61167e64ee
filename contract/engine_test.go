package contract_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"juice_treasury/contract"
	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

func TestEngineRequiresBootstrap(t *testing.T) {
	host := sdk.NewHost(nil, nil, sdk.NewLoggerTo(io.Discard, false))
	eng, err := contract.New(host, nil, contract.FallbackTerminalAddress, sdk.CurrencyETH)
	require.NoError(t, err)

	_, _, err = eng.LaunchProject(projectOwner, "ipfs://x", weekly(ether(1)))
	assert.ErrorIs(t, err, contract.ErrNotInitialized)
	_, err = eng.Protocol()
	assert.ErrorIs(t, err, contract.ErrNotInitialized)

	_, err = eng.Bootstrap(protocolOwner, fund.MaxFee+1, "")
	assert.ErrorIs(t, err, contract.ErrInvalidConfig)
	govID, err := eng.Bootstrap(protocolOwner, 0, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), govID)

	_, err = eng.Bootstrap(protocolOwner, 0, "")
	assert.ErrorIs(t, err, contract.ErrAlreadyInitialized)
}

func TestBootstrapCreatesGovernanceProject(t *testing.T) {
	f := setup(t)
	cfg, err := f.engine.Protocol()
	require.NoError(t, err)
	assert.Equal(t, protocolOwner, cfg.Owner)
	assert.Equal(t, contract.FallbackFee, cfg.Fee)
	assert.Equal(t, f.govID, cfg.GovernanceProjectID)

	prj, err := f.engine.Project(f.govID)
	require.NoError(t, err)
	assert.Equal(t, protocolOwner, prj.Owner)
	assert.Equal(t, contract.FallbackGovernanceURI, prj.URI)

	fc := f.current(f.govID)
	assert.Equal(t, int64(0), fc.Duration)
	assert.True(t, fc.Target.IsZero())
	assert.Equal(t, uint64(0), fc.Fee)
}

func TestNewRejectsBadTerminals(t *testing.T) {
	host := sdk.NewHost(nil, nil, nil)
	_, err := contract.New(host, nil, "hive:terminal", sdk.CurrencyETH)
	assert.ErrorIs(t, err, contract.ErrInvalidAddress)

	eng, err := contract.New(host, nil, contract.FallbackTerminalAddress, sdk.CurrencyETH)
	require.NoError(t, err)
	assert.ErrorIs(t, eng.AddTerminal(contract.FallbackTerminalAddress, sdk.CurrencyETH), contract.ErrInvalidConfig)
	require.NoError(t, eng.AddTerminal(secondTerminal, sdk.CurrencyUSD))
	assert.Equal(t, []sdk.Address{contract.FallbackTerminalAddress, secondTerminal}, eng.Terminals())
}

// TestSetFeeAppliesToNewConfigurations checks cycles keep the fee they were configured with.
func TestSetFeeAppliesToNewConfigurations(t *testing.T) {
	f := setup(t)
	id := f.launch(projectOwner, weekly(ether(100)))

	assert.ErrorIs(t, f.engine.SetFee(projectOwner, 0), contract.ErrUnauthorized)
	assert.ErrorIs(t, f.engine.SetFee(protocolOwner, fund.MaxFee+1), contract.ErrInvalidConfig)
	require.NoError(t, f.engine.SetFee(protocolOwner, 0))

	assert.Equal(t, contract.FallbackFee, f.current(id).Fee)
	pending, err := f.engine.Reconfigure(projectOwner, id, weekly(ether(100)))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pending.Fee)

	f.pay(payer, id, ether(10))
	f.advance(week)
	res, err := f.engine.Tap(payer, id, ether(10), sdk.CurrencyETH, nil)
	require.NoError(t, err)
	assert.True(t, res.Fee.IsZero())
}

// TestEventsEmittedPerCall checks a successful call leaves its event lines on the host.
func TestEventsEmittedPerCall(t *testing.T) {
	f := setup(t)
	id := f.launch(projectOwner, weekly(ether(100)))
	f.host.DrainEvents()

	f.pay(payer, id, ether(1))
	events := f.host.DrainEvents()
	require.Len(t, events, 1)
	assert.Contains(t, events[0], "pay|")
}

func TestSetProjectURI(t *testing.T) {
	f := setup(t)
	id := f.launch(projectOwner, weekly(ether(100)))

	err := f.engine.SetProjectURI(outsider, id, "ipfs://stolen")
	assert.ErrorIs(t, err, contract.ErrUnauthorized)

	require.NoError(t, f.engine.SetProjectURI(projectOwner, id, "ipfs://v2"))
	prj, err := f.engine.Project(id)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://v2", prj.URI)

	long := make([]byte, contract.MaxURILength+1)
	for i := range long {
		long[i] = 'a'
	}
	err = f.engine.SetProjectURI(projectOwner, id, string(long))
	assert.ErrorIs(t, err, contract.ErrInvalidConfig)
	prj, err = f.engine.Project(id)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://v2", prj.URI)
}
