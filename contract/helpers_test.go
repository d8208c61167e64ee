package contract_test

import (
	"io"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"juice_treasury/contract"
	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

const (
	protocolOwner = sdk.Address("hive:owner")
	projectOwner  = sdk.Address("hive:alice")
	payer         = sdk.Address("hive:payer")
	secondPayer   = sdk.Address("hive:someoneelse")
	bob           = sdk.Address("hive:bob")
	carol         = sdk.Address("hive:carol")
	outsider      = sdk.Address("hive:outsider")

	ballotAddress   = "contract:ballot-3d"
	secondTerminal  = sdk.Address("contract:terminal-eth-v2")
	forwarderWallet = sdk.Address("contract:forwarder")

	day  = int64(24 * 3600)
	week = 7 * day
)

var genesis = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fixture is a bootstrapped engine over an in-memory host with a fake clock.
type fixture struct {
	t      *testing.T
	host   *sdk.Host
	clock  *clockwork.FakeClock
	engine *contract.Engine
	govID  uint64
}

// setup bootstraps the protocol at a 5% fee and funds the usual payers.
func setup(t *testing.T) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(genesis)
	host := sdk.NewHost(nil, clock, sdk.NewLoggerTo(io.Discard, false))

	ballots := contract.NewBallotRegistry()
	require.NoError(t, ballots.Register(ballotAddress, contract.DurationBallot{Delay: 72 * time.Hour}))

	eng, err := contract.New(host, ballots, contract.FallbackTerminalAddress, sdk.CurrencyETH)
	require.NoError(t, err)
	require.NoError(t, eng.AddTerminal(secondTerminal, sdk.CurrencyETH))

	govID, err := eng.Bootstrap(protocolOwner, contract.FallbackFee, "")
	require.NoError(t, err)

	for _, addr := range []sdk.Address{payer, secondPayer, outsider} {
		host.Deposit(addr, ether(1_000), sdk.CurrencyETH)
	}
	require.NoError(t, host.Commit())
	host.DrainEvents()

	return &fixture{t: t, host: host, clock: clock, engine: eng, govID: govID}
}

// ether returns n whole units with 18 decimals.
func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), fund.WeightScale)
}

func amount(t *testing.T, s string) *uint256.Int {
	t.Helper()
	v, err := uint256.FromDecimal(s)
	require.NoError(t, err)
	return v
}

// weekly is a recurring 7 day configuration in ETH with linear redemptions.
func weekly(target *uint256.Int) contract.Configuration {
	return contract.Configuration{
		Properties: fund.Properties{
			Target:   target,
			Currency: sdk.CurrencyETH,
			Duration: week,
		},
		Metadata: fund.Metadata{
			BondingCurveRate:                fund.MaxPercent,
			ReconfigurationBondingCurveRate: fund.MaxPercent,
		},
	}
}

// launch creates a project owned by owner and fails the test on error.
func (f *fixture) launch(owner sdk.Address, cfg contract.Configuration) uint64 {
	f.t.Helper()
	id, fc, err := f.engine.LaunchProject(owner, "ipfs://project", cfg)
	require.NoError(f.t, err)
	require.Equal(f.t, uint64(1), fc.Number)
	return id
}

func (f *fixture) pay(from sdk.Address, projectID uint64, value *uint256.Int) contract.Payment {
	f.t.Helper()
	p, err := f.engine.Pay(from, projectID, value, sdk.CurrencyETH, "", "", false)
	require.NoError(f.t, err)
	return p
}

// advance moves the clock forward by seconds.
func (f *fixture) advance(seconds int64) {
	f.clock.Advance(time.Duration(seconds) * time.Second)
}

func (f *fixture) now() int64 {
	return f.clock.Now().Unix()
}

func (f *fixture) wallet(addr sdk.Address) *uint256.Int {
	return f.host.BalanceOf(addr, sdk.CurrencyETH)
}

func (f *fixture) balance(projectID uint64) *uint256.Int {
	f.t.Helper()
	b, err := f.engine.BalanceOf(projectID)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) current(projectID uint64) fund.FundingCycle {
	f.t.Helper()
	fc, err := f.engine.CurrentOf(projectID)
	require.NoError(f.t, err)
	return fc
}

func (f *fixture) queued(projectID uint64) fund.FundingCycle {
	f.t.Helper()
	fc, err := f.engine.QueuedOf(projectID)
	require.NoError(f.t, err)
	return fc
}

func sum(values ...*uint256.Int) *uint256.Int {
	out := new(uint256.Int)
	for _, v := range values {
		out.Add(out, v)
	}
	return out
}
