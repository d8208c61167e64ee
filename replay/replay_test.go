package replay

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"juice_treasury/config"
	"juice_treasury/sdk"
)

var scenarioStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestRunner(t *testing.T) (*Runner, *sdk.Host) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(scenarioStart)
	host := sdk.NewHost(nil, clock, sdk.NewLoggerTo(io.Discard, false))

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Protocol.Owner = "hive:owner"
	cfg.Ballots = []config.Ballot{{Address: "contract:ballot-3d", Delay: 72 * time.Hour}}
	engine, err := cfg.Build(host)
	require.NoError(t, err)
	host.DrainEvents()

	return NewRunner(engine, host, clock, nil), host
}

const tapWalkthrough = `
name: tap walkthrough
steps:
  - as: hive:payer
    action: deposit
    args:
      amount: 100e18
  - as: hive:alice
    action: launch
    args:
      uri: ipfs://alice
      target: 100e18
      duration: 168h
      bonding_curve_rate: 10000
      reconfiguration_bonding_curve_rate: 10000
  - as: hive:payer
    action: pay
    args:
      project: 2
      amount: 50e18
  - as: hive:outsider
    action: tap
    args:
      project: 2
      amount: 40e18
  - action: expect
    args:
      project: 2
      balance: 10e18
      tapped: 40e18
      cycle_number: 1
      tokens:
        "hive:payer": 50e24
      wallets:
        "hive:alice": "38095238095238095238"
        "hive:payer": 50e18
  - action: expect
    args:
      project: 1
      balance: "1904761904761904762"
  - at: 168h
    as: hive:outsider
    action: tap
    args:
      project: 2
      amount: 11e18
    expect_error: insufficient funds
  - at: 168h
    action: expect
    args:
      project: 2
      cycle_number: 2
      tapped: 0
`

// TestRunTapWalkthrough replays a full pay and tap scenario.
func TestRunTapWalkthrough(t *testing.T) {
	runner, _ := newTestRunner(t)
	sc, err := Decode([]byte(tapWalkthrough))
	require.NoError(t, err)

	report, err := runner.Run(sc)
	require.NoError(t, err)
	for _, step := range report.Steps {
		assert.True(t, step.OK, "step %d %s: %s", step.Index, step.Action, step.Error)
	}
	assert.Equal(t, 0, report.Failures)
	require.Len(t, report.Steps, 8)

	assert.Equal(t, "project 2 cycle 1", report.Steps[1].Summary)
	assert.False(t, report.Steps[6].Succeeded)
	assert.Contains(t, report.Steps[6].Error, "insufficient funds")
	assert.Empty(t, report.Steps[6].Events, "reverted calls leave no events")
	assert.NotEmpty(t, report.Steps[3].Events)
	assert.Equal(t, scenarioStart.Unix()+7*24*3600, report.Steps[7].At)

	require.Len(t, report.Projects, 2)
	prj := report.Projects[1]
	assert.Equal(t, "hive:alice", prj.Owner)
	assert.Equal(t, "10000000000000000000", prj.Balance)
	require.NotNil(t, prj.Cycle)
	assert.Equal(t, uint64(2), prj.Cycle.Number)

	wallets := map[string]string{}
	for _, w := range report.Wallets {
		wallets[w.Address] = w.Balance
	}
	assert.Equal(t, "38095238095238095238", wallets["hive:alice"])
	// the fee stays in the terminal wallet, booked to the governance project
	assert.Equal(t, "11904761904761904762", wallets["contract:terminal-eth"])
}

// TestRunCountsUnexpectedOutcomes checks both wrong successes and wrong failures count.
func TestRunCountsUnexpectedOutcomes(t *testing.T) {
	runner, _ := newTestRunner(t)
	sc, err := Decode([]byte(`
name: failures
steps:
  - as: hive:alice
    action: launch
    args:
      target: 1e18
      duration: 24h
    expect_error: anything
  - as: hive:alice
    action: launch
    args:
      duration: 24h
      cycle_limit: 99
  - as: hive:alice
    action: dance
  - as: hive:alice
    action: reconfigure
    args:
      project: 2
      target: 1e18
      ballot: contract:missing
    expect_error: unknown ballot
`))
	require.NoError(t, err)

	report, err := runner.Run(sc)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Failures)
	assert.False(t, report.Steps[0].OK)
	assert.True(t, report.Steps[0].Succeeded)
	assert.Contains(t, report.Steps[2].Error, "unknown action")
	assert.True(t, report.Steps[3].OK)
}

func TestRunScenarioStart(t *testing.T) {
	runner, host := newTestRunner(t)

	_, err := runner.Run(&Scenario{Start: "2023-01-01T00:00:00Z"})
	assert.Error(t, err)

	report, err := runner.Run(&Scenario{Start: "2024-02-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Unix(), report.StartedAt)
	assert.Equal(t, report.StartedAt, host.Now())
}

func TestReportJSON(t *testing.T) {
	runner, _ := newTestRunner(t)
	sc, err := Decode([]byte(tapWalkthrough))
	require.NoError(t, err)
	report, err := runner.Run(sc)
	require.NoError(t, err)

	data, err := report.MarshalJSON()
	require.NoError(t, err)
	require.True(t, json.Valid(data), string(data))

	var decoded struct {
		Scenario string `json:"scenario"`
		Failures int    `json:"failures"`
		Steps    []struct {
			Action string `json:"action"`
		} `json:"steps"`
		Projects []struct {
			ID      uint64 `json:"id"`
			Balance string `json:"balance"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "tap walkthrough", decoded.Scenario)
	assert.Len(t, decoded.Steps, 8)
	assert.Equal(t, "deposit", decoded.Steps[0].Action)
	assert.Equal(t, "10000000000000000000", decoded.Projects[1].Balance)
}

func TestDecodeRejectsBadSteps(t *testing.T) {
	_, err := Decode([]byte("steps:\n  - as: hive:a\n"))
	assert.Error(t, err)

	_, err = Decode([]byte("steps:\n  - at: 2h\n    action: pay\n  - at: 1h\n    action: pay\n"))
	assert.Error(t, err)

	_, err = Decode([]byte("steps: ["))
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"":       "0",
		"1000":   "1000",
		"1_000":  "1000",
		"50e18":  "50000000000000000000",
		"1.5e18": "1500000000000000000",
		"0.5E2":  "50",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.Dec(), in)
	}
	for _, in := range []string{"abc", "1.55e1", "1e78", "1e-3", "-5", "1e77e1"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestRegistryKinds(t *testing.T) {
	r := NewRegistry()
	assert.Len(t, r.Kinds(), 17)
	_, err := r.Dispatch(&Context{}, "nope", nil)
	assert.Error(t, err)

	r.Register("noop", func(*Context, *yaml.Node) (string, error) { return "ok", nil })
	out, err := r.Dispatch(&Context{}, "noop", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
