package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"juice_treasury/contract"
	"juice_treasury/sdk"
)

const sample = `
protocol:
  owner: hive:owner
  fee: 250
log:
  verbose: true
state_file: /tmp/juice.json
terminals:
  - address: contract:terminal-eth
    currency: eth
  - address: contract:terminal-eth-v2
    currency: ETH
ballots:
  - address: contract:ballot-3d
    delay: 72h
price_feeds:
  - currency: usd
    base: eth
    price: "2000000000000000000000"
allow_migration:
  - contract:terminal-eth-v2
allocators:
  - address: contract:holder
  - address: contract:forwarder
    project: 1
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "juice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "hive:owner", cfg.Protocol.Owner)
	require.NotNil(t, cfg.Protocol.Fee)
	assert.Equal(t, uint64(250), *cfg.Protocol.Fee)
	assert.Equal(t, contract.FallbackGovernanceURI, cfg.Protocol.GovernanceURI)
	assert.True(t, cfg.Log.Verbose)
	assert.Equal(t, "/tmp/juice.json", cfg.StateFile)
	assert.Len(t, cfg.Terminals, 2)
	assert.Equal(t, 72*time.Hour, cfg.Ballots[0].Delay)
	assert.Equal(t, uint64(1), cfg.Allocators[1].Project)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, contract.FallbackFee, *cfg.Protocol.Fee)
	require.Len(t, cfg.Terminals, 1)
	assert.Equal(t, contract.FallbackTerminalAddress.String(), cfg.Terminals[0].Address)

	assert.Error(t, cfg.Validate(), "the owner has no default")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JUICE_OWNER", "hive:env")
	t.Setenv("JUICE_FEE", "0")
	t.Setenv("JUICE_GOVERNANCE_URI", "ipfs://env")
	t.Setenv("JUICE_STATE_FILE", "env.json")
	t.Setenv("JUICE_VERBOSE", "true")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "hive:env", cfg.Protocol.Owner)
	assert.Equal(t, uint64(0), *cfg.Protocol.Fee)
	assert.Equal(t, "ipfs://env", cfg.Protocol.GovernanceURI)
	assert.Equal(t, "env.json", cfg.StateFile)
	assert.True(t, cfg.Log.Verbose)

	t.Setenv("JUICE_FEE", "lots")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "protocol: ["))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(writeConfig(t, sample))
		require.NoError(t, err)
		return cfg
	}
	fee := uint64(1001)
	cases := map[string]func(*Config){
		"bad owner":         func(c *Config) { c.Protocol.Owner = "owner" },
		"fee":               func(c *Config) { c.Protocol.Fee = &fee },
		"no terminals":      func(c *Config) { c.Terminals = nil },
		"user terminal":     func(c *Config) { c.Terminals[0].Address = "hive:terminal" },
		"twice":             func(c *Config) { c.Terminals[1].Address = c.Terminals[0].Address },
		"currency":          func(c *Config) { c.Terminals[0].Currency = "btc" },
		"ballot address":    func(c *Config) { c.Ballots[0].Address = "" },
		"negative delay":    func(c *Config) { c.Ballots[0].Delay = -time.Second },
		"price":             func(c *Config) { c.PriceFeeds[0].Price = "two" },
		"unknown migration": func(c *Config) { c.AllowMigration = []string{"contract:elsewhere"} },
		"allocator":         func(c *Config) { c.Allocators[0].Address = "holder" },
	}
	for name, mutate := range cases {
		cfg := valid()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

// TestBuildBootstrapsOnce checks a fresh state is bootstrapped and a reused one is kept.
func TestBuildBootstrapsOnce(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	mem := sdk.NewMemState()
	engine, err := cfg.Build(sdk.NewHost(mem, nil, nil))
	require.NoError(t, err)

	protocol, err := engine.Protocol()
	require.NoError(t, err)
	assert.Equal(t, sdk.Address("hive:owner"), protocol.Owner)
	assert.Equal(t, uint64(250), protocol.Fee)
	assert.True(t, engine.IsMigrationAllowed("contract:terminal-eth-v2"))
	assert.Len(t, engine.Terminals(), 2)
	assert.Equal(t, []string{"contract:ballot-3d"}, engine.Ballots().Addresses())

	price, err := engine.PriceFor(sdk.CurrencyUSD, sdk.CurrencyETH)
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000000000", price.Dec())

	// a second engine over the same state finds the protocol in place
	fee := uint64(10)
	cfg.Protocol.Fee = &fee
	again, err := cfg.Build(sdk.NewHost(mem, nil, nil))
	require.NoError(t, err)
	protocol, err = again.Protocol()
	require.NoError(t, err)
	assert.Equal(t, uint64(250), protocol.Fee)
	assert.Equal(t, uint64(1), again.Projects().Count())
}
