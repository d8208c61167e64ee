package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"juice_treasury/contract"
	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

// Config holds the protocol setup the cli boots an engine from.
type Config struct {
	Protocol struct {
		Owner         string  `yaml:"owner"`
		Fee           *uint64 `yaml:"fee"`
		GovernanceURI string  `yaml:"governance_uri"`
	} `yaml:"protocol"`
	Log struct {
		Verbose bool `yaml:"verbose"`
	} `yaml:"log"`
	StateFile string `yaml:"state_file"`

	// Terminals lists every terminal, the first one is where new projects keep funds.
	Terminals      []Terminal  `yaml:"terminals"`
	Ballots        []Ballot    `yaml:"ballots"`
	PriceFeeds     []PriceFeed `yaml:"price_feeds"`
	AllowMigration []string    `yaml:"allow_migration"`
	Allocators     []Allocator `yaml:"allocators"`
}

type Terminal struct {
	Address  string `yaml:"address"`
	Currency string `yaml:"currency"`
}

// Ballot registers a duration ballot; delay is a Go duration ("72h").
type Ballot struct {
	Address string        `yaml:"address"`
	Delay   time.Duration `yaml:"delay"`
}

// PriceFeed quotes how many units of Currency one unit of Base is worth, 18 decimals.
type PriceFeed struct {
	Currency string `yaml:"currency"`
	Base     string `yaml:"base"`
	Price    string `yaml:"price"`
}

// Allocator forwards payouts it receives into Project. Project 0 keeps them.
type Allocator struct {
	Address string `yaml:"address"`
	Project uint64 `yaml:"project"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults fill the gaps.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("JUICE_OWNER"); v != "" {
		cfg.Protocol.Owner = v
	}
	if v := os.Getenv("JUICE_FEE"); v != "" {
		fee, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("JUICE_FEE: %w", err)
		}
		cfg.Protocol.Fee = &fee
	}
	if v := os.Getenv("JUICE_GOVERNANCE_URI"); v != "" {
		cfg.Protocol.GovernanceURI = v
	}
	if v := os.Getenv("JUICE_STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("JUICE_VERBOSE"); v != "" {
		cfg.Log.Verbose = v == "1" || v == "true"
	}

	// Defaults
	if cfg.Protocol.Fee == nil {
		fee := contract.FallbackFee
		cfg.Protocol.Fee = &fee
	}
	if cfg.Protocol.GovernanceURI == "" {
		cfg.Protocol.GovernanceURI = contract.FallbackGovernanceURI
	}
	if len(cfg.Terminals) == 0 {
		cfg.Terminals = []Terminal{{Address: contract.FallbackTerminalAddress.String(), Currency: "eth"}}
	}

	return cfg, nil
}

// Validate checks that all required fields are set and parse.
func (c *Config) Validate() error {
	if c.Protocol.Owner == "" {
		return errors.New("protocol.owner is required")
	}
	if !sdk.Address(c.Protocol.Owner).IsValid() {
		return fmt.Errorf("protocol.owner %q is not a valid address", c.Protocol.Owner)
	}
	if c.Protocol.Fee != nil && *c.Protocol.Fee > fund.MaxFee {
		return fmt.Errorf("protocol.fee must be at most %d", fund.MaxFee)
	}
	if len(c.Terminals) == 0 {
		return errors.New("at least one terminal is required")
	}
	seen := map[string]bool{}
	for i, t := range c.Terminals {
		if sdk.Address(t.Address).Domain() != sdk.AddressDomainContract {
			return fmt.Errorf("terminals[%d].address %q must be a contract address", i, t.Address)
		}
		if seen[t.Address] {
			return fmt.Errorf("terminals[%d].address %q listed twice", i, t.Address)
		}
		seen[t.Address] = true
		if _, err := sdk.ParseCurrency(t.Currency); err != nil {
			return fmt.Errorf("terminals[%d]: %w", i, err)
		}
	}
	for i, b := range c.Ballots {
		if b.Address == "" {
			return fmt.Errorf("ballots[%d].address is required", i)
		}
		if b.Delay < 0 {
			return fmt.Errorf("ballots[%d].delay must not be negative", i)
		}
	}
	for i, f := range c.PriceFeeds {
		if _, _, _, err := f.parse(); err != nil {
			return fmt.Errorf("price_feeds[%d]: %w", i, err)
		}
	}
	for i, a := range c.AllowMigration {
		if !seen[a] {
			return fmt.Errorf("allow_migration[%d] %q is not a configured terminal", i, a)
		}
	}
	for i, a := range c.Allocators {
		if !sdk.Address(a.Address).IsValid() {
			return fmt.Errorf("allocators[%d].address %q is not a valid address", i, a.Address)
		}
	}
	return nil
}

func (f PriceFeed) parse() (sdk.Currency, sdk.Currency, *uint256.Int, error) {
	currency, err := sdk.ParseCurrency(f.Currency)
	if err != nil {
		return 0, 0, nil, err
	}
	base, err := sdk.ParseCurrency(f.Base)
	if err != nil {
		return 0, 0, nil, err
	}
	price, err := uint256.FromDecimal(f.Price)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("price %q: %w", f.Price, err)
	}
	return currency, base, price, nil
}

// BallotRegistry builds the ballot registry from the presets.
func (c *Config) BallotRegistry() (*contract.BallotRegistry, error) {
	reg := contract.NewBallotRegistry()
	for _, b := range c.Ballots {
		if err := reg.Register(b.Address, contract.DurationBallot{Delay: b.Delay}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Build wires an engine over host. A fresh state is bootstrapped with the owner, fee,
// price feeds and migration allow-list; a state that was bootstrapped before is used as is.
func (c *Config) Build(host *sdk.Host) (*contract.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ballots, err := c.BallotRegistry()
	if err != nil {
		return nil, err
	}
	first := c.Terminals[0]
	currency, _ := sdk.ParseCurrency(first.Currency)
	engine, err := contract.New(host, ballots, sdk.Address(first.Address), currency)
	if err != nil {
		return nil, err
	}
	for _, t := range c.Terminals[1:] {
		currency, _ := sdk.ParseCurrency(t.Currency)
		if err := engine.AddTerminal(sdk.Address(t.Address), currency); err != nil {
			return nil, err
		}
	}
	for _, a := range c.Allocators {
		var alloc contract.Allocator = contract.HoldingAllocator{}
		if a.Project != 0 {
			alloc = contract.ForwardingAllocator{Address: sdk.Address(a.Address), ProjectID: a.Project}
		}
		if err := engine.RegisterAllocator(sdk.Address(a.Address), alloc); err != nil {
			return nil, err
		}
	}

	if _, err := engine.Protocol(); err == nil {
		return engine, nil
	}
	owner := sdk.Address(c.Protocol.Owner)
	fee := contract.FallbackFee
	if c.Protocol.Fee != nil {
		fee = *c.Protocol.Fee
	}
	if _, err := engine.Bootstrap(owner, fee, c.Protocol.GovernanceURI); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	for _, f := range c.PriceFeeds {
		currency, base, price, _ := f.parse()
		if err := engine.AddPriceFeed(owner, currency, base, price); err != nil {
			return nil, fmt.Errorf("price feed %s/%s: %w", f.Currency, f.Base, err)
		}
	}
	for _, t := range c.AllowMigration {
		if err := engine.AllowMigration(owner, sdk.Address(t)); err != nil {
			return nil, fmt.Errorf("allow migration %s: %w", t, err)
		}
	}
	return engine, nil
}
