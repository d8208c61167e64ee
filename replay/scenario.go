// Package replay runs YAML scenarios against an engine on a fake clock.
//
// A scenario is a list of steps. Every step names an action, the sender it runs as and
// its offset from the scenario start. Actions are dispatched through a Registry keyed by
// ActionKind, each handler decoding its own args.
package replay

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ActionKind identifies the type of a scenario step.
type ActionKind string

const (
	// Project lifecycle
	ActionLaunch       ActionKind = "launch"
	ActionReconfigure  ActionKind = "reconfigure"
	ActionSetSplits    ActionKind = "set_splits"
	ActionIssue        ActionKind = "issue"
	ActionClaim        ActionKind = "claim"
	ActionSetOperator  ActionKind = "set_operator"
	ActionDistribute   ActionKind = "distribute_reserved"
	ActionMigrate      ActionKind = "migrate"
	ActionAddToBalance ActionKind = "add_to_balance"

	// Funds
	ActionPay     ActionKind = "pay"
	ActionTap     ActionKind = "tap"
	ActionRedeem  ActionKind = "redeem"
	ActionDeposit ActionKind = "deposit"

	// Protocol owner
	ActionAllowMigration ActionKind = "allow_migration"
	ActionAddPriceFeed   ActionKind = "add_price_feed"
	ActionSetFee         ActionKind = "set_fee"

	// Assertions
	ActionExpect ActionKind = "expect"
)

// Scenario is the top-level document of a scenario file.
type Scenario struct {
	Name string `yaml:"name"`
	// Start is an RFC3339 timestamp; the runner's clock is used when empty.
	Start string `yaml:"start"`
	Steps []Step `yaml:"steps"`
}

// Step is one action. ExpectError, when set, turns the step into a negative check: it
// passes only if the action fails with an error containing the text.
type Step struct {
	At          time.Duration `yaml:"at"`
	As          string        `yaml:"as"`
	Action      ActionKind    `yaml:"action"`
	Args        yaml.Node     `yaml:"args"`
	ExpectError string        `yaml:"expect_error"`
}

// Decode parses a scenario document.
func Decode(data []byte) (*Scenario, error) {
	sc := &Scenario{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	var last time.Duration
	for i, step := range sc.Steps {
		if step.Action == "" {
			return nil, fmt.Errorf("step %d: action is required", i)
		}
		if step.At < last {
			return nil, fmt.Errorf("step %d: at %s goes back in time", i, step.At)
		}
		last = step.At
	}
	return sc, nil
}

// Load reads and decodes a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Decode(data)
}
