package contract

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"

	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

// Configuration bundles what launchProject and reconfigure take. Splits are stored
// under the epoch of the resulting funding cycle.
type Configuration struct {
	Properties     fund.Properties
	Metadata       fund.Metadata
	PayoutSplits   []fund.Split
	ReservedSplits []fund.Split
}

func (e *Engine) configure(c *Call, projectID uint64, cfg Configuration) (fund.FundingCycle, error) {
	protocol := loadProtocolConfig(e.host.State())
	fc, err := e.cycles.ConfigureFor(projectID, cfg.Properties, cfg.Metadata, protocol.Fee, c.Now())
	if err != nil {
		return fund.FundingCycle{}, err
	}
	groups := []struct {
		group  fund.SplitGroup
		splits []fund.Split
	}{
		{fund.GroupPayouts, cfg.PayoutSplits},
		{fund.GroupReservedTokens, cfg.ReservedSplits},
	}
	for _, g := range groups {
		if len(g.splits) == 0 {
			continue
		}
		if err := e.splits.Set(projectID, fc.Configured, g.group, g.splits, c.Now()); err != nil {
			return fund.FundingCycle{}, err
		}
		emitSplitsSetEvent(e.host, projectID, fc.Configured, g.group, len(g.splits))
	}
	emitConfigureEvent(e.host, fc, c.Sender())
	return fc, nil
}

// LaunchProject creates a project owned by sender and configures its first cycle.
func (e *Engine) LaunchProject(sender sdk.Address, uri string, cfg Configuration) (uint64, fund.FundingCycle, error) {
	var (
		id uint64
		fc fund.FundingCycle
	)
	err := e.call("launch", sender, func(c *Call) error {
		var err error
		id, err = e.projects.Create(sender, uri)
		if err != nil {
			return err
		}
		emitProjectLaunchedEvent(e.host, id, sender)
		fc, err = e.configure(c, id, cfg)
		return err
	})
	if err != nil {
		return 0, fund.FundingCycle{}, err
	}
	return id, fc, nil
}

// Reconfigure queues a new configuration for the project.
func (e *Engine) Reconfigure(sender sdk.Address, projectID uint64, cfg Configuration) (fund.FundingCycle, error) {
	var fc fund.FundingCycle
	err := e.call("reconfigure", sender, func(c *Call) error {
		if _, err := e.authorize(c, projectID, PermissionConfigure); err != nil {
			return err
		}
		var err error
		fc, err = e.configure(c, projectID, cfg)
		return err
	})
	return fc, err
}

// SetSplits replaces a split list of an existing epoch.
func (e *Engine) SetSplits(sender sdk.Address, projectID uint64, domain int64, group fund.SplitGroup, splits []fund.Split) error {
	return e.call("set_splits", sender, func(c *Call) error {
		if _, err := e.authorize(c, projectID, PermissionSetSplits); err != nil {
			return err
		}
		if err := e.splits.Set(projectID, domain, group, splits, c.Now()); err != nil {
			return err
		}
		emitSplitsSetEvent(e.host, projectID, domain, group, len(splits))
		return nil
	})
}

// Pay sends amount of currency from sender to the project and mints tokens for
// beneficiary (sender when empty).
func (e *Engine) Pay(sender sdk.Address, projectID uint64, amount *uint256.Int, currency sdk.Currency, beneficiary sdk.Address, memo string, preferClaimed bool) (Payment, error) {
	var p Payment
	err := e.call("pay", sender, func(c *Call) error {
		t, err := e.terminalOf(projectID)
		if err != nil {
			return err
		}
		p, err = t.pay(c, projectID, amount, currency, beneficiary, memo, preferClaimed)
		return err
	})
	return p, err
}

// Tap withdraws amount, denominated in the current cycle's currency. Anyone may call it,
// the funds always go to the splits and the owner.
func (e *Engine) Tap(sender sdk.Address, projectID uint64, amount *uint256.Int, currency sdk.Currency, minReturnedWei *uint256.Int) (TapResult, error) {
	var res TapResult
	err := e.call("tap", sender, func(c *Call) error {
		t, err := e.terminalOf(projectID)
		if err != nil {
			return err
		}
		res, err = t.tap(c, projectID, amount, currency, minReturnedWei)
		return err
	})
	return res, err
}

// Redeem burns count tokens of holder for a share of the overflow paid to beneficiary.
func (e *Engine) Redeem(sender, holder sdk.Address, projectID uint64, count, minReturnedWei *uint256.Int, beneficiary sdk.Address, preferUnstaked bool) (*uint256.Int, error) {
	var claimed *uint256.Int
	err := e.call("redeem", sender, func(c *Call) error {
		t, err := e.terminalOf(projectID)
		if err != nil {
			return err
		}
		claimed, err = t.redeem(c, holder, projectID, count, minReturnedWei, beneficiary, preferUnstaked)
		return err
	})
	return claimed, err
}

// Migrate moves the project balance to another allowed terminal.
func (e *Engine) Migrate(sender sdk.Address, projectID uint64, to sdk.Address) (*uint256.Int, error) {
	var moved *uint256.Int
	err := e.call("migrate", sender, func(c *Call) error {
		prj, err := e.authorize(c, projectID, PermissionMigrate)
		if err != nil {
			return err
		}
		from, err := e.terminalOf(projectID)
		if err != nil {
			return err
		}
		target, ok := e.terminals[to]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTerminalNotFound, to)
		}
		moved, err = from.migrate(c, prj, target)
		return err
	})
	return moved, err
}

// AddToBalance tops up the project without minting tokens.
func (e *Engine) AddToBalance(sender sdk.Address, projectID uint64, amount *uint256.Int) error {
	return e.call("add_to_balance", sender, func(c *Call) error {
		t, err := e.terminalOf(projectID)
		if err != nil {
			return err
		}
		return t.addToBalance(c, projectID, amount)
	})
}

// DistributeReservedTokens mints the accrued reserved tokens. Anyone may trigger it.
func (e *Engine) DistributeReservedTokens(sender sdk.Address, projectID uint64) (*uint256.Int, error) {
	var total *uint256.Int
	err := e.call("distribute_reserved", sender, func(c *Call) error {
		prj, err := e.projects.Get(projectID)
		if err != nil {
			return err
		}
		t, err := e.terminalOf(projectID)
		if err != nil {
			return err
		}
		total, err = t.distributeReservedTokens(c, prj)
		return err
	})
	return total, err
}

// IssueTokens binds a claimable token to the project.
func (e *Engine) IssueTokens(sender sdk.Address, projectID uint64, name, symbol string) error {
	return e.call("issue", sender, func(c *Call) error {
		if _, err := e.authorize(c, projectID, PermissionIssue); err != nil {
			return err
		}
		if err := e.tokens.Issue(projectID, name, symbol); err != nil {
			return err
		}
		emitTokenIssuedEvent(e.host, projectID, symbol)
		return nil
	})
}

// SetProjectURI points the project at new metadata.
func (e *Engine) SetProjectURI(sender sdk.Address, projectID uint64, uri string) error {
	return e.call("set_uri", sender, func(c *Call) error {
		if _, err := e.authorize(c, projectID, PermissionConfigure); err != nil {
			return err
		}
		if err := e.projects.SetURI(projectID, uri); err != nil {
			return err
		}
		emitProjectURIEvent(e.host, projectID, uri)
		return nil
	})
}

// ClaimTokens converts unclaimed tokens of holder into the issued token.
func (e *Engine) ClaimTokens(sender, holder sdk.Address, projectID uint64, amount *uint256.Int) error {
	return e.call("claim", sender, func(c *Call) error {
		if holder != c.Sender() && !e.operators.HasPermission(c.Sender(), holder, projectID, PermissionClaim) {
			return fmt.Errorf("%w: %s may not claim for %s", ErrUnauthorized, c.Sender(), holder)
		}
		if err := e.tokens.Claim(holder, projectID, amount); err != nil {
			return err
		}
		emitTokenClaimedEvent(e.host, projectID, holder, amount)
		return nil
	})
}

// SetOperator grants operator the permission indexes on sender's behalf in domain.
func (e *Engine) SetOperator(sender, operator sdk.Address, domain uint64, indexes []uint8) error {
	return e.call("set_operator", sender, func(c *Call) error {
		if err := e.operators.SetOperator(c.Sender(), operator, domain, indexes); err != nil {
			return err
		}
		emitOperatorSetEvent(e.host, c.Sender(), operator, domain, indexes)
		return nil
	})
}

// -----------------------------------------------------------------------------
// Protocol owner
// -----------------------------------------------------------------------------

func (e *Engine) AllowMigration(sender, terminal sdk.Address) error {
	return e.call("allow_migration", sender, func(c *Call) error {
		if err := e.requireProtocolOwner(c); err != nil {
			return err
		}
		if _, ok := e.terminals[terminal]; !ok {
			return fmt.Errorf("%w: %s", ErrTerminalNotFound, terminal)
		}
		if allowMigration(e.host.State(), terminal) {
			emitProtocolChangedEvent(e.host, "migration", terminal.String())
		}
		return nil
	})
}

func (e *Engine) DisallowMigration(sender, terminal sdk.Address) error {
	return e.call("disallow_migration", sender, func(c *Call) error {
		if err := e.requireProtocolOwner(c); err != nil {
			return err
		}
		if disallowMigration(e.host.State(), terminal) {
			emitProtocolChangedEvent(e.host, "migration", "-"+terminal.String())
		}
		return nil
	})
}

func (e *Engine) AddPriceFeed(sender sdk.Address, currency, base sdk.Currency, price *uint256.Int) error {
	return e.call("add_price_feed", sender, func(c *Call) error {
		if err := e.requireProtocolOwner(c); err != nil {
			return err
		}
		if err := e.prices.SetFeed(currency, base, price); err != nil {
			return err
		}
		emitProtocolChangedEvent(e.host, "feed:"+currency.String()+"/"+base.String(), price.Dec())
		return nil
	})
}

// SetFee changes the fee snapshotted into configurations made from now on.
func (e *Engine) SetFee(sender sdk.Address, fee uint64) error {
	return e.call("set_fee", sender, func(c *Call) error {
		if err := e.requireProtocolOwner(c); err != nil {
			return err
		}
		if fee > fund.MaxFee {
			return fmt.Errorf("%w: fee %d above %d", ErrInvalidConfig, fee, fund.MaxFee)
		}
		st := e.host.State()
		cfg := loadProtocolConfig(st)
		cfg.Fee = fee
		saveProtocolConfig(st, cfg)
		emitProtocolChangedEvent(e.host, "fee", strconv.FormatUint(fee, 10))
		return nil
	})
}
