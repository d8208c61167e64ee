package contract

import (
	"fmt"

	"github.com/holiman/uint256"

	"juice_treasury/contract/fund"
	"juice_treasury/metrics"
	"juice_treasury/sdk"
)

// Terminal holds project funds in its wallet and moves them. Every path books the
// change through its TerminalStore before any funds leave the wallet.
type Terminal struct {
	engine   *Engine
	address  sdk.Address
	currency sdk.Currency
	store    *TerminalStore
}

func newTerminal(e *Engine, address sdk.Address, currency sdk.Currency) *Terminal {
	return &Terminal{
		engine:   e,
		address:  address,
		currency: currency,
		store:    NewTerminalStore(e.host.State(), address, currency, e.cycles, e.prices, e.tokens),
	}
}

func (t *Terminal) Address() sdk.Address   { return t.address }
func (t *Terminal) Currency() sdk.Currency { return t.currency }
func (t *Terminal) Store() *TerminalStore  { return t.store }

// TapResult breaks a tap down into what went where, in base units.
type TapResult struct {
	Cycle     fund.FundingCycle
	TappedWei *uint256.Int
	Fee       *uint256.Int
	ToOwner   *uint256.Int
}

func (t *Terminal) pay(c *Call, projectID uint64, amount *uint256.Int, currency sdk.Currency, beneficiary sdk.Address, memo string, preferClaimed bool) (Payment, error) {
	if len(memo) > MaxMemoLength {
		return Payment{}, fmt.Errorf("%w: memo longer than %d", ErrInvalidConfig, MaxMemoLength)
	}
	if _, err := t.engine.projects.Get(projectID); err != nil {
		return Payment{}, err
	}
	if beneficiary == "" {
		beneficiary = c.Sender()
	}
	p, err := t.store.RecordPayment(c.Sender(), projectID, amount, currency, beneficiary, preferClaimed, c.Now())
	if err != nil {
		return Payment{}, err
	}
	if err := t.engine.host.Transfer(c.Sender(), t.address, p.AmountInBase, t.currency); err != nil {
		return Payment{}, err
	}
	emitPayEvent(t.engine.host, projectID, p.Cycle.Number, c.Sender(), beneficiary, p.AmountInBase, p.BeneficiaryTokens, memo)
	return p, nil
}

// payProject pays amount out of this terminal's wallet into projectID, wherever that
// project keeps its funds.
func (t *Terminal) payProject(c *Call, projectID uint64, amount *uint256.Int, beneficiary sdk.Address, memo string, preferClaimed bool) (Payment, error) {
	to, err := t.engine.terminalOf(projectID)
	if err != nil {
		return Payment{}, err
	}
	if to.currency != t.currency {
		return Payment{}, fmt.Errorf("%w: project %d is paid in %s", ErrUnexpectedCurrency, projectID, to.currency)
	}
	p, err := to.store.RecordPayment(t.address, projectID, amount, t.currency, beneficiary, preferClaimed, c.Now())
	if err != nil {
		return Payment{}, err
	}
	if err := t.engine.host.Transfer(t.address, to.address, p.AmountInBase, t.currency); err != nil {
		return Payment{}, err
	}
	emitPayEvent(t.engine.host, projectID, p.Cycle.Number, t.address, beneficiary, p.AmountInBase, p.BeneficiaryTokens, memo)
	return p, nil
}

// tap withdraws amount of the cycle target. The governance project receives the fee,
// payout splits share the rest and the owner gets whatever the splits leave.
func (t *Terminal) tap(c *Call, projectID uint64, amount *uint256.Int, currency sdk.Currency, minReturnedWei *uint256.Int) (TapResult, error) {
	prj, err := t.engine.projects.Get(projectID)
	if err != nil {
		return TapResult{}, err
	}
	cfg := loadProtocolConfig(t.engine.host.State())
	if cfg == nil {
		return TapResult{}, ErrNotInitialized
	}
	fc, tappedWei, err := t.store.RecordTappedAmount(projectID, amount, currency, minReturnedWei, c.Now())
	if err != nil {
		return TapResult{}, err
	}

	fee := new(uint256.Int)
	if projectID != cfg.GovernanceProjectID {
		fee = fund.FeeAmount(tappedWei, fc.Fee)
	}
	if !fee.IsZero() {
		memo := "fee from project " + UInt64ToString(projectID)
		if _, err := t.payProject(c, cfg.GovernanceProjectID, fee, prj.Owner, memo, false); err != nil {
			return TapResult{}, err
		}
		feeWei := fee.Float64()
		t.engine.pending.Add(func() { metrics.FeesCollectedWei.Add(feeWei) })
	}

	net := new(uint256.Int).Sub(tappedWei, fee)
	leftover, err := t.distributeToPayoutSplits(c, prj, fc, net)
	if err != nil {
		return TapResult{}, err
	}
	if err := t.engine.host.Transfer(t.address, prj.Owner, leftover, t.currency); err != nil {
		return TapResult{}, err
	}
	emitTapEvent(t.engine.host, fc, amount, tappedWei, fee, leftover, c.Sender())
	return TapResult{Cycle: fc, TappedWei: tappedWei, Fee: fee, ToOwner: leftover}, nil
}

// distributeToPayoutSplits pays every payout split of the cycle epoch its share of
// amount and returns the leftover.
func (t *Terminal) distributeToPayoutSplits(c *Call, prj *Project, fc fund.FundingCycle, amount *uint256.Int) (*uint256.Int, error) {
	leftover := amount.Clone()
	for _, split := range t.engine.splits.SplitsOf(prj.ID, fc.Configured, fund.GroupPayouts) {
		share := fund.PercentOf(amount, split.Percent, fund.SplitsTotalPercent)
		if share.IsZero() {
			continue
		}
		kind, err := t.paySplit(c, prj, split, share)
		if err != nil {
			return nil, err
		}
		leftover.Sub(leftover, share)
		t.engine.pending.Add(metrics.SplitPayoutsTotal.WithLabelValues(kind).Inc)
		emitSplitPaidEvent(t.engine.host, prj.ID, fund.GroupPayouts, split, share)
	}
	return leftover, nil
}

func (t *Terminal) paySplit(c *Call, prj *Project, split fund.Split, share *uint256.Int) (string, error) {
	host := t.engine.host
	switch {
	case split.Allocator != "":
		allocator, ok := t.engine.allocators[split.Allocator]
		if !ok {
			return "", fmt.Errorf("%w: allocator %s is not registered", ErrInvalidSplits, split.Allocator)
		}
		if err := host.Transfer(t.address, split.Allocator, share, t.currency); err != nil {
			return "", err
		}
		data := AllocationData{
			Amount:        share,
			Currency:      t.currency,
			ProjectID:     prj.ID,
			ForwardedFrom: t.address,
			Split:         split,
		}
		if err := allocator.Allocate(c, data); err != nil {
			return "", fmt.Errorf("allocator %s: %w", split.Allocator, err)
		}
		return "allocator", nil
	case split.ProjectID != 0:
		beneficiary := split.Beneficiary
		if beneficiary == "" {
			beneficiary = prj.Owner
		}
		memo := "payout from project " + UInt64ToString(prj.ID)
		if _, err := t.payProject(c, split.ProjectID, share, beneficiary, memo, split.PreferClaimed); err != nil {
			return "", err
		}
		return "project", nil
	default:
		if err := host.Transfer(t.address, split.Beneficiary, share, t.currency); err != nil {
			return "", err
		}
		return "beneficiary", nil
	}
}

func (t *Terminal) redeem(c *Call, holder sdk.Address, projectID uint64, count, minReturnedWei *uint256.Int, beneficiary sdk.Address, preferUnstaked bool) (*uint256.Int, error) {
	if holder != c.Sender() && !t.engine.operators.HasPermission(c.Sender(), holder, projectID, PermissionRedeem) {
		return nil, fmt.Errorf("%w: %s may not redeem for %s", ErrUnauthorized, c.Sender(), holder)
	}
	if beneficiary == "" {
		beneficiary = holder
	}
	if !beneficiary.IsValid() {
		return nil, fmt.Errorf("%w: beneficiary %q", ErrInvalidAddress, beneficiary)
	}
	claimed, err := t.store.RecordRedemption(holder, projectID, count, minReturnedWei, preferUnstaked, c.Now())
	if err != nil {
		return nil, err
	}
	if err := t.engine.host.Transfer(t.address, beneficiary, claimed, t.currency); err != nil {
		return nil, err
	}
	emitRedeemEvent(t.engine.host, projectID, holder, beneficiary, count, claimed)
	return claimed, nil
}

// migrate hands reserved tokens out first so nobody loses them, then moves the whole
// balance and repoints the directory.
func (t *Terminal) migrate(c *Call, prj *Project, to *Terminal) (*uint256.Int, error) {
	if to.currency != t.currency {
		return nil, fmt.Errorf("%w: %s keeps %s, %s keeps %s", ErrNotAllowed, t.address, t.currency, to.address, to.currency)
	}
	if _, err := t.distributeReservedTokens(c, prj); err != nil {
		return nil, err
	}
	amount, err := t.store.RecordMigration(prj.ID, to.address)
	if err != nil {
		return nil, err
	}
	if err := t.engine.directory.SetTerminal(prj.ID, to.address); err != nil {
		return nil, err
	}
	if err := t.engine.host.Transfer(t.address, to.address, amount, t.currency); err != nil {
		return nil, err
	}
	to.store.RecordAddedBalance(prj.ID, amount)
	emitMigrateEvent(t.engine.host, prj.ID, t.address, to.address, amount)
	return amount, nil
}

func (t *Terminal) addToBalance(c *Call, projectID uint64, amount *uint256.Int) error {
	if _, err := t.engine.projects.Get(projectID); err != nil {
		return err
	}
	t.store.RecordAddedBalance(projectID, amount)
	if err := t.engine.host.Transfer(c.Sender(), t.address, amount, t.currency); err != nil {
		return err
	}
	emitAddToBalanceEvent(t.engine.host, projectID, c.Sender(), amount)
	return nil
}

// distributeReservedTokens mints the accrued reserved tokens to the reserved splits of
// the current epoch and the rest to the owner.
func (t *Terminal) distributeReservedTokens(c *Call, prj *Project) (*uint256.Int, error) {
	st := t.engine.host.State()
	total := reservedOf(st, prj.ID)
	if total.IsZero() {
		return total, nil
	}
	setAmount(st, reservedTokensKey(prj.ID), nil)

	fc, err := t.engine.cycles.CurrentOf(prj.ID, c.Now())
	if err != nil {
		return nil, err
	}
	leftover := total.Clone()
	if fc.Exists() {
		for _, split := range t.engine.splits.SplitsOf(prj.ID, fc.Configured, fund.GroupReservedTokens) {
			share := fund.PercentOf(total, split.Percent, fund.SplitsTotalPercent)
			if share.IsZero() {
				continue
			}
			t.engine.tokens.Mint(split.Beneficiary, prj.ID, share, split.PreferClaimed)
			leftover.Sub(leftover, share)
			t.engine.pending.Add(metrics.SplitPayoutsTotal.WithLabelValues("reserved").Inc)
			emitSplitPaidEvent(t.engine.host, prj.ID, fund.GroupReservedTokens, split, share)
		}
	}
	t.engine.tokens.Mint(prj.Owner, prj.ID, leftover, false)
	emitReservedDistributedEvent(t.engine.host, prj.ID, total, leftover)
	return total, nil
}
