package contract

import (
	"fmt"

	"github.com/holiman/uint256"

	"juice_treasury/contract/fund"
	"juice_treasury/metrics"
	"juice_treasury/sdk"
)

// FundingCycleStore owns the funding cycle timeline of every project.
//
// Per project it keeps two pointers: base, the latest stored record that is approved and
// started, and pending, an unstarted reconfiguration. Rollovers are never written on
// read; Tap and ConfigureFor materialize them when they have to write.
type FundingCycleStore struct {
	state    sdk.State
	ballots  *BallotRegistry
	counters *metrics.Pending
}

func NewFundingCycleStore(state sdk.State, ballots *BallotRegistry) *FundingCycleStore {
	return &FundingCycleStore{state: state, ballots: ballots}
}

// timeline is a project resolved at one timestamp.
type timeline struct {
	base *fund.FundingCycle
	// pending is set only while the reconfiguration has not started.
	pending *fund.FundingCycle
	// promoted is true when base came from the pending pointer.
	promoted bool
	// discarded is true when the pending record started without approval.
	discarded bool
	current   fund.FundingCycle
}

func (s *FundingCycleStore) resolve(projectID uint64, now int64) (timeline, error) {
	var tl timeline
	baseID := baseIDOf(s.state, projectID)
	if baseID == 0 {
		return tl, nil
	}
	tl.base = mustLoadFundingCycle(s.state, baseID)
	if pendingID := pendingIDOf(s.state, projectID); pendingID != 0 {
		pending := mustLoadFundingCycle(s.state, pendingID)
		if now >= pending.Start {
			state, err := s.ballotStateOf(pending, now)
			if err != nil {
				return tl, err
			}
			if state == fund.BallotApproved {
				tl.base = pending
				tl.promoted = true
			} else {
				tl.discarded = true
			}
		} else {
			tl.pending = pending
		}
	}
	tl.current = fund.DeriveCurrent(*tl.base, now)
	return tl, nil
}

// persist writes pointer moves the resolution implied.
func (s *FundingCycleStore) persist(projectID uint64, tl timeline) {
	if tl.promoted {
		setBaseID(s.state, projectID, tl.base.ID)
	}
	if tl.promoted || tl.discarded {
		setPendingID(s.state, projectID, 0)
	}
}

// ballotStateOf answers for a stored reconfiguration. The first configuration and
// reconfigurations of a cycle whose limit ran out are approved without asking the ballot.
func (s *FundingCycleStore) ballotStateOf(fc *fund.FundingCycle, now int64) (fund.BallotState, error) {
	if fc.BasedOn == 0 {
		return fund.BallotApproved, nil
	}
	based := mustLoadFundingCycle(s.state, fc.BasedOn)
	if freelyReconfigurable(based, fc.Configured) {
		return fund.BallotApproved, nil
	}
	ballot, err := s.ballots.Resolve(fc.Ballot)
	if err != nil {
		return fund.BallotFailed, err
	}
	return ballot.StateOf(fc.Configured, fc.Start, now), nil
}

// freelyReconfigurable is true when the cycle live at the configuration time had no
// rollovers left on its limit.
func freelyReconfigurable(base *fund.FundingCycle, at int64) bool {
	derived := fund.DeriveCurrent(*base, at)
	return derived.CycleLimit == 0
}

// CurrentOf returns the cycle live at now, the empty cycle when there is none.
func (s *FundingCycleStore) CurrentOf(projectID uint64, now int64) (fund.FundingCycle, error) {
	tl, err := s.resolve(projectID, now)
	if err != nil {
		return fund.FundingCycle{}, err
	}
	return tl.current, nil
}

// QueuedOf returns what follows the current cycle: an approved reconfiguration, or the
// next rollover of the current cycle.
func (s *FundingCycleStore) QueuedOf(projectID uint64, now int64) (fund.FundingCycle, error) {
	tl, err := s.resolve(projectID, now)
	if err != nil || tl.base == nil {
		return fund.FundingCycle{}, err
	}
	if tl.pending != nil {
		state, err := s.ballotStateOf(tl.pending, now)
		if err != nil {
			return fund.FundingCycle{}, err
		}
		if state == fund.BallotApproved {
			return tl.pending.Clone(), nil
		}
	}
	return fund.DeriveNext(tl.current), nil
}

// IsConfigured reports whether the project ever received a configuration.
func (s *FundingCycleStore) IsConfigured(projectID uint64) bool {
	return baseIDOf(s.state, projectID) != 0
}

// Get is the raw record lookup, no rollover applied.
func (s *FundingCycleStore) Get(id uint64) (fund.FundingCycle, error) {
	fc, ok := loadFundingCycle(s.state, id)
	if !ok {
		return fund.FundingCycle{}, fmt.Errorf("%w: id %d", ErrFundingCycleNotFound, id)
	}
	return *fc, nil
}

// PendingOf returns the unstarted reconfiguration of a project if there is one.
func (s *FundingCycleStore) PendingOf(projectID uint64, now int64) (fund.FundingCycle, bool, error) {
	tl, err := s.resolve(projectID, now)
	if err != nil || tl.pending == nil {
		return fund.FundingCycle{}, false, err
	}
	return tl.pending.Clone(), true, nil
}

// CurrentBallotStateOf reports the state of the pending reconfiguration, Approved when
// nothing is pending.
func (s *FundingCycleStore) CurrentBallotStateOf(projectID uint64, now int64) (fund.BallotState, error) {
	tl, err := s.resolve(projectID, now)
	if err != nil {
		return fund.BallotFailed, err
	}
	if tl.pending == nil {
		return fund.BallotApproved, nil
	}
	return s.ballotStateOf(tl.pending, now)
}

// validateProperties checks bounds before anything is written.
func validateProperties(props fund.Properties, md fund.Metadata, fee uint64) error {
	switch {
	case props.Duration < 0 || props.Duration > fund.MaxDuration:
		return fmt.Errorf("%w: duration %d out of range", ErrInvalidConfig, props.Duration)
	case props.DiscountRate > fund.MaxDiscountRate && props.DiscountRate != fund.NonRecurringDiscountRate:
		return fmt.Errorf("%w: discount rate %d out of range", ErrInvalidConfig, props.DiscountRate)
	case props.DiscountRate == fund.NonRecurringDiscountRate && props.Duration == 0:
		return fmt.Errorf("%w: non recurring cycle needs a duration", ErrInvalidConfig)
	case props.CycleLimit > fund.MaxCycleLimit:
		return fmt.Errorf("%w: cycle limit %d above %d", ErrInvalidConfig, props.CycleLimit, fund.MaxCycleLimit)
	case props.CycleLimit > 0 && props.Duration == 0:
		return fmt.Errorf("%w: cycle limit needs a duration", ErrInvalidConfig)
	case md.ReservedRate > fund.MaxPercent:
		return fmt.Errorf("%w: reserved rate %d", ErrInvalidConfig, md.ReservedRate)
	case md.BondingCurveRate > fund.MaxPercent:
		return fmt.Errorf("%w: bonding curve rate %d", ErrInvalidConfig, md.BondingCurveRate)
	case md.ReconfigurationBondingCurveRate > fund.MaxPercent:
		return fmt.Errorf("%w: reconfiguration bonding curve rate %d", ErrInvalidConfig, md.ReconfigurationBondingCurveRate)
	case fee > fund.MaxFee:
		return fmt.Errorf("%w: fee %d above %d", ErrInvalidConfig, fee, fund.MaxFee)
	}
	return nil
}

// ConfigureFor records a new configuration stamped with now and returns it.
//
// The first configuration of a project is effective immediately. Later ones become the
// pending cycle, starting when the current period ends (right away for never ending
// cycles) and replacing any earlier unstarted reconfiguration.
func (s *FundingCycleStore) ConfigureFor(projectID uint64, props fund.Properties, md fund.Metadata, fee uint64, now int64) (fund.FundingCycle, error) {
	if err := validateProperties(props, md, fee); err != nil {
		return fund.FundingCycle{}, err
	}
	if _, err := s.ballots.Resolve(props.Ballot); err != nil {
		return fund.FundingCycle{}, err
	}
	tl, err := s.resolve(projectID, now)
	if err != nil {
		return fund.FundingCycle{}, err
	}

	fc := fund.FundingCycle{
		ProjectID:    projectID,
		Configured:   now,
		CycleLimit:   props.CycleLimit,
		Ballot:       props.Ballot,
		Duration:     props.Duration,
		Target:       cloneAmount(props.Target),
		Currency:     props.Currency,
		Fee:          fee,
		DiscountRate: props.DiscountRate,
		Tapped:       new(uint256.Int),
		Metadata:     md,
	}
	explicitWeight := props.Weight != nil && !props.Weight.IsZero()

	if tl.base == nil {
		fc.Number = 1
		fc.Start = now
		fc.Weight = fund.DefaultWeight.Clone()
		if explicitWeight {
			fc.Weight = props.Weight.Clone()
		}
		fc.ID = nextID(s.state, FundingCyclesCount)
		saveFundingCycle(s.state, &fc)
		setBaseID(s.state, projectID, fc.ID)
		return fc, nil
	}

	cur := tl.current
	if !cur.Exists() {
		// the base was non-recurring and ran out
		if cycleBegun(s.state, tl.base) {
			return fund.FundingCycle{}, fmt.Errorf("%w: project %d", ErrNonRecurringCycle, projectID)
		}
		s.persist(projectID, tl)
		fc.Number = tl.base.Number + 1
		fc.BasedOn = tl.base.ID
		fc.Start = now
		fc.Weight = tl.base.Weight.Clone()
		if explicitWeight {
			fc.Weight = props.Weight.Clone()
		}
		fc.ID = nextID(s.state, FundingCyclesCount)
		saveFundingCycle(s.state, &fc)
		setBaseID(s.state, projectID, fc.ID)
		setPendingID(s.state, projectID, 0)
		return fc, nil
	}
	if !cur.IsRecurring() && cycleBegun(s.state, &cur) {
		return fund.FundingCycle{}, fmt.Errorf("%w: project %d", ErrNonRecurringCycle, projectID)
	}

	s.persist(projectID, tl)
	fc.Number = cur.Number + 1
	fc.BasedOn = tl.base.ID
	switch {
	case explicitWeight:
		fc.Weight = props.Weight.Clone()
	case cur.Duration == 0 || !cur.IsRecurring():
		fc.Weight = cur.Weight.Clone()
	default:
		fc.Weight = fund.DiscountedWeight(cur.Weight, cur.DiscountRate, 1)
	}
	if cur.Duration == 0 {
		// never ending cycles carry no cycle limit, so the ballot is skipped
		fc.Start = now
	} else {
		fc.Start = cur.Start + cur.Duration
	}
	fc.ID = nextID(s.state, FundingCyclesCount)
	saveFundingCycle(s.state, &fc)
	setPendingID(s.state, projectID, fc.ID)

	if fc.Start <= now {
		state, err := s.ballotStateOf(&fc, now)
		if err != nil {
			return fund.FundingCycle{}, err
		}
		if state == fund.BallotApproved {
			setBaseID(s.state, projectID, fc.ID)
			setPendingID(s.state, projectID, 0)
		}
	}
	return fc, nil
}

// RecordPaid marks the current cycle of a project as paid into. Only non-recurring
// cycles consult the mark, and those are always stored.
func (s *FundingCycleStore) RecordPaid(fc fund.FundingCycle) {
	if fc.IsRecurring() || !fc.Materialized() {
		return
	}
	markCyclePaid(s.state, fc.ID)
}

// Tap adds amount to the tapped counter of the current cycle, storing the cycle first
// when it only exists as a derived rollover.
func (s *FundingCycleStore) Tap(projectID uint64, amount *uint256.Int, now int64) (fund.FundingCycle, error) {
	tl, err := s.resolve(projectID, now)
	if err != nil {
		return fund.FundingCycle{}, err
	}
	if tl.base == nil {
		return fund.FundingCycle{}, fmt.Errorf("%w: project %d", ErrFundingCycleNotFound, projectID)
	}
	cur := tl.current
	if !cur.Exists() {
		return fund.FundingCycle{}, fmt.Errorf("%w: project %d cycle expired", ErrNonRecurringCycle, projectID)
	}
	tapped, overflow := new(uint256.Int).AddOverflow(cur.Tapped, amount)
	if overflow || tapped.Gt(cur.Target) {
		return fund.FundingCycle{}, fmt.Errorf("%w: %s of %s left", ErrInsufficientTargetFunds, cur.Remaining().Dec(), cur.Target.Dec())
	}

	s.persist(projectID, tl)
	if !cur.Materialized() {
		cur.ID = nextID(s.state, FundingCyclesCount)
		setBaseID(s.state, projectID, cur.ID)
		s.counters.Add(metrics.FundingCyclesMaterialized.Inc)
	}
	cur.Tapped = tapped
	saveFundingCycle(s.state, &cur)
	return cur, nil
}

func cloneAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v.Clone()
}
