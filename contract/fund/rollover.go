package fund

import "github.com/holiman/uint256"

// ElapsedPeriods counts how many whole durations passed between start and now.
func ElapsedPeriods(start, duration, now int64) uint64 {
	if duration <= 0 || now < start {
		return 0
	}
	return uint64((now - start) / duration)
}

// DeriveCurrent returns the cycle live at now when base was the last stored one.
// It has no side effects; callers persist the result when they need to write to it.
func DeriveCurrent(base FundingCycle, now int64) FundingCycle {
	periods := ElapsedPeriods(base.Start, base.Duration, now)
	if periods == 0 {
		return base.Clone()
	}
	if !base.IsRecurring() {
		return FundingCycle{}
	}
	return rollForward(base, periods)
}

// DeriveNext returns the cycle that follows cycle once its duration ends. The empty
// cycle comes back for never ending and non-recurring cycles.
func DeriveNext(cycle FundingCycle) FundingCycle {
	if !cycle.Exists() || cycle.Duration == 0 || !cycle.IsRecurring() {
		return FundingCycle{}
	}
	return rollForward(cycle, 1)
}

func rollForward(base FundingCycle, periods uint64) FundingCycle {
	next := base.Clone()
	next.ID = 0
	if base.ID > 0 {
		next.BasedOn = base.ID
	}
	next.Number = base.Number + periods
	if base.CycleLimit > periods {
		next.CycleLimit = base.CycleLimit - periods
	} else {
		next.CycleLimit = 0
	}
	next.Weight = DiscountedWeight(base.Weight, base.DiscountRate, periods)
	next.Start = base.Start + int64(periods)*base.Duration
	next.Tapped = new(uint256.Int)
	return next
}
