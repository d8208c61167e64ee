package contract

import (
	"fmt"

	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

// SplitStore keeps ordered split lists per project, configuration epoch and group.
type SplitStore struct {
	state sdk.State
}

func NewSplitStore(state sdk.State) *SplitStore {
	return &SplitStore{state: state}
}

// SplitsOf returns the stored list in order, nil when nothing was set.
func (s *SplitStore) SplitsOf(projectID uint64, domain int64, group fund.SplitGroup) []fund.Split {
	return loadSplits(s.state, projectID, domain, group)
}

// Set replaces the list. Every split still locked at now has to come back unchanged,
// except that its lock may be extended.
func (s *SplitStore) Set(projectID uint64, domain int64, group fund.SplitGroup, splits []fund.Split, now int64) error {
	if err := validateSplits(projectID, group, splits); err != nil {
		return err
	}
	current := loadSplits(s.state, projectID, domain, group)
	for _, locked := range current {
		if locked.LockedUntil <= now {
			continue
		}
		if !containsLocked(splits, locked) {
			return fmt.Errorf("%w: %s until %d", ErrSomeLocked, describeSplit(locked), locked.LockedUntil)
		}
	}
	saveSplits(s.state, projectID, domain, group, splits)
	return nil
}

// containsLocked looks for the locked split carried over with its percent and a lock at
// least as long.
func containsLocked(splits []fund.Split, locked fund.Split) bool {
	for _, s := range splits {
		if s.SameTarget(locked) && s.Percent == locked.Percent && s.LockedUntil >= locked.LockedUntil {
			return true
		}
	}
	return false
}

func validateSplits(projectID uint64, group fund.SplitGroup, splits []fund.Split) error {
	if group != fund.GroupPayouts && group != fund.GroupReservedTokens {
		return fmt.Errorf("%w: unknown group %d", ErrInvalidSplits, group)
	}
	if len(splits) > MaxSplits {
		return fmt.Errorf("%w: %d splits, max %d", ErrInvalidSplits, len(splits), MaxSplits)
	}
	var total uint64
	for i, s := range splits {
		if s.Percent == 0 {
			return fmt.Errorf("%w: split %d has zero percent", ErrInvalidSplits, i)
		}
		if !s.HasTarget() {
			return fmt.Errorf("%w: split %d has no recipient", ErrInvalidSplits, i)
		}
		if s.Beneficiary != "" && !s.Beneficiary.IsValid() {
			return fmt.Errorf("%w: split %d beneficiary %q", ErrInvalidAddress, i, s.Beneficiary)
		}
		if s.ProjectID == projectID {
			return fmt.Errorf("%w: split %d pays its own project", ErrInvalidSplits, i)
		}
		if group == fund.GroupReservedTokens && s.Beneficiary == "" {
			return fmt.Errorf("%w: reserved split %d needs a beneficiary", ErrInvalidSplits, i)
		}
		total += s.Percent
		if total > fund.SplitsTotalPercent {
			return fmt.Errorf("%w: percents add up above %d", ErrInvalidSplits, fund.SplitsTotalPercent)
		}
	}
	return nil
}

func describeSplit(s fund.Split) string {
	switch {
	case s.Allocator != "":
		return "allocator " + s.Allocator.String()
	case s.ProjectID != 0:
		return "project " + UInt64ToString(s.ProjectID)
	default:
		return "beneficiary " + s.Beneficiary.String()
	}
}
