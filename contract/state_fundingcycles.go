package contract

import (
	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

// saveFundingCycle writes the whole record, ids are never reused.
func saveFundingCycle(st sdk.State, fc *fund.FundingCycle) {
	st.Set(fundingCycleKey(fc.ID), string(fund.EncodeFundingCycle(fc)))
}

// loadFundingCycle decodes a record and reports false when it was never stored.
func loadFundingCycle(st sdk.State, id uint64) (*fund.FundingCycle, bool) {
	if id == 0 {
		return nil, false
	}
	ptr := st.Get(fundingCycleKey(id))
	if ptr == nil || *ptr == "" {
		return nil, false
	}
	fc, err := fund.DecodeFundingCycle([]byte(*ptr))
	if err != nil {
		sdk.Abort("failed to decode funding cycle " + UInt64ToString(id))
	}
	return fc, true
}

// mustLoadFundingCycle is for ids taken from our own pointers, missing means corrupt state.
func mustLoadFundingCycle(st sdk.State, id uint64) *fund.FundingCycle {
	fc, ok := loadFundingCycle(st, id)
	if !ok {
		sdk.Abort("funding cycle pointer to missing record " + UInt64ToString(id))
	}
	return fc
}

func baseIDOf(st sdk.State, projectID uint64) uint64 {
	return getCount(st, fundingCycleBaseKey(projectID))
}

func setBaseID(st sdk.State, projectID, id uint64) {
	setCount(st, fundingCycleBaseKey(projectID), id)
}

func pendingIDOf(st sdk.State, projectID uint64) uint64 {
	return getCount(st, fundingCyclePendingKey(projectID))
}

func setPendingID(st sdk.State, projectID, id uint64) {
	if id == 0 {
		st.Delete(fundingCyclePendingKey(projectID))
		return
	}
	setCount(st, fundingCyclePendingKey(projectID), id)
}

// markCyclePaid records that a stored cycle received funds.
func markCyclePaid(st sdk.State, id uint64) {
	stateSetIfChanged(st, fundingCyclePaidKey(id), "1")
}

// cycleBegun is true once a cycle was paid into or tapped.
func cycleBegun(st sdk.State, fc *fund.FundingCycle) bool {
	if !fc.Tapped.IsZero() {
		return true
	}
	return fc.ID > 0 && getFlag(st, fundingCyclePaidKey(fc.ID))
}
