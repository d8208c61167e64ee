package contract

import (
	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

func loadSplits(st sdk.State, projectID uint64, domain int64, group fund.SplitGroup) []fund.Split {
	ptr := st.Get(splitsKey(projectID, domain, uint8(group)))
	if ptr == nil || *ptr == "" {
		return nil
	}
	splits, err := fund.DecodeSplits([]byte(*ptr))
	if err != nil {
		sdk.Abort("failed to decode splits")
	}
	return splits
}

// saveSplits replaces the whole list, an empty list removes the key.
func saveSplits(st sdk.State, projectID uint64, domain int64, group fund.SplitGroup, splits []fund.Split) {
	key := splitsKey(projectID, domain, uint8(group))
	if len(splits) == 0 {
		st.Delete(key)
		return
	}
	stateSetIfChanged(st, key, string(fund.EncodeSplits(splits)))
}
