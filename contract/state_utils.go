package contract

import (
	"github.com/holiman/uint256"

	"juice_treasury/sdk"
)

// stateSetIfChanged avoids unnecessary writes so the journal stays short.
func stateSetIfChanged(st sdk.State, key, value string) {
	if existing := st.Get(key); existing != nil && *existing == value {
		return
	}
	st.Set(key, value)
}

// getAmount reads a decimal amount, zero when missing.
func getAmount(st sdk.State, key string) *uint256.Int {
	ptr := st.Get(key)
	if ptr == nil || *ptr == "" {
		return new(uint256.Int)
	}
	v, err := uint256.FromDecimal(*ptr)
	if err != nil {
		sdk.Abort("invalid amount under key")
	}
	return v
}

// setAmount writes amounts as decimal strings and drops zero entries.
func setAmount(st sdk.State, key string, v *uint256.Int) {
	if v == nil || v.IsZero() {
		if st.Get(key) != nil {
			st.Delete(key)
		}
		return
	}
	stateSetIfChanged(st, key, v.Dec())
}

// addAmount credits key and aborts on 256-bit overflow.
func addAmount(st sdk.State, key string, delta *uint256.Int) *uint256.Int {
	sum, overflow := new(uint256.Int).AddOverflow(getAmount(st, key), delta)
	if overflow {
		sdk.Abort("amount overflow")
	}
	setAmount(st, key, sum)
	return sum
}

// subAmount debits key, returning false and leaving state alone when it would underflow.
func subAmount(st sdk.State, key string, delta *uint256.Int) bool {
	cur := getAmount(st, key)
	if cur.Lt(delta) {
		return false
	}
	setAmount(st, key, new(uint256.Int).Sub(cur, delta))
	return true
}

func getFlag(st sdk.State, key string) bool {
	ptr := st.Get(key)
	return ptr != nil && *ptr != ""
}
