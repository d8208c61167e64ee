package contract

import (
	"strconv"

	"juice_treasury/sdk"
)

// getCount reads the string counter under the key and defaults to zero, nothing magical here.
func getCount(st sdk.State, key string) uint64 {
	ptr := st.Get(key)
	if ptr == nil || *ptr == "" {
		return 0
	}
	n, err := strconv.ParseUint(*ptr, 10, 64)
	if err != nil {
		sdk.Abort("invalid counter " + key)
	}
	return n
}

// setCount stores uint64 counters back as decimal strings for the host kv.
func setCount(st sdk.State, key string, n uint64) {
	st.Set(key, strconv.FormatUint(n, 10))
}

// nextID bumps the counter and returns the fresh value, ids start at 1.
func nextID(st sdk.State, key string) uint64 {
	id := getCount(st, key) + 1
	setCount(st, key, id)
	return id
}

// UInt64ToString turns an id back into decimal text for logs or event lines.
// Example payload: UInt64ToString(9001)
func UInt64ToString(val uint64) string {
	return strconv.FormatUint(val, 10)
}
