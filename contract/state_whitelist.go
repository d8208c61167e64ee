package contract

import "juice_treasury/sdk"

// allowMigration lets projects migrate their balance to terminal.
// Reports false when the terminal was already allowed.
func allowMigration(st sdk.State, terminal sdk.Address) bool {
	key := migrationAllowedKey(terminal)
	if getFlag(st, key) {
		return false
	}
	st.Set(key, "1")
	return true
}

// disallowMigration removes a terminal from the allow-list and reports whether it was on it.
func disallowMigration(st sdk.State, terminal sdk.Address) bool {
	key := migrationAllowedKey(terminal)
	if !getFlag(st, key) {
		return false
	}
	st.Delete(key)
	return true
}

// isMigrationAllowed reports whether balances may move to terminal.
func isMigrationAllowed(st sdk.State, terminal sdk.Address) bool {
	return getFlag(st, migrationAllowedKey(terminal))
}
