package contract

import (
	"github.com/holiman/uint256"

	"juice_treasury/sdk"
)

// getProjectBalance retrieves what terminal holds for the project, in its base currency.
func getProjectBalance(st sdk.State, terminal sdk.Address, projectID uint64) *uint256.Int {
	return getAmount(st, balanceKey(terminal, projectID))
}

// creditProjectBalance adds funds to the project balance of terminal.
func creditProjectBalance(st sdk.State, terminal sdk.Address, projectID uint64, amount *uint256.Int) {
	addAmount(st, balanceKey(terminal, projectID), amount)
}

// debitProjectBalance removes funds from the project balance.
// Returns false if insufficient balance.
func debitProjectBalance(st sdk.State, terminal sdk.Address, projectID uint64, amount *uint256.Int) bool {
	return subAmount(st, balanceKey(terminal, projectID), amount)
}

// drainProjectBalance zeroes the balance and returns what was there.
func drainProjectBalance(st sdk.State, terminal sdk.Address, projectID uint64) *uint256.Int {
	bal := getProjectBalance(st, terminal, projectID)
	setAmount(st, balanceKey(terminal, projectID), nil)
	return bal
}
