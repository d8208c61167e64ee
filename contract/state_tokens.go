package contract

import (
	"strings"

	"github.com/holiman/uint256"

	"juice_treasury/sdk"
)

func unclaimedBalance(st sdk.State, projectID uint64, holder sdk.Address) *uint256.Int {
	return getAmount(st, tokenUnclaimedKey(projectID, holder))
}

func claimedBalance(st sdk.State, projectID uint64, holder sdk.Address) *uint256.Int {
	return getAmount(st, tokenClaimedKey(projectID, holder))
}

func supplyOf(st sdk.State, projectID uint64, claimed bool) *uint256.Int {
	return getAmount(st, tokenSupplyKey(projectID, claimed))
}

// reservedOf is the amount of reserved tokens waiting for distribution.
func reservedOf(st sdk.State, projectID uint64) *uint256.Int {
	return getAmount(st, reservedTokensKey(projectID))
}

// tokenInfo is stored as name|symbol once a project issued its claimable token.
type tokenInfo struct {
	Name   string
	Symbol string
}

func loadTokenInfo(st sdk.State, projectID uint64) (tokenInfo, bool) {
	ptr := st.Get(tokenIssuedKey(projectID))
	if ptr == nil || *ptr == "" {
		return tokenInfo{}, false
	}
	parts := strings.SplitN(*ptr, "|", 2)
	if len(parts) != 2 {
		sdk.Abort("invalid token info")
	}
	return tokenInfo{Name: parts[0], Symbol: parts[1]}, true
}

func saveTokenInfo(st sdk.State, projectID uint64, info tokenInfo) {
	st.Set(tokenIssuedKey(projectID), info.Name+"|"+info.Symbol)
}
