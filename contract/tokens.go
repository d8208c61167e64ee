package contract

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"juice_treasury/sdk"
)

// TokenLedger is the claim token bookkeeping the terminal relies on.
type TokenLedger interface {
	Mint(holder sdk.Address, projectID uint64, amount *uint256.Int, preferClaimed bool)
	Burn(holder sdk.Address, projectID uint64, amount *uint256.Int, preferClaimed bool) error
	TotalSupplyOf(projectID uint64) *uint256.Int
	BalanceOf(holder sdk.Address, projectID uint64) *uint256.Int
}

// TokenStore tracks two balances per holder: unclaimed tokens living only in this
// ledger, and claimed ones that exist once the project issued a transferable token.
type TokenStore struct {
	state sdk.State
}

func NewTokenStore(state sdk.State) *TokenStore {
	return &TokenStore{state: state}
}

// Issue binds a claimable token to the project, only once.
func (t *TokenStore) Issue(projectID uint64, name, symbol string) error {
	name = strings.TrimSpace(name)
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if name == "" || symbol == "" || strings.Contains(name, "|") || strings.Contains(symbol, "|") {
		return fmt.Errorf("%w: token name %q symbol %q", ErrInvalidConfig, name, symbol)
	}
	if _, ok := loadTokenInfo(t.state, projectID); ok {
		return fmt.Errorf("%w: project %d already issued a token", ErrAlreadyClaimed, projectID)
	}
	saveTokenInfo(t.state, projectID, tokenInfo{Name: name, Symbol: symbol})
	return nil
}

// IsIssued reports whether claimed balances are available for the project.
func (t *TokenStore) IsIssued(projectID uint64) bool {
	_, ok := loadTokenInfo(t.state, projectID)
	return ok
}

// Mint credits claimed tokens when asked and possible, unclaimed ones otherwise.
func (t *TokenStore) Mint(holder sdk.Address, projectID uint64, amount *uint256.Int, preferClaimed bool) {
	if amount.IsZero() {
		return
	}
	claimed := preferClaimed && t.IsIssued(projectID)
	if claimed {
		addAmount(t.state, tokenClaimedKey(projectID, holder), amount)
	} else {
		addAmount(t.state, tokenUnclaimedKey(projectID, holder), amount)
	}
	addAmount(t.state, tokenSupplyKey(projectID, claimed), amount)
}

// Burn removes amount from the holder, draining the preferred balance first.
func (t *TokenStore) Burn(holder sdk.Address, projectID uint64, amount *uint256.Int, preferClaimed bool) error {
	unclaimed := unclaimedBalance(t.state, projectID, holder)
	claimed := claimedBalance(t.state, projectID, holder)
	total := new(uint256.Int).Add(unclaimed, claimed)
	if total.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s of project %d, burning %s", ErrInsufficientTokens, holder, total.Dec(), projectID, amount.Dec())
	}
	first, firstClaimed := unclaimed, false
	if preferClaimed {
		first, firstClaimed = claimed, true
	}
	fromFirst := amount.Clone()
	if fromFirst.Gt(first) {
		fromFirst = first.Clone()
	}
	t.debit(holder, projectID, fromFirst, firstClaimed)
	t.debit(holder, projectID, new(uint256.Int).Sub(amount, fromFirst), !firstClaimed)
	return nil
}

func (t *TokenStore) debit(holder sdk.Address, projectID uint64, amount *uint256.Int, claimed bool) {
	if amount.IsZero() {
		return
	}
	key := tokenUnclaimedKey(projectID, holder)
	if claimed {
		key = tokenClaimedKey(projectID, holder)
	}
	if !subAmount(t.state, key, amount) || !subAmount(t.state, tokenSupplyKey(projectID, claimed), amount) {
		sdk.Abort("token ledger underflow")
	}
}

// Claim turns unclaimed tokens into claimed ones.
func (t *TokenStore) Claim(holder sdk.Address, projectID uint64, amount *uint256.Int) error {
	if !t.IsIssued(projectID) {
		return fmt.Errorf("%w: project %d has no issued token", ErrNotAllowed, projectID)
	}
	if amount.IsZero() {
		return fmt.Errorf("%w: claiming nothing", ErrNoOp)
	}
	if unclaimedBalance(t.state, projectID, holder).Lt(amount) {
		return fmt.Errorf("%w: not enough unclaimed tokens", ErrInsufficientTokens)
	}
	t.debit(holder, projectID, amount, false)
	addAmount(t.state, tokenClaimedKey(projectID, holder), amount)
	addAmount(t.state, tokenSupplyKey(projectID, true), amount)
	return nil
}

func (t *TokenStore) TotalSupplyOf(projectID uint64) *uint256.Int {
	return new(uint256.Int).Add(supplyOf(t.state, projectID, false), supplyOf(t.state, projectID, true))
}

func (t *TokenStore) BalanceOf(holder sdk.Address, projectID uint64) *uint256.Int {
	return new(uint256.Int).Add(unclaimedBalance(t.state, projectID, holder), claimedBalance(t.state, projectID, holder))
}

// ClaimedBalanceOf is the part of BalanceOf held as the issued token.
func (t *TokenStore) ClaimedBalanceOf(holder sdk.Address, projectID uint64) *uint256.Int {
	return claimedBalance(t.state, projectID, holder)
}
