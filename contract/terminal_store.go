package contract

import (
	"fmt"

	"github.com/holiman/uint256"

	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

// TerminalStore is the accounting half of a terminal. It validates and records every
// movement of a project balance; moving actual funds is left to Terminal.
type TerminalStore struct {
	state    sdk.State
	terminal sdk.Address
	currency sdk.Currency
	cycles   *FundingCycleStore
	prices   PriceOracle
	tokens   TokenLedger
}

func NewTerminalStore(state sdk.State, terminal sdk.Address, currency sdk.Currency, cycles *FundingCycleStore, prices PriceOracle, tokens TokenLedger) *TerminalStore {
	return &TerminalStore{
		state:    state,
		terminal: terminal,
		currency: currency,
		cycles:   cycles,
		prices:   prices,
		tokens:   tokens,
	}
}

// Payment is what recordPayment booked.
type Payment struct {
	Cycle             fund.FundingCycle
	AmountInBase      *uint256.Int
	BeneficiaryTokens *uint256.Int
	ReservedTokens    *uint256.Int
}

// BalanceOf is the project balance held by this terminal, in its base currency.
func (s *TerminalStore) BalanceOf(projectID uint64) *uint256.Int {
	return getProjectBalance(s.state, s.terminal, projectID)
}

// RecordPayment credits amount and mints tokens at the current cycle's weight. The
// reserved share is accrued for a later distribution. Tokens go to payer when no
// beneficiary is named.
func (s *TerminalStore) RecordPayment(payer sdk.Address, projectID uint64, amount *uint256.Int, currency sdk.Currency, beneficiary sdk.Address, preferClaimed bool, now int64) (Payment, error) {
	fc, err := s.cycles.CurrentOf(projectID, now)
	if err != nil {
		return Payment{}, err
	}
	if !fc.Exists() {
		return Payment{}, fmt.Errorf("%w: project %d has no active cycle", ErrFundingCycleNotFound, projectID)
	}
	if beneficiary == "" {
		beneficiary = payer
	}
	if !beneficiary.IsValid() {
		return Payment{}, fmt.Errorf("%w: beneficiary %q", ErrInvalidAddress, beneficiary)
	}
	inBase, err := convertAmount(s.prices, amount, currency, s.currency)
	if err != nil {
		return Payment{}, err
	}
	p := Payment{
		Cycle:             fc,
		AmountInBase:      inBase,
		BeneficiaryTokens: new(uint256.Int),
		ReservedTokens:    new(uint256.Int),
	}
	if inBase.IsZero() {
		return p, nil
	}
	creditProjectBalance(s.state, s.terminal, projectID, inBase)
	s.cycles.RecordPaid(fc)

	tokens := fund.Tokens(inBase, fc.Weight)
	p.ReservedTokens = fund.PercentOf(tokens, fc.Metadata.ReservedRate, fund.MaxPercent)
	p.BeneficiaryTokens = new(uint256.Int).Sub(tokens, p.ReservedTokens)
	s.tokens.Mint(beneficiary, projectID, p.BeneficiaryTokens, preferClaimed)
	if !p.ReservedTokens.IsZero() {
		addAmount(s.state, reservedTokensKey(projectID), p.ReservedTokens)
	}
	return p, nil
}

// RecordTappedAmount books a withdrawal of amount, denominated in the cycle currency,
// and returns the cycle after the tap together with the amount in base units.
func (s *TerminalStore) RecordTappedAmount(projectID uint64, amount *uint256.Int, currency sdk.Currency, minReturnedWei *uint256.Int, now int64) (fund.FundingCycle, *uint256.Int, error) {
	if amount.IsZero() {
		return fund.FundingCycle{}, nil, fmt.Errorf("%w: tapping nothing", ErrNoOp)
	}
	fc, err := s.cycles.CurrentOf(projectID, now)
	if err != nil {
		return fund.FundingCycle{}, nil, err
	}
	if !fc.Exists() {
		if s.cycles.IsConfigured(projectID) {
			return fund.FundingCycle{}, nil, fmt.Errorf("%w: project %d cycle expired", ErrNonRecurringCycle, projectID)
		}
		return fund.FundingCycle{}, nil, fmt.Errorf("%w: project %d", ErrFundingCycleNotFound, projectID)
	}
	if currency != fc.Currency {
		return fund.FundingCycle{}, nil, fmt.Errorf("%w: cycle is in %s, tap asked %s", ErrUnexpectedCurrency, fc.Currency, currency)
	}
	if amount.Gt(fc.Remaining()) {
		return fund.FundingCycle{}, nil, fmt.Errorf("%w: %s of %s left", ErrInsufficientTargetFunds, fc.Remaining().Dec(), fc.Target.Dec())
	}
	tappedWei, err := convertAmount(s.prices, amount, fc.Currency, s.currency)
	if err != nil {
		return fund.FundingCycle{}, nil, err
	}
	if tappedWei.Gt(s.BalanceOf(projectID)) {
		return fund.FundingCycle{}, nil, fmt.Errorf("%w: balance %s, tapping %s", ErrInsufficientFunds, s.BalanceOf(projectID).Dec(), tappedWei.Dec())
	}
	if minReturnedWei != nil && tappedWei.Lt(minReturnedWei) {
		return fund.FundingCycle{}, nil, fmt.Errorf("%w: %s below %s", ErrInadequateWithdrawAmount, tappedWei.Dec(), minReturnedWei.Dec())
	}

	tapped, err := s.cycles.Tap(projectID, amount, now)
	if err != nil {
		return fund.FundingCycle{}, nil, err
	}
	if !debitProjectBalance(s.state, s.terminal, projectID, tappedWei) {
		sdk.Abort("balance changed during tap")
	}
	return tapped, tappedWei, nil
}

// CurrentOverflowOf is the balance above what the current cycle may still tap.
func (s *TerminalStore) CurrentOverflowOf(projectID uint64, now int64) (*uint256.Int, error) {
	fc, err := s.cycles.CurrentOf(projectID, now)
	if err != nil {
		return nil, err
	}
	if !fc.Exists() {
		return new(uint256.Int), nil
	}
	balance := s.BalanceOf(projectID)
	if balance.IsZero() {
		return balance, nil
	}
	left, err := convertAmount(s.prices, fc.Remaining(), fc.Currency, s.currency)
	if err != nil {
		return nil, err
	}
	if !balance.Gt(left) {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Sub(balance, left), nil
}

// ClaimableOverflowOf is what redeeming count tokens returns right now.
func (s *TerminalStore) ClaimableOverflowOf(projectID uint64, count *uint256.Int, now int64) (*uint256.Int, error) {
	overflow, err := s.CurrentOverflowOf(projectID, now)
	if err != nil || overflow.IsZero() {
		return overflow, err
	}
	fc, err := s.cycles.CurrentOf(projectID, now)
	if err != nil {
		return nil, err
	}
	state, err := s.cycles.CurrentBallotStateOf(projectID, now)
	if err != nil {
		return nil, err
	}
	rate := fc.Metadata.BondingCurveRate
	if state == fund.BallotActive {
		rate = fc.Metadata.ReconfigurationBondingCurveRate
	}
	total := new(uint256.Int).Add(s.tokens.TotalSupplyOf(projectID), reservedOf(s.state, projectID))
	return fund.ClaimableOverflow(overflow, count, total, rate), nil
}

// RecordRedemption burns count tokens of holder and debits what they are worth.
func (s *TerminalStore) RecordRedemption(holder sdk.Address, projectID uint64, count, minReturnedWei *uint256.Int, preferUnstaked bool, now int64) (*uint256.Int, error) {
	if count.Gt(s.tokens.BalanceOf(holder, projectID)) {
		return nil, fmt.Errorf("%w: %s holds %s", ErrInsufficientTokens, holder, s.tokens.BalanceOf(holder, projectID).Dec())
	}
	claimable, err := s.ClaimableOverflowOf(projectID, count, now)
	if err != nil {
		return nil, err
	}
	if claimable.IsZero() {
		return nil, fmt.Errorf("%w: nothing claimable", ErrNoOp)
	}
	if minReturnedWei != nil && claimable.Lt(minReturnedWei) {
		return nil, fmt.Errorf("%w: %s below %s", ErrBelowMinReturn, claimable.Dec(), minReturnedWei.Dec())
	}
	if err := s.tokens.Burn(holder, projectID, count, preferUnstaked); err != nil {
		return nil, err
	}
	if !debitProjectBalance(s.state, s.terminal, projectID, claimable) {
		sdk.Abort("claimable above balance")
	}
	return claimable, nil
}

// RecordMigration empties the project balance for a move to an allowed terminal.
func (s *TerminalStore) RecordMigration(projectID uint64, to sdk.Address) (*uint256.Int, error) {
	if to == s.terminal || !isMigrationAllowed(s.state, to) {
		return nil, fmt.Errorf("%w: migration to %s", ErrNotAllowed, to)
	}
	return drainProjectBalance(s.state, s.terminal, projectID), nil
}

// RecordAddedBalance credits amount without minting anything.
func (s *TerminalStore) RecordAddedBalance(projectID uint64, amount *uint256.Int) {
	creditProjectBalance(s.state, s.terminal, projectID, amount)
}
