package contract

import "errors"

// Every failed entry point surfaces one of these, wrapped with call details.
var (
	ErrInsufficientTargetFunds  = errors.New("insufficient target funds")
	ErrInadequateWithdrawAmount = errors.New("inadequate withdraw amount")
	ErrBelowMinReturn           = errors.New("below min return")
	ErrNonRecurringCycle        = errors.New("non recurring funding cycle")
	ErrSomeLocked               = errors.New("some splits are locked")
	ErrNotAllowed               = errors.New("not allowed")
	ErrNoOp                     = errors.New("no op")
	ErrAlreadyClaimed           = errors.New("already claimed")

	ErrUnauthorized         = errors.New("unauthorized")
	ErrProjectNotFound      = errors.New("project not found")
	ErrFundingCycleNotFound = errors.New("funding cycle not found")
	ErrPriceFeedNotFound    = errors.New("price feed not found")
	ErrInvalidSplits        = errors.New("invalid splits")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrUnknownBallot        = errors.New("unknown ballot")
	ErrUnexpectedCurrency   = errors.New("unexpected currency")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientTokens   = errors.New("insufficient tokens")
	ErrTerminalNotFound     = errors.New("terminal not found")
	ErrNotInitialized       = errors.New("engine not initialized")
	ErrAlreadyInitialized   = errors.New("engine already initialized")
	ErrInvalidAddress       = errors.New("invalid address")
)
