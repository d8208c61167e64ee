package contract

import (
	"fmt"
	"sort"
	"time"

	"juice_treasury/contract/fund"
)

// Ballot decides whether a pending reconfiguration may take over at start.
type Ballot interface {
	// Duration is the delay after configuration before the ballot can approve.
	Duration() int64
	StateOf(configured, start, now int64) fund.BallotState
}

// DurationBallot approves once Delay elapsed, provided that still happens no later than start.
type DurationBallot struct {
	Delay time.Duration
}

func (b DurationBallot) Duration() int64 {
	return int64(b.Delay / time.Second)
}

func (b DurationBallot) StateOf(configured, start, now int64) fund.BallotState {
	approvedAt := configured + b.Duration()
	if now < approvedAt {
		return fund.BallotActive
	}
	if approvedAt <= start {
		return fund.BallotApproved
	}
	return fund.BallotFailed
}

// noBallot approves everything right away.
type noBallot struct{}

func (noBallot) Duration() int64                        { return 0 }
func (noBallot) StateOf(_, _, _ int64) fund.BallotState { return fund.BallotApproved }

// BallotRegistry resolves the ballot address stored on a funding cycle.
type BallotRegistry struct {
	ballots map[string]Ballot
}

func NewBallotRegistry() *BallotRegistry {
	return &BallotRegistry{ballots: map[string]Ballot{}}
}

// Register adds or replaces a ballot under addr. The empty address is reserved for "none".
func (r *BallotRegistry) Register(addr string, b Ballot) error {
	if addr == "" {
		return fmt.Errorf("%w: empty ballot address", ErrInvalidConfig)
	}
	if b == nil {
		return fmt.Errorf("%w: nil ballot %s", ErrInvalidConfig, addr)
	}
	r.ballots[addr] = b
	return nil
}

// Resolve returns the ballot registered under addr, the always approving one for "".
func (r *BallotRegistry) Resolve(addr string) (Ballot, error) {
	if addr == "" {
		return noBallot{}, nil
	}
	b, ok := r.ballots[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBallot, addr)
	}
	return b, nil
}

// Addresses lists registered ballots in sorted order.
func (r *BallotRegistry) Addresses() []string {
	out := make([]string, 0, len(r.ballots))
	for addr := range r.ballots {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
