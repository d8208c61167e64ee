package contract

import (
	"fmt"
	"sort"
	"time"

	"github.com/holiman/uint256"

	"juice_treasury/contract/fund"
	"juice_treasury/metrics"
	"juice_treasury/sdk"
)

// Engine wires the stores over one host and exposes the entry points. Calls are strictly
// serial; every entry point is atomic.
type Engine struct {
	host       *sdk.Host
	ballots    *BallotRegistry
	cycles     *FundingCycleStore
	splits     *SplitStore
	prices     *PriceStore
	tokens     *TokenStore
	projects   *ProjectRegistry
	directory  *DirectoryStore
	operators  *Operators
	terminals  map[sdk.Address]*Terminal
	allocators map[sdk.Address]Allocator
	fallback   sdk.Address
	depth      int

	// pending counts only what the outermost call commits.
	pending *metrics.Pending
}

// New builds an engine whose projects default to the terminal at address, keeping funds
// in currency.
func New(host *sdk.Host, ballots *BallotRegistry, terminal sdk.Address, currency sdk.Currency) (*Engine, error) {
	if ballots == nil {
		ballots = NewBallotRegistry()
	}
	st := host.State()
	e := &Engine{
		host:       host,
		ballots:    ballots,
		cycles:     NewFundingCycleStore(st, ballots),
		splits:     NewSplitStore(st),
		prices:     NewPriceStore(st),
		tokens:     NewTokenStore(st),
		projects:   NewProjectRegistry(st),
		directory:  NewDirectoryStore(st, terminal),
		operators:  NewOperators(st),
		terminals:  map[sdk.Address]*Terminal{},
		allocators: map[sdk.Address]Allocator{},
		fallback:   terminal,
		pending:    &metrics.Pending{},
	}
	e.cycles.counters = e.pending
	if err := e.AddTerminal(terminal, currency); err != nil {
		return nil, err
	}
	return e, nil
}

// AddTerminal makes another terminal available as a migration target.
func (e *Engine) AddTerminal(address sdk.Address, currency sdk.Currency) error {
	if address.Domain() != sdk.AddressDomainContract || !address.IsValid() {
		return fmt.Errorf("%w: terminal %q", ErrInvalidAddress, address)
	}
	if _, ok := e.terminals[address]; ok {
		return fmt.Errorf("%w: terminal %s registered twice", ErrInvalidConfig, address)
	}
	e.terminals[address] = newTerminal(e, address, currency)
	return nil
}

// RegisterAllocator binds an allocator implementation to the address splits refer to.
func (e *Engine) RegisterAllocator(address sdk.Address, a Allocator) error {
	if !address.IsValid() || a == nil {
		return fmt.Errorf("%w: allocator %q", ErrInvalidAddress, address)
	}
	e.allocators[address] = a
	return nil
}

func (e *Engine) Host() *sdk.Host            { return e.host }
func (e *Engine) Ballots() *BallotRegistry   { return e.ballots }
func (e *Engine) Tokens() *TokenStore        { return e.tokens }
func (e *Engine) Projects() *ProjectRegistry { return e.projects }

// Terminals lists registered terminal addresses in sorted order.
func (e *Engine) Terminals() []sdk.Address {
	out := make([]sdk.Address, 0, len(e.terminals))
	for addr := range e.terminals {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (e *Engine) terminalOf(projectID uint64) (*Terminal, error) {
	addr := e.directory.TerminalOf(projectID)
	t, ok := e.terminals[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s for project %d", ErrTerminalNotFound, addr, projectID)
	}
	return t, nil
}

// call runs fn atomically: state writes and events are rolled back when fn fails or
// aborts. Calls nest; only the outermost one commits.
func (e *Engine) call(op string, sender sdk.Address, fn func(c *Call) error) (err error) {
	started := time.Now()
	snap := e.host.Snapshot()
	mark := e.pending.Mark()
	c := &Call{env: e.host.NewEnv(sender), engine: e, op: op}
	e.depth++
	defer func() {
		e.depth--
		if r := recover(); r != nil {
			switch v := r.(type) {
			case sdk.AbortError:
				err = fmt.Errorf("%s aborted: %w", op, v)
			case string:
				err = fmt.Errorf("%s aborted: %s", op, v)
			default:
				e.host.RevertToSnapshot(snap)
				e.pending.Discard(mark)
				panic(r)
			}
		}
		status := "ok"
		if err != nil {
			status = "error"
			e.host.RevertToSnapshot(snap)
			e.pending.Discard(mark)
			e.host.Logger().Debug("call reverted", "op", op, "tx", c.TxID(), "sender", sender, "error", err)
		} else if e.depth == 0 {
			if cerr := e.host.Commit(); cerr != nil {
				status = "error"
				err = fmt.Errorf("commit %s: %w", op, cerr)
				e.pending.Discard(mark)
			} else {
				e.pending.Flush()
			}
		}
		metrics.OperationsTotal.WithLabelValues(op, status).Inc()
		metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	}()
	if op != "bootstrap" && !isProtocolInitialized(e.host.State()) {
		return ErrNotInitialized
	}
	return fn(c)
}

// authorize passes the project owner and operators holding index for the project.
func (e *Engine) authorize(c *Call, projectID uint64, index uint8) (*Project, error) {
	prj, err := e.projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	if prj.Owner != c.Sender() && !e.operators.HasPermission(c.Sender(), prj.Owner, projectID, index) {
		return nil, fmt.Errorf("%w: %s on project %d", ErrUnauthorized, c.Sender(), projectID)
	}
	return prj, nil
}

func (e *Engine) requireProtocolOwner(c *Call) error {
	if !isProtocolOwner(e.host.State(), c.Sender()) {
		return fmt.Errorf("%w: %s is not the protocol owner", ErrUnauthorized, c.Sender())
	}
	return nil
}

// Bootstrap stores the protocol config and launches the governance project that collects
// fees. It runs once.
func (e *Engine) Bootstrap(owner sdk.Address, fee uint64, governanceURI string) (uint64, error) {
	var govID uint64
	err := e.call("bootstrap", owner, func(c *Call) error {
		st := e.host.State()
		if isProtocolInitialized(st) {
			return ErrAlreadyInitialized
		}
		if fee > fund.MaxFee {
			return fmt.Errorf("%w: fee %d above %d", ErrInvalidConfig, fee, fund.MaxFee)
		}
		if governanceURI == "" {
			governanceURI = FallbackGovernanceURI
		}
		id, err := e.projects.Create(owner, governanceURI)
		if err != nil {
			return err
		}
		saveProtocolConfig(st, &ProtocolConfig{Owner: owner, Fee: fee, GovernanceProjectID: id})
		props := fund.Properties{
			Target:   new(uint256.Int),
			Currency: e.terminals[e.fallback].currency,
		}
		md := fund.Metadata{BondingCurveRate: fund.MaxPercent, ReconfigurationBondingCurveRate: fund.MaxPercent}
		fc, err := e.cycles.ConfigureFor(id, props, md, 0, c.Now())
		if err != nil {
			return err
		}
		emitProjectLaunchedEvent(e.host, id, owner)
		emitConfigureEvent(e.host, fc, owner)
		govID = id
		return nil
	})
	return govID, err
}

// -----------------------------------------------------------------------------
// Views
// -----------------------------------------------------------------------------

// Protocol returns the stored protocol config.
func (e *Engine) Protocol() (ProtocolConfig, error) {
	cfg := loadProtocolConfig(e.host.State())
	if cfg == nil {
		return ProtocolConfig{}, ErrNotInitialized
	}
	return *cfg, nil
}

func (e *Engine) Project(projectID uint64) (*Project, error) {
	return e.projects.Get(projectID)
}

func (e *Engine) CurrentOf(projectID uint64) (fund.FundingCycle, error) {
	return e.cycles.CurrentOf(projectID, e.host.Now())
}

func (e *Engine) QueuedOf(projectID uint64) (fund.FundingCycle, error) {
	return e.cycles.QueuedOf(projectID, e.host.Now())
}

// PendingOf reports the configuration waiting for the next period, if any.
func (e *Engine) PendingOf(projectID uint64) (fund.FundingCycle, bool, error) {
	return e.cycles.PendingOf(projectID, e.host.Now())
}

func (e *Engine) FundingCycle(id uint64) (fund.FundingCycle, error) {
	return e.cycles.Get(id)
}

func (e *Engine) CurrentBallotStateOf(projectID uint64) (fund.BallotState, error) {
	return e.cycles.CurrentBallotStateOf(projectID, e.host.Now())
}

func (e *Engine) SplitsOf(projectID uint64, domain int64, group fund.SplitGroup) []fund.Split {
	return e.splits.SplitsOf(projectID, domain, group)
}

func (e *Engine) TerminalOf(projectID uint64) sdk.Address {
	return e.directory.TerminalOf(projectID)
}

// BalanceOf is the balance the project's terminal holds for it.
func (e *Engine) BalanceOf(projectID uint64) (*uint256.Int, error) {
	t, err := e.terminalOf(projectID)
	if err != nil {
		return nil, err
	}
	return t.store.BalanceOf(projectID), nil
}

func (e *Engine) CurrentOverflowOf(projectID uint64) (*uint256.Int, error) {
	t, err := e.terminalOf(projectID)
	if err != nil {
		return nil, err
	}
	return t.store.CurrentOverflowOf(projectID, e.host.Now())
}

func (e *Engine) ClaimableOverflowOf(projectID uint64, count *uint256.Int) (*uint256.Int, error) {
	t, err := e.terminalOf(projectID)
	if err != nil {
		return nil, err
	}
	return t.store.ClaimableOverflowOf(projectID, count, e.host.Now())
}

func (e *Engine) TokenBalanceOf(holder sdk.Address, projectID uint64) *uint256.Int {
	return e.tokens.BalanceOf(holder, projectID)
}

func (e *Engine) TotalSupplyOf(projectID uint64) *uint256.Int {
	return e.tokens.TotalSupplyOf(projectID)
}

// ReservedTokensOf is the amount waiting for distributeReservedTokens.
func (e *Engine) ReservedTokensOf(projectID uint64) *uint256.Int {
	return reservedOf(e.host.State(), projectID)
}

func (e *Engine) PriceFor(currency, base sdk.Currency) (*uint256.Int, error) {
	return e.prices.PriceFor(currency, base)
}

func (e *Engine) IsMigrationAllowed(terminal sdk.Address) bool {
	return isMigrationAllowed(e.host.State(), terminal)
}
