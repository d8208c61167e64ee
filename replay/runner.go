package replay

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"juice_treasury/contract"
	"juice_treasury/sdk"
)

// Runner replays scenarios step by step, moving its fake clock forward between steps.
type Runner struct {
	engine   *contract.Engine
	host     *sdk.Host
	clock    *clockwork.FakeClock
	registry *Registry
	logger   *slog.Logger
}

// NewRunner expects host to run on clock.
func NewRunner(engine *contract.Engine, host *sdk.Host, clock *clockwork.FakeClock, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = host.Logger()
	}
	return &Runner{
		engine:   engine,
		host:     host,
		clock:    clock,
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Registry exposes the handlers so callers can add their own actions.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Run executes every step. A failing step does not stop the scenario; it is recorded and
// counted in Report.Failures.
func (r *Runner) Run(sc *Scenario) (*Report, error) {
	start := r.clock.Now()
	if sc.Start != "" {
		t, err := time.Parse(time.RFC3339, sc.Start)
		if err != nil {
			return nil, fmt.Errorf("scenario start: %w", err)
		}
		if t.Before(start) {
			return nil, fmt.Errorf("scenario start %s is before the clock (%s)", t.Format(time.RFC3339), start.Format(time.RFC3339))
		}
		r.clock.Advance(t.Sub(start))
		start = t
	}

	report := &Report{Scenario: sc.Name, StartedAt: start.Unix()}
	seen := map[sdk.Address]bool{}
	for i, step := range sc.Steps {
		if target := start.Add(step.At); target.After(r.clock.Now()) {
			r.clock.Advance(target.Sub(r.clock.Now()))
		}
		sender := sdk.Address(step.As)
		if sender != "" {
			seen[sender] = true
		}
		r.host.DrainEvents()

		summary, err := r.dispatch(sender, step)
		res := StepResult{
			Index:     i,
			At:        r.host.Now(),
			Action:    string(step.Action),
			As:        step.As,
			Summary:   summary,
			Events:    r.host.DrainEvents(),
			Succeeded: err == nil,
		}
		if err != nil {
			res.Error = err.Error()
		}
		res.OK = step.ExpectError == "" && err == nil ||
			step.ExpectError != "" && err != nil && strings.Contains(err.Error(), step.ExpectError)
		if !res.OK {
			report.Failures++
			r.logger.Warn("step failed", "index", i, "action", step.Action, "as", step.As, "error", res.Error, "expect_error", step.ExpectError)
		} else {
			r.logger.Info("step", "index", i, "action", step.Action, "as", step.As, "summary", summary)
		}
		report.Steps = append(report.Steps, res)
	}

	report.FinishedAt = r.host.Now()
	report.Projects = r.snapshotProjects()
	report.Wallets = r.snapshotWallets(seen)
	return report, nil
}

// dispatch turns handler aborts into step errors.
func (r *Runner) dispatch(sender sdk.Address, step Step) (summary string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			abort, ok := rec.(sdk.AbortError)
			if !ok {
				panic(rec)
			}
			err = abort
		}
	}()
	ctx := &Context{Engine: r.engine, Host: r.host, Sender: sender}
	return r.registry.Dispatch(ctx, step.Action, &step.Args)
}

func (r *Runner) snapshotProjects() []ProjectSnapshot {
	count := r.engine.Projects().Count()
	out := make([]ProjectSnapshot, 0, count)
	for id := uint64(1); id <= count; id++ {
		prj, err := r.engine.Project(id)
		if err != nil {
			continue
		}
		snap := ProjectSnapshot{
			ID:       id,
			Owner:    prj.Owner.String(),
			Terminal: r.engine.TerminalOf(id).String(),
			Supply:   r.engine.TotalSupplyOf(id).Dec(),
			Reserved: r.engine.ReservedTokensOf(id).Dec(),
		}
		if bal, err := r.engine.BalanceOf(id); err == nil {
			snap.Balance = bal.Dec()
		}
		if overflow, err := r.engine.CurrentOverflowOf(id); err == nil {
			snap.Overflow = overflow.Dec()
		}
		if fc, err := r.engine.CurrentOf(id); err == nil && fc.Exists() {
			snap.Cycle = &CycleSnapshot{
				ID:       fc.ID,
				Number:   fc.Number,
				Start:    fc.Start,
				Duration: fc.Duration,
				Target:   fc.Target.Dec(),
				Tapped:   fc.Tapped.Dec(),
				Weight:   fc.Weight.Dec(),
				Currency: fc.Currency.String(),
			}
		}
		out = append(out, snap)
	}
	return out
}

func (r *Runner) snapshotWallets(seen map[sdk.Address]bool) []WalletSnapshot {
	for _, t := range r.engine.Terminals() {
		seen[t] = true
	}
	addrs := make([]string, 0, len(seen))
	for addr := range seen {
		addrs = append(addrs, addr.String())
	}
	sort.Strings(addrs)
	out := make([]WalletSnapshot, 0, len(addrs))
	for _, addr := range addrs {
		for _, cur := range []sdk.Currency{sdk.CurrencyETH, sdk.CurrencyUSD} {
			bal := r.host.BalanceOf(sdk.Address(addr), cur)
			if bal.IsZero() {
				continue
			}
			out = append(out, WalletSnapshot{Address: addr, Currency: cur.String(), Balance: bal.Dec()})
		}
	}
	return out
}
