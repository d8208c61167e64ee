package replay

import (
	"fmt"
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"juice_treasury/contract"
	"juice_treasury/sdk"
)

// Context carries what a handler needs for one step.
type Context struct {
	Engine *contract.Engine
	Host   *sdk.Host
	Sender sdk.Address
}

// Now is the current second of the runner clock.
func (c *Context) Now() int64 {
	return c.Host.Now()
}

// Handler runs one step and returns a short summary of its outcome.
type Handler func(ctx *Context, args *yaml.Node) (string, error)

// Registry holds the handler of every action kind.
type Registry struct {
	handlers map[ActionKind]Handler
}

// NewRegistry returns a registry with every built-in action.
func NewRegistry() *Registry {
	r := &Registry{handlers: map[ActionKind]Handler{}}
	r.Register(ActionLaunch, handleLaunch)
	r.Register(ActionReconfigure, handleReconfigure)
	r.Register(ActionSetSplits, handleSetSplits)
	r.Register(ActionIssue, handleIssue)
	r.Register(ActionClaim, handleClaim)
	r.Register(ActionSetOperator, handleSetOperator)
	r.Register(ActionDistribute, handleDistribute)
	r.Register(ActionMigrate, handleMigrate)
	r.Register(ActionAddToBalance, handleAddToBalance)
	r.Register(ActionPay, handlePay)
	r.Register(ActionTap, handleTap)
	r.Register(ActionRedeem, handleRedeem)
	r.Register(ActionDeposit, handleDeposit)
	r.Register(ActionAllowMigration, handleAllowMigration)
	r.Register(ActionAddPriceFeed, handleAddPriceFeed)
	r.Register(ActionSetFee, handleSetFee)
	r.Register(ActionExpect, handleExpect)
	return r
}

// Register adds or replaces the handler of kind.
func (r *Registry) Register(kind ActionKind, h Handler) {
	r.handlers[kind] = h
}

// Dispatch runs the handler registered for kind.
func (r *Registry) Dispatch(ctx *Context, kind ActionKind, args *yaml.Node) (string, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return "", fmt.Errorf("unknown action: %q", kind)
	}
	return h(ctx, args)
}

// Kinds lists the registered action kinds in sorted order.
func (r *Registry) Kinds() []ActionKind {
	out := make([]ActionKind, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// decodeArgs accepts a missing args block as the zero value.
func decodeArgs(args *yaml.Node, out any) error {
	if args == nil || args.Kind == 0 {
		return nil
	}
	if err := args.Decode(out); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

func handleLaunch(ctx *Context, args *yaml.Node) (string, error) {
	var a configureArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	cfg, err := a.configuration(ctx.Now())
	if err != nil {
		return "", err
	}
	id, fc, err := ctx.Engine.LaunchProject(ctx.Sender, a.URI, cfg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("project %d cycle %d", id, fc.Number), nil
}

func handleReconfigure(ctx *Context, args *yaml.Node) (string, error) {
	var a configureArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	cfg, err := a.configuration(ctx.Now())
	if err != nil {
		return "", err
	}
	fc, err := ctx.Engine.Reconfigure(ctx.Sender, a.Project, cfg)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("cycle %d starts at %d", fc.Number, fc.Start), nil
}

func handleSetSplits(ctx *Context, args *yaml.Node) (string, error) {
	var a setSplitsArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	group, err := parseGroup(a.Group)
	if err != nil {
		return "", err
	}
	domain := a.Domain
	if domain == 0 {
		fc, err := ctx.Engine.CurrentOf(a.Project)
		if err != nil {
			return "", err
		}
		domain = fc.Configured
	}
	splits := toSplits(a.Splits, ctx.Now())
	if err := ctx.Engine.SetSplits(ctx.Sender, a.Project, domain, group, splits); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s splits", len(splits), group), nil
}

func handleIssue(ctx *Context, args *yaml.Node) (string, error) {
	var a issueArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	if err := ctx.Engine.IssueTokens(ctx.Sender, a.Project, a.Name, a.Symbol); err != nil {
		return "", err
	}
	return "issued " + strings.ToUpper(a.Symbol), nil
}

func handleClaim(ctx *Context, args *yaml.Node) (string, error) {
	var a claimArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	holder := sdk.Address(a.Holder)
	if holder == "" {
		holder = ctx.Sender
	}
	if err := ctx.Engine.ClaimTokens(ctx.Sender, holder, a.Project, a.Amount.Value()); err != nil {
		return "", err
	}
	return "claimed " + a.Amount.Value().Dec(), nil
}

func handleSetOperator(ctx *Context, args *yaml.Node) (string, error) {
	var a operatorArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	if err := ctx.Engine.SetOperator(ctx.Sender, sdk.Address(a.Operator), a.Domain, a.Permissions); err != nil {
		return "", err
	}
	return fmt.Sprintf("operator %s set", a.Operator), nil
}

func handleDistribute(ctx *Context, args *yaml.Node) (string, error) {
	var a projectArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	total, err := ctx.Engine.DistributeReservedTokens(ctx.Sender, a.Project)
	if err != nil {
		return "", err
	}
	return "distributed " + total.Dec(), nil
}

func handleMigrate(ctx *Context, args *yaml.Node) (string, error) {
	var a migrateArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	moved, err := ctx.Engine.Migrate(ctx.Sender, a.Project, sdk.Address(a.To))
	if err != nil {
		return "", err
	}
	return "moved " + moved.Dec(), nil
}

func handleAddToBalance(ctx *Context, args *yaml.Node) (string, error) {
	var a balanceArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	if err := ctx.Engine.AddToBalance(ctx.Sender, a.Project, a.Amount.Value()); err != nil {
		return "", err
	}
	return "added " + a.Amount.Value().Dec(), nil
}

func handlePay(ctx *Context, args *yaml.Node) (string, error) {
	var a payArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	currency, err := sdk.ParseCurrency(a.Currency)
	if err != nil {
		return "", err
	}
	p, err := ctx.Engine.Pay(ctx.Sender, a.Project, a.Amount.Value(), currency, sdk.Address(a.Beneficiary), a.Memo, a.PreferClaimed)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("paid %s, minted %s, reserved %s", p.AmountInBase.Dec(), p.BeneficiaryTokens.Dec(), p.ReservedTokens.Dec()), nil
}

func handleTap(ctx *Context, args *yaml.Node) (string, error) {
	var a tapArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	currency, err := sdk.ParseCurrency(a.Currency)
	if err != nil {
		return "", err
	}
	res, err := ctx.Engine.Tap(ctx.Sender, a.Project, a.Amount.Value(), currency, a.MinReturned.Value())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tapped %s, fee %s, owner %s", res.TappedWei.Dec(), res.Fee.Dec(), res.ToOwner.Dec()), nil
}

func handleRedeem(ctx *Context, args *yaml.Node) (string, error) {
	var a redeemArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	holder := sdk.Address(a.Holder)
	if holder == "" {
		holder = ctx.Sender
	}
	claimed, err := ctx.Engine.Redeem(ctx.Sender, holder, a.Project, a.Count.Value(), a.MinReturned.Value(), sdk.Address(a.Beneficiary), a.PreferUnstaked)
	if err != nil {
		return "", err
	}
	return "redeemed " + claimed.Dec(), nil
}

func handleDeposit(ctx *Context, args *yaml.Node) (string, error) {
	var a depositArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	currency, err := sdk.ParseCurrency(a.Currency)
	if err != nil {
		return "", err
	}
	addr := sdk.Address(a.Address)
	if addr == "" {
		addr = ctx.Sender
	}
	if !addr.IsValid() {
		return "", fmt.Errorf("%w: %q", contract.ErrInvalidAddress, addr)
	}
	ctx.Host.Deposit(addr, a.Amount.Value(), currency)
	if err := ctx.Host.Commit(); err != nil {
		return "", err
	}
	return fmt.Sprintf("deposited %s %s", a.Amount.Value().Dec(), currency), nil
}

func handleAllowMigration(ctx *Context, args *yaml.Node) (string, error) {
	var a terminalArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	if err := ctx.Engine.AllowMigration(ctx.Sender, sdk.Address(a.Terminal)); err != nil {
		return "", err
	}
	return "allowed " + a.Terminal, nil
}

func handleAddPriceFeed(ctx *Context, args *yaml.Node) (string, error) {
	var a feedArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	currency, err := sdk.ParseCurrency(a.Currency)
	if err != nil {
		return "", err
	}
	base, err := sdk.ParseCurrency(a.Base)
	if err != nil {
		return "", err
	}
	if err := ctx.Engine.AddPriceFeed(ctx.Sender, currency, base, a.Price.Value()); err != nil {
		return "", err
	}
	return fmt.Sprintf("feed %s/%s", currency, base), nil
}

func handleSetFee(ctx *Context, args *yaml.Node) (string, error) {
	var a feeArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	if err := ctx.Engine.SetFee(ctx.Sender, a.Fee); err != nil {
		return "", err
	}
	return fmt.Sprintf("fee %d", a.Fee), nil
}

// handleExpect fails on the first mismatch so the report names it.
func handleExpect(ctx *Context, args *yaml.Node) (string, error) {
	var a expectArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	e := ctx.Engine
	checks := 0
	check := func(what string, want *Amount, got *uint256.Int) error {
		if want == nil {
			return nil
		}
		checks++
		if !got.Eq(want.Value()) {
			return fmt.Errorf("expected %s %s, got %s", what, want.Value().Dec(), got.Dec())
		}
		return nil
	}

	if a.Balance != nil {
		bal, err := e.BalanceOf(a.Project)
		if err != nil {
			return "", err
		}
		if err := check("balance", a.Balance, bal); err != nil {
			return "", err
		}
	}
	if a.Overflow != nil {
		overflow, err := e.CurrentOverflowOf(a.Project)
		if err != nil {
			return "", err
		}
		if err := check("overflow", a.Overflow, overflow); err != nil {
			return "", err
		}
	}
	if err := check("reserved", a.Reserved, e.ReservedTokensOf(a.Project)); err != nil {
		return "", err
	}
	if err := check("supply", a.Supply, e.TotalSupplyOf(a.Project)); err != nil {
		return "", err
	}
	if a.CycleNumber != 0 || a.Tapped != nil {
		fc, err := e.CurrentOf(a.Project)
		if err != nil {
			return "", err
		}
		if a.CycleNumber != 0 {
			checks++
			if fc.Number != a.CycleNumber {
				return "", fmt.Errorf("expected cycle %d, got %d", a.CycleNumber, fc.Number)
			}
		}
		if fc.Exists() {
			if err := check("tapped", a.Tapped, fc.Tapped); err != nil {
				return "", err
			}
		}
	}
	if a.Terminal != "" {
		checks++
		if got := e.TerminalOf(a.Project); got != sdk.Address(a.Terminal) {
			return "", fmt.Errorf("expected terminal %s, got %s", a.Terminal, got)
		}
	}
	for _, holder := range sortedKeys(a.Tokens) {
		want := a.Tokens[holder]
		if err := check("tokens of "+holder, &want, e.TokenBalanceOf(sdk.Address(holder), a.Project)); err != nil {
			return "", err
		}
	}
	for _, addr := range sortedKeys(a.Wallets) {
		want := a.Wallets[addr]
		if err := check("wallet of "+addr, &want, ctx.Host.BalanceOf(sdk.Address(addr), sdk.CurrencyETH)); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%d checks passed", checks), nil
}

func sortedKeys(m map[string]Amount) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
