package replay

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"juice_treasury/contract"
	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

// Amount is a decimal amount that also accepts a power of ten suffix ("50e18").
type Amount struct {
	*uint256.Int
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseAmount(node.Value)
	if err != nil {
		return err
	}
	a.Int = v
	return nil
}

// Value is the amount or zero when it was left out.
func (a Amount) Value() *uint256.Int {
	if a.Int == nil {
		return new(uint256.Int)
	}
	return a.Int.Clone()
}

// ParseAmount reads "1000", "50e18" or "1.5e18".
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if s == "" {
		return new(uint256.Int), nil
	}
	mantissa, exp := s, 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.Atoi(s[i+1:])
		if err != nil || e < 0 || e > 77 {
			return nil, fmt.Errorf("invalid amount exponent in %q", s)
		}
		mantissa, exp = s[:i], e
	}
	if dot := strings.IndexByte(mantissa, '.'); dot >= 0 {
		frac := mantissa[dot+1:]
		if len(frac) > exp {
			return nil, fmt.Errorf("amount %q has more decimals than its exponent", s)
		}
		mantissa = mantissa[:dot] + frac
		exp -= len(frac)
	}
	v, err := uint256.FromDecimal(mantissa)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(exp)))
	out, overflow := new(uint256.Int).MulOverflow(v, scale)
	if overflow {
		return nil, fmt.Errorf("amount %q overflows", s)
	}
	return out, nil
}

type splitArgs struct {
	Percent       uint64        `yaml:"percent"`
	LockedFor     time.Duration `yaml:"locked_for"`
	Beneficiary   string        `yaml:"beneficiary"`
	Allocator     string        `yaml:"allocator"`
	Project       uint64        `yaml:"project"`
	PreferClaimed bool          `yaml:"prefer_claimed"`
}

func toSplits(in []splitArgs, now int64) []fund.Split {
	if len(in) == 0 {
		return nil
	}
	out := make([]fund.Split, 0, len(in))
	for _, s := range in {
		split := fund.Split{
			Percent:       s.Percent,
			Beneficiary:   sdk.Address(s.Beneficiary),
			Allocator:     sdk.Address(s.Allocator),
			ProjectID:     s.Project,
			PreferClaimed: s.PreferClaimed,
		}
		if s.LockedFor > 0 {
			split.LockedUntil = now + int64(s.LockedFor/time.Second)
		}
		out = append(out, split)
	}
	return out
}

// configureArgs is shared by launch and reconfigure.
type configureArgs struct {
	Project                         uint64        `yaml:"project"`
	URI                             string        `yaml:"uri"`
	Target                          Amount        `yaml:"target"`
	Currency                        string        `yaml:"currency"`
	Duration                        time.Duration `yaml:"duration"`
	CycleLimit                      uint64        `yaml:"cycle_limit"`
	DiscountRate                    uint64        `yaml:"discount_rate"`
	NonRecurring                    bool          `yaml:"non_recurring"`
	Ballot                          string        `yaml:"ballot"`
	Weight                          Amount        `yaml:"weight"`
	ReservedRate                    uint64        `yaml:"reserved_rate"`
	BondingCurveRate                uint64        `yaml:"bonding_curve_rate"`
	ReconfigurationBondingCurveRate uint64        `yaml:"reconfiguration_bonding_curve_rate"`
	PayoutSplits                    []splitArgs   `yaml:"payout_splits"`
	ReservedSplits                  []splitArgs   `yaml:"reserved_splits"`
}

func (a configureArgs) configuration(now int64) (contract.Configuration, error) {
	currency, err := sdk.ParseCurrency(a.Currency)
	if err != nil {
		return contract.Configuration{}, err
	}
	discount := a.DiscountRate
	if a.NonRecurring {
		discount = fund.NonRecurringDiscountRate
	}
	return contract.Configuration{
		Properties: fund.Properties{
			Target:       a.Target.Value(),
			Currency:     currency,
			Duration:     int64(a.Duration / time.Second),
			CycleLimit:   a.CycleLimit,
			DiscountRate: discount,
			Ballot:       a.Ballot,
			Weight:       a.Weight.Value(),
		},
		Metadata: fund.Metadata{
			ReservedRate:                    a.ReservedRate,
			BondingCurveRate:                a.BondingCurveRate,
			ReconfigurationBondingCurveRate: a.ReconfigurationBondingCurveRate,
		},
		PayoutSplits:   toSplits(a.PayoutSplits, now),
		ReservedSplits: toSplits(a.ReservedSplits, now),
	}, nil
}

type payArgs struct {
	Project       uint64 `yaml:"project"`
	Amount        Amount `yaml:"amount"`
	Currency      string `yaml:"currency"`
	Beneficiary   string `yaml:"beneficiary"`
	Memo          string `yaml:"memo"`
	PreferClaimed bool   `yaml:"prefer_claimed"`
}

type tapArgs struct {
	Project     uint64 `yaml:"project"`
	Amount      Amount `yaml:"amount"`
	Currency    string `yaml:"currency"`
	MinReturned Amount `yaml:"min_returned"`
}

type redeemArgs struct {
	Project        uint64 `yaml:"project"`
	Holder         string `yaml:"holder"`
	Count          Amount `yaml:"count"`
	MinReturned    Amount `yaml:"min_returned"`
	Beneficiary    string `yaml:"beneficiary"`
	PreferUnstaked bool   `yaml:"prefer_unstaked"`
}

type projectArgs struct {
	Project uint64 `yaml:"project"`
}

type migrateArgs struct {
	Project uint64 `yaml:"project"`
	To      string `yaml:"to"`
}

type balanceArgs struct {
	Project uint64 `yaml:"project"`
	Amount  Amount `yaml:"amount"`
}

type depositArgs struct {
	Address  string `yaml:"address"`
	Amount   Amount `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// setSplitsArgs addresses the current cycle's epoch when Domain is 0.
type setSplitsArgs struct {
	Project uint64      `yaml:"project"`
	Domain  int64       `yaml:"domain"`
	Group   string      `yaml:"group"`
	Splits  []splitArgs `yaml:"splits"`
}

type issueArgs struct {
	Project uint64 `yaml:"project"`
	Name    string `yaml:"name"`
	Symbol  string `yaml:"symbol"`
}

type claimArgs struct {
	Project uint64 `yaml:"project"`
	Holder  string `yaml:"holder"`
	Amount  Amount `yaml:"amount"`
}

type operatorArgs struct {
	Operator    string  `yaml:"operator"`
	Domain      uint64  `yaml:"domain"`
	Permissions []uint8 `yaml:"permissions"`
}

type terminalArgs struct {
	Terminal string `yaml:"terminal"`
}

type feedArgs struct {
	Currency string `yaml:"currency"`
	Base     string `yaml:"base"`
	Price    Amount `yaml:"price"`
}

type feeArgs struct {
	Fee uint64 `yaml:"fee"`
}

// expectArgs compares live values with the expected ones; omitted fields are skipped.
type expectArgs struct {
	Project     uint64            `yaml:"project"`
	Balance     *Amount           `yaml:"balance"`
	Overflow    *Amount           `yaml:"overflow"`
	Reserved    *Amount           `yaml:"reserved"`
	Supply      *Amount           `yaml:"supply"`
	CycleNumber uint64            `yaml:"cycle_number"`
	Tapped      *Amount           `yaml:"tapped"`
	Terminal    string            `yaml:"terminal"`
	Tokens      map[string]Amount `yaml:"tokens"`
	Wallets     map[string]Amount `yaml:"wallets"`
}

func parseGroup(s string) (fund.SplitGroup, error) {
	switch strings.ToLower(s) {
	case "", "payouts":
		return fund.GroupPayouts, nil
	case "reserved", "reserved_tokens":
		return fund.GroupReservedTokens, nil
	}
	return 0, fmt.Errorf("unknown split group %q", s)
}
