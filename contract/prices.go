package contract

import (
	"fmt"

	"github.com/holiman/uint256"

	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

// PriceOracle quotes how many units of currency one unit of base is worth, 18 decimals.
type PriceOracle interface {
	PriceFor(currency, base sdk.Currency) (*uint256.Int, error)
}

// PriceStore keeps fixed feeds in state; the protocol owner updates them.
type PriceStore struct {
	state sdk.State
}

func NewPriceStore(state sdk.State) *PriceStore {
	return &PriceStore{state: state}
}

// SetFeed registers price for the pair, replacing an older one.
// Example payload: SetFeed(sdk.CurrencyUSD, sdk.CurrencyETH, 2000e18)
func (p *PriceStore) SetFeed(currency, base sdk.Currency, price *uint256.Int) error {
	if currency == base {
		return fmt.Errorf("%w: feed for identical currencies", ErrInvalidConfig)
	}
	if price == nil || price.IsZero() {
		return fmt.Errorf("%w: zero price", ErrInvalidConfig)
	}
	setAmount(p.state, priceFeedKey(currency, base), price)
	return nil
}

// PriceFor answers identical pairs with 1, falls back to the inverted reverse feed and
// fails for unknown pairs.
func (p *PriceStore) PriceFor(currency, base sdk.Currency) (*uint256.Int, error) {
	if currency == base {
		return fund.WeightScale.Clone(), nil
	}
	if direct := getAmount(p.state, priceFeedKey(currency, base)); !direct.IsZero() {
		return direct, nil
	}
	if reverse := getAmount(p.state, priceFeedKey(base, currency)); !reverse.IsZero() {
		out, _ := fund.MulDiv(fund.WeightScale, fund.WeightScale, reverse)
		if out.IsZero() {
			return nil, fmt.Errorf("%w: %s/%s inverse rounds to zero", ErrPriceFeedNotFound, currency, base)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrPriceFeedNotFound, currency, base)
}

// convertAmount turns amount of from into units of to.
func convertAmount(oracle PriceOracle, amount *uint256.Int, from, to sdk.Currency) (*uint256.Int, error) {
	if from == to || amount.IsZero() {
		return amount.Clone(), nil
	}
	price, err := oracle.PriceFor(from, to)
	if err != nil {
		return nil, err
	}
	return fund.ConvertToBase(amount, price), nil
}
