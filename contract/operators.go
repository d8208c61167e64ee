package contract

import (
	"fmt"
	"strconv"

	"juice_treasury/sdk"
)

// OperatorStore answers whether operator may act for account within a domain (project id,
// 0 for every project of the account).
type OperatorStore interface {
	HasPermission(operator, account sdk.Address, domain uint64, index uint8) bool
}

// Operators stores permission bitmasks keyed by operator, account and domain.
type Operators struct {
	state sdk.State
}

func NewOperators(state sdk.State) *Operators {
	return &Operators{state: state}
}

// SetOperator replaces the permissions account granted operator in domain. An empty
// list revokes everything.
func (o *Operators) SetOperator(account, operator sdk.Address, domain uint64, indexes []uint8) error {
	if !operator.IsValid() {
		return fmt.Errorf("%w: operator %q", ErrInvalidAddress, operator)
	}
	var mask uint64
	for _, idx := range indexes {
		if idx == 0 || idx > 63 {
			return fmt.Errorf("%w: permission index %d", ErrInvalidConfig, idx)
		}
		mask |= 1 << idx
	}
	key := operatorKey(operator, account, domain)
	if mask == 0 {
		if o.state.Get(key) != nil {
			o.state.Delete(key)
		}
		return nil
	}
	stateSetIfChanged(o.state, key, strconv.FormatUint(mask, 10))
	return nil
}

func (o *Operators) maskOf(operator, account sdk.Address, domain uint64) uint64 {
	ptr := o.state.Get(operatorKey(operator, account, domain))
	if ptr == nil || *ptr == "" {
		return 0
	}
	mask, err := strconv.ParseUint(*ptr, 10, 64)
	if err != nil {
		sdk.Abort("invalid operator mask")
	}
	return mask
}

// HasPermission checks the domain grant first and the wildcard domain 0 second.
func (o *Operators) HasPermission(operator, account sdk.Address, domain uint64, index uint8) bool {
	if index == 0 || index > 63 {
		return false
	}
	bit := uint64(1) << index
	if o.maskOf(operator, account, domain)&bit != 0 {
		return true
	}
	return domain != 0 && o.maskOf(operator, account, 0)&bit != 0
}
