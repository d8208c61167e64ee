package contract

import (
	"fmt"

	"github.com/holiman/uint256"

	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

// AllocationData describes a payout share that was just transferred to an allocator.
type AllocationData struct {
	Amount        *uint256.Int
	Currency      sdk.Currency
	ProjectID     uint64
	ForwardedFrom sdk.Address
	Split         fund.Split
}

// Allocator receives payout split shares. Implementations may call back into the engine
// through c; their calls run nested inside the tap that paid them.
type Allocator interface {
	Allocate(c *Call, data AllocationData) error
}

// ForwardingAllocator pays everything it receives into another project, minting that
// project's tokens for the split beneficiary.
type ForwardingAllocator struct {
	Address   sdk.Address
	ProjectID uint64
}

func (a ForwardingAllocator) Allocate(c *Call, data AllocationData) error {
	beneficiary := data.Split.Beneficiary
	if beneficiary == "" {
		beneficiary = a.Address
	}
	memo := fmt.Sprintf("forwarded from project %d", data.ProjectID)
	_, err := c.Engine().Pay(a.Address, a.ProjectID, data.Amount, data.Currency, beneficiary, memo, data.Split.PreferClaimed)
	return err
}

// HoldingAllocator keeps what it receives in its wallet.
type HoldingAllocator struct{}

func (HoldingAllocator) Allocate(*Call, AllocationData) error { return nil }
