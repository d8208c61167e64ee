package contract

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"

	"juice_treasury/contract/fund"
	"juice_treasury/sdk"
)

// emitProjectLaunchedEvent lets explorers pick up new projects without scanning storage.
func emitProjectLaunchedEvent(h *sdk.Host, projectID uint64, owner sdk.Address) {
	h.Log(fmt.Sprintf(
		"pl|p:%d|by:%s",
		projectID,
		owner,
	))
}

// emitConfigureEvent carries the epoch so split watchers know which lists apply.
func emitConfigureEvent(h *sdk.Host, fc fund.FundingCycle, by sdk.Address) {
	h.Log(fmt.Sprintf(
		"cf|p:%d|fc:%d|n:%d|start:%s|cfg:%s|by:%s",
		fc.ProjectID,
		fc.ID,
		fc.Number,
		strconv.FormatInt(fc.Start, 10),
		strconv.FormatInt(fc.Configured, 10),
		by,
	))
}

func emitPayEvent(h *sdk.Host, projectID uint64, fcNumber uint64, payer, beneficiary sdk.Address, amount, tokens *uint256.Int, memo string) {
	h.Log(fmt.Sprintf(
		"pay|p:%d|n:%d|by:%s|to:%s|am:%s|tk:%s|m:%s",
		projectID,
		fcNumber,
		payer,
		beneficiary,
		amount.Dec(),
		tokens.Dec(),
		memo,
	))
}

// emitTapEvent records the gross withdrawal together with the fee and what reached the owner.
func emitTapEvent(h *sdk.Host, fc fund.FundingCycle, amount, tappedWei, fee, toOwner *uint256.Int, by sdk.Address) {
	h.Log(fmt.Sprintf(
		"tap|p:%d|fc:%d|am:%s|wei:%s|fee:%s|own:%s|by:%s",
		fc.ProjectID,
		fc.ID,
		amount.Dec(),
		tappedWei.Dec(),
		fee.Dec(),
		toOwner.Dec(),
		by,
	))
}

func emitSplitPaidEvent(h *sdk.Host, projectID uint64, group fund.SplitGroup, split fund.Split, amount *uint256.Int) {
	h.Log(fmt.Sprintf(
		"sp|p:%d|g:%s|to:%s|am:%s",
		projectID,
		group,
		describeSplit(split),
		amount.Dec(),
	))
}

func emitRedeemEvent(h *sdk.Host, projectID uint64, holder, beneficiary sdk.Address, count, claimed *uint256.Int) {
	h.Log(fmt.Sprintf(
		"rd|p:%d|by:%s|to:%s|tk:%s|am:%s",
		projectID,
		holder,
		beneficiary,
		count.Dec(),
		claimed.Dec(),
	))
}

func emitMigrateEvent(h *sdk.Host, projectID uint64, from, to sdk.Address, amount *uint256.Int) {
	h.Log(fmt.Sprintf(
		"mg|p:%d|from:%s|to:%s|am:%s",
		projectID,
		from,
		to,
		amount.Dec(),
	))
}

func emitAddToBalanceEvent(h *sdk.Host, projectID uint64, by sdk.Address, amount *uint256.Int) {
	h.Log(fmt.Sprintf(
		"ab|p:%d|by:%s|am:%s",
		projectID,
		by,
		amount.Dec(),
	))
}

// emitReservedDistributedEvent reports the total handed out and the part left for the owner.
func emitReservedDistributedEvent(h *sdk.Host, projectID uint64, total, toOwner *uint256.Int) {
	h.Log(fmt.Sprintf(
		"rs|p:%d|tk:%s|own:%s",
		projectID,
		total.Dec(),
		toOwner.Dec(),
	))
}

func emitSplitsSetEvent(h *sdk.Host, projectID uint64, domain int64, group fund.SplitGroup, count int) {
	h.Log(fmt.Sprintf(
		"ss|p:%d|d:%s|g:%s|n:%d",
		projectID,
		strconv.FormatInt(domain, 10),
		group,
		count,
	))
}

func emitProjectURIEvent(h *sdk.Host, projectID uint64, uri string) {
	h.Log(fmt.Sprintf("uri|p:%d|to:%s", projectID, uri))
}

func emitTokenIssuedEvent(h *sdk.Host, projectID uint64, symbol string) {
	h.Log(fmt.Sprintf("ti|p:%d|sym:%s", projectID, symbol))
}

func emitTokenClaimedEvent(h *sdk.Host, projectID uint64, holder sdk.Address, amount *uint256.Int) {
	h.Log(fmt.Sprintf("tc|p:%d|by:%s|am:%s", projectID, holder, amount.Dec()))
}

func emitOperatorSetEvent(h *sdk.Host, account, operator sdk.Address, domain uint64, indexes []uint8) {
	h.Log(fmt.Sprintf("op|by:%s|to:%s|d:%d|ix:%v", account, operator, domain, indexes))
}

// emitProtocolChangedEvent is the catch-all line for owner level changes (fee, feeds, allow-list).
func emitProtocolChangedEvent(h *sdk.Host, field, value string) {
	h.Log(fmt.Sprintf("pc|f:%s|v:%s", field, value))
}
