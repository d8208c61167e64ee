package contract

import "juice_treasury/sdk"

// -----------------------------------------------------------------------------
// Permission Indexes
// -----------------------------------------------------------------------------

// Operators are granted these indexes per project (domain) by the account owning it.
const (
	PermissionConfigure     uint8 = 1
	PermissionSetSplits     uint8 = 2
	PermissionRedeem        uint8 = 3
	PermissionMigrate       uint8 = 4
	PermissionIssue         uint8 = 5
	PermissionClaim         uint8 = 6
	PermissionPrintReserved uint8 = 7
)

// -----------------------------------------------------------------------------
// Default/Fallback Values
// -----------------------------------------------------------------------------

const (
	FallbackFee             uint64 = 500
	FallbackTerminalAddress        = sdk.Address("contract:terminal-eth")
	FallbackGovernanceURI          = "ipfs://governance"
	MaxURILength                   = 500
	MaxMemoLength                  = 500
	MaxSplits                      = 64
)

// -----------------------------------------------------------------------------
// Counter Keys
// -----------------------------------------------------------------------------

const (
	// FundingCyclesCount holds the last issued funding cycle id.
	FundingCyclesCount = "count:fc"
	// ProjectsCount holds the last issued project id.
	ProjectsCount = "count:proj"
	// ProtocolConfigKey stores the pipe-delimited protocol config.
	ProtocolConfigKey = "cfg"
)
