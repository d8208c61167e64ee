package contract

import (
	"strconv"
	"strings"

	"juice_treasury/sdk"
)

// -----------------------------------------------------------------------------
// Protocol Configuration State
// -----------------------------------------------------------------------------

// ProtocolConfig is written once by Bootstrap; the fee can be changed by the owner later.
type ProtocolConfig struct {
	Owner               sdk.Address
	Fee                 uint64
	GovernanceProjectID uint64
}

// isProtocolInitialized returns true once Bootstrap ran.
func isProtocolInitialized(st sdk.State) bool {
	ptr := st.Get(ProtocolConfigKey)
	return ptr != nil && *ptr != ""
}

// loadProtocolConfig loads the protocol configuration, nil before Bootstrap.
func loadProtocolConfig(st sdk.State) *ProtocolConfig {
	ptr := st.Get(ProtocolConfigKey)
	if ptr == nil || *ptr == "" {
		return nil
	}
	return decodeProtocolConfig(*ptr)
}

func saveProtocolConfig(st sdk.State, cfg *ProtocolConfig) {
	stateSetIfChanged(st, ProtocolConfigKey, encodeProtocolConfig(cfg))
}

// isProtocolOwner returns true if addr may call the protocol owner entry points.
func isProtocolOwner(st sdk.State, addr sdk.Address) bool {
	cfg := loadProtocolConfig(st)
	return cfg != nil && cfg.Owner == addr
}

// -----------------------------------------------------------------------------
// Protocol Config Encoding
// -----------------------------------------------------------------------------

// encodeProtocolConfig serializes the config to a pipe-delimited string.
// Format: owner|fee|governanceProjectID
func encodeProtocolConfig(cfg *ProtocolConfig) string {
	return cfg.Owner.String() + "|" +
		strconv.FormatUint(cfg.Fee, 10) + "|" +
		strconv.FormatUint(cfg.GovernanceProjectID, 10)
}

func decodeProtocolConfig(data string) *ProtocolConfig {
	parts := strings.Split(data, "|")
	if len(parts) != 3 {
		sdk.Abort("invalid protocol config")
	}
	fee, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		sdk.Abort("invalid protocol fee")
	}
	gov, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		sdk.Abort("invalid governance project")
	}
	return &ProtocolConfig{
		Owner:               sdk.Address(parts[0]),
		Fee:                 fee,
		GovernanceProjectID: gov,
	}
}
