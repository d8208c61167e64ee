package contract

import "juice_treasury/sdk"

const (
	// kFundingCycle stores encoded FundingCycle records by id.
	kFundingCycle byte = 0x01
	// kFundingCycleBase points a project at its latest approved, started record.
	kFundingCycleBase byte = 0x02
	// kFundingCyclePending points a project at its unstarted reconfiguration.
	kFundingCyclePending byte = 0x03
	// kSplits holds encoded split lists per project, epoch and group.
	kSplits byte = 0x04
	// kBalance is the per terminal project balance.
	kBalance byte = 0x05
	// kReservedTokens counts reserved tokens accrued but not yet distributed.
	kReservedTokens byte = 0x06
	// kTokenUnclaimed and kTokenClaimed hold holder balances.
	kTokenUnclaimed byte = 0x07
	kTokenClaimed   byte = 0x08
	// kTokenSupply holds the two supply totals of a project.
	kTokenSupply byte = 0x09
	// kTokenIssued marks that a claimable token was bound to the project.
	kTokenIssued byte = 0x0a
	// kFundingCyclePaid marks a cycle that received a payment.
	kFundingCyclePaid byte = 0x0b
	// kProject stores owner|uri per project.
	kProject byte = 0x10
	// kProjectTerminal is the directory entry of a project.
	kProjectTerminal byte = 0x11
	// kOperator stores a permission bitmask per operator, account and domain.
	kOperator byte = 0x12
	// kPriceFeed stores fixed prices per currency pair.
	kPriceFeed byte = 0x13
	// kMigrationAllowed flags terminals projects may migrate to.
	kMigrationAllowed byte = 0x14
)

// packU64LEInline sprinkles a uint64 into dst in little-endian order so our keys stay compact.
func packU64LEInline(x uint64, dst []byte) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(x >> 16)
	dst[3] = byte(x >> 24)
	dst[4] = byte(x >> 32)
	dst[5] = byte(x >> 40)
	dst[6] = byte(x >> 48)
	dst[7] = byte(x >> 56)
}

// packU64LE appends the encoded number to dst and returns the new slice.
func packU64LE(x uint64, dst []byte) []byte {
	return append(dst,
		byte(x),
		byte(x>>8),
		byte(x>>16),
		byte(x>>24),
		byte(x>>32),
		byte(x>>40),
		byte(x>>48),
		byte(x>>56),
	)
}

// idKey is the common prefix+u64 shape.
func idKey(prefix byte, id uint64) string {
	var buf [9]byte
	buf[0] = prefix
	packU64LEInline(id, buf[1:])
	return string(buf[:])
}

// idAddrKey mixes an id plus address bytes to avoid nested maps in host storage.
func idAddrKey(prefix byte, id uint64, addr sdk.Address) string {
	addrStr := addr.String()
	buf := make([]byte, 0, 1+8+len(addrStr))
	buf = append(buf, prefix)
	buf = packU64LE(id, buf)
	buf = append(buf, addrStr...)
	return string(buf)
}

func fundingCycleKey(id uint64) string {
	return idKey(kFundingCycle, id)
}

func fundingCycleBaseKey(projectID uint64) string {
	return idKey(kFundingCycleBase, projectID)
}

func fundingCyclePendingKey(projectID uint64) string {
	return idKey(kFundingCyclePending, projectID)
}

func fundingCyclePaidKey(id uint64) string {
	return idKey(kFundingCyclePaid, id)
}

func reservedTokensKey(projectID uint64) string {
	return idKey(kReservedTokens, projectID)
}

func projectKey(projectID uint64) string {
	return idKey(kProject, projectID)
}

func projectTerminalKey(projectID uint64) string {
	return idKey(kProjectTerminal, projectID)
}

func tokenIssuedKey(projectID uint64) string {
	return idKey(kTokenIssued, projectID)
}

// splitsKey appends the epoch and the group byte to the project prefix.
func splitsKey(projectID uint64, domain int64, group uint8) string {
	var buf [18]byte
	buf[0] = kSplits
	packU64LEInline(projectID, buf[1:])
	packU64LEInline(uint64(domain), buf[9:])
	buf[17] = group
	return string(buf[:])
}

// balanceKey scopes a project balance to the terminal holding it.
func balanceKey(terminal sdk.Address, projectID uint64) string {
	return idAddrKey(kBalance, projectID, terminal)
}

func tokenUnclaimedKey(projectID uint64, holder sdk.Address) string {
	return idAddrKey(kTokenUnclaimed, projectID, holder)
}

func tokenClaimedKey(projectID uint64, holder sdk.Address) string {
	return idAddrKey(kTokenClaimed, projectID, holder)
}

// tokenSupplyKey uses a trailing byte: 0 unclaimed, 1 claimed.
func tokenSupplyKey(projectID uint64, claimed bool) string {
	var buf [10]byte
	buf[0] = kTokenSupply
	packU64LEInline(projectID, buf[1:])
	if claimed {
		buf[9] = 1
	}
	return string(buf[:])
}

// operatorKey needs a separator since both addresses are variable length.
func operatorKey(operator, account sdk.Address, domain uint64) string {
	buf := make([]byte, 0, 1+8+len(operator)+1+len(account))
	buf = append(buf, kOperator)
	buf = packU64LE(domain, buf)
	buf = append(buf, operator.String()...)
	buf = append(buf, '|')
	buf = append(buf, account.String()...)
	return string(buf)
}

func priceFeedKey(currency, base sdk.Currency) string {
	return string([]byte{kPriceFeed, byte(currency), byte(base)})
}

func migrationAllowedKey(terminal sdk.Address) string {
	return string(append([]byte{kMigrationAllowed}, terminal.String()...))
}
