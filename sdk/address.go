package sdk

import "strings"

type AddressDomain string

const (
	AddressDomainUser     AddressDomain = "user"
	AddressDomainContract AddressDomain = "contract"
	AddressDomainSystem   AddressDomain = "system"
)

type AddressType string

const (
	AddressTypeEVM      AddressType = "evm"
	AddressTypeKey      AddressType = "key"
	AddressTypeHive     AddressType = "hive"
	AddressTypeSystem   AddressType = "system"
	AddressTypeContract AddressType = "contract"
	AddressTypeUnknown  AddressType = "unknown"
)

// Address is the literal account identifier (hive:alice, contract:terminal-eth, ...).
type Address string

func (a Address) String() string {
	return string(a)
}

// Domain separates wallets owned by people from terminals, allocators and ballots.
func (a Address) Domain() AddressDomain {
	if strings.HasPrefix(a.String(), "system:") {
		return AddressDomainSystem
	}
	if strings.HasPrefix(a.String(), "contract:") {
		return AddressDomainContract
	}
	return AddressDomainUser
}

// Type classifies the address by its scheme prefix.
func (a Address) Type() AddressType {
	s := a.String()
	switch {
	case strings.HasPrefix(s, "did:pkh:eip155"):
		return AddressTypeEVM
	case strings.HasPrefix(s, "did:key:"):
		return AddressTypeKey
	case strings.HasPrefix(s, "hive:"):
		return AddressTypeHive
	case strings.HasPrefix(s, "system:"):
		return AddressTypeSystem
	case strings.HasPrefix(s, "contract:"):
		return AddressTypeContract
	default:
		return AddressTypeUnknown
	}
}

// IsValid rejects unknown schemes and a bare prefix such as "hive:".
func (a Address) IsValid() bool {
	return a.Type() != AddressTypeUnknown && !strings.HasSuffix(a.String(), ":")
}
