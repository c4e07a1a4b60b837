package router

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Resolution is the outcome of an address lookup
type Resolution struct {
	ChainID  uint64
	Address  common.Address
	Fallback bool // the requested chain was absent or not in the table
}

// AddressTable maps chain ids to the hook contract deployed on them.
// It is built once at startup and never mutated afterwards.
type AddressTable struct {
	addresses      map[uint64]common.Address
	defaultChainID uint64
}

// NewAddressTable builds the table from the configured chains.
// The default chain must be one of them.
func NewAddressTable(chains []PortalChain, defaultChainID uint64) (*AddressTable, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("no chains for address table")
	}

	addresses := make(map[uint64]common.Address, len(chains))
	for _, chain := range chains {
		if chain.Id == 0 {
			return nil, fmt.Errorf("chain %q has no chain id", chain.Name)
		}
		if _, exists := addresses[chain.Id]; exists {
			return nil, fmt.Errorf("duplicate chain id %d", chain.Id)
		}
		if chain.HookContract == (common.Address{}) {
			return nil, fmt.Errorf("chain %d has no hook contract", chain.Id)
		}
		addresses[chain.Id] = chain.HookContract
	}

	if _, ok := addresses[defaultChainID]; !ok {
		return nil, fmt.Errorf("default chain %d is not in the address table", defaultChainID)
	}

	return &AddressTable{
		addresses:      addresses,
		defaultChainID: defaultChainID,
	}, nil
}

// Resolve returns the contract for chainID, or the default chain's contract
// when chainID is nil or unknown. It never fails.
func (t *AddressTable) Resolve(chainID *uint64) Resolution {
	if chainID != nil {
		if address, ok := t.addresses[*chainID]; ok {
			return Resolution{ChainID: *chainID, Address: address}
		}
	}
	return Resolution{
		ChainID:  t.defaultChainID,
		Address:  t.addresses[t.defaultChainID],
		Fallback: true,
	}
}

// Lookup returns the contract for chainID without falling back
func (t *AddressTable) Lookup(chainID uint64) (common.Address, bool) {
	address, ok := t.addresses[chainID]
	return address, ok
}

// DefaultChainID returns the chain used for fallbacks
func (t *AddressTable) DefaultChainID() uint64 {
	return t.defaultChainID
}
