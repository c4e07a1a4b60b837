package router_test

import (
	"testing"

	router "github.com/Cogwheel-Validator/liquidity-portal/portal/router"
	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/assert"
)

func TestResolveKnownChains(t *testing.T) {
	table, err := router.NewAddressTable(chains, baseSepoliaID)
	assert.NoError(t, err)

	for _, chain := range chains {
		id := chain.Id
		res := table.Resolve(&id)
		assert.Equal(t, res.ChainID, chain.Id)
		assert.Equal(t, res.Address, chain.HookContract)
		assert.False(t, res.Fallback)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	table, err := router.NewAddressTable(chains, baseSepoliaID)
	assert.NoError(t, err)

	unknown := []*uint64{nil, ptr(uint64(1)), ptr(uint64(137)), ptr(uint64(0))}
	for _, id := range unknown {
		res := table.Resolve(id)
		assert.Equal(t, res.ChainID, baseSepoliaID)
		assert.Equal(t, res.Address, baseSepoliaHook)
		assert.True(t, res.Fallback)
	}
}

func TestNewAddressTableRejects(t *testing.T) {
	tests := []struct {
		name      string
		chains    []router.PortalChain
		defaultID uint64
	}{
		{"no chains", nil, baseSepoliaID},
		{"missing default", chains, 1},
		{
			"duplicate id",
			[]router.PortalChain{chains[0], chains[0]},
			baseSepoliaID,
		},
		{
			"zero id",
			[]router.PortalChain{{Name: "zero", Key: "zero", HookContract: baseSepoliaHook}},
			0,
		},
		{
			"no hook",
			[]router.PortalChain{{Name: "empty", Key: "empty", Id: 5, HookContract: common.Address{}}},
			5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := router.NewAddressTable(tt.chains, tt.defaultID)
			assert.Error(t, err)
		})
	}
}

func TestLookupDoesNotFallBack(t *testing.T) {
	table, err := router.NewAddressTable(chains, baseSepoliaID)
	assert.NoError(t, err)

	address, ok := table.Lookup(sepoliaID)
	assert.True(t, ok)
	assert.Equal(t, address, sepoliaHook)

	_, ok = table.Lookup(1)
	assert.False(t, ok)
}

func ptr[T any](v T) *T {
	return &v
}
