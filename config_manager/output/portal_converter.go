package output

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/input"
	"github.com/ethereum/go-ethereum/common"
)

// ConfigVersion is written into every generated file
const ConfigVersion = "1.0.0"

// defaultChartColors are assigned in chain order when a chain has none
var defaultChartColors = []string{
	"hsl(var(--chart-1))",
	"hsl(var(--chart-2))",
	"hsl(var(--chart-3))",
	"hsl(var(--chart-4))",
	"hsl(var(--chart-5))",
}

// PortalConverter converts validated inputs to the portal format.
type PortalConverter struct{}

// NewPortalConverter creates a new portal converter.
func NewPortalConverter() *PortalConverter {
	return &PortalConverter{}
}

// Convert transforms the chain and strategy inputs into a portal config.
func (c *PortalConverter) Convert(
	chains map[uint64]*input.ChainInput,
	strategies *input.StrategiesInput,
) (*PortalConfig, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("no chains to convert")
	}
	if strategies == nil || len(strategies.Strategies) == 0 {
		return nil, fmt.Errorf("no strategies to convert")
	}

	ordered, defaultID, err := OrderChains(chains)
	if err != nil {
		return nil, err
	}

	config := &PortalConfig{
		Version:        ConfigVersion,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		DefaultChainID: defaultID,
		Chains:         make([]PortalChain, 0, len(ordered)),
		Strategies:     make([]PortalStrategy, 0, len(strategies.Strategies)),
	}

	for i, chain := range ordered {
		config.Chains = append(config.Chains, c.convertChain(chain, i))
	}

	for _, strategy := range strategies.Strategies {
		config.Strategies = append(config.Strategies, PortalStrategy{
			ID:          strategy.ID,
			Name:        strategy.Name,
			Allocations: maps.Clone(strategy.Allocations),
		})
	}
	slices.SortFunc(config.Strategies, func(a, b PortalStrategy) int {
		return a.ID - b.ID
	})

	return config, nil
}

func (c *PortalConverter) convertChain(chain input.ChainMeta, position int) PortalChain {
	portalChain := PortalChain{
		Name:         chain.Name,
		Key:          chain.Key,
		ID:           chain.ID,
		HookContract: common.HexToAddress(chain.HookContract).Hex(),
		ExplorerURL:  chain.ExplorerURL,
		ChartColor:   chartColor(chain, position),
		RPCURLs:      make([]string, 0, len(chain.RPCs)),
	}
	if chain.Sender != "" {
		portalChain.Sender = common.HexToAddress(chain.Sender).Hex()
	}
	for _, rpc := range chain.RPCs {
		portalChain.RPCURLs = append(portalChain.RPCURLs, rpc.URL)
	}
	return portalChain
}

// OrderChains returns the chains default first, the rest by ascending chain id.
func OrderChains(chains map[uint64]*input.ChainInput) ([]input.ChainMeta, uint64, error) {
	var defaultID uint64
	ids := make([]uint64, 0, len(chains))
	for id, chain := range chains {
		if chain.Chain.Default {
			if defaultID != 0 {
				return nil, 0, fmt.Errorf("chains %d and %d are both marked default", defaultID, id)
			}
			defaultID = id
		}
		ids = append(ids, id)
	}
	if defaultID == 0 {
		return nil, 0, fmt.Errorf("no default chain")
	}

	slices.SortFunc(ids, func(a, b uint64) int {
		switch {
		case a == defaultID:
			return -1
		case b == defaultID:
			return 1
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})

	ordered := make([]input.ChainMeta, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, chains[id].Chain)
	}
	return ordered, defaultID, nil
}

func chartColor(chain input.ChainMeta, position int) string {
	if chain.ChartColor != "" {
		return chain.ChartColor
	}
	return defaultChartColors[position%len(defaultChartColors)]
}
