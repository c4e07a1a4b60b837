package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/output"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/router"
	"github.com/pelletier/go-toml/v2"
)

// ChainSet is the generated portal config converted to router types.
type ChainSet struct {
	Chains         []router.PortalChain
	Strategies     []router.Strategy
	DefaultChainID uint64
}

// ChainConfigLoader loads generated portal configurations and converts
// them to the router types used by the portal.
type ChainConfigLoader struct{}

// NewChainConfigLoader creates a new chain config loader.
func NewChainConfigLoader() *ChainConfigLoader {
	return &ChainConfigLoader{}
}

// LoadFromFile loads a portal config from a file and returns router-compatible types.
func (l *ChainConfigLoader) LoadFromFile(filePath string) (*ChainSet, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain config file: %w", err)
	}

	var portalConfig output.PortalConfig

	if strings.HasSuffix(filePath, ".json") {
		if err := json.Unmarshal(data, &portalConfig); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := toml.Unmarshal(data, &portalConfig); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	}

	return l.ConvertToRouterTypes(&portalConfig)
}

// ConvertToRouterTypes converts a PortalConfig to the router types.
// Addresses are parsed again so a hand-edited file cannot bring in a bad checksum.
func (l *ChainConfigLoader) ConvertToRouterTypes(config *output.PortalConfig) (*ChainSet, error) {
	if config == nil || len(config.Chains) == 0 {
		return nil, fmt.Errorf("no chains in config")
	}
	if len(config.Strategies) == 0 {
		return nil, fmt.Errorf("no strategies in config")
	}

	set := &ChainSet{
		Chains:         make([]router.PortalChain, len(config.Chains)),
		Strategies:     make([]router.Strategy, len(config.Strategies)),
		DefaultChainID: config.DefaultChainID,
	}

	for i, chain := range config.Chains {
		hook, err := router.ParseHexAddress(chain.HookContract)
		if err != nil {
			return nil, fmt.Errorf("chain %d hook_contract: %w", chain.ID, err)
		}

		set.Chains[i] = router.PortalChain{
			Name:         chain.Name,
			Key:          chain.Key,
			Id:           chain.ID,
			HookContract: hook,
			ChartColor:   chain.ChartColor,
			ExplorerURL:  chain.ExplorerURL,
			RPCURLs:      append([]string(nil), chain.RPCURLs...),
		}

		if chain.Sender != "" {
			sender, err := router.ParseHexAddress(chain.Sender)
			if err != nil {
				return nil, fmt.Errorf("chain %d sender: %w", chain.ID, err)
			}
			set.Chains[i].Sender = &sender
		}
	}

	for i, strategy := range config.Strategies {
		allocations := make(router.AllocationSplit, len(strategy.Allocations))
		for key, pct := range strategy.Allocations {
			allocations[key] = pct
		}
		set.Strategies[i] = router.Strategy{
			ID:          router.StrategyID(strategy.ID),
			Name:        strategy.Name,
			Allocations: allocations,
		}
	}

	return set, nil
}

// InitializePortal creates a fully initialized Portal from a config file.
func (l *ChainConfigLoader) InitializePortal(configPath string, dispatcher router.Dispatcher) (*router.Portal, error) {
	set, err := l.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain config: %w", err)
	}

	portal, err := router.NewPortal(set.Chains, set.Strategies, set.DefaultChainID, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal: %w", err)
	}
	return portal, nil
}
