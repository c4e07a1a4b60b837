// Package input defines the human-readable configuration types that the hook
// deployers write. These configs are intentionally small: one TOML file per chain
// in chain_configs/ plus a strategies.toml, the config_manager handles the rest.
package input

// ChainInput is the human-readable chain configuration.
// This is parsed from TOML files in the chain_configs/ directory.
type ChainInput struct {
	Chain ChainMeta `toml:"chain"`
}

// ChainMeta contains the chain identification and the hook deployment.
type ChainMeta struct {
	// Required: Human-readable name (e.g., "Base Sepolia")
	Name string `toml:"name"`

	// Required: Short key used by strategies and the chart (e.g., "baseSepolia")
	Key string `toml:"key"`

	// Required: EVM chain id (e.g., 84532)
	ID uint64 `toml:"id"`

	// Required: Chain type - currently only "evm" is supported
	Type string `toml:"type"`

	// Hook contract deployed on this chain, 0x-prefixed.
	// May be left empty when a deployments directory is given to the generator.
	HookContract string `toml:"hook_contract"`

	// Required: Block explorer URL for this chain
	ExplorerURL string `toml:"explorer_url"`

	// Optional: CSS colour of this chain in the allocation chart (e.g., "hsl(var(--chart-1))")
	ChartColor string `toml:"chart_color,omitempty"`

	// Optional: Exactly one chain must be the default, it is used when no wallet is connected
	Default bool `toml:"default,omitempty"`

	// Optional: Account the node signs transfers with, the node's first account is used otherwise
	Sender string `toml:"sender,omitempty"`

	// Required: Native currency of the chain
	NativeCurrency CurrencyMeta `toml:"native_currency"`

	// JSON-RPC endpoints
	RPCs []APIEndpoint `toml:"rpcs"`
}

// CurrencyMeta describes the native currency for wallet setup.
type CurrencyMeta struct {
	Name     string `toml:"name"`
	Symbol   string `toml:"symbol"`
	Decimals int    `toml:"decimals"`
}

// APIEndpoint represents an RPC endpoint.
type APIEndpoint struct {
	// Required: Full URL of the endpoint
	URL string `toml:"url"`

	// Optional: Provider name (e.g., "Alchemy", "public")
	Provider string `toml:"provider,omitempty"`
}

// StrategiesInput is the strategies.toml file:
//
//	[[strategy]]
//	id = 1
//	name = "Base weighted"
//	allocations = { baseSepolia = 40, sepolia = 60 }
type StrategiesInput struct {
	Strategies []StrategyMeta `toml:"strategy"`
}

// StrategyMeta is one predefined allocation split.
type StrategyMeta struct {
	// Required: Positive, unique id the client selects by
	ID int `toml:"id"`

	// Required: Display name
	Name string `toml:"name"`

	// Required: Chain key to percentage, must sum to 100
	Allocations map[string]int `toml:"allocations"`
}

// ExplorerMeta lists the block explorers chain configs may link to.
type ExplorerMeta struct {
	AllowedExplorers []AllowedExplorer `toml:"allowed_explorers"`
}

type AllowedExplorer struct {
	Name            string `toml:"name"`
	BaseURL         string `toml:"base_url"`
	TransactionPath string `toml:"transaction_path"`
	AccountPath     string `toml:"account_path"`
}
