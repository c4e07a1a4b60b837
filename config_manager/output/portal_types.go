// Package output defines the generated configuration types for both the
// backend (portal) and frontend (client) applications.
package output

// PortalConfig contains all configuration needed by the portal backend.
// This is the top-level config that gets loaded at startup.
type PortalConfig struct {
	// Version of the config format
	Version string `json:"version" toml:"version"`

	// When this config was generated
	GeneratedAt string `json:"generated_at" toml:"generated_at"`

	// Chain used when no wallet is connected or the wallet is on an unsupported chain
	DefaultChainID uint64 `json:"default_chain_id" toml:"default_chain_id"`

	// Served chains, default chain first
	Chains []PortalChain `json:"chains" toml:"chains"`

	// Predefined allocation splits
	Strategies []PortalStrategy `json:"strategies" toml:"strategies"`
}

// PortalChain maps directly to the router.PortalChain type.
type PortalChain struct {
	Name string `json:"name" toml:"name"`

	// Short key used by strategies (e.g., "baseSepolia")
	Key string `json:"key" toml:"key"`

	// EVM chain id
	ID uint64 `json:"id" toml:"id"`

	// Hook contract, EIP-55 checksummed
	HookContract string `json:"hook_contract" toml:"hook_contract"`

	ExplorerURL string `json:"explorer_url" toml:"explorer_url"`
	ChartColor  string `json:"chart_color" toml:"chart_color"`

	// Account transfers are sent from, empty means the node's first account
	Sender string `json:"sender,omitempty" toml:"sender,omitempty"`

	// JSON-RPC endpoints used by the dispatcher
	RPCURLs []string `json:"rpc_urls" toml:"rpc_urls"`
}

// PortalStrategy maps directly to the router.Strategy type.
type PortalStrategy struct {
	ID          int            `json:"id" toml:"id"`
	Name        string         `json:"name" toml:"name"`
	Allocations map[string]int `json:"allocations" toml:"allocations"`
}
