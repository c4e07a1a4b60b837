package output

// ClientConfig contains all configuration needed by the frontend client application.
// This focuses on user-facing data like display names, wallet chain setup and explorer URLs.
type ClientConfig struct {
	// Version of the config format
	Version string `json:"version" toml:"version"`

	// When this config was generated
	GeneratedAt string `json:"generated_at" toml:"generated_at"`

	// Chain the wallet modal starts on
	DefaultChainID uint64 `json:"default_chain_id" toml:"default_chain_id"`

	// All chains available in the app, default first
	Chains []ClientChain `json:"chains" toml:"chains"`

	// Strategies offered in the selector
	Strategies []ClientStrategy `json:"strategies" toml:"strategies"`
}

// ClientChain contains chain information for the frontend wallet setup.
type ClientChain struct {
	Name string `json:"name" toml:"name"`
	Key  string `json:"key" toml:"key"`
	ID   uint64 `json:"id" toml:"id"`

	// Hex chain id as wallets expect it (e.g., "0x14a34")
	ChainIDHex string `json:"chain_id_hex" toml:"chain_id_hex"`

	HookContract string `json:"hook_contract" toml:"hook_contract"`

	NativeCurrency ClientCurrency `json:"native_currency" toml:"native_currency"`

	// Block explorer details
	ExplorerDetails ExplorerDetails `json:"explorer_details" toml:"explorer_details"`

	ChartColor string `json:"chart_color" toml:"chart_color"`

	// RPC endpoints for wallet connections
	RPCEndpoints []ClientEndpoint `json:"rpc_endpoints" toml:"rpc_endpoints"`
}

// ClientCurrency is the native currency shown by wallets
type ClientCurrency struct {
	Name     string `json:"name" toml:"name"`
	Symbol   string `json:"symbol" toml:"symbol"`
	Decimals int    `json:"decimals" toml:"decimals"`
}

// Explorer details for the client app such as url link to account and transaction
type ExplorerDetails struct {
	BaseUrl         string `json:"base_url" toml:"base_url"`
	AccountPath     string `json:"account_path" toml:"account_path"`
	TransactionPath string `json:"transaction_path" toml:"transaction_path"`
}

// ClientEndpoint represents an API endpoint for the frontend.
type ClientEndpoint struct {
	URL      string `json:"url" toml:"url"`
	Provider string `json:"provider,omitempty" toml:"provider,omitempty"`
}

// ClientStrategy is one option of the strategy selector
type ClientStrategy struct {
	ID     int           `json:"id" toml:"id"`
	Name   string        `json:"name" toml:"name"`
	Splits []ClientSplit `json:"splits" toml:"splits"`
}

// ClientSplit is one chain's share of a strategy, ordered like the chains
type ClientSplit struct {
	Chain      string `json:"chain" toml:"chain"`
	Percentage int    `json:"percentage" toml:"percentage"`
}
