package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Empty is used for procedures that take no input
type Empty struct{}

// ClientConfigResponse carries what the web client needs to set up its wallet providers
type ClientConfigResponse struct {
	AppName                string        `json:"app_name"`                 // e.g., "UHI-CCLO"
	WalletConnectProjectID string        `json:"walletconnect_project_id"` // WalletConnect cloud project id
	DefaultChainID         uint64        `json:"default_chain_id"`         // Chain used when no wallet is connected
	Chains                 []ChainDetail `json:"chains"`                   // Supported chains in display order
}

// ChainDetail describes one supported chain for the client
type ChainDetail struct {
	ID           uint64 `json:"id"`            // e.g., 84532
	Key          string `json:"key"`           // e.g., "baseSepolia"
	Name         string `json:"name"`          // e.g., "Base Sepolia"
	HookContract string `json:"hook_contract"` // Liquidity hook contract on this chain
	ExplorerURL  string `json:"explorer_url,omitempty"`
}

// ChainInfoRequest asks for one served chain
type ChainInfoRequest struct {
	ChainID uint64 `json:"chain_id"`
}

// ResolveContractRequest - chain id is optional, nil means no wallet connected
type ResolveContractRequest struct {
	ChainID *uint64 `json:"chain_id,omitempty"`
}

// ResolveContractResponse is the contract the UI should display
type ResolveContractResponse struct {
	ChainID   uint64 `json:"chain_id"`   // Chain the address belongs to
	ChainName string `json:"chain_name"` // Display name of that chain
	Address   string `json:"address"`    // EIP-55 checksummed contract address
	Fallback  bool   `json:"fallback"`   // True if the requested chain was missing or unsupported
}

// StrategyInfo is one predefined allocation
type StrategyInfo struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Allocations map[string]int `json:"allocations"` // chain key -> percentage
}

// ListStrategiesResponse lists all strategies and the default one
type ListStrategiesResponse struct {
	DefaultID  int            `json:"default_id"`
	Strategies []StrategyInfo `json:"strategies"`
}

// SelectStrategyRequest updates the strategy of a session.
// Empty session id opens a new session.
type SelectStrategyRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Value     string `json:"value"` // Raw selection value, e.g. "1"
}

// SelectStrategyResponse reports the selection held by the session
type SelectStrategyResponse struct {
	SessionID  string `json:"session_id"`
	StrategyID int    `json:"strategy_id"`
}

// ChartRequest asks for the chart of a session's current strategy.
// Without a session the default strategy is charted.
type ChartRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// ChartSlice is one labelled piece of the pie
type ChartSlice struct {
	Chain      string `json:"chain"`      // chain key
	Label      string `json:"label"`      // display label
	Percentage int    `json:"percentage"` // 0..100
	Fill       string `json:"fill"`       // CSS colour
}

// ChartResponse is the pie chart for an allocation split
type ChartResponse struct {
	StrategyID  int          `json:"strategy_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Slices      []ChartSlice `json:"slices"`
}

// SubmitTransferRequest is the submitted form
type SubmitTransferRequest struct {
	ChainID *uint64 `json:"chain_id,omitempty"` // Connected chain, nil falls back to the default chain
	Address string  `json:"address"`            // Destination, 0x-prefixed hex
	Value   string  `json:"value"`              // Human decimal amount in ether, e.g. "1.5"
}

// SubmitTransferResponse reports the dispatched transfer
type SubmitTransferResponse struct {
	Handle     string `json:"handle"`      // Identifier returned by the transaction capability
	Dispatcher string `json:"dispatcher"`  // Name of the capability that accepted it
	ChainID    uint64 `json:"chain_id"`    // Chain the transfer was sent on
	To         string `json:"to"`          // Checksummed destination
	ValueWei   string `json:"value_wei"`   // Base units, decimal string
	ValueEther string `json:"value_ether"` // Normalised display amount
}

// PlanPositionRequest is the liquidity part of the form
type PlanPositionRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	StrategyID *int   `json:"strategy_id,omitempty"` // Overrides the session strategy when set
	TickLower  string `json:"tick_lower"`
	TickUpper  string `json:"tick_upper"`
	Liquidity  string `json:"liquidity"`
}

// PositionLegInfo is the share of a position placed on one chain
type PositionLegInfo struct {
	ChainID      uint64 `json:"chain_id"`
	Chain        string `json:"chain"`
	HookContract string `json:"hook_contract"`
	Percentage   int    `json:"percentage"`
	Liquidity    string `json:"liquidity"`
}

// PlanPositionResponse is the cross-chain split of a position
type PlanPositionResponse struct {
	StrategyID int               `json:"strategy_id"`
	TickLower  int32             `json:"tick_lower"`
	TickUpper  int32             `json:"tick_upper"`
	Liquidity  string            `json:"liquidity"`
	Legs       []PositionLegInfo `json:"legs"`
}

// ErrorResponse is the JSON body for failed form submissions
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// TransferRequest is handed to the transaction-submission capability
type TransferRequest struct {
	ChainID uint64
	To      common.Address
	Value   *big.Int // base units (wei)
}

// SubmissionHandle identifies a submitted transfer, e.g. a transaction hash
type SubmissionHandle string
