package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/input"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ClientConverter converts validated inputs to frontend-compatible format.
type ClientConverter struct {
	allowedExplorers []input.AllowedExplorer
}

// ClientConverterOption configures the client converter.
type ClientConverterOption func(*ClientConverter)

// WithAllowedExplorers sets the explorers whose account and transaction paths are used.
func WithAllowedExplorers(explorers []input.AllowedExplorer) ClientConverterOption {
	return func(c *ClientConverter) {
		c.allowedExplorers = explorers
	}
}

// NewClientConverter creates a new client converter.
func NewClientConverter(opts ...ClientConverterOption) *ClientConverter {
	c := &ClientConverter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms the chain and strategy inputs into a client config.
func (c *ClientConverter) Convert(
	chains map[uint64]*input.ChainInput,
	strategies *input.StrategiesInput,
) (*ClientConfig, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("no chains to convert")
	}
	if strategies == nil {
		return nil, fmt.Errorf("no strategies to convert")
	}

	ordered, defaultID, err := OrderChains(chains)
	if err != nil {
		return nil, err
	}

	config := &ClientConfig{
		Version:        ConfigVersion,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		DefaultChainID: defaultID,
		Chains:         make([]ClientChain, 0, len(ordered)),
		Strategies:     make([]ClientStrategy, 0, len(strategies.Strategies)),
	}

	for i, chain := range ordered {
		config.Chains = append(config.Chains, c.convertChain(chain, i))
	}

	for _, strategy := range strategies.Strategies {
		clientStrategy := ClientStrategy{
			ID:     strategy.ID,
			Name:   strategy.Name,
			Splits: make([]ClientSplit, 0, len(strategy.Allocations)),
		}
		// splits follow chain order so the client can render them directly
		for _, chain := range ordered {
			if pct, ok := strategy.Allocations[chain.Key]; ok {
				clientStrategy.Splits = append(clientStrategy.Splits, ClientSplit{
					Chain:      chain.Key,
					Percentage: pct,
				})
			}
		}
		config.Strategies = append(config.Strategies, clientStrategy)
	}

	return config, nil
}

func (c *ClientConverter) convertChain(chain input.ChainMeta, position int) ClientChain {
	clientChain := ClientChain{
		Name:         chain.Name,
		Key:          chain.Key,
		ID:           chain.ID,
		ChainIDHex:   hexutil.EncodeUint64(chain.ID),
		HookContract: common.HexToAddress(chain.HookContract).Hex(),
		NativeCurrency: ClientCurrency{
			Name:     chain.NativeCurrency.Name,
			Symbol:   chain.NativeCurrency.Symbol,
			Decimals: chain.NativeCurrency.Decimals,
		},
		ExplorerDetails: c.explorerDetails(chain.ExplorerURL),
		ChartColor:      chartColor(chain, position),
		RPCEndpoints:    make([]ClientEndpoint, 0, len(chain.RPCs)),
	}

	for _, rpc := range chain.RPCs {
		clientChain.RPCEndpoints = append(clientChain.RPCEndpoints, ClientEndpoint{
			URL:      rpc.URL,
			Provider: rpc.Provider,
		})
	}

	return clientChain
}

// explorerDetails uses the allowed explorer's paths, falling back to the etherscan layout
func (c *ClientConverter) explorerDetails(url string) ExplorerDetails {
	details := ExplorerDetails{
		BaseUrl:         strings.TrimSuffix(url, "/"),
		AccountPath:     "/address/",
		TransactionPath: "/tx/",
	}

	domain := strings.Split(strings.TrimPrefix(url, "https://"), "/")[0]
	for _, explorer := range c.allowedExplorers {
		explorerDomain := strings.Split(strings.TrimPrefix(explorer.BaseURL, "https://"), "/")[0]
		if explorerDomain != domain {
			continue
		}
		if explorer.AccountPath != "" {
			details.AccountPath = explorer.AccountPath
		}
		if explorer.TransactionPath != "" {
			details.TransactionPath = explorer.TransactionPath
		}
		break
	}
	return details
}
