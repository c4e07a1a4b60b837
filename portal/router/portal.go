package router

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Cogwheel-Validator/liquidity-portal/portal/models"
	"github.com/rs/zerolog"
)

var portalLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	portalLog = zerolog.New(out).With().Timestamp().Str("component", "portal").Logger()
}

// SetLogger replaces the component logger
func SetLogger(l zerolog.Logger) {
	portalLog = l.With().Str("component", "portal").Logger()
}

// Dispatcher is the transaction-submission capability the portal hands transfers to.
// Implementations own signing, approval, confirmation and any retries.
type Dispatcher interface {
	// Dispatch submits a value transfer and returns an identifier for it without waiting for inclusion
	Dispatch(ctx context.Context, req models.TransferRequest) (models.SubmissionHandle, error)

	// Name identifies the capability in responses and logs (e.g., "rpc", "dry-run")
	Name() string
}

// Portal ties the static tables together with the per-session strategy state
type Portal struct {
	chains     []PortalChain
	chainsMap  map[uint64]PortalChain
	addresses  *AddressTable
	strategies *StrategyTable
	sessions   *SelectorStore
	dispatcher Dispatcher
}

// NewPortal validates the configured tables and creates the portal
func NewPortal(
	chains []PortalChain,
	strategies []Strategy,
	defaultChainID uint64,
	dispatcher Dispatcher,
) (*Portal, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	addresses, err := NewAddressTable(chains, defaultChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build address table: %w", err)
	}

	strategyTable, err := NewStrategyTable(strategies, chains)
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy table: %w", err)
	}

	chainsMap := make(map[uint64]PortalChain, len(chains))
	for _, chain := range chains {
		chainsMap[chain.Id] = chain
	}

	return &Portal{
		chains:     chains,
		chainsMap:  chainsMap,
		addresses:  addresses,
		strategies: strategyTable,
		sessions:   NewSelectorStore(strategyTable),
		dispatcher: dispatcher,
	}, nil
}

// ResolveContract returns the hook contract for the connected chain
func (p *Portal) ResolveContract(chainID *uint64) Resolution {
	res := p.addresses.Resolve(chainID)
	if res.Fallback && chainID != nil {
		portalLog.Warn().
			Uint64("requested", *chainID).
			Uint64("fallback", res.ChainID).
			Msg("Unsupported chain, falling back to default contract")
	}
	return res
}

// GetChainInfo returns a served chain by id
func (p *Portal) GetChainInfo(chainID uint64) (PortalChain, error) {
	chain, ok := p.chainsMap[chainID]
	if !ok {
		return PortalChain{}, fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	return chain, nil
}

// Chains returns the served chains in configured order
func (p *Portal) Chains() []PortalChain {
	return p.chains
}

// DefaultChainID returns the chain used when no wallet is connected
func (p *Portal) DefaultChainID() uint64 {
	return p.addresses.DefaultChainID()
}

// Strategies returns the strategy table
func (p *Portal) Strategies() *StrategyTable {
	return p.strategies
}

// Sessions returns the per-client selector store
func (p *Portal) Sessions() *SelectorStore {
	return p.sessions
}

// SelectStrategy updates the selection of a session, opening one when sessionID is empty.
// A new session is only stored once its first selection is accepted.
func (p *Portal) SelectStrategy(sessionID, raw string) (string, StrategyID, error) {
	var selector *StrategySelector
	if sessionID == "" {
		selector = NewStrategySelector(p.strategies)
	} else {
		var err error
		selector, err = p.sessions.Get(sessionID)
		if err != nil {
			return sessionID, 0, err
		}
	}

	id, err := selector.Update(raw)
	if err != nil {
		portalLog.Debug().
			Str("session", sessionID).
			Str("value", raw).
			Int("retained", int(id)).
			Msg("Rejected strategy selection")
		return sessionID, id, err
	}

	if sessionID == "" {
		sessionID = p.sessions.add(selector)
	}
	return sessionID, id, nil
}

// CurrentStrategy returns the strategy of a session, or the default without a session
func (p *Portal) CurrentStrategy(sessionID string) (Strategy, error) {
	id := p.strategies.Default()
	if sessionID != "" {
		selector, err := p.sessions.Get(sessionID)
		if err != nil {
			return Strategy{}, err
		}
		id = selector.Current()
	}
	strategy, _ := p.strategies.Get(id)
	return strategy, nil
}

// Chart returns the pie chart of a session's strategy
func (p *Portal) Chart(sessionID string) (models.ChartResponse, error) {
	strategy, err := p.CurrentStrategy(sessionID)
	if err != nil {
		return models.ChartResponse{}, err
	}
	return BuildChart(strategy, p.chains), nil
}

// PlanPosition splits a liquidity position using the given or current strategy
func (p *Portal) PlanPosition(sessionID string, strategyID *int, input PositionInput) (*PositionPlan, error) {
	var strategy Strategy
	if strategyID != nil {
		var ok bool
		strategy, ok = p.strategies.Get(StrategyID(*strategyID))
		if !ok {
			return nil, fmt.Errorf("%w: strategy %d does not exist", ErrInvalidStrategyInput, *strategyID)
		}
	} else {
		var err error
		strategy, err = p.CurrentStrategy(sessionID)
		if err != nil {
			return nil, err
		}
	}
	return PlanPosition(strategy, p.chains, input)
}
