package router

import (
	"fmt"
	"slices"
)

// StrategyID selects a predefined allocation
type StrategyID int

// AllocationSplit maps a chain key to its percentage of the liquidity
type AllocationSplit map[string]int

// Total returns the sum of all percentages
func (s AllocationSplit) Total() int {
	total := 0
	for _, pct := range s {
		total += pct
	}
	return total
}

// Strategy is a named allocation split
type Strategy struct {
	ID          StrategyID
	Name        string
	Allocations AllocationSplit
}

// StrategyTable holds every strategy the portal offers.
// Splits are checked once on construction and are read-only afterwards.
type StrategyTable struct {
	strategies map[StrategyID]Strategy
	order      []StrategyID
	defaultID  StrategyID
}

// NewStrategyTable validates the strategies against the known chains.
// The strategy with the lowest id becomes the default.
func NewStrategyTable(strategies []Strategy, chains []PortalChain) (*StrategyTable, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("no strategies defined")
	}

	chainKeys := make(map[string]struct{}, len(chains))
	for _, chain := range chains {
		chainKeys[chain.Key] = struct{}{}
	}

	table := &StrategyTable{
		strategies: make(map[StrategyID]Strategy, len(strategies)),
		order:      make([]StrategyID, 0, len(strategies)),
	}

	for _, strategy := range strategies {
		if strategy.ID <= 0 {
			return nil, fmt.Errorf("strategy id must be positive, got %d", strategy.ID)
		}
		if _, exists := table.strategies[strategy.ID]; exists {
			return nil, fmt.Errorf("duplicate strategy id %d", strategy.ID)
		}
		if err := validateSplit(strategy.Allocations, chainKeys); err != nil {
			return nil, fmt.Errorf("strategy %d: %w", strategy.ID, err)
		}

		// copy so later changes to the input cannot break the invariant
		split := make(AllocationSplit, len(strategy.Allocations))
		for key, pct := range strategy.Allocations {
			split[key] = pct
		}
		strategy.Allocations = split

		table.strategies[strategy.ID] = strategy
		table.order = append(table.order, strategy.ID)
	}

	slices.Sort(table.order)
	table.defaultID = table.order[0]
	return table, nil
}

func validateSplit(split AllocationSplit, chainKeys map[string]struct{}) error {
	if len(split) == 0 {
		return fmt.Errorf("allocation split is empty")
	}
	for key, pct := range split {
		if _, ok := chainKeys[key]; !ok {
			return fmt.Errorf("allocation references unknown chain %q", key)
		}
		if pct < 0 || pct > 100 {
			return fmt.Errorf("allocation for %q must be between 0 and 100, got %d", key, pct)
		}
	}
	if total := split.Total(); total != 100 {
		return fmt.Errorf("allocations must sum to 100, got %d", total)
	}
	return nil
}

// Get returns the strategy with the given id
func (t *StrategyTable) Get(id StrategyID) (Strategy, bool) {
	strategy, ok := t.strategies[id]
	return strategy, ok
}

// List returns all strategies ordered by id
func (t *StrategyTable) List() []Strategy {
	out := make([]Strategy, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.strategies[id])
	}
	return out
}

// Default returns the id a new selector starts with
func (t *StrategyTable) Default() StrategyID {
	return t.defaultID
}
