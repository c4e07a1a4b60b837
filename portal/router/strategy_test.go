package router_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	router "github.com/Cogwheel-Validator/liquidity-portal/portal/router"
	"github.com/zeebo/assert"
)

func TestStrategyTableSplitsSumTo100(t *testing.T) {
	table, err := router.NewStrategyTable(strategies, chains)
	assert.NoError(t, err)

	for _, strategy := range table.List() {
		assert.Equal(t, strategy.Allocations.Total(), 100)
	}
	assert.Equal(t, table.Default(), router.StrategyID(1))
}

func TestStrategyTableRejects(t *testing.T) {
	tests := []struct {
		name       string
		strategies []router.Strategy
	}{
		{"empty", nil},
		{"sum below 100", []router.Strategy{{ID: 1, Allocations: router.AllocationSplit{"baseSepolia": 40, "sepolia": 50}}}},
		{"sum above 100", []router.Strategy{{ID: 1, Allocations: router.AllocationSplit{"baseSepolia": 60, "sepolia": 60}}}},
		{"negative share", []router.Strategy{{ID: 1, Allocations: router.AllocationSplit{"baseSepolia": -10, "sepolia": 110}}}},
		{"unknown chain", []router.Strategy{{ID: 1, Allocations: router.AllocationSplit{"mainnet": 100}}}},
		{"no split", []router.Strategy{{ID: 1}}},
		{"zero id", []router.Strategy{{ID: 0, Allocations: router.AllocationSplit{"sepolia": 100}}}},
		{
			"duplicate id",
			[]router.Strategy{
				{ID: 1, Allocations: router.AllocationSplit{"sepolia": 100}},
				{ID: 1, Allocations: router.AllocationSplit{"baseSepolia": 100}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := router.NewStrategyTable(tt.strategies, chains)
			assert.Error(t, err)
		})
	}
}

func TestStrategyTableCopiesSplits(t *testing.T) {
	split := router.AllocationSplit{"baseSepolia": 40, "sepolia": 60}
	table, err := router.NewStrategyTable([]router.Strategy{{ID: 3, Allocations: split}}, chains)
	assert.NoError(t, err)

	split["sepolia"] = 90

	strategy, ok := table.Get(3)
	assert.True(t, ok)
	assert.Equal(t, strategy.Allocations["sepolia"], 60)
	assert.Equal(t, table.Default(), router.StrategyID(3))
}

func TestSelectorUpdate(t *testing.T) {
	table, err := router.NewStrategyTable(strategies, chains)
	assert.NoError(t, err)

	selector := router.NewStrategySelector(table)
	assert.Equal(t, selector.Current(), router.StrategyID(1))

	t.Run("numeric value", func(t *testing.T) {
		id, err := selector.Update("2")
		assert.NoError(t, err)
		assert.Equal(t, id, router.StrategyID(2))

		id, err = selector.Update(" 1 ")
		assert.NoError(t, err)
		assert.Equal(t, id, router.StrategyID(1))
	})

	t.Run("non numeric keeps previous", func(t *testing.T) {
		for _, raw := range []string{"abc", "", "1.5", "0x1"} {
			id, err := selector.Update(raw)
			assert.True(t, errors.Is(err, router.ErrInvalidStrategyInput))
			assert.Equal(t, id, router.StrategyID(1))
			assert.Equal(t, selector.Current(), router.StrategyID(1))
		}
	})

	t.Run("unknown id keeps previous", func(t *testing.T) {
		id, err := selector.Update("7")
		assert.True(t, errors.Is(err, router.ErrInvalidStrategyInput))
		assert.Equal(t, id, router.StrategyID(1))
	})
}

func TestSelectorConcurrentUpdates(t *testing.T) {
	table, err := router.NewStrategyTable(strategies, chains)
	assert.NoError(t, err)
	selector := router.NewStrategySelector(table)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = selector.Update("2")
			} else {
				_, _ = selector.Update("nope")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, selector.Current(), router.StrategyID(2))
}

func TestSelectorStore(t *testing.T) {
	table, err := router.NewStrategyTable(strategies, chains)
	assert.NoError(t, err)
	store := router.NewSelectorStore(table)

	first, _ := store.Open()
	second, selector := store.Open()
	assert.True(t, first != second)
	assert.Equal(t, store.Len(), 2)

	_, err = selector.Update("2")
	assert.NoError(t, err)

	got, err := store.Get(second)
	assert.NoError(t, err)
	assert.Equal(t, got.Current(), router.StrategyID(2))

	_, err = store.Get("nope")
	assert.True(t, errors.Is(err, router.ErrUnknownSession))

	assert.Equal(t, store.Prune(time.Hour), 0)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, store.Prune(time.Millisecond), 2)
	assert.Equal(t, store.Len(), 0)
}
