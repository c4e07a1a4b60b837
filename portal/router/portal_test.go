package router_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Cogwheel-Validator/liquidity-portal/portal/models"
	router "github.com/Cogwheel-Validator/liquidity-portal/portal/router"
	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/assert"
)

const (
	baseSepoliaID uint64 = 84532
	sepoliaID     uint64 = 11155111
)

var (
	baseSepoliaHook = common.HexToAddress("0x696907c68D922c289582dA6c35E4c49E3df44800")
	sepoliaHook     = common.HexToAddress("0x92A1Fd49D8A7e6ecf3414754257bBF7652750800")
)

var chains = []router.PortalChain{
	{
		Name:         "Base Sepolia",
		Key:          "baseSepolia",
		Id:           baseSepoliaID,
		HookContract: baseSepoliaHook,
		ChartColor:   "hsl(var(--chart-1))",
		ExplorerURL:  "https://sepolia.basescan.org",
	},
	{
		Name:         "Sepolia",
		Key:          "sepolia",
		Id:           sepoliaID,
		HookContract: sepoliaHook,
		ChartColor:   "hsl(var(--chart-2))",
		ExplorerURL:  "https://sepolia.etherscan.io",
	},
}

var strategies = []router.Strategy{
	{
		ID:          1,
		Name:        "Base weighted",
		Allocations: router.AllocationSplit{"baseSepolia": 40, "sepolia": 60},
	},
	{
		ID:          2,
		Name:        "Even",
		Allocations: router.AllocationSplit{"baseSepolia": 50, "sepolia": 50},
	},
}

// recordingDispatcher keeps every request it receives
type recordingDispatcher struct {
	mu       sync.Mutex
	requests []models.TransferRequest
	err      error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, req models.TransferRequest) (models.SubmissionHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return "", d.err
	}
	d.requests = append(d.requests, req)
	return models.SubmissionHandle("0xhandle"), nil
}

func (d *recordingDispatcher) Name() string { return "recording" }

func (d *recordingDispatcher) calls() []models.TransferRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.TransferRequest(nil), d.requests...)
}

func newTestPortal(t *testing.T) (*router.Portal, *recordingDispatcher) {
	t.Helper()
	dispatcher := &recordingDispatcher{}
	p, err := router.NewPortal(chains, strategies, baseSepoliaID, dispatcher)
	assert.NoError(t, err)
	return p, dispatcher
}

func TestNewPortal(t *testing.T) {
	t.Run("requires dispatcher", func(t *testing.T) {
		_, err := router.NewPortal(chains, strategies, baseSepoliaID, nil)
		assert.Error(t, err)
	})

	t.Run("default chain must be served", func(t *testing.T) {
		_, err := router.NewPortal(chains, strategies, 1, &recordingDispatcher{})
		assert.Error(t, err)
	})

	t.Run("chains keep configured order", func(t *testing.T) {
		p, _ := newTestPortal(t)
		assert.Equal(t, len(p.Chains()), 2)
		assert.Equal(t, p.Chains()[0].Key, "baseSepolia")
		assert.Equal(t, p.DefaultChainID(), baseSepoliaID)
	})
}

func TestPortalResolveContract(t *testing.T) {
	p, _ := newTestPortal(t)

	id := sepoliaID
	res := p.ResolveContract(&id)
	assert.Equal(t, res.Address, sepoliaHook)
	assert.False(t, res.Fallback)

	unknown := uint64(1)
	res = p.ResolveContract(&unknown)
	assert.Equal(t, res.Address, baseSepoliaHook)
	assert.Equal(t, res.ChainID, baseSepoliaID)
	assert.True(t, res.Fallback)
}

func TestPortalSelectStrategy(t *testing.T) {
	p, _ := newTestPortal(t)

	session, id, err := p.SelectStrategy("", "2")
	assert.NoError(t, err)
	assert.Equal(t, id, router.StrategyID(2))
	assert.True(t, session != "")

	current, err := p.CurrentStrategy(session)
	assert.NoError(t, err)
	assert.Equal(t, current.ID, router.StrategyID(2))

	_, id, err = p.SelectStrategy(session, "abc")
	assert.True(t, errors.Is(err, router.ErrInvalidStrategyInput))
	assert.Equal(t, id, router.StrategyID(2))

	_, _, err = p.SelectStrategy("missing", "1")
	assert.True(t, errors.Is(err, router.ErrUnknownSession))
}

func TestPortalRejectedSelectionOpensNoSession(t *testing.T) {
	p, _ := newTestPortal(t)

	for range 100 {
		session, id, err := p.SelectStrategy("", "abc")
		assert.True(t, errors.Is(err, router.ErrInvalidStrategyInput))
		assert.Equal(t, session, "")
		assert.Equal(t, id, router.StrategyID(1))
	}
	assert.Equal(t, p.Sessions().Len(), 0)

	_, _, err := p.SelectStrategy("", "9")
	assert.True(t, errors.Is(err, router.ErrInvalidStrategyInput))
	assert.Equal(t, p.Sessions().Len(), 0)

	session, _, err := p.SelectStrategy("", "1")
	assert.NoError(t, err)
	assert.Equal(t, p.Sessions().Len(), 1)

	_, err = p.Sessions().Get(session)
	assert.NoError(t, err)
}

func TestPortalChartDefaultsWithoutSession(t *testing.T) {
	p, _ := newTestPortal(t)

	chart, err := p.Chart("")
	assert.NoError(t, err)
	assert.Equal(t, chart.StrategyID, 1)
	assert.Equal(t, len(chart.Slices), 2)

	_, err = p.Chart("missing")
	assert.True(t, errors.Is(err, router.ErrUnknownSession))
}

func TestPortalPlanPositionUnknownStrategy(t *testing.T) {
	p, _ := newTestPortal(t)

	missing := 9
	_, err := p.PlanPosition("", &missing, router.PositionInput{
		TickLower: "-60",
		TickUpper: "60",
		Liquidity: "1",
	})
	assert.True(t, errors.Is(err, router.ErrInvalidStrategyInput))
}
