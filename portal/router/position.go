package router

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Tick bounds of a UniswapV4 pool
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

// PositionLeg is the part of a position placed on one chain
type PositionLeg struct {
	ChainID      uint64
	ChainKey     string
	HookContract common.Address
	Percentage   int
	Liquidity    decimal.Decimal
}

// PositionPlan splits one liquidity position across the chains of a strategy
type PositionPlan struct {
	StrategyID StrategyID
	TickLower  int32
	TickUpper  int32
	Liquidity  decimal.Decimal
	Legs       []PositionLeg
}

// PositionInput is the raw liquidity form
type PositionInput struct {
	TickLower string
	TickUpper string
	Liquidity string
}

// PlanPosition validates the position form and splits the liquidity by the strategy.
// Legs are exact decimals; the last leg absorbs the remainder so the sum equals the input.
func PlanPosition(strategy Strategy, chains []PortalChain, input PositionInput) (*PositionPlan, error) {
	lower, err := parseTick("tick_lower", input.TickLower)
	if err != nil {
		return nil, err
	}
	upper, err := parseTick("tick_upper", input.TickUpper)
	if err != nil {
		return nil, err
	}
	if lower >= upper {
		return nil, fmt.Errorf("%w: tick_lower %d must be below tick_upper %d", ErrInvalidPosition, lower, upper)
	}

	liquidityRaw := strings.TrimSpace(input.Liquidity)
	if !decimalAmountPattern.MatchString(liquidityRaw) {
		return nil, fmt.Errorf("%w: liquidity %q is not a non-negative decimal", ErrInvalidPosition, input.Liquidity)
	}
	liquidity, err := decimal.NewFromString(strings.TrimSuffix(normalizeLeadingDot(liquidityRaw), "."))
	if err != nil {
		return nil, fmt.Errorf("%w: liquidity: %v", ErrInvalidPosition, err)
	}

	plan := &PositionPlan{
		StrategyID: strategy.ID,
		TickLower:  lower,
		TickUpper:  upper,
		Liquidity:  liquidity,
	}

	allocated := decimal.Zero
	for _, chain := range chains {
		pct, ok := strategy.Allocations[chain.Key]
		if !ok {
			continue
		}
		share := liquidity.Mul(decimal.NewFromInt(int64(pct))).Shift(-2)
		allocated = allocated.Add(share)
		plan.Legs = append(plan.Legs, PositionLeg{
			ChainID:      chain.Id,
			ChainKey:     chain.Key,
			HookContract: chain.HookContract,
			Percentage:   pct,
			Liquidity:    share,
		})
	}
	if len(plan.Legs) == 0 {
		return nil, fmt.Errorf("%w: strategy %d has no served chains", ErrInvalidPosition, strategy.ID)
	}

	last := &plan.Legs[len(plan.Legs)-1]
	last.Liquidity = last.Liquidity.Add(liquidity.Sub(allocated))

	return plan, nil
}

func parseTick(field, raw string) (int32, error) {
	tick, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidPosition, field, raw)
	}
	if int32(tick) < MinTick || int32(tick) > MaxTick {
		return 0, fmt.Errorf("%w: %s %d is outside [%d, %d]", ErrInvalidPosition, field, tick, MinTick, MaxTick)
	}
	return int32(tick), nil
}

func normalizeLeadingDot(s string) string {
	if strings.HasPrefix(s, ".") {
		return "0" + s
	}
	return s
}
