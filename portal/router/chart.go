package router

import (
	"strings"

	"github.com/Cogwheel-Validator/liquidity-portal/portal/models"
)

const chartTitle = "Liquidity Split"

// BuildChart turns a strategy's split into pie chart data.
// Slices follow the configured chain order; chains without an allocation are skipped.
func BuildChart(strategy Strategy, chains []PortalChain) models.ChartResponse {
	slices := make([]models.ChartSlice, 0, len(strategy.Allocations))
	labels := make([]string, 0, len(strategy.Allocations))

	for _, chain := range chains {
		pct, ok := strategy.Allocations[chain.Key]
		if !ok {
			continue
		}
		slices = append(slices, models.ChartSlice{
			Chain:      chain.Key,
			Label:      chain.Name,
			Percentage: pct,
			Fill:       chain.ChartColor,
		})
		labels = append(labels, chain.Name)
	}

	return models.ChartResponse{
		StrategyID:  int(strategy.ID),
		Title:       chartTitle,
		Description: strings.Join(labels, " and "),
		Slices:      slices,
	}
}
