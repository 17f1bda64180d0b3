package analyzer

import (
	"testing"

	"github.com/solyield/ysa/internal/types"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t.Run("aggregates counts totals and averages", func(t *testing.T) {
		input := []types.Opportunity{
			{Protocol: "orca", Pair: "SOL-USDC", APY: 4, TVL: 10_000_000, Category: types.CategoryDex},
			{Protocol: "orca", Pair: "ORCA-SOL", APY: 8, TVL: 2_000_000, Category: types.CategoryDex},
			{Protocol: "solend", Pair: "USDC", APY: 3, TVL: 30_000_000, Category: types.CategoryLending},
		}
		summary := Summarize(input)

		require.Equal(t, 3, summary.TotalCount)
		require.Equal(t, 2, summary.TotalProtocols)
		require.InDelta(t, 42_000_000, summary.TotalTVL, 1e-6)
		require.InDelta(t, 5.0, summary.AverageAPY, 1e-9)
		require.Equal(t, map[string]int{"dex": 2, "lending": 1}, summary.Categories)
		require.Equal(t, map[string]float64{"solend": 30_000_000, "orca": 12_000_000}, summary.TopProtocols)
	})

	t.Run("top protocols bounded to five", func(t *testing.T) {
		input := make([]types.Opportunity, 0, 7)
		names := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}
		for i, name := range names {
			input = append(input, types.Opportunity{
				Protocol: name,
				Pair:     "X",
				APY:      5,
				TVL:      float64((i + 1) * 1_000_000),
				Category: types.CategoryOther,
			})
		}
		summary := Summarize(input)

		require.Len(t, summary.TopProtocols, 5)
		require.NotContains(t, summary.TopProtocols, "p1")
		require.NotContains(t, summary.TopProtocols, "p2")
		require.Contains(t, summary.TopProtocols, "p7")
	})

	t.Run("empty input gives empty summary", func(t *testing.T) {
		summary := Summarize(nil)
		require.Equal(t, 0, summary.TotalCount)
		require.Equal(t, 0.0, summary.TotalTVL)
		require.Equal(t, 0.0, summary.AverageAPY)
		require.Empty(t, summary.Categories)
		require.Empty(t, summary.TopProtocols)
	})
}
