package planner

import (
	"testing"
	"time"

	"github.com/solyield/ysa/internal/config"
	"github.com/solyield/ysa/internal/types"
	"github.com/stretchr/testify/require"
)

func lowRiskOpportunity(protocol, pair string, apy float64) types.Opportunity {
	return types.Opportunity{
		Protocol: protocol,
		Pair:     pair,
		APY:      apy,
		TVL:      50_000_000,
		Category: types.CategoryDex,
	}
}

func TestBuildPlan(t *testing.T) {
	params := config.DefaultPipelineParameters
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	t.Run("builds a plan with consistent strategy figures", func(t *testing.T) {
		opportunities := []types.Opportunity{
			lowRiskOpportunity("orca", "SOL-USDC", 6),
			lowRiskOpportunity("raydium", "RAY-SOL", 9),
			lowRiskOpportunity("solend", "USDC", 4),
		}
		plan, err := BuildPlan(opportunities, 20_000, types.ToleranceConservative, "1 year", params, now)
		require.NoError(t, err)
		require.NotEmpty(t, plan.Allocations)
		require.Equal(t, len(plan.Allocations), plan.Strategy.TotalPositions)
		require.Equal(t, types.ToleranceConservative, plan.Strategy.RiskTolerance)
		require.Equal(t, "1 year", plan.Strategy.TimeHorizon)
		require.Equal(t, now.Format(time.RFC3339), plan.GeneratedAt)

		totalAmount := 0.0
		weightedAPY := 0.0
		for _, entry := range plan.Allocations {
			totalAmount += entry.AllocationAmount
			weightedAPY += entry.AllocationAmount * entry.ExpectedAPY
		}
		require.InDelta(t, 20_000, totalAmount, 1e-6)
		require.InDelta(t, weightedAPY/20_000, plan.Strategy.ExpectedAPY, 1e-9)
		require.InDelta(t, 20_000*plan.Strategy.ExpectedAPY/100, plan.Strategy.AnnualYieldUSD, 1e-6)

		// The blend of 4 to 9 percent positions must land inside that band.
		require.Greater(t, plan.Strategy.ExpectedAPY, 4.0)
		require.Less(t, plan.Strategy.ExpectedAPY, 9.0)
	})

	t.Run("conservative tolerance excludes risky pools", func(t *testing.T) {
		opportunities := []types.Opportunity{
			lowRiskOpportunity("solend", "USDC", 5),
			{Protocol: "newfarm", Pair: "X-Y", APY: 40, TVL: 200_000, Category: types.CategoryOther},
		}
		plan, err := BuildPlan(opportunities, 10_000, types.ToleranceConservative, "1 year", params, now)
		require.NoError(t, err)
		require.Len(t, plan.Allocations, 1)
		require.Equal(t, "solend", plan.Allocations[0].Protocol)
		require.InDelta(t, 100, plan.Allocations[0].AllocationPercentage, 1e-9)
		require.InDelta(t, 10_000, plan.Allocations[0].AllocationAmount, 1e-9)
	})

	t.Run("empty allocation is a valid plan", func(t *testing.T) {
		opportunities := []types.Opportunity{
			{Protocol: "newfarm", Pair: "X-Y", APY: 40, TVL: 200_000, Category: types.CategoryOther},
		}
		plan, err := BuildPlan(opportunities, 10_000, types.ToleranceConservative, "1 year", params, now)
		require.NoError(t, err)
		require.Empty(t, plan.Allocations)
		require.Equal(t, 0, plan.Strategy.TotalPositions)
		require.Equal(t, 0.0, plan.Strategy.ExpectedAPY)
		require.Equal(t, 0.0, plan.Strategy.AnnualYieldUSD)
	})

	t.Run("invalid investment is rejected", func(t *testing.T) {
		opportunities := []types.Opportunity{lowRiskOpportunity("orca", "SOL-USDC", 6)}
		_, err := BuildPlan(opportunities, 0, types.ToleranceModerate, "1 year", params, now)
		require.ErrorIs(t, err, ErrInvalidInvestment)

		_, err = BuildPlan(opportunities, -500, types.ToleranceModerate, "1 year", params, now)
		require.ErrorIs(t, err, ErrInvalidInvestment)
	})

	t.Run("no opportunities is an error", func(t *testing.T) {
		_, err := BuildPlan(nil, 10_000, types.ToleranceModerate, "1 year", params, now)
		require.ErrorIs(t, err, ErrNoOpportunities)
	})

	t.Run("unknown tolerance is rejected", func(t *testing.T) {
		opportunities := []types.Opportunity{lowRiskOpportunity("orca", "SOL-USDC", 6)}
		_, err := BuildPlan(opportunities, 10_000, types.RiskTolerance("Reckless"), "1 year", params, now)
		require.ErrorIs(t, err, types.ErrUnknownRiskTolerance)
	})
}
