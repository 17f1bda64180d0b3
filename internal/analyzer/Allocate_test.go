package analyzer

import (
	"math"
	"testing"

	"github.com/solyield/ysa/internal/config"
	"github.com/solyield/ysa/internal/types"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	params := config.DefaultPipelineParameters

	t.Run("amounts sum to investment and percentages to 100", func(t *testing.T) {
		candidates := []types.AllocationCandidate{
			{Protocol: "orca", Pair: "SOL-USDC", APY: 8, TVL: 20_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
			{Protocol: "raydium", Pair: "RAY-SOL", APY: 12, TVL: 5_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelMedium},
			{Protocol: "solend", Pair: "USDC", APY: 4, TVL: 30_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
		}
		entries, err := Allocate(candidates, 25_000, types.ToleranceModerate, params)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		totalAmount := 0.0
		totalPct := 0.0
		for _, e := range entries {
			totalAmount += e.AllocationAmount
			totalPct += e.AllocationPercentage
		}
		require.InDelta(t, 25_000, totalAmount, 1e-6)
		require.InDelta(t, 100, totalPct, 1e-6)
	})

	t.Run("risk tolerance gates candidates", func(t *testing.T) {
		lowRisk := types.AllocationCandidate{Protocol: "solend", Pair: "USDC", APY: 5, TVL: 50_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow}
		highRisk := types.AllocationCandidate{Protocol: "newfarm", Pair: "X-Y", APY: 40, TVL: 200_000, AuditScore: 0.5, RiskLevel: types.RiskLevelHigh}

		entries, err := Allocate([]types.AllocationCandidate{lowRisk, highRisk}, 10_000, types.ToleranceConservative, params)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "solend", entries[0].Protocol)
		require.InDelta(t, 100, entries[0].AllocationPercentage, 1e-9)
		require.InDelta(t, 10_000, entries[0].AllocationAmount, 1e-9)

		entries, err = Allocate([]types.AllocationCandidate{lowRisk, highRisk}, 10_000, types.ToleranceAggressive, params)
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("very high risk is never eligible", func(t *testing.T) {
		candidates := []types.AllocationCandidate{
			{Protocol: "sketch", Pair: "X-Y", APY: 45, TVL: 50_000, AuditScore: 0.5, RiskLevel: types.RiskLevelVeryHigh},
		}
		entries, err := Allocate(candidates, 10_000, types.ToleranceAggressive, params)
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("no eligible candidates is empty, not an error", func(t *testing.T) {
		candidates := []types.AllocationCandidate{
			{Protocol: "a", Pair: "X", APY: 20, TVL: 100_000, AuditScore: 0.5, RiskLevel: types.RiskLevelHigh},
		}
		entries, err := Allocate(candidates, 10_000, types.ToleranceConservative, params)
		require.NoError(t, err)
		require.NotNil(t, entries)
		require.Empty(t, entries)
	})

	t.Run("ranked by weight before the top-N cut", func(t *testing.T) {
		// Six low-risk candidates; the lowest-weight one must be the one cut.
		candidates := []types.AllocationCandidate{
			{Protocol: "p1", Pair: "A", APY: 1, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
			{Protocol: "p2", Pair: "B", APY: 6, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
			{Protocol: "p3", Pair: "C", APY: 5, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
			{Protocol: "p4", Pair: "D", APY: 4, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
			{Protocol: "p5", Pair: "E", APY: 3, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
			{Protocol: "p6", Pair: "F", APY: 2, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
		}
		entries, err := Allocate(candidates, 10_000, types.ToleranceConservative, params)
		require.NoError(t, err)
		require.Len(t, entries, params.MaxPositions)

		for _, e := range entries {
			require.NotEqual(t, "p1", e.Protocol)
		}
		// Entries come back in weight order, largest first.
		for i := 1; i < len(entries); i++ {
			require.GreaterOrEqual(t, entries[i-1].ExpectedAPY, entries[i].ExpectedAPY)
		}
	})

	t.Run("higher weight receives larger share", func(t *testing.T) {
		candidates := []types.AllocationCandidate{
			{Protocol: "big", Pair: "A", APY: 10, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
			{Protocol: "small", Pair: "B", APY: 5, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
		}
		entries, err := Allocate(candidates, 15_000, types.ToleranceConservative, params)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "big", entries[0].Protocol)
		// 10:5 weight ratio means a 2:1 capital split.
		require.InDelta(t, 10_000, entries[0].AllocationAmount, 1e-6)
		require.InDelta(t, 5_000, entries[1].AllocationAmount, 1e-6)
	})

	t.Run("zero total weight produces no allocations", func(t *testing.T) {
		candidates := []types.AllocationCandidate{
			{Protocol: "a", Pair: "X", APY: 0, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
			{Protocol: "b", Pair: "Y", APY: 5, TVL: 1_000_000, AuditScore: 0, RiskLevel: types.RiskLevelLow},
		}
		entries, err := Allocate(candidates, 10_000, types.ToleranceConservative, params)
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("invalid investment is rejected", func(t *testing.T) {
		candidates := []types.AllocationCandidate{
			{Protocol: "a", Pair: "X", APY: 5, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
		}
		for _, investment := range []float64{0, -100, math.NaN(), math.Inf(1)} {
			_, err := Allocate(candidates, investment, types.ToleranceModerate, params)
			require.ErrorIs(t, err, ErrInvalidInvestment)
		}
	})

	t.Run("unknown tolerance is rejected", func(t *testing.T) {
		candidates := []types.AllocationCandidate{
			{Protocol: "a", Pair: "X", APY: 5, TVL: 1_000_000, AuditScore: 0.9, RiskLevel: types.RiskLevelLow},
		}
		_, err := Allocate(candidates, 10_000, types.RiskTolerance("YOLO"), params)
		require.ErrorIs(t, err, types.ErrUnknownRiskTolerance)
	})
}
