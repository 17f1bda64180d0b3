/*

This file turns the current opportunity set into a full optimization plan:
risk-score each opportunity, hand the scored candidates to the allocator,
and summarize the resulting split into headline figures.

*/

package planner

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/solyield/ysa/internal/analyzer"
	"github.com/solyield/ysa/internal/config"
	"github.com/solyield/ysa/internal/logger"
	"github.com/solyield/ysa/internal/types"
)

var plannerLogger = logger.GetForComponent("planner")

var (
	ErrInvalidInvestment = errors.New("investment amount must be a positive finite number")
	ErrNoOpportunities   = errors.New("no opportunities available for planning")
)

// BuildPlan produces an optimization plan for one request. The opportunity
// set is filtered for outliers, risk-scored, allocated under the requested
// tolerance, and summarized. An empty allocation is a valid plan, not an
// error: it means nothing passed the tolerance gate.
func BuildPlan(
	opportunities []types.Opportunity,
	investment float64,
	tolerance types.RiskTolerance,
	timeHorizon string,
	params types.PipelineParameters,
	now time.Time,
) (types.OptimizationPlan, error) {
	if math.IsNaN(investment) || math.IsInf(investment, 0) || investment <= 0 {
		return types.OptimizationPlan{}, ErrInvalidInvestment
	}
	if len(opportunities) == 0 {
		return types.OptimizationPlan{}, ErrNoOpportunities
	}

	filtered, err := analyzer.FilterOutliers(opportunities, params)
	if err != nil {
		return types.OptimizationPlan{}, fmt.Errorf("failed to filter opportunities: %w", err)
	}

	candidates, err := scoreCandidates(filtered, params)
	if err != nil {
		return types.OptimizationPlan{}, err
	}

	allocations, err := analyzer.Allocate(candidates, investment, tolerance, params)
	if err != nil {
		return types.OptimizationPlan{}, err
	}

	plan := types.OptimizationPlan{
		Strategy:    summarizeStrategy(allocations, investment, tolerance, timeHorizon),
		Allocations: allocations,
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}

	plannerLogger.Info().
		Str("tolerance", string(tolerance)).
		Float64("investment", investment).
		Int("positions", len(allocations)).
		Float64("expectedAPY", plan.Strategy.ExpectedAPY).
		Msg("Optimization plan built")

	return plan, nil
}

// scoreCandidates attaches a risk assessment to each opportunity. An
// opportunity the scorer rejects is dropped rather than failing the plan;
// parameter-level failures abort.
func scoreCandidates(opportunities []types.Opportunity, params types.PipelineParameters) ([]types.AllocationCandidate, error) {
	if err := analyzer.ValidateRiskParameters(params); err != nil {
		return nil, fmt.Errorf("invalid risk parameters: %w", err)
	}

	candidates := make([]types.AllocationCandidate, 0, len(opportunities))
	for _, opp := range opportunities {
		assessment, err := analyzer.CalculateRiskScore(opp.Protocol, opp.TVL, opp.APY, opp.APYMean30d, params)
		if err != nil {
			plannerLogger.Warn().
				Err(err).
				Str("protocol", opp.Protocol).
				Str("pair", opp.Pair).
				Msg("Dropping unscoreable opportunity from plan")
			continue
		}
		candidates = append(candidates, types.AllocationCandidate{
			Protocol:   opp.Protocol,
			Pair:       opp.Pair,
			APY:        opp.APY,
			TVL:        opp.TVL,
			AuditScore: config.LookupAuditScore(opp.Protocol),
			RiskLevel:  assessment.RiskLevel,
		})
	}
	return candidates, nil
}

// summarizeStrategy computes the headline figures for a plan. Expected APY
// is capital weighted over the final amounts, so a plan with no positions
// reports zero yield.
func summarizeStrategy(
	allocations []types.AllocationEntry,
	investment float64,
	tolerance types.RiskTolerance,
	timeHorizon string,
) types.StrategySummary {
	weightedAPY := 0.0
	for _, entry := range allocations {
		weightedAPY += entry.AllocationAmount * entry.ExpectedAPY
	}
	expectedAPY := weightedAPY / investment

	return types.StrategySummary{
		ExpectedAPY:    expectedAPY,
		AnnualYieldUSD: investment * expectedAPY / 100.0,
		TotalPositions: len(allocations),
		RiskTolerance:  tolerance,
		TimeHorizon:    timeHorizon,
	}
}
