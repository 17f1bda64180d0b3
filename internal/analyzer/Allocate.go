/*

This file contains the portfolio allocator: risk-tier gating, yield-times-
confidence weighting, bounded top-N selection, and double normalization so
that amounts always sum to the requested investment.

This is a deterministic, explainable heuristic, not a portfolio-optimization
solver. Candidates are ranked by raw weight (APY x audit score) before the
top-N cut; ties keep their input order.

*/

package analyzer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/solyield/ysa/internal/logger"
	"github.com/solyield/ysa/internal/types"
)

var allocLogger = logger.GetForComponent("allocator")

var ErrInvalidInvestment = errors.New("investment amount must be positive")
var ErrInvalidAllocationParameters = errors.New("invalid allocation parameters")

// Allocate computes a suggested capital split across the eligible subset of
// the given candidates. An empty result is "no feasible allocation", not an
// error; the caller decides how to surface it. An unrecognized tolerance or
// non-positive investment is an invalid-input error.
func Allocate(candidates []types.AllocationCandidate, investment float64, tolerance types.RiskTolerance, params types.PipelineParameters) ([]types.AllocationEntry, error) {
	if math.IsNaN(investment) || math.IsInf(investment, 0) || investment <= 0 {
		return nil, fmt.Errorf("%w: got %f", ErrInvalidInvestment, investment)
	}
	if params.MaxPositions <= 0 {
		return nil, fmt.Errorf("%w: MaxPositions must be positive", ErrInvalidAllocationParameters)
	}

	allowed, err := tolerance.AllowedRiskLevels()
	if err != nil {
		return nil, err
	}

	// Gate candidates by risk tier.
	eligible := make([]types.AllocationCandidate, 0, len(candidates))
	for _, c := range candidates {
		if allowed[c.RiskLevel] {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		allocLogger.Debug().
			Str("tolerance", string(tolerance)).
			Int("candidates", len(candidates)).
			Msg("No candidates eligible under risk tolerance")
		return []types.AllocationEntry{}, nil
	}

	// Rank by raw weight descending, then bound to the top N. Stable sort so
	// equal weights keep their input order.
	sort.SliceStable(eligible, func(i, j int) bool {
		return weightRaw(eligible[i]) > weightRaw(eligible[j])
	})
	if len(eligible) > params.MaxPositions {
		eligible = eligible[:params.MaxPositions]
	}

	// First pass: proportional shares over the selected set. The zero-sum
	// guard keeps an all-zero-yield selection from dividing by zero; it
	// produces zero allocations which are dropped below.
	totalWeight := 0.0
	for _, c := range eligible {
		totalWeight += weightRaw(c)
	}
	denominator := totalWeight
	if denominator <= 0 {
		denominator = 1.0
	}

	entries := make([]types.AllocationEntry, 0, len(eligible))
	for _, c := range eligible {
		amount := investment * (weightRaw(c) / denominator)
		if amount <= 0 {
			continue
		}
		entries = append(entries, types.AllocationEntry{
			Protocol:         c.Protocol,
			Pair:             c.Pair,
			AllocationAmount: amount,
			ExpectedAPY:      c.APY,
			RiskLevel:        c.RiskLevel,
		})
	}
	if len(entries) == 0 {
		return []types.AllocationEntry{}, nil
	}

	// Second pass: renormalize over the retained entries so percentages sum
	// to exactly 100 and amounts to exactly the investment, regardless of how
	// many candidates survived selection.
	totalAllocated := 0.0
	for _, e := range entries {
		totalAllocated += e.AllocationAmount
	}
	for i := range entries {
		share := entries[i].AllocationAmount / totalAllocated
		entries[i].AllocationPercentage = share * 100
		entries[i].AllocationAmount = share * investment
	}

	allocLogger.Debug().
		Str("tolerance", string(tolerance)).
		Float64("investment", investment).
		Int("eligible", len(eligible)).
		Int("positions", len(entries)).
		Msg("Allocation computed")

	return entries, nil
}

func weightRaw(c types.AllocationCandidate) float64 {
	w := c.APY * c.AuditScore
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	return w
}
