/*

This file contains the default parameters for the yield analytics pipeline.

These values are policy, not physics: they encode what the pipeline treats as
implausible, what it treats as trustworthy, and how concentrated a suggested
portfolio may be. Each knob is tunable and the active set can be replaced at
runtime through the parameters store.

*/

package config

import (
	"github.com/solyield/ysa/internal/types"
)

// DefaultPipelineParameters provides the baseline policy for normalization,
// outlier rejection, risk scoring, and allocation. These values are used when
// no active parameter set is found in the database during initialization.
var DefaultPipelineParameters = types.PipelineParameters{
	// --- Normalizer Gating ---
	MinTVLFloor: 1_000, // Reject pools under $1k TVL at ingestion.
	// Rationale: below this level the listing data is dominated by dust pools
	// and test deployments whose APY figures are meaningless. The floor is a
	// policy knob; the outlier filter applies a stricter one downstream.

	// --- Outlier Policy (APY in percentage points) ---
	MinAPY: 0.1, // Drop anything yielding under 0.1%.
	// Rationale: sub-0.1% entries are either stale listings or parked capital
	// with no analytical value for an allocation suggestion.

	MaxAPY: 50.0, // Drop anything claiming more than 50%.
	// Rationale: sustained yields above 50% on Solana pools are almost always
	// mis-parsed units, emissions spikes, or pools about to collapse. The hard
	// ceiling always applies, even when the statistical pass would keep them.

	MinTVL: 10_000, // Outlier filter requires $10k TVL.
	// Rationale: statistical APY analysis over tiny pools is noise; $10k is
	// the smallest size at which the yield figure reflects real activity.

	StdDevMultiplier: 2.0, // Statistical band of mean +/- 2 sigma.
	// Rationale: adapts the accepted band to the market regime of the day
	// instead of clipping everything at a fixed cutoff. Two sigma keeps the
	// band wide enough to survive generally-elevated markets while still
	// rejecting single-pool anomalies.

	// --- Risk Scoring ---
	TVLWeight:      0.3,
	ProtocolWeight: 0.4,
	APYWeight:      0.3,
	// Rationale: protocol reputation carries the largest weight because audits
	// and track record are the strongest exploit predictor; TVL and yield
	// shape split the remainder evenly. The triple must sum to 1.0.

	TVLFullConfidence: 10_000_000, // Linear ramp to full confidence at $10M TVL.
	// Rationale: above $10M a pool is large enough that further size adds
	// little additional safety signal.

	LowRiskThreshold:    0.8,
	MediumRiskThreshold: 0.6,
	HighRiskThreshold:   0.4,
	// Rationale: quartile-style cuts over the composite score. Anything under
	// 0.4 is never eligible for allocation regardless of tolerance.

	// --- Allocation ---
	MaxPositions: 5, // Bound suggested portfolios to five positions.
	// Rationale: the allocator is an explainable heuristic, not an optimizer.
	// Five positions keep the suggestion diversified but small enough that a
	// user can reason about every line of it.
}
