/*

This file contains the tunable parameters for the yield analytics pipeline:
normalizer gating, outlier policy, risk scoring weights and thresholds, and
allocator sizing. Different sets of these parameters can exist for different
market regimes; the active set can be persisted and versioned.

*/

package types

// PipelineParameters holds every policy knob used by the pipeline. All APY
// values are percentage points.
type PipelineParameters struct {
	// --- Normalizer Gating ---
	MinTVLFloor float64 `json:"min_tvl_floor"` // Minimum TVL in USD for a raw record to become an Opportunity.

	// --- Outlier Policy ---
	MinAPY           float64 `json:"min_apy"`            // Hard lower APY bound. Always enforced, regardless of the statistical pass.
	MaxAPY           float64 `json:"max_apy"`            // Hard upper APY bound. Always enforced, regardless of the statistical pass.
	MinTVL           float64 `json:"min_tvl"`            // Hard TVL floor for the outlier filter (stricter than the normalizer floor).
	StdDevMultiplier float64 `json:"std_dev_multiplier"` // k in [mean-k*sigma, mean+k*sigma] for the statistical pass.

	// --- Risk Scoring ---
	// The three weights must sum to 1.0.
	TVLWeight         float64 `json:"tvl_weight"`          // Weight of the TVL confidence ramp in the composite score.
	ProtocolWeight    float64 `json:"protocol_weight"`     // Weight of the protocol reputation score.
	APYWeight         float64 `json:"apy_weight"`          // Weight of the APY sustainability proxy.
	TVLFullConfidence float64 `json:"tvl_full_confidence"` // TVL in USD at which the TVL sub-score saturates at 1.0.

	// Composite-score thresholds mapping to discrete tiers.
	LowRiskThreshold    float64 `json:"low_risk_threshold"`    // overall >= this => Low Risk
	MediumRiskThreshold float64 `json:"medium_risk_threshold"` // overall >= this => Medium Risk
	HighRiskThreshold   float64 `json:"high_risk_threshold"`   // overall >= this => High Risk, below => Very High Risk

	// --- Allocation ---
	MaxPositions int `json:"max_positions"` // Maximum number of positions in a suggested split.
}
