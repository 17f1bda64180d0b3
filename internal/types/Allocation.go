/*

This file contains the types produced by the portfolio allocator and the plan
builder. Allocation output is derived per request and never persisted.

*/

package types

// AllocationCandidate is one scored opportunity offered to the allocator.
type AllocationCandidate struct {
	Protocol   string    `json:"protocol"`
	Pair       string    `json:"pair"`
	APY        float64   `json:"apy"` // percentage points
	TVL        float64   `json:"tvl"`
	AuditScore float64   `json:"audit_score"`
	RiskLevel  RiskLevel `json:"risk_level"`
}

// AllocationEntry is one position in a suggested capital split.
// Across all entries of a plan, AllocationPercentage sums to 100 and
// AllocationAmount sums to the requested investment.
type AllocationEntry struct {
	Protocol             string    `json:"protocol"`
	Pair                 string    `json:"pair"`
	AllocationPercentage float64   `json:"allocation_percentage"`
	AllocationAmount     float64   `json:"allocation_amount"`
	ExpectedAPY          float64   `json:"expected_apy"` // percentage points
	RiskLevel            RiskLevel `json:"risk_level"`
}

// StrategySummary aggregates a plan into headline figures.
type StrategySummary struct {
	ExpectedAPY    float64       `json:"expected_apy"` // capital-weighted, percentage points
	AnnualYieldUSD float64       `json:"annual_yield"`
	TotalPositions int           `json:"total_positions"`
	RiskTolerance  RiskTolerance `json:"risk_tolerance"`
	TimeHorizon    string        `json:"time_horizon"`
}

// OptimizationPlan is the full response of a portfolio optimization request.
type OptimizationPlan struct {
	Strategy    StrategySummary   `json:"strategy"`
	Allocations []AllocationEntry `json:"allocations"`
	GeneratedAt string            `json:"generated_at"`
}
