/*

This file contains the canonical opportunity model produced by the normalizer.
Everything downstream (outlier filter, risk scorer, allocator, summary stats)
operates on this type and assumes percentage-point APY units.

*/

package types

import "time"

// Category is the closed protocol classification for an opportunity.
// The normalizer always assigns one of these values, defaulting to
// CategoryOther for unrecognized protocols.
type Category string

const (
	CategoryDex           Category = "dex"
	CategoryLending       Category = "lending"
	CategoryLiquidStaking Category = "liquid_staking"
	CategoryDerivatives   Category = "derivatives"
	CategoryFarm          Category = "farm"
	CategoryOther         Category = "other"
)

// AllCategories lists every valid category value.
var AllCategories = []Category{
	CategoryDex,
	CategoryLending,
	CategoryLiquidStaking,
	CategoryDerivatives,
	CategoryFarm,
	CategoryOther,
}

// RiskFactors holds the structured risk annotations attached to an
// opportunity at normalization time.
type RiskFactors struct {
	AuditScore float64 `json:"audit_score"`       // 0.0 to 1.0, defaults to 0.5 when the protocol is unknown
	ILRisk     bool    `json:"il_risk,omitempty"` // impermanent loss flag as reported by the upstream listing
}

// Opportunity is the canonical normalized representation of one
// yield-bearing pool. Values are read-only once constructed; a later
// collection cycle produces fresh values rather than mutating these.
//
// APY fields are percentage points throughout (5.0 means 5%).
type Opportunity struct {
	Protocol    string      `json:"protocol"`
	PoolID      string      `json:"pool_id"`
	Pair        string      `json:"pair"`
	APY         float64     `json:"apy"`
	APYBase     *float64    `json:"apy_base,omitempty"`
	APYMean30d  *float64    `json:"apy_mean_30d,omitempty"`
	TVL         float64     `json:"tvl"`
	Category    Category    `json:"category"`
	Tokens      []string    `json:"tokens"`
	RiskFactors RiskFactors `json:"risk_factors"`
	Metadata    Metadata    `json:"metadata"`
	LastUpdated time.Time   `json:"last_updated"`
}

// Metadata carries non-essential upstream fields preserved for display.
type Metadata struct {
	URL          string   `json:"url,omitempty"`
	RewardTokens []string `json:"reward_tokens,omitempty"`
}

// MarketSummary is the aggregate view over a normalized, outlier-filtered
// opportunity set.
type MarketSummary struct {
	TotalCount     int                `json:"total_opportunities"`
	TotalProtocols int                `json:"total_protocols"`
	TotalTVL       float64            `json:"total_tvl"`
	AverageAPY     float64            `json:"average_apy"`
	Categories     map[string]int     `json:"categories"`
	TopProtocols   map[string]float64 `json:"top_protocols"`
}
