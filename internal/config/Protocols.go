/*

This file contains the curated protocol tables: category keywords, audit
scores, and reputation scores. All lookups are case-insensitive substring
matches against the protocol name as reported by the upstream listing, first
match wins.

If a protocol has no entry it falls back to the documented defaults (category
"other", scores 0.5). The tables are policy and should be kept up to date as
the Solana ecosystem shifts; a missing entry is never an error.

*/

package config

import (
	"strings"

	"github.com/solyield/ysa/internal/types"
)

// CategoryKeywords maps each closed category to the protocol-name fragments
// that identify it. Evaluated in the order of CategoryOrder.
var CategoryKeywords = map[types.Category][]string{
	types.CategoryDex:           {"raydium", "orca", "serum", "lifinity", "meteora"},
	types.CategoryLending:       {"solend", "mango", "port", "kamino", "marginfi"},
	types.CategoryLiquidStaking: {"marinade", "lido", "jito-liquid-staking", "sanctum"},
	types.CategoryDerivatives:   {"drift", "zeta"},
	types.CategoryFarm:          {"tulip", "sunny", "francium", "quarry"},
}

// CategoryOrder fixes the evaluation order so that categorization is
// deterministic when a name could match more than one keyword set.
var CategoryOrder = []types.Category{
	types.CategoryDex,
	types.CategoryLending,
	types.CategoryLiquidStaking,
	types.CategoryDerivatives,
	types.CategoryFarm,
}

// AuditScores is the coarse audit-coverage table attached to opportunities at
// normalization time.
var AuditScores = map[string]float64{
	"orca":                0.9,
	"raydium":             0.9,
	"solend":              0.9,
	"marinade":            0.9,
	"jito-liquid-staking": 0.9,
	"mango":               0.7,
	"port":                0.7,
	"drift":               0.7,
}

// ReputationScores is the finer-grained table the risk scorer uses for the
// protocol sub-score. Kept separate from AuditScores because reputation moves
// faster than audit coverage.
var ReputationScores = map[string]float64{
	"raydium":             0.95,
	"orca":                0.95,
	"solend":              0.9,
	"marinade":            0.9,
	"jito-liquid-staking": 0.9,
	"mango":               0.8,
	"port":                0.8,
	"kamino":              0.8,
	"drift":               0.75,
	"saber":               0.75,
	"marginfi":            0.75,
	"sunny":               0.7,
}

// DefaultProtocolScore applies when a protocol has no table entry.
const DefaultProtocolScore = 0.5

// CategorizeProtocol assigns the closed category for a protocol name.
func CategorizeProtocol(protocol string) types.Category {
	name := strings.ToLower(protocol)
	for _, category := range CategoryOrder {
		for _, keyword := range CategoryKeywords[category] {
			if strings.Contains(name, keyword) {
				return category
			}
		}
	}
	return types.CategoryOther
}

// LookupAuditScore returns the curated audit score for a protocol name.
func LookupAuditScore(protocol string) float64 {
	return lookupScore(protocol, AuditScores)
}

// LookupReputationScore returns the curated reputation score for a protocol name.
func LookupReputationScore(protocol string) float64 {
	return lookupScore(protocol, ReputationScores)
}

func lookupScore(protocol string, table map[string]float64) float64 {
	name := strings.ToLower(protocol)
	// Prefer the longest matching keyword so that e.g. "jito-liquid-staking"
	// wins over a shorter fragment that happens to be contained in the name.
	bestLen := 0
	score := DefaultProtocolScore
	for keyword, s := range table {
		if strings.Contains(name, keyword) && len(keyword) > bestLen {
			bestLen = len(keyword)
			score = s
		}
	}
	return score
}
