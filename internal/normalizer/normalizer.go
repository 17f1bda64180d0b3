/*

This file converts raw heterogeneous pool records into canonical
opportunities: unit normalization, validity gating, categorization, audit
score lookup, and (protocol, pair) deduplication.

A record that fails the validity gate is an absence, not an error: Normalize
returns ok=false and the pipeline moves on.

*/

package normalizer

import (
	"math"
	"strings"
	"time"

	"github.com/solyield/ysa/internal/config"
	"github.com/solyield/ysa/internal/datafetcher"
	"github.com/solyield/ysa/internal/logger"
	"github.com/solyield/ysa/internal/types"
)

var normLogger = logger.GetForComponent("normalizer")

// decimalUnitCeiling is the pivot of the percentage/decimal heuristic: raw
// yield values at or below it are treated as decimal fractions of 1 and
// scaled by 100 into percentage points; values above it are assumed to be
// percentage points already. A legitimate 4% expressed as 4.0 and a decimal
// 0.04 are indistinguishable under this rule; an explicit apyUnit tag on the
// raw record bypasses it.
const decimalUnitCeiling = 5.0

// Normalize converts one raw record into an Opportunity. Returns ok=false
// when the record fails validity gating: non-positive yield, TVL below the
// configured floor, or an empty protocol/pair.
func Normalize(raw datafetcher.RawPool, params types.PipelineParameters, now time.Time) (types.Opportunity, bool) {
	protocol := strings.TrimSpace(raw.Project)
	pair := strings.TrimSpace(raw.Symbol)
	if protocol == "" || pair == "" {
		return types.Opportunity{}, false
	}

	if raw.APY == nil {
		return types.Opportunity{}, false
	}
	apy := normalizeUnits(*raw.APY, raw.APYUnit)
	if !isFinite(apy) || apy <= 0 {
		return types.Opportunity{}, false
	}

	tvl := 0.0
	if raw.TVLUsd != nil {
		tvl = *raw.TVLUsd
	}
	if !isFinite(tvl) || tvl < params.MinTVLFloor {
		return types.Opportunity{}, false
	}

	opp := types.Opportunity{
		Protocol: protocol,
		PoolID:   strings.TrimSpace(raw.Pool),
		Pair:     pair,
		APY:      apy,
		TVL:      tvl,
		Category: config.CategorizeProtocol(protocol),
		Tokens:   raw.UnderlyingTokens,
		RiskFactors: types.RiskFactors{
			AuditScore: config.LookupAuditScore(protocol),
			ILRisk:     strings.EqualFold(raw.ILRisk, "yes"),
		},
		Metadata: types.Metadata{
			URL:          raw.URL,
			RewardTokens: raw.RewardTokens,
		},
		LastUpdated: now,
	}
	if opp.Tokens == nil {
		opp.Tokens = []string{}
	}

	if raw.APYBase != nil && isFinite(*raw.APYBase) {
		base := normalizeUnits(*raw.APYBase, raw.APYUnit)
		opp.APYBase = &base
	}
	if raw.APYMean30d != nil && isFinite(*raw.APYMean30d) {
		mean := normalizeUnits(*raw.APYMean30d, raw.APYUnit)
		opp.APYMean30d = &mean
	}

	return opp, true
}

// NormalizeAll normalizes a batch and deduplicates on (protocol, pair),
// keeping the first-seen record for each key.
func NormalizeAll(raw []datafetcher.RawPool, params types.PipelineParameters, now time.Time) []types.Opportunity {
	opportunities := make([]types.Opportunity, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	rejected := 0
	duplicates := 0
	for _, record := range raw {
		opp, ok := Normalize(record, params, now)
		if !ok {
			rejected++
			continue
		}
		key := strings.ToLower(opp.Protocol) + "\x00" + strings.ToLower(opp.Pair)
		if seen[key] {
			duplicates++
			continue
		}
		seen[key] = true
		opportunities = append(opportunities, opp)
	}

	normLogger.Info().
		Int("rawRecords", len(raw)).
		Int("normalized", len(opportunities)).
		Int("rejected", rejected).
		Int("duplicates", duplicates).
		Msg("Normalized raw pool records")

	return opportunities
}

// normalizeUnits collapses mixed decimal/percentage yield inputs into
// percentage points. An explicit unit tag wins over the heuristic.
func normalizeUnits(value float64, unit string) float64 {
	switch strings.ToLower(unit) {
	case "percent", "percentage":
		return value
	case "decimal", "fraction":
		return value * 100
	}
	if value <= decimalUnitCeiling {
		return value * 100
	}
	return value
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
