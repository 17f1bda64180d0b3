/*

This file derives the aggregate market summary over a normalized,
outlier-filtered opportunity set: counts, total value locked, average yield,
category histogram, and the top protocols by locked value.

*/

package analyzer

import (
	"sort"

	"github.com/solyield/ysa/internal/types"
)

// topProtocolCount bounds the by-TVL protocol leaderboard in the summary.
const topProtocolCount = 5

// Summarize computes summary statistics. An empty input produces an empty
// summary with zero counts, never an error; the caller decides whether that
// is a "no data" condition.
func Summarize(opportunities []types.Opportunity) types.MarketSummary {
	summary := types.MarketSummary{
		TotalCount:   len(opportunities),
		Categories:   make(map[string]int),
		TopProtocols: make(map[string]float64),
	}
	if len(opportunities) == 0 {
		return summary
	}

	protocolTVL := make(map[string]float64)
	var totalAPY float64
	for _, opp := range opportunities {
		summary.TotalTVL += opp.TVL
		totalAPY += opp.APY
		summary.Categories[string(opp.Category)]++
		protocolTVL[opp.Protocol] += opp.TVL
	}
	summary.TotalProtocols = len(protocolTVL)
	summary.AverageAPY = totalAPY / float64(len(opportunities))

	// Top protocols by summed TVL, largest first.
	type protocolEntry struct {
		name string
		tvl  float64
	}
	ranked := make([]protocolEntry, 0, len(protocolTVL))
	for name, tvl := range protocolTVL {
		ranked = append(ranked, protocolEntry{name: name, tvl: tvl})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].tvl != ranked[j].tvl {
			return ranked[i].tvl > ranked[j].tvl
		}
		return ranked[i].name < ranked[j].name
	})
	limit := topProtocolCount
	if limit > len(ranked) {
		limit = len(ranked)
	}
	for _, entry := range ranked[:limit] {
		summary.TopProtocols[entry.name] = entry.tvl
	}

	return summary
}
