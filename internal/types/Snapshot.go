/*

This file contains the collection snapshot persisted (optionally) after each
cache refresh. Snapshots are operational history only; the pipeline never
reads them back.

*/

package types

import "time"

// CollectionResult is the output of one collection cycle: the normalized,
// deduplicated opportunity set sorted by APY descending, plus provenance.
// This is the unit the read-through cache stores.
type CollectionResult struct {
	Opportunities []Opportunity `json:"opportunities"`
	RawPoolCount  int           `json:"raw_pool_count"`
	CollectedAt   time.Time     `json:"collected_at"`
}

// CollectionSnapshot records the outcome of one collection cycle.
type CollectionSnapshot struct {
	SnapshotID       int64              `json:"snapshot_id"`
	CollectedAt      time.Time          `json:"collected_at"`
	RawPoolCount     int                `json:"raw_pool_count"`     // pools on the target chain before normalization
	OpportunityCount int                `json:"opportunity_count"`  // opportunities surviving normalization
	OutliersRemoved  int                `json:"outliers_removed"`   // removed by the outlier filter at default policy
	TotalTVL         float64            `json:"total_tvl"`
	AverageAPY       float64            `json:"average_apy"`
	Categories       map[string]int     `json:"categories"`
	TopProtocols     map[string]float64 `json:"top_protocols"`
}
