/*

This file orchestrates one collection cycle: fetch the raw listing,
normalize and deduplicate it, and sort the result by yield. The cache calls
Collect through a FetchFunc; nothing downstream of the cache talks to the
upstream aggregator directly.

When the history store is enabled, each cycle also records a collection
snapshot. Snapshot recording is best effort: a store failure is logged and
the cycle still succeeds.

*/

package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/solyield/ysa/internal/analyzer"
	"github.com/solyield/ysa/internal/datafetcher"
	"github.com/solyield/ysa/internal/logger"
	"github.com/solyield/ysa/internal/normalizer"
	"github.com/solyield/ysa/internal/state"
	"github.com/solyield/ysa/internal/types"
)

var pipelineLogger = logger.GetForComponent("pipeline")

// Pipeline wires the collector and the normalizer into a single Collect
// operation and optionally records each cycle into the history store.
type Pipeline struct {
	fetchConfig datafetcher.Config
	params      types.PipelineParameters
}

// New constructs a Pipeline. The parameter set is fixed at construction; a
// parameter change means building a new Pipeline.
func New(fetchConfig datafetcher.Config, params types.PipelineParameters) *Pipeline {
	return &Pipeline{
		fetchConfig: fetchConfig,
		params:      params,
	}
}

// Parameters returns the parameter set the pipeline was built with.
func (p *Pipeline) Parameters() types.PipelineParameters {
	return p.params
}

// Collect runs one collection cycle and returns the normalized opportunity
// set, sorted by APY descending. Ties keep upstream listing order.
func (p *Pipeline) Collect(ctx context.Context) (types.CollectionResult, error) {
	started := time.Now().UTC()

	raw, err := datafetcher.GetPools(ctx, p.fetchConfig)
	if err != nil {
		return types.CollectionResult{}, fmt.Errorf("collection cycle failed: %w", err)
	}

	opportunities := normalizer.NormalizeAll(raw, p.params, started)
	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].APY > opportunities[j].APY
	})

	result := types.CollectionResult{
		Opportunities: opportunities,
		RawPoolCount:  len(raw),
		CollectedAt:   started,
	}

	pipelineLogger.Info().
		Int("rawPools", result.RawPoolCount).
		Int("opportunities", len(result.Opportunities)).
		Dur("elapsed", time.Since(started)).
		Msg("Collection cycle complete")

	if state.Enabled() {
		p.recordSnapshot(result)
	}

	return result, nil
}

// recordSnapshot persists one cycle's outcome. The filtered view drives the
// summary so the recorded statistics match what the analytics endpoint
// reports.
func (p *Pipeline) recordSnapshot(result types.CollectionResult) {
	filtered, err := analyzer.FilterOutliers(result.Opportunities, p.params)
	if err != nil {
		pipelineLogger.Error().Err(err).Msg("Skipping snapshot, outlier filter rejected parameters")
		return
	}
	summary := analyzer.Summarize(filtered)

	snapshot := types.CollectionSnapshot{
		CollectedAt:      result.CollectedAt,
		RawPoolCount:     result.RawPoolCount,
		OpportunityCount: len(result.Opportunities),
		OutliersRemoved:  len(result.Opportunities) - len(filtered),
		TotalTVL:         summary.TotalTVL,
		AverageAPY:       summary.AverageAPY,
		Categories:       summary.Categories,
		TopProtocols:     summary.TopProtocols,
	}

	if _, err := state.SaveCollectionSnapshot(snapshot); err != nil {
		pipelineLogger.Error().Err(err).Msg("Failed to record collection snapshot")
	}
}
