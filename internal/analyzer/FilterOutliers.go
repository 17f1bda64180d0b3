/*

This file contains the two-pass outlier filter.

Pass 1 enforces absolute policy limits (APY band, TVL floor). Pass 2 rejects
statistical anomalies relative to the surviving set. The order matters: a
single hard ceiling cannot adapt to the market regime of the day, while a
purely statistical filter can be dominated by a mis-parsed 50,000% entry. The
hard limits always win; the statistical band is clamped inside them.

*/

package analyzer

import (
	"errors"
	"math"

	"github.com/solyield/ysa/internal/logger"
	"github.com/solyield/ysa/internal/types"
)

var filterLogger = logger.GetForComponent("outlier_filter")

var ErrInvalidOutlierPolicy = errors.New("invalid outlier policy")

// validateOutlierPolicy checks the policy knobs the filter depends on.
func validateOutlierPolicy(params types.PipelineParameters) error {
	values := []struct {
		value float64
		name  string
	}{
		{params.MinAPY, "MinAPY"},
		{params.MaxAPY, "MaxAPY"},
		{params.MinTVL, "MinTVL"},
		{params.StdDevMultiplier, "StdDevMultiplier"},
	}
	for _, v := range values {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return errors.New(v.name + " must be finite")
		}
	}
	if params.MinAPY > params.MaxAPY {
		return errors.New("MinAPY cannot exceed MaxAPY")
	}
	if params.MinTVL < 0 {
		return errors.New("MinTVL cannot be negative")
	}
	if params.StdDevMultiplier <= 0 {
		return errors.New("StdDevMultiplier must be positive")
	}
	return nil
}

// FilterOutliers removes out-of-policy and statistically anomalous
// opportunities. The hard-threshold pass always applies; the statistical pass
// is skipped when fewer than 2 opportunities survive pass 1 (standard
// deviation undefined) rather than failing.
func FilterOutliers(opportunities []types.Opportunity, params types.PipelineParameters) ([]types.Opportunity, error) {
	if err := validateOutlierPolicy(params); err != nil {
		return nil, errors.Join(ErrInvalidOutlierPolicy, err)
	}

	// Pass 1: absolute policy limits.
	surviving := make([]types.Opportunity, 0, len(opportunities))
	for _, opp := range opportunities {
		if opp.APY < params.MinAPY || opp.APY > params.MaxAPY {
			continue
		}
		if opp.TVL < params.MinTVL {
			continue
		}
		surviving = append(surviving, opp)
	}

	// Pass 2: statistical band over the survivors, clamped inside the hard
	// limits. Degenerate inputs fall back to the pass-1 result.
	mean, stdDev, err := MeanStdDev(apyValues(surviving))
	if err != nil {
		filterLogger.Debug().
			Int("survivors", len(surviving)).
			Msg("Skipping statistical pass, too few data points")
		return surviving, nil
	}

	lower := math.Max(params.MinAPY, mean-params.StdDevMultiplier*stdDev)
	upper := math.Min(params.MaxAPY, mean+params.StdDevMultiplier*stdDev)

	filtered := make([]types.Opportunity, 0, len(surviving))
	for _, opp := range surviving {
		if opp.APY < lower || opp.APY > upper {
			continue
		}
		filtered = append(filtered, opp)
	}

	filterLogger.Debug().
		Int("input", len(opportunities)).
		Int("afterHardPass", len(surviving)).
		Int("afterStatisticalPass", len(filtered)).
		Float64("mean", mean).
		Float64("stdDev", stdDev).
		Float64("lowerBound", lower).
		Float64("upperBound", upper).
		Msg("Outlier filtering completed")

	return filtered, nil
}

func apyValues(opportunities []types.Opportunity) []float64 {
	values := make([]float64, len(opportunities))
	for i, opp := range opportunities {
		values[i] = opp.APY
	}
	return values
}
