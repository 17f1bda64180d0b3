/*

This file contains the composite risk scorer. The three sub-scores (TVL
confidence, protocol reputation, APY sustainability) are combined with a
configurable weight triple and mapped onto discrete risk tiers.

The APY buckets are a risk proxy, not a probability: very low yield is scored
as safe-but-suspicious, moderate yield is rewarded, very high yield is
penalized as likely unsustainable.

*/

package analyzer

import (
	"errors"
	"fmt"
	"math"

	"github.com/solyield/ysa/internal/config"
	"github.com/solyield/ysa/internal/logger"
	"github.com/solyield/ysa/internal/types"
)

var riskLogger = logger.GetForComponent("risk_scorer")

var ErrInvalidRiskInput = errors.New("invalid risk scoring input")
var ErrInvalidRiskParameters = errors.New("invalid risk scoring parameters")

// weightTolerance bounds the allowed drift of the weight triple from 1.0.
const weightTolerance = 1e-9

// ValidateRiskParameters checks the scoring weights and tier thresholds.
func ValidateRiskParameters(params types.PipelineParameters) error {
	weights := []struct {
		value float64
		name  string
	}{
		{params.TVLWeight, "TVLWeight"},
		{params.ProtocolWeight, "ProtocolWeight"},
		{params.APYWeight, "APYWeight"},
	}
	for _, w := range weights {
		if math.IsNaN(w.value) || math.IsInf(w.value, 0) {
			return errors.New(w.name + " must be finite")
		}
		if w.value < 0 {
			return errors.New(w.name + " cannot be negative")
		}
	}
	total := params.TVLWeight + params.ProtocolWeight + params.APYWeight
	if math.Abs(total-1.0) > weightTolerance {
		return fmt.Errorf("risk weights must sum to 1.0, got %f", total)
	}

	if params.TVLFullConfidence <= 0 {
		return errors.New("TVLFullConfidence must be positive")
	}
	if !(params.LowRiskThreshold > params.MediumRiskThreshold && params.MediumRiskThreshold > params.HighRiskThreshold) {
		return errors.New("risk tier thresholds must be strictly decreasing")
	}
	return nil
}

// CalculateRiskScore computes a RiskAssessment for one opportunity from its
// protocol, TVL, and APY (percentage points). When a 30-day mean APY is
// supplied it is used as the effective yield for the sustainability buckets,
// smoothing out emission spikes. Negative TVL or APY is an invalid-input
// error, never silently coerced.
func CalculateRiskScore(protocol string, tvl, apy float64, apyMean30d *float64, params types.PipelineParameters) (types.RiskAssessment, error) {
	if err := ValidateRiskParameters(params); err != nil {
		return types.RiskAssessment{}, errors.Join(ErrInvalidRiskParameters, err)
	}

	if math.IsNaN(tvl) || math.IsInf(tvl, 0) || math.IsNaN(apy) || math.IsInf(apy, 0) {
		return types.RiskAssessment{}, fmt.Errorf("%w: TVL and APY must be finite", ErrInvalidRiskInput)
	}
	if tvl < 0 || apy < 0 {
		return types.RiskAssessment{}, fmt.Errorf("%w: TVL and APY must be non-negative", ErrInvalidRiskInput)
	}

	// Higher TVL means lower risk; linear ramp saturating at full confidence.
	tvlScore := math.Min(1.0, tvl/params.TVLFullConfidence)

	protocolScore := config.LookupReputationScore(protocol)

	effectiveAPY := apy
	if apyMean30d != nil && !math.IsNaN(*apyMean30d) && !math.IsInf(*apyMean30d, 0) && *apyMean30d >= 0 {
		effectiveAPY = *apyMean30d
	}
	apyRisk := apyRiskBucket(effectiveAPY)

	overall := tvlScore*params.TVLWeight + protocolScore*params.ProtocolWeight + apyRisk*params.APYWeight
	if math.IsNaN(overall) || math.IsInf(overall, 0) {
		return types.RiskAssessment{}, errors.New("overall risk score calculation resulted in non-finite value")
	}

	assessment := types.RiskAssessment{
		Overall:   overall,
		RiskLevel: riskLevelFor(overall, params),
		Breakdown: types.RiskBreakdown{
			TVLScore:      tvlScore,
			ProtocolScore: protocolScore,
			APYRisk:       apyRisk,
		},
	}

	riskLogger.Debug().
		Str("protocol", protocol).
		Float64("tvl", tvl).
		Float64("apy", apy).
		Float64("effectiveAPY", effectiveAPY).
		Float64("tvlScore", tvlScore).
		Float64("protocolScore", protocolScore).
		Float64("apyRisk", apyRisk).
		Float64("overall", overall).
		Str("riskLevel", string(assessment.RiskLevel)).
		Msg("Risk score calculated")

	return assessment, nil
}

// apyRiskBucket maps effective APY (percentage points) onto the
// sustainability proxy. Buckets are policy, documented in the parameter set.
func apyRiskBucket(apy float64) float64 {
	switch {
	case apy < 0.5:
		return 1.0
	case apy < 5:
		return 0.9
	case apy < 50:
		return 0.7
	case apy < 200:
		return 0.5
	case apy < 500:
		return 0.3
	case apy < 2000:
		return 0.2
	default:
		return 0.1
	}
}

func riskLevelFor(overall float64, params types.PipelineParameters) types.RiskLevel {
	switch {
	case overall >= params.LowRiskThreshold:
		return types.RiskLevelLow
	case overall >= params.MediumRiskThreshold:
		return types.RiskLevelMedium
	case overall >= params.HighRiskThreshold:
		return types.RiskLevelHigh
	default:
		return types.RiskLevelVeryHigh
	}
}
