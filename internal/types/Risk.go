/*

This file contains the risk assessment types: the continuous composite score
with its component breakdown, the discrete risk tier derived from it, and the
caller-supplied risk tolerance used to gate allocation.

*/

package types

import (
	"errors"
	"fmt"
)

// RiskLevel is the discrete tier derived from the composite risk score.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low Risk"
	RiskLevelMedium   RiskLevel = "Medium Risk"
	RiskLevelHigh     RiskLevel = "High Risk"
	RiskLevelVeryHigh RiskLevel = "Very High Risk"
)

// RiskBreakdown exposes the three weighted sub-scores behind an assessment.
type RiskBreakdown struct {
	TVLScore      float64 `json:"tvl_score"`
	ProtocolScore float64 `json:"protocol_score"`
	APYRisk       float64 `json:"apy_risk"`
}

// RiskAssessment is computed on demand from an opportunity and never cached
// independently. Overall is in [0,1]; higher means safer.
type RiskAssessment struct {
	Overall   float64       `json:"overall"`
	RiskLevel RiskLevel     `json:"risk_level"`
	Breakdown RiskBreakdown `json:"breakdown"`
}

// RiskTolerance is the caller-supplied allocation policy tier.
type RiskTolerance string

const (
	ToleranceConservative RiskTolerance = "Conservative"
	ToleranceModerate     RiskTolerance = "Moderate"
	ToleranceAggressive   RiskTolerance = "Aggressive"
)

var ErrUnknownRiskTolerance = errors.New("unknown risk tolerance")

// ParseRiskTolerance validates a caller-supplied tolerance string.
// Unrecognized values are an invalid-input error, never a silent default.
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	switch RiskTolerance(s) {
	case ToleranceConservative, ToleranceModerate, ToleranceAggressive:
		return RiskTolerance(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRiskTolerance, s)
	}
}

// AllowedRiskLevels maps a tolerance tier to the set of risk levels eligible
// for allocation under it. Very High Risk is never eligible.
func (t RiskTolerance) AllowedRiskLevels() (map[RiskLevel]bool, error) {
	switch t {
	case ToleranceConservative:
		return map[RiskLevel]bool{RiskLevelLow: true}, nil
	case ToleranceModerate:
		return map[RiskLevel]bool{RiskLevelLow: true, RiskLevelMedium: true}, nil
	case ToleranceAggressive:
		return map[RiskLevel]bool{RiskLevelLow: true, RiskLevelMedium: true, RiskLevelHigh: true}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRiskTolerance, string(t))
	}
}
