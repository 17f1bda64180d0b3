// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/solyield/ysa/internal/types"
)

var ErrNoActiveParameters = errors.New("no active pipeline parameters found")

// SavePipelineParameters stores a parameter set under a config name and
// version. When activate is true, any previously active set for the same
// config name is deactivated first.
func SavePipelineParameters(params types.PipelineParameters, configName string, version int, activate bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if configName == "" {
		return 0, errors.New("config name cannot be empty")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if activate {
		if _, err := tx.Exec(
			`UPDATE pipeline_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE`,
			configName,
		); err != nil {
			return 0, fmt.Errorf("failed to deactivate prior parameters: %w", err)
		}
	}

	query := `
		INSERT INTO pipeline_parameters (
			version, config_name, is_active,
			min_tvl_floor,
			min_apy, max_apy, min_tvl, std_dev_multiplier,
			tvl_weight, protocol_weight, apy_weight, tvl_full_confidence,
			low_risk_threshold, medium_risk_threshold, high_risk_threshold,
			max_positions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING params_id;
	`

	var paramsID int64
	err = tx.QueryRow(
		query,
		version, configName, activate,
		params.MinTVLFloor,
		params.MinAPY, params.MaxAPY, params.MinTVL, params.StdDevMultiplier,
		params.TVLWeight, params.ProtocolWeight, params.APYWeight, params.TVLFullConfidence,
		params.LowRiskThreshold, params.MediumRiskThreshold, params.HighRiskThreshold,
		params.MaxPositions,
	).Scan(&paramsID)
	if err != nil {
		return 0, fmt.Errorf("failed to save pipeline parameters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit parameters: %w", err)
	}

	log.Info().
		Int64("params_id", paramsID).
		Str("config_name", configName).
		Int("version", version).
		Bool("active", activate).
		Msg("Pipeline parameters saved")

	return paramsID, nil
}

// LoadActivePipelineParameters returns the most recently activated parameter
// set for a config name, or ErrNoActiveParameters when none exists.
func LoadActivePipelineParameters(configName string) (*types.PipelineParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT min_tvl_floor,
		       min_apy, max_apy, min_tvl, std_dev_multiplier,
		       tvl_weight, protocol_weight, apy_weight, tvl_full_confidence,
		       low_risk_threshold, medium_risk_threshold, high_risk_threshold,
		       max_positions
		FROM pipeline_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC
		LIMIT 1
	`

	var params types.PipelineParameters
	err := DB.QueryRow(query, configName).Scan(
		&params.MinTVLFloor,
		&params.MinAPY, &params.MaxAPY, &params.MinTVL, &params.StdDevMultiplier,
		&params.TVLWeight, &params.ProtocolWeight, &params.APYWeight, &params.TVLFullConfidence,
		&params.LowRiskThreshold, &params.MediumRiskThreshold, &params.HighRiskThreshold,
		&params.MaxPositions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveParameters
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active pipeline parameters: %w", err)
	}

	return &params, nil
}
