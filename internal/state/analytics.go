package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// CollectionStats aggregates the recorded collection history.
type CollectionStats struct {
	TotalSnapshots      int       `json:"total_snapshots"`
	AvgOpportunityCount float64   `json:"avg_opportunity_count"`
	AvgAverageAPY       float64   `json:"avg_average_apy"`
	AvgOutliersRemoved  float64   `json:"avg_outliers_removed"`
	LastCollectedAt     time.Time `json:"last_collected_at"`
}

// GetCollectionStats computes aggregate statistics over all recorded
// collection snapshots.
func GetCollectionStats() (*CollectionStats, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(opportunity_count), 0),
		       COALESCE(AVG(average_apy), 0),
		       COALESCE(AVG(outliers_removed), 0),
		       COALESCE(MAX(collected_at), to_timestamp(0))
		FROM collection_snapshots
	`

	var stats CollectionStats
	var lastCollected sql.NullTime
	err := DB.QueryRow(query).Scan(
		&stats.TotalSnapshots,
		&stats.AvgOpportunityCount,
		&stats.AvgAverageAPY,
		&stats.AvgOutliersRemoved,
		&lastCollected,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query collection stats")
		return nil, fmt.Errorf("failed to query collection stats: %w", err)
	}
	if lastCollected.Valid {
		stats.LastCollectedAt = lastCollected.Time
	}

	return &stats, nil
}
