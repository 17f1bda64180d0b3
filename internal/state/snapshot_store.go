// ./internal/state/snapshot_store.go
package state

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/solyield/ysa/internal/types"
)

// SaveCollectionSnapshot records the outcome of one collection cycle.
func SaveCollectionSnapshot(snapshot types.CollectionSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	categoriesJSON, err := json.Marshal(snapshot.Categories)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal categories: %w", err)
	}
	topProtocolsJSON, err := json.Marshal(snapshot.TopProtocols)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal top_protocols: %w", err)
	}

	query := `
		INSERT INTO collection_snapshots (
			collected_at, raw_pool_count, opportunity_count, outliers_removed,
			total_tvl, average_apy, categories, top_protocols
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.CollectedAt, snapshot.RawPoolCount, snapshot.OpportunityCount, snapshot.OutliersRemoved,
		snapshot.TotalTVL, snapshot.AverageAPY, categoriesJSON, topProtocolsJSON,
	).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to save collection snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Int("opportunity_count", snapshot.OpportunityCount).
		Float64("total_tvl", snapshot.TotalTVL).
		Msg("Collection snapshot saved to database")

	return snapshotID, nil
}

// GetRecentSnapshots retrieves recent collection snapshots, newest first.
func GetRecentSnapshots(limit int) ([]types.CollectionSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := `
		SELECT snapshot_id, collected_at, raw_pool_count, opportunity_count, outliers_removed,
		       total_tvl, average_apy, categories, top_protocols
		FROM collection_snapshots
		ORDER BY collected_at DESC
		LIMIT $1
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent collection snapshots")
		return nil, fmt.Errorf("failed to query recent snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]types.CollectionSnapshot, 0, limit)
	for rows.Next() {
		var snapshot types.CollectionSnapshot
		var categoriesJSON, topProtocolsJSON []byte

		err := rows.Scan(
			&snapshot.SnapshotID, &snapshot.CollectedAt, &snapshot.RawPoolCount,
			&snapshot.OpportunityCount, &snapshot.OutliersRemoved,
			&snapshot.TotalTVL, &snapshot.AverageAPY, &categoriesJSON, &topProtocolsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		if len(categoriesJSON) > 0 {
			if err := json.Unmarshal(categoriesJSON, &snapshot.Categories); err != nil {
				return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
			}
		}
		if len(topProtocolsJSON) > 0 {
			if err := json.Unmarshal(topProtocolsJSON, &snapshot.TopProtocols); err != nil {
				return nil, fmt.Errorf("failed to unmarshal top_protocols: %w", err)
			}
		}

		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot row iteration failed: %w", err)
	}

	return snapshots, nil
}
