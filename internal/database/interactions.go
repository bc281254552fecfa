// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/palate/internal/recommend"
)

// AppendInteraction persists one interaction row. Timestamps are stored
// in UTC so the last-write resolution during pivot is stable across
// process timezones. The write is an upsert over the full key: two
// appends landing on the same (user, item, timestamp) microsecond keep
// the later rating instead of failing the primary key constraint.
func (db *DB) AppendInteraction(ctx context.Context, in recommend.Interaction) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_interactions (user_id, item_id, rating, timestamp, context)
		 VALUES (?, ?, ?, ?, ?)`,
		in.UserID, in.ItemID, in.Rating, in.Timestamp.UTC(), in.Context)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// CountInteractions returns the total number of interaction rows.
func (db *DB) CountInteractions(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_interactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return count, nil
}

// GetInteractions returns the full interaction history, oldest first.
// Model rebuilds consume this; it scans everything by design.
func (db *DB) GetInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, item_id, rating, timestamp, context
		 FROM user_interactions
		 ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var interactions []recommend.Interaction
	for rows.Next() {
		var in recommend.Interaction
		if err := rows.Scan(&in.UserID, &in.ItemID, &in.Rating, &in.Timestamp, &in.Context); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return interactions, nil
}
