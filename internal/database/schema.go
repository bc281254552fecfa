// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package database

import (
	"context"
	"fmt"
)

// Schema notes:
//
// user_interactions is append-only. The key includes the timestamp so
// repeated feedback for the same (user, item) pair accumulates as
// history; the pivot step resolves to the latest rating.
//
// item_features and user_profiles carry descriptive attributes. They
// are not inputs to the collaborative model; the embedding application
// populates and consumes them, this service only bootstraps the schema
// and seeds sample rows.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS user_interactions (
		user_id   VARCHAR NOT NULL,
		item_id   VARCHAR NOT NULL,
		rating    DOUBLE  NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		context   VARCHAR DEFAULT '',
		PRIMARY KEY (user_id, item_id, timestamp)
	)`,
	`CREATE TABLE IF NOT EXISTS item_features (
		item_id          VARCHAR PRIMARY KEY,
		name             VARCHAR NOT NULL,
		category         VARCHAR NOT NULL,
		price            DOUBLE  DEFAULT 0,
		ingredients      VARCHAR DEFAULT '',
		tags             VARCHAR DEFAULT '',
		avg_rating       DOUBLE  DEFAULT 0,
		popularity_score DOUBLE  DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id             VARCHAR PRIMARY KEY,
		dietary_preference  VARCHAR DEFAULT '',
		spice_level         INTEGER DEFAULT 0,
		price_range_min     DOUBLE  DEFAULT 0,
		price_range_max     DOUBLE  DEFAULT 0,
		favorite_categories VARCHAR DEFAULT '',
		allergens           VARCHAR DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_user ON user_interactions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_item ON user_interactions (item_id)`,
}

// initSchema applies the schema. Every statement is idempotent so
// reopening an existing database is safe.
func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
