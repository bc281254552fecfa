// Palate - Menu Affinity Prediction and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/palate

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/palate/internal/logging"
)

// Bootstrap corpus: four archetype diners rating five menu items. Small
// but non-degenerate, so the first model build on a fresh install
// produces usable similarities instead of NoModel.
var (
	seedItems = []struct {
		id, name, category, ingredients, tags string
		price                                 float64
	}{
		{"VEG001", "Paneer Tikka", "starter", "paneer,yogurt,spices", "vegetarian,grilled", 240},
		{"VEG004", "Garden Salad Bowl", "main", "lettuce,cucumber,tomato", "vegetarian,healthy", 180},
		{"NONVEG001", "Chicken Biryani", "main", "chicken,rice,spices", "spicy,signature", 320},
		{"LIVE003", "Grilled Fish", "main", "fish,lemon,herbs", "healthy,grilled", 380},
		{"DESSERT003", "Gulab Jamun", "dessert", "milk,sugar,cardamom", "sweet,classic", 120},
	}

	seedProfiles = []struct {
		id, dietary, favorites, allergens string
		spice                             int
		priceMin, priceMax                float64
	}{
		{"STUDENT001", "", "main,dessert", "", 2, 100, 300},
		{"HEALTH001", "vegetarian", "main", "", 1, 150, 450},
		{"SWEET001", "", "dessert", "nuts", 1, 100, 350},
		{"MEAT001", "non-vegetarian", "main", "", 3, 200, 550},
	}

	seedRatings = []struct {
		user, item string
		rating     float64
	}{
		{"STUDENT001", "VEG001", 4},
		{"STUDENT001", "NONVEG001", 5},
		{"STUDENT001", "DESSERT003", 4},
		{"HEALTH001", "VEG001", 5},
		{"HEALTH001", "VEG004", 5},
		{"HEALTH001", "DESSERT003", 2},
		{"SWEET001", "DESSERT003", 5},
		{"SWEET001", "VEG001", 3},
		{"SWEET001", "VEG004", 2},
		{"MEAT001", "NONVEG001", 5},
		{"MEAT001", "LIVE003", 4},
		{"MEAT001", "VEG004", 1},
	}
)

// SeedBootstrap inserts the sample corpus when the interaction log is
// empty. An already-populated database is left untouched.
func (db *DB) SeedBootstrap(ctx context.Context) error {
	count, err := db.CountInteractions(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, it := range seedItems {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO item_features (item_id, name, category, price, ingredients, tags)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (item_id) DO NOTHING`,
			it.id, it.name, it.category, it.price, it.ingredients, it.tags)
		if err != nil {
			return fmt.Errorf("seed item %s: %w", it.id, err)
		}
	}

	for _, p := range seedProfiles {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO user_profiles (user_id, dietary_preference, spice_level, price_range_min, price_range_max, favorite_categories, allergens)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (user_id) DO NOTHING`,
			p.id, p.dietary, p.spice, p.priceMin, p.priceMax, p.favorites, p.allergens)
		if err != nil {
			return fmt.Errorf("seed user profile %s: %w", p.id, err)
		}
	}

	// Deterministic staggered timestamps keep the seed rows ordered and
	// distinct under the (user, item, timestamp) key.
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, r := range seedRatings {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO user_interactions (user_id, item_id, rating, timestamp, context)
			 VALUES (?, ?, ?, ?, ?)`,
			r.user, r.item, r.rating, base.Add(time.Duration(i)*time.Minute), "bootstrap")
		if err != nil {
			return fmt.Errorf("seed interaction %s/%s: %w", r.user, r.item, err)
		}
	}

	logging.Info().
		Int("items", len(seedItems)).
		Int("users", len(seedProfiles)).
		Int("ratings", len(seedRatings)).
		Msg("Seeded bootstrap rating corpus")
	return nil
}
