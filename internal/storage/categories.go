package storage

import (
	"context"
	"fmt"

	"github.com/vitalsink/vitalsink/internal/models"
)

// ResolveOrCreateCategory finds the owner's category by name, creating it
// from the hints when missing. The UNIQUE (owner_id, name) constraint makes
// concurrent first-sight creation converge on one row; an existing
// category's value kind and frequency are never changed by later hints.
func (db *DB) ResolveOrCreateCategory(ctx context.Context, ownerID int, name, valueKind, frequency string) (*models.MeasurementCategory, error) {
	var cat models.MeasurementCategory
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO measurement_categories (owner_id, name, value_kind, frequency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, name) DO UPDATE SET name = measurement_categories.name
		RETURNING id, owner_id, name, value_kind, frequency
	`, ownerID, name, valueKind, frequency).Scan(
		&cat.ID, &cat.OwnerID, &cat.Name, &cat.ValueKind, &cat.Frequency)
	if err != nil {
		return nil, fmt.Errorf("resolving category %q: %w", name, err)
	}
	return &cat, nil
}

// ListCategories returns all of the owner's categories ordered by name.
func (db *DB) ListCategories(ctx context.Context, ownerID int) ([]models.MeasurementCategory, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, owner_id, name, value_kind, frequency
		FROM measurement_categories
		WHERE owner_id = $1
		ORDER BY name ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var result []models.MeasurementCategory
	for rows.Next() {
		var c models.MeasurementCategory
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.ValueKind, &c.Frequency); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
