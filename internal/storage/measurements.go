package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalsink/vitalsink/internal/models"
)

// UpsertSample writes one measurement sample. The UNIQUE
// (category_id, owner_id, date, hour) constraint makes resends replace the
// stored value; daily categories always carry hour 0.
func (db *DB) UpsertSample(ctx context.Context, s models.MeasurementSample) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO measurement_samples (category_id, owner_id, numeric_value, text_value, date, hour, recorded_at, note, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (category_id, owner_id, date, hour) DO UPDATE SET
			numeric_value = EXCLUDED.numeric_value,
			text_value = EXCLUDED.text_value,
			recorded_at = EXCLUDED.recorded_at,
			note = COALESCE(NULLIF(EXCLUDED.note, ''), measurement_samples.note),
			source = EXCLUDED.source
	`, s.CategoryID, s.OwnerID, s.NumericValue, s.TextValue, s.Date, s.Hour, s.Timestamp, s.Note, s.Source)
	if err != nil {
		return fmt.Errorf("upserting sample: %w", err)
	}
	return nil
}

// MeasurementPoint is a stored sample joined with its category name.
type MeasurementPoint struct {
	models.MeasurementSample
	CategoryName string `json:"category"`
}

// QuerySamples retrieves samples in a date range, optionally filtered to a
// single category name.
func (db *DB) QuerySamples(ctx context.Context, ownerID int, category string, start, end time.Time) ([]MeasurementPoint, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT s.category_id, s.owner_id, s.numeric_value, s.text_value, s.date, s.hour, s.recorded_at, s.note, s.source, c.name
		FROM measurement_samples s
		JOIN measurement_categories c ON c.id = s.category_id
		WHERE s.owner_id = $1
		  AND ($2 = '' OR c.name = $2)
		  AND s.date >= $3 AND s.date < $4
		ORDER BY s.date ASC, s.hour ASC
	`, ownerID, category, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	var result []MeasurementPoint
	for rows.Next() {
		var p MeasurementPoint
		if err := rows.Scan(&p.CategoryID, &p.OwnerID, &p.NumericValue, &p.TextValue,
			&p.Date, &p.Hour, &p.Timestamp, &p.Note, &p.Source, &p.CategoryName); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
