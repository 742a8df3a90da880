package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalsink/vitalsink/internal/models"
)

// MergeCheckIn upserts the owner's daily check-in row, overwriting only the
// fields the caller set. Nil fields keep their stored values.
func (db *DB) MergeCheckIn(ctx context.Context, c models.CheckInMeasurement) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO check_in_measurements (owner_id, date, steps, water_ml, weight, body_fat_pct, bmi, body_water_pct, bone_mass_kg, muscle_mass_kg, mood, mood_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (owner_id, date) DO UPDATE SET
			steps = COALESCE(EXCLUDED.steps, check_in_measurements.steps),
			water_ml = COALESCE(EXCLUDED.water_ml, check_in_measurements.water_ml),
			weight = COALESCE(EXCLUDED.weight, check_in_measurements.weight),
			body_fat_pct = COALESCE(EXCLUDED.body_fat_pct, check_in_measurements.body_fat_pct),
			bmi = COALESCE(EXCLUDED.bmi, check_in_measurements.bmi),
			body_water_pct = COALESCE(EXCLUDED.body_water_pct, check_in_measurements.body_water_pct),
			bone_mass_kg = COALESCE(EXCLUDED.bone_mass_kg, check_in_measurements.bone_mass_kg),
			muscle_mass_kg = COALESCE(EXCLUDED.muscle_mass_kg, check_in_measurements.muscle_mass_kg),
			mood = COALESCE(EXCLUDED.mood, check_in_measurements.mood),
			mood_note = COALESCE(EXCLUDED.mood_note, check_in_measurements.mood_note)
	`, c.OwnerID, c.Date, c.Steps, c.WaterML, c.Weight, c.BodyFatPct, c.BMI,
		c.BodyWaterPct, c.BoneMassKg, c.MuscleMassKg, c.Mood, c.MoodNote)
	if err != nil {
		return fmt.Errorf("merging check-in: %w", err)
	}
	return nil
}

// QueryCheckIns retrieves daily check-in rows in a date range.
func (db *DB) QueryCheckIns(ctx context.Context, ownerID int, start, end time.Time) ([]models.CheckInMeasurement, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT owner_id, date, steps, water_ml, weight, body_fat_pct, bmi, body_water_pct, bone_mass_kg, muscle_mass_kg, mood, mood_note
		FROM check_in_measurements
		WHERE owner_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC
	`, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying check-ins: %w", err)
	}
	defer rows.Close()

	var result []models.CheckInMeasurement
	for rows.Next() {
		var c models.CheckInMeasurement
		if err := rows.Scan(&c.OwnerID, &c.Date, &c.Steps, &c.WaterML, &c.Weight,
			&c.BodyFatPct, &c.BMI, &c.BodyWaterPct, &c.BoneMassKg, &c.MuscleMassKg,
			&c.Mood, &c.MoodNote); err != nil {
			return nil, fmt.Errorf("scanning check-in: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
