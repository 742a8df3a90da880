package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalsink/vitalsink/internal/models"
)

// ResolveOrCreateExercise finds the owner's exercise definition by name,
// creating it with the given burn rate when missing. An existing
// definition's rate is not touched.
func (db *DB) ResolveOrCreateExercise(ctx context.Context, ownerID int, name string, caloriesPerHour float64, source string) (*models.ExerciseDefinition, error) {
	var def models.ExerciseDefinition
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO exercise_definitions (owner_id, name, calories_per_hour, source)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, name) DO UPDATE SET name = exercise_definitions.name
		RETURNING id, owner_id, name, calories_per_hour, source
	`, ownerID, name, caloriesPerHour, source).Scan(
		&def.ID, &def.OwnerID, &def.Name, &def.CaloriesPerHour, &def.Source)
	if err != nil {
		return nil, fmt.Errorf("resolving exercise %q: %w", name, err)
	}
	return &def, nil
}

// InsertExerciseEntry records one performed session and, when present, its
// raw provider payload, in one transaction.
func (db *DB) InsertExerciseEntry(ctx context.Context, entry models.ExerciseEntry, detail *models.ActivityDetail) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning exercise insert: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO exercise_entries (id, owner_id, definition_id, date, duration_min, calories_burned, distance_km, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.OwnerID, entry.DefinitionID, entry.Date,
		entry.DurationMin, entry.CaloriesBurned, entry.DistanceKm, entry.Source)
	if err != nil {
		return fmt.Errorf("inserting exercise entry: %w", err)
	}

	if detail != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO activity_details (id, entry_id, owner_id, kind, source, payload)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, detail.ID, detail.EntryID, detail.OwnerID, detail.Kind, detail.Source, detail.Payload)
		if err != nil {
			return fmt.Errorf("inserting activity detail: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// DeleteExerciseRange removes the source's entries inside [from, to].
// Attached details go with them via ON DELETE CASCADE.
func (db *DB) DeleteExerciseRange(ctx context.Context, ownerID int, source string, from, to time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		DELETE FROM exercise_entries
		WHERE owner_id = $1 AND source = $2 AND date >= $3 AND date <= $4
	`, ownerID, source, from, to)
	if err != nil {
		return fmt.Errorf("deleting exercise entries: %w", err)
	}
	return nil
}

// ExerciseLogRow is an entry joined with its definition name.
type ExerciseLogRow struct {
	models.ExerciseEntry
	Name string `json:"name"`
}

// QueryExerciseLog retrieves the owner's entries in a date range, newest
// first.
func (db *DB) QueryExerciseLog(ctx context.Context, ownerID int, start, end time.Time) ([]ExerciseLogRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT e.id, e.owner_id, e.definition_id, e.date, e.duration_min, e.calories_burned, e.distance_km, e.source, d.name
		FROM exercise_entries e
		JOIN exercise_definitions d ON d.id = e.definition_id
		WHERE e.owner_id = $1 AND e.date >= $2 AND e.date < $3
		ORDER BY e.date DESC
	`, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying exercise log: %w", err)
	}
	defer rows.Close()

	var result []ExerciseLogRow
	for rows.Next() {
		var r ExerciseLogRow
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.DefinitionID, &r.Date,
			&r.DurationMin, &r.CaloriesBurned, &r.DistanceKm, &r.Source, &r.Name); err != nil {
			return nil, fmt.Errorf("scanning exercise entry: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
