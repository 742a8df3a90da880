package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vitalsink/vitalsink/internal/models"
)

// FindSleepEntry looks up the entry for (owner, date, source). Returns
// (nil, nil) when none exists.
func (db *DB) FindSleepEntry(ctx context.Context, ownerID int, date time.Time, source string) (*models.SleepEntry, error) {
	var e models.SleepEntry
	err := db.Pool.QueryRow(ctx, `
		SELECT id, owner_id, date, bedtime, wake_time, total_duration_sec, time_asleep_sec, sleep_score, source, deep_sec, light_sec, rem_sec, awake_sec
		FROM sleep_entries
		WHERE owner_id = $1 AND date = $2 AND source = $3
	`, ownerID, date, source).Scan(
		&e.ID, &e.OwnerID, &e.Date, &e.Bedtime, &e.WakeTime,
		&e.TotalDurationSec, &e.TimeAsleepSec, &e.SleepScore, &e.Source,
		&e.DeepSec, &e.LightSec, &e.RemSec, &e.AwakeSec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding sleep entry: %w", err)
	}
	return &e, nil
}

// SaveSleepEntry upserts the entry and replaces its stage events wholesale,
// in one transaction. Readers never see an entry with a mix of old and new
// stages.
func (db *DB) SaveSleepEntry(ctx context.Context, entry *models.SleepEntry, stages []models.SleepStageEvent) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning sleep save: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sleep_entries (id, owner_id, date, bedtime, wake_time, total_duration_sec, time_asleep_sec, sleep_score, source, deep_sec, light_sec, rem_sec, awake_sec)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (owner_id, date, source) DO UPDATE SET
			bedtime = EXCLUDED.bedtime,
			wake_time = EXCLUDED.wake_time,
			total_duration_sec = EXCLUDED.total_duration_sec,
			time_asleep_sec = EXCLUDED.time_asleep_sec,
			sleep_score = EXCLUDED.sleep_score,
			deep_sec = EXCLUDED.deep_sec,
			light_sec = EXCLUDED.light_sec,
			rem_sec = EXCLUDED.rem_sec,
			awake_sec = EXCLUDED.awake_sec
	`, entry.ID, entry.OwnerID, entry.Date, entry.Bedtime, entry.WakeTime,
		entry.TotalDurationSec, entry.TimeAsleepSec, entry.SleepScore, entry.Source,
		entry.DeepSec, entry.LightSec, entry.RemSec, entry.AwakeSec)
	if err != nil {
		return fmt.Errorf("upserting sleep entry: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM sleep_stage_events WHERE entry_id = $1`, entry.ID); err != nil {
		return fmt.Errorf("clearing sleep stages: %w", err)
	}

	if len(stages) > 0 {
		query := `INSERT INTO sleep_stage_events (id, entry_id, owner_id, stage_type, start_time, end_time, duration_sec) VALUES `
		args := make([]any, 0, len(stages)*7)
		valueStrings := make([]string, 0, len(stages))

		for i, s := range stages {
			base := i * 7
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			))
			args = append(args, s.ID, s.EntryID, s.OwnerID, s.StageType, s.StartTime, s.EndTime, s.DurationSec)
		}

		if _, err := tx.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
			return fmt.Errorf("inserting sleep stages: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// DeleteSleepRange removes the source's entries inside [from, to]. Stage
// events go with them via ON DELETE CASCADE.
func (db *DB) DeleteSleepRange(ctx context.Context, ownerID int, source string, from, to time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		DELETE FROM sleep_entries
		WHERE owner_id = $1 AND source = $2 AND date >= $3 AND date <= $4
	`, ownerID, source, from, to)
	if err != nil {
		return fmt.Errorf("deleting sleep entries: %w", err)
	}
	return nil
}

// SleepEntryResult is a sleep entry with its stage events attached.
type SleepEntryResult struct {
	models.SleepEntry
	Stages []models.SleepStageEvent `json:"stages,omitempty"`
}

// QuerySleepEntries retrieves entries in a date range with their stages.
func (db *DB) QuerySleepEntries(ctx context.Context, ownerID int, start, end time.Time) ([]SleepEntryResult, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, owner_id, date, bedtime, wake_time, total_duration_sec, time_asleep_sec, sleep_score, source, deep_sec, light_sec, rem_sec, awake_sec
		FROM sleep_entries
		WHERE owner_id = $1 AND date >= $2 AND date < $3
		ORDER BY date DESC
	`, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sleep entries: %w", err)
	}
	defer rows.Close()

	var result []SleepEntryResult
	byID := map[string]int{}
	for rows.Next() {
		var r SleepEntryResult
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Date, &r.Bedtime, &r.WakeTime,
			&r.TotalDurationSec, &r.TimeAsleepSec, &r.SleepScore, &r.Source,
			&r.DeepSec, &r.LightSec, &r.RemSec, &r.AwakeSec); err != nil {
			return nil, fmt.Errorf("scanning sleep entry: %w", err)
		}
		byID[r.ID.String()] = len(result)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	stageRows, err := db.Pool.Query(ctx, `
		SELECT s.id, s.entry_id, s.owner_id, s.stage_type, s.start_time, s.end_time, s.duration_sec
		FROM sleep_stage_events s
		JOIN sleep_entries e ON e.id = s.entry_id
		WHERE e.owner_id = $1 AND e.date >= $2 AND e.date < $3
		ORDER BY s.start_time ASC
	`, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sleep stages: %w", err)
	}
	defer stageRows.Close()

	for stageRows.Next() {
		var s models.SleepStageEvent
		if err := stageRows.Scan(&s.ID, &s.EntryID, &s.OwnerID, &s.StageType,
			&s.StartTime, &s.EndTime, &s.DurationSec); err != nil {
			return nil, fmt.Errorf("scanning sleep stage: %w", err)
		}
		if i, ok := byID[s.EntryID.String()]; ok {
			result[i].Stages = append(result[i].Stages, s)
		}
	}
	return result, stageRows.Err()
}
