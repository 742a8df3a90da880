package ingest

import (
	"context"
	"time"

	"github.com/vitalsink/vitalsink/internal/models"
)

// Store is the persistence surface the pipeline writes through. The storage
// package implements it over Postgres; tests use in-memory fakes. Every
// method represents one transaction-scoped mutation or lookup; the store
// must guarantee uniqueness on (owner, category name) and (owner, exercise
// name) so lazy creation is race-safe, and SaveSleepEntry must replace the
// entry and its stages atomically.
type Store interface {
	// Category registry.
	ResolveOrCreateCategory(ctx context.Context, ownerID int, name, valueKind, frequency string) (*models.MeasurementCategory, error)
	UpsertSample(ctx context.Context, s models.MeasurementSample) error

	// Daily check-in record. Nil fields must be left untouched.
	MergeCheckIn(ctx context.Context, c models.CheckInMeasurement) error

	// Sleep entries and their stage events.
	FindSleepEntry(ctx context.Context, ownerID int, date time.Time, source string) (*models.SleepEntry, error)
	SaveSleepEntry(ctx context.Context, entry *models.SleepEntry, stages []models.SleepStageEvent) error
	DeleteSleepRange(ctx context.Context, ownerID int, source string, from, to time.Time) error

	// Exercise definitions, entries, and opaque details.
	ResolveOrCreateExercise(ctx context.Context, ownerID int, name string, caloriesPerHour float64, source string) (*models.ExerciseDefinition, error)
	InsertExerciseEntry(ctx context.Context, entry models.ExerciseEntry, detail *models.ActivityDetail) error
	DeleteExerciseRange(ctx context.Context, ownerID int, source string, from, to time.Time) error

	// Profile lookup. Returns (nil, nil) when the owner has no profile.
	GetProfile(ctx context.Context, ownerID int) (*models.Profile, error)
}
