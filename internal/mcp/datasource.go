package mcp

import (
	"context"
	"time"

	"github.com/vitalsink/vitalsink/internal/models"
	"github.com/vitalsink/vitalsink/internal/storage"
)

// DataSource abstracts the data layer for MCP tools.
type DataSource interface {
	QuerySleepEntries(ctx context.Context, ownerID int, start, end time.Time) ([]storage.SleepEntryResult, error)
	GetSleepSummary(ctx context.Context, ownerID int, start, end time.Time, bucket string) ([]storage.SleepSummaryPeriod, error)
	QuerySamples(ctx context.Context, ownerID int, category string, start, end time.Time) ([]storage.MeasurementPoint, error)
	ListCategories(ctx context.Context, ownerID int) ([]models.MeasurementCategory, error)
	QueryExerciseLog(ctx context.Context, ownerID int, start, end time.Time) ([]storage.ExerciseLogRow, error)
	QueryCheckIns(ctx context.Context, ownerID int, start, end time.Time) ([]models.CheckInMeasurement, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
