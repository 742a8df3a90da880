package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitalsink/vitalsink/internal/models"
)

// SourceManual is assigned to events that arrive without a producer source.
const SourceManual = "manual"

// Pipeline normalizes and persists batches of raw health events. One batch
// is processed sequentially, event by event: later events may depend on
// category or exercise-definition rows created by earlier ones.
type Pipeline struct {
	store Store
	log   *slog.Logger
}

// NewPipeline creates a Pipeline writing through the given store.
func NewPipeline(store Store, log *slog.Logger) *Pipeline {
	return &Pipeline{store: store, log: log}
}

// ProcessedEvent is the per-event success record returned to the caller.
type ProcessedEvent struct {
	Type   string `json:"type"`
	Date   string `json:"date"`
	Source string `json:"source"`
	Status string `json:"status"`
}

// EventError is one failed event with the entry that caused it. Callers get
// the full rejected entry back so they can correct and resubmit it.
type EventError struct {
	Entry   models.HealthEvent `json:"entry"`
	Message string             `json:"message"`
}

// Result is the batch outcome. Both lists are always populated: a non-empty
// Errors list never hides the events that did succeed.
type Result struct {
	Processed []ProcessedEvent `json:"processed"`
	Errors    []EventError     `json:"errors,omitempty"`
}

// OK reports whether every event in the batch was applied.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Ingest applies a batch of events for one owner. The deduplication
// pre-pass runs first; its failure aborts the batch. After that, every
// event failure is captured in Result.Errors and processing continues —
// one bad event never aborts the batch. The error return is reserved for
// batch-wide failures.
func (p *Pipeline) Ingest(ctx context.Context, events []models.HealthEvent, ownerID int) (*Result, error) {
	for i := range events {
		if events[i].Source == "" {
			events[i].Source = SourceManual
		}
	}

	if err := p.commitDedup(ctx, ownerID, PlanDedup(events)); err != nil {
		return nil, fmt.Errorf("dedup pre-pass: %w", err)
	}

	result := &Result{Processed: []ProcessedEvent{}}
	for i := range events {
		e := &events[i]
		if err := p.processEvent(ctx, e, ownerID); err != nil {
			p.log.Warn("event rejected", "type", e.Type, "source", e.Source, "error", err)
			result.Errors = append(result.Errors, EventError{Entry: *e, Message: err.Error()})
			continue
		}
		date, _ := e.ResolveDate()
		result.Processed = append(result.Processed, ProcessedEvent{
			Type:   e.Type,
			Date:   date.Format(models.DateOnlyLayout),
			Source: e.Source,
			Status: "success",
		})
	}

	p.log.Info("batch ingested",
		"owner", ownerID,
		"events", len(events),
		"processed", len(result.Processed),
		"errors", len(result.Errors),
	)
	return result, nil
}

// processEvent validates and dispatches a single event. Any error returned
// here is recorded against this event only.
func (p *Pipeline) processEvent(ctx context.Context, e *models.HealthEvent, ownerID int) error {
	date, err := e.ResolveDate()
	if err != nil {
		return validationf("date", "%v", err)
	}

	kind := e.Kind()
	if !kind.IsComplex() && e.Value == nil {
		return validationf("value", "required for %s events", kind)
	}

	switch kind {
	case models.KindStep:
		return p.handleStep(ctx, e, ownerID, date)
	case models.KindWater:
		return p.handleWater(ctx, e, ownerID, date)
	case models.KindWeight:
		return p.handleWeight(ctx, e, ownerID, date)
	case models.KindBodyFat:
		return p.handleBodyFat(ctx, e, ownerID, date)
	case models.KindBodyComposition:
		return p.handleBodyComposition(ctx, e, ownerID, date)
	case models.KindActiveCalories:
		return p.handleActiveCalories(ctx, e, ownerID, date)
	case models.KindSleepSession:
		return p.handleSleep(ctx, e, ownerID, date)
	case models.KindStressSample:
		return p.handleStress(ctx, e, ownerID, date)
	case models.KindExerciseSession, models.KindWorkout:
		return p.handleExercise(ctx, e, ownerID, date)
	default:
		return p.handleCustom(ctx, e, ownerID, date)
	}
}
