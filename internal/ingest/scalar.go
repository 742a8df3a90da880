package ingest

import (
	"context"
	"math"
	"time"

	"github.com/vitalsink/vitalsink/internal/models"
)

// CategoryActiveCalories is the built-in category active-calorie events
// land in. Provisioned through the registry like any custom metric.
const CategoryActiveCalories = "Active Calories"

func (p *Pipeline) handleStep(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	steps, err := nonNegativeInt(e, "steps")
	if err != nil {
		return err
	}
	return storeErr("merge check-in", p.store.MergeCheckIn(ctx, models.CheckInMeasurement{
		OwnerID: ownerID,
		Date:    date,
		Steps:   &steps,
	}))
}

func (p *Pipeline) handleWater(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	ml, err := nonNegativeInt(e, "water")
	if err != nil {
		return err
	}
	return storeErr("merge check-in", p.store.MergeCheckIn(ctx, models.CheckInMeasurement{
		OwnerID: ownerID,
		Date:    date,
		WaterML: &ml,
	}))
}

func (p *Pipeline) handleWeight(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	kg, err := positiveFloat(e, "weight")
	if err != nil {
		return err
	}
	return storeErr("merge check-in", p.store.MergeCheckIn(ctx, models.CheckInMeasurement{
		OwnerID: ownerID,
		Date:    date,
		Weight:  &kg,
	}))
}

func (p *Pipeline) handleBodyFat(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	pct, err := positiveFloat(e, "body_fat_percentage")
	if err != nil {
		return err
	}
	return storeErr("merge check-in", p.store.MergeCheckIn(ctx, models.CheckInMeasurement{
		OwnerID:    ownerID,
		Date:       date,
		BodyFatPct: &pct,
	}))
}

// handleBodyComposition merges a multi-field scale reading. Absent fields
// stay nil so they never null out previously stored values.
func (p *Pipeline) handleBodyComposition(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	if e.Weight == nil && e.BodyFatPct == nil && e.BMI == nil &&
		e.BodyWaterPct == nil && e.BoneMassKg == nil && e.MuscleMassKg == nil {
		return validationf("body_composition", "no measurement fields set")
	}
	for field, v := range map[string]*float64{
		"weight":              e.Weight,
		"body_fat_percentage": e.BodyFatPct,
		"bmi":                 e.BMI,
	} {
		if v != nil && *v <= 0 {
			return validationf(field, "must be a positive number, got %v", *v)
		}
	}
	return storeErr("merge check-in", p.store.MergeCheckIn(ctx, models.CheckInMeasurement{
		OwnerID:      ownerID,
		Date:         date,
		Weight:       e.Weight,
		BodyFatPct:   e.BodyFatPct,
		BMI:          e.BMI,
		BodyWaterPct: e.BodyWaterPct,
		BoneMassKg:   e.BoneMassKg,
		MuscleMassKg: e.MuscleMassKg,
	}))
}

func (p *Pipeline) handleActiveCalories(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	kcal, ok := e.ScalarFloat()
	if !ok {
		return validationf("value", "active calories must be numeric")
	}
	if kcal < 0 {
		return validationf("value", "active calories must be non-negative, got %v", kcal)
	}

	cat, err := p.store.ResolveOrCreateCategory(ctx, ownerID, CategoryActiveCalories, models.ValueKindNumeric, models.FrequencyDaily)
	if err != nil {
		return storeErr("resolve category", err)
	}
	ts, _ := e.ResolveTimestamp()
	return storeErr("upsert sample", p.store.UpsertSample(ctx, models.MeasurementSample{
		CategoryID:   cat.ID,
		OwnerID:      ownerID,
		NumericValue: &kcal,
		Date:         date,
		Timestamp:    ts,
		Note:         e.Note,
		Source:       e.Source,
	}))
}

// handleCustom is the fallback for any unrecognized metric name. The
// category is resolved or created from the event's hints, then the value is
// coerced to the category's declared kind: numeric parse failures are
// rejected, text passes through unchanged. Coercion never mutates the
// category's value kind.
func (p *Pipeline) handleCustom(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	name := e.CategoryName
	if name == "" {
		name = e.Type
	}
	if name == "" {
		return validationf("category", "custom measurement needs a category or type name")
	}

	valueKind := e.ValueKind
	if valueKind == "" {
		valueKind = models.ValueKindNumeric
	}
	frequency := e.Frequency
	if frequency == "" {
		frequency = models.FrequencyDaily
	}

	cat, err := p.store.ResolveOrCreateCategory(ctx, ownerID, name, valueKind, frequency)
	if err != nil {
		return storeErr("resolve category", err)
	}

	sample := models.MeasurementSample{
		CategoryID: cat.ID,
		OwnerID:    ownerID,
		Date:       date,
		Note:       e.Note,
		Source:     e.Source,
	}
	sample.Timestamp, _ = e.ResolveTimestamp()
	if cat.Frequency == models.FrequencyHourly {
		sample.Hour = sample.Timestamp.Hour()
	}

	switch cat.ValueKind {
	case models.ValueKindNumeric:
		f, ok := e.ScalarFloat()
		if !ok {
			return validationf("value", "category %q is numeric; got non-numeric value %v", cat.Name, e.Value)
		}
		sample.NumericValue = &f
	default:
		s, ok := e.ScalarString()
		if !ok {
			return validationf("value", "category %q needs a text value", cat.Name)
		}
		sample.TextValue = &s
	}

	return storeErr("upsert sample", p.store.UpsertSample(ctx, sample))
}

// nonNegativeInt validates the event value as a non-negative whole number.
func nonNegativeInt(e *models.HealthEvent, field string) (int64, error) {
	f, ok := e.ScalarFloat()
	if !ok {
		return 0, validationf(field, "must be a number, got %v", e.Value)
	}
	if f < 0 {
		return 0, validationf(field, "must be non-negative, got %v", f)
	}
	if f != math.Trunc(f) {
		return 0, validationf(field, "must be a whole number, got %v", f)
	}
	return int64(f), nil
}

// positiveFloat validates the event value as a strictly positive number.
func positiveFloat(e *models.HealthEvent, field string) (float64, error) {
	f, ok := e.ScalarFloat()
	if !ok {
		return 0, validationf(field, "must be a number, got %v", e.Value)
	}
	if f <= 0 {
		return 0, validationf(field, "must be a positive number, got %v", f)
	}
	return f, nil
}
