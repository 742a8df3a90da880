package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vitalsink/vitalsink/internal/models"
	"github.com/vitalsink/vitalsink/internal/sleep"
)

// handleSleep normalizes a sleep session, scores it, and upserts the entry
// by (owner, date, source), replacing its stage events wholesale.
func (p *Pipeline) handleSleep(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	bedtime := e.Bedtime.Time
	wakeTime := e.WakeTime.Time
	if bedtime.IsZero() || wakeTime.IsZero() {
		return validationf("bedtime", "sleep session needs bedtime and wake_time")
	}
	if !wakeTime.After(bedtime) {
		return validationf("wake_time", "must be after bedtime")
	}

	totalSec := e.DurationInSeconds
	if totalSec == 0 {
		totalSec = int(wakeTime.Sub(bedtime).Seconds())
	}
	if totalSec <= 0 {
		return validationf("duration_in_seconds", "must be positive, got %d", totalSec)
	}

	stages, err := normalizeStages(e.StageEvents)
	if err != nil {
		return err
	}
	if len(stages) == 0 {
		// Minimal payload: synthesize one light stage spanning the whole
		// night so downstream consumers always see at least one stage.
		stages = []models.SleepStageEvent{{
			StageType:   models.StageLight,
			StartTime:   bedtime,
			EndTime:     wakeTime,
			DurationSec: int(wakeTime.Sub(bedtime).Seconds()),
		}}
	}

	var deepSec, lightSec, remSec, awakeSec int
	scoreStages := make([]sleep.Stage, len(stages))
	for i, s := range stages {
		scoreStages[i] = sleep.Stage{Type: s.StageType, DurationSec: s.DurationSec}
		switch s.StageType {
		case models.StageDeep:
			deepSec += s.DurationSec
		case models.StageLight:
			lightSec += s.DurationSec
		case models.StageREM:
			remSec += s.DurationSec
		case models.StageAwake:
			awakeSec += s.DurationSec
		}
	}

	asleepSec := e.TimeAsleepInSeconds
	if asleepSec <= 0 {
		asleepSec = deepSec + lightSec + remSec
	}

	profile, err := p.store.GetProfile(ctx, ownerID)
	if err != nil {
		return storeErr("profile lookup", err)
	}
	var gender string
	if profile != nil {
		gender = profile.Gender
	}

	score := sleep.Score(sleep.Input{
		TotalDurationSec: totalSec,
		TimeAsleepSec:    asleepSec,
		Stages:           scoreStages,
		Age:              profile.AgeOn(date),
		Gender:           gender,
	})

	entry := &models.SleepEntry{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Date:             date,
		Bedtime:          bedtime,
		WakeTime:         wakeTime,
		TotalDurationSec: totalSec,
		TimeAsleepSec:    asleepSec,
		SleepScore:       score,
		Source:           e.Source,
		DeepSec:          deepSec,
		LightSec:         lightSec,
		RemSec:           remSec,
		AwakeSec:         awakeSec,
	}

	existing, err := p.store.FindSleepEntry(ctx, ownerID, date, e.Source)
	if err != nil {
		return storeErr("sleep lookup", err)
	}
	if existing != nil {
		entry.ID = existing.ID
	}

	for i := range stages {
		stages[i].ID = uuid.New()
		stages[i].EntryID = entry.ID
		stages[i].OwnerID = ownerID
	}

	return storeErr("save sleep entry", p.store.SaveSleepEntry(ctx, entry, stages))
}

// normalizeStages validates producer stage payloads and maps stage names to
// the canonical set. Durations missing from the payload are derived from
// the interval bounds.
func normalizeStages(raw []models.StageEventPayload) ([]models.SleepStageEvent, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	stages := make([]models.SleepStageEvent, 0, len(raw))
	for i, sp := range raw {
		stageType, _ := models.NormalizeStageType(sp.StageType)
		if stageType == "" {
			return nil, validationf("stage_events", "stage %d has no stage_type", i)
		}
		start, end := sp.StartTime.Time, sp.EndTime.Time
		durSec := sp.DurationInSeconds
		if durSec == 0 && !start.IsZero() && !end.IsZero() {
			durSec = int(end.Sub(start).Seconds())
		}
		if durSec < 0 {
			return nil, validationf("stage_events", "stage %d has negative duration", i)
		}
		stages = append(stages, models.SleepStageEvent{
			StageType:   stageType,
			StartTime:   start,
			EndTime:     end,
			DurationSec: durSec,
		})
	}
	return stages, nil
}

// handleExercise resolves or creates the exercise definition, records the
// entry, and attaches the raw provider payload when one accompanies the
// event.
func (p *Pipeline) handleExercise(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	name := exerciseName(e)
	if e.DurationInMinutes < 0 {
		return validationf("duration_in_minutes", "must be non-negative, got %v", e.DurationInMinutes)
	}
	if e.CaloriesBurned < 0 {
		return validationf("calories_burned", "must be non-negative, got %v", e.CaloriesBurned)
	}

	// Implied burn rate seeds brand-new definitions only; existing ones
	// keep their stored rate.
	var caloriesPerHour float64
	if e.DurationInMinutes > 0 {
		caloriesPerHour = e.CaloriesBurned / e.DurationInMinutes * 60
	}

	def, err := p.store.ResolveOrCreateExercise(ctx, ownerID, name, caloriesPerHour, e.Source)
	if err != nil {
		return storeErr("resolve exercise", err)
	}

	entry := models.ExerciseEntry{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		DefinitionID:   def.ID,
		Date:           date,
		DurationMin:    e.DurationInMinutes,
		CaloriesBurned: e.CaloriesBurned,
		DistanceKm:     e.DistanceKm,
		Source:         e.Source,
	}

	var detail *models.ActivityDetail
	if len(e.RawPayload) > 0 {
		detail = &models.ActivityDetail{
			ID:      uuid.New(),
			EntryID: entry.ID,
			OwnerID: ownerID,
			Kind:    e.Kind().String(),
			Source:  e.Source,
			Payload: e.RawPayload,
		}
	}

	return storeErr("insert exercise entry", p.store.InsertExerciseEntry(ctx, entry, detail))
}

// exerciseName derives the definition name from the event: explicit name
// first, then the activity type with underscores humanized, then a
// source-tagged fallback.
func exerciseName(e *models.HealthEvent) string {
	if e.Name != "" {
		return e.Name
	}
	if e.ActivityType != "" {
		words := strings.Fields(strings.ReplaceAll(e.ActivityType, "_", " "))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
		return strings.Join(words, " ")
	}
	return e.Source + " workout"
}

// handleStress averages the day's valid stress readings and stores the
// derived mood on the check-in record. Negative readings mean the device
// had no data; a batch with none at all is a no-op, not an error.
func (p *Pipeline) handleStress(ctx context.Context, e *models.HealthEvent, ownerID int, date time.Time) error {
	var sum float64
	var n int
	for _, r := range e.Readings {
		if r.StressLevel >= 0 {
			sum += r.StressLevel
			n++
		}
	}
	if n == 0 {
		return nil
	}

	avg := sum / float64(n)
	mood, category := moodFromStress(avg)
	note := fmt.Sprintf("Derived from stress: average %.0f (%s)", avg, category)

	return storeErr("merge check-in", p.store.MergeCheckIn(ctx, models.CheckInMeasurement{
		OwnerID:  ownerID,
		Date:     date,
		Mood:     &mood,
		MoodNote: &note,
	}))
}

// moodFromStress maps an average stress level (0–100, higher is worse) to a
// mood value (0–100, higher is better) and its category label.
func moodFromStress(level float64) (int, string) {
	switch {
	case level <= 10:
		return 95, "Excited"
	case level <= 25:
		return 85, "Happy"
	case level <= 35:
		return 75, "Confident"
	case level <= 50:
		return 65, "Calm"
	case level <= 60:
		return 55, "Thoughtful"
	case level <= 75:
		return 45, "Neutral"
	case level <= 85:
		return 35, "Worried"
	case level <= 95:
		return 25, "Angry"
	case level <= 100:
		return 15, "Sad/Tired"
	default:
		return 50, "Neutral"
	}
}
