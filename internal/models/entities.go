package models

import (
	"time"

	"github.com/google/uuid"
)

// Category value kinds. Immutable once a category exists: a numeric category
// never silently becomes text.
const (
	ValueKindNumeric = "numeric"
	ValueKindText    = "text"
)

// Category sampling frequencies. Sub-daily categories include the hour in
// their upsert key.
const (
	FrequencyDaily  = "daily"
	FrequencyHourly = "hourly"
)

// MeasurementCategory is a per-owner metric definition, created lazily the
// first time an unrecognized metric name arrives.
type MeasurementCategory struct {
	ID        int64  `json:"id"`
	OwnerID   int    `json:"owner_id"`
	Name      string `json:"name"`
	ValueKind string `json:"value_kind"`
	Frequency string `json:"frequency"`
}

// MeasurementSample is one stored value for a category. Exactly one of
// NumericValue/TextValue is set, matching the category's value kind.
// Upsert key: (category, owner, date, hour) for hourly categories,
// (category, owner, date) for daily ones.
type MeasurementSample struct {
	CategoryID   int64     `json:"category_id"`
	OwnerID      int       `json:"owner_id"`
	NumericValue *float64  `json:"numeric_value,omitempty"`
	TextValue    *string   `json:"text_value,omitempty"`
	Date         time.Time `json:"date"`
	Hour         int       `json:"hour"`
	Timestamp    time.Time `json:"timestamp"`
	Note         string    `json:"note,omitempty"`
	Source       string    `json:"source"`
}

// CheckInMeasurement is the one-row-per-day record of named numeric fields.
// Nil fields are left untouched on merge; only explicitly set fields
// overwrite stored values.
type CheckInMeasurement struct {
	OwnerID      int       `json:"owner_id"`
	Date         time.Time `json:"date"`
	Steps        *int64    `json:"steps,omitempty"`
	WaterML      *int64    `json:"water_ml,omitempty"`
	Weight       *float64  `json:"weight,omitempty"`
	BodyFatPct   *float64  `json:"body_fat_percentage,omitempty"`
	BMI          *float64  `json:"bmi,omitempty"`
	BodyWaterPct *float64  `json:"body_water_percentage,omitempty"`
	BoneMassKg   *float64  `json:"bone_mass,omitempty"`
	MuscleMassKg *float64  `json:"muscle_mass,omitempty"`
	Mood         *int      `json:"mood,omitempty"`
	MoodNote     *string   `json:"mood_note,omitempty"`
}

// SleepEntry is one night of sleep for (owner, date, source). A resync for
// the same triple updates the row in place instead of duplicating it.
type SleepEntry struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          int       `json:"owner_id"`
	Date             time.Time `json:"date"`
	Bedtime          time.Time `json:"bedtime"`
	WakeTime         time.Time `json:"wake_time"`
	TotalDurationSec int       `json:"total_duration_sec"`
	TimeAsleepSec    int       `json:"time_asleep_sec"`
	SleepScore       int       `json:"sleep_score"`
	Source           string    `json:"source"`
	DeepSec          int       `json:"deep_sec"`
	LightSec         int       `json:"light_sec"`
	RemSec           int       `json:"rem_sec"`
	AwakeSec         int       `json:"awake_sec"`
}

// SleepStageEvent is a timed sub-interval of a sleep entry. Stage events are
// owned exclusively by one entry and replaced wholesale on update.
type SleepStageEvent struct {
	ID          uuid.UUID `json:"id"`
	EntryID     uuid.UUID `json:"entry_id"`
	OwnerID     int       `json:"owner_id"`
	StageType   string    `json:"stage_type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationSec int       `json:"duration_sec"`
}

// ExerciseDefinition is a per-owner exercise, created on first sight of a
// given (owner, name) pair.
type ExerciseDefinition struct {
	ID              int64   `json:"id"`
	OwnerID         int     `json:"owner_id"`
	Name            string  `json:"name"`
	CaloriesPerHour float64 `json:"calories_per_hour"`
	Source          string  `json:"source"`
}

// ExerciseEntry records one performed session of an exercise.
type ExerciseEntry struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        int       `json:"owner_id"`
	DefinitionID   int64     `json:"definition_id"`
	Date           time.Time `json:"date"`
	DurationMin    float64   `json:"duration_min"`
	CaloriesBurned float64   `json:"calories_burned"`
	DistanceKm     *float64  `json:"distance_km,omitempty"`
	Source         string    `json:"source"`
}

// ActivityDetail stores a verbatim provider payload attached to an exercise
// entry. Opaque: persisted for audit and debugging, never parsed again.
type ActivityDetail struct {
	ID      uuid.UUID `json:"id"`
	EntryID uuid.UUID `json:"entry_id"`
	OwnerID int       `json:"owner_id"`
	Kind    string    `json:"kind"`
	Source  string    `json:"source"`
	Payload []byte    `json:"payload"`
}

// Profile holds the optional demographic data the sleep scorer consumes.
// Either field may be absent.
type Profile struct {
	OwnerID   int        `json:"owner_id"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    string     `json:"gender,omitempty"`
}

// AgeOn returns the owner's age in whole years on the given date, or nil
// when no birth date is known. The year difference is reduced by one until
// the birthday has passed.
func (p *Profile) AgeOn(date time.Time) *int {
	if p == nil || p.BirthDate == nil {
		return nil
	}
	b := *p.BirthDate
	age := date.Year() - b.Year()
	if date.Month() < b.Month() || (date.Month() == b.Month() && date.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return &age
}
