package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexTime handles the timestamp formats producers actually send:
// RFC 3339, the space-separated variant with a numeric zone, and
// date-only strings used by daily aggregates.
type FlexTime struct {
	time.Time
}

const (
	flexSpaceLayout = "2006-01-02 15:04:05 -0700"
	DateOnlyLayout  = "2006-01-02"
)

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	return t.Parse(s)
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}

// Parse tries RFC 3339 first, then the space-separated layout, then date-only.
func (t *FlexTime) Parse(s string) error {
	for _, layout := range []string{time.RFC3339, flexSpaceLayout, DateOnlyLayout} {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", s)
}

// ParseFlexTime parses a producer time string into a time.Time.
func ParseFlexTime(s string) (time.Time, error) {
	var t FlexTime
	if err := t.Parse(s); err != nil {
		return time.Time{}, err
	}
	return t.Time, nil
}

// EventKind is the closed set of event types the pipeline dispatches on.
// Unrecognized type strings fall through to KindCustomMeasurement.
type EventKind int

const (
	KindStep EventKind = iota
	KindWater
	KindWeight
	KindBodyFat
	KindBodyComposition
	KindActiveCalories
	KindSleepSession
	KindStressSample
	KindExerciseSession
	KindWorkout
	KindCustomMeasurement
)

func (k EventKind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindWater:
		return "water"
	case KindWeight:
		return "weight"
	case KindBodyFat:
		return "body_fat"
	case KindBodyComposition:
		return "body_composition"
	case KindActiveCalories:
		return "active_calories"
	case KindSleepSession:
		return "sleep_session"
	case KindStressSample:
		return "stress_sample"
	case KindExerciseSession:
		return "exercise_session"
	case KindWorkout:
		return "workout"
	default:
		return "custom_measurement"
	}
}

// KindOf maps a wire type string to its EventKind. Matching is
// case-insensitive and tolerates the snake_case and CamelCase variants
// different producers use for the same thing.
func KindOf(typ string) EventKind {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "step", "steps":
		return KindStep
	case "water", "hydration":
		return KindWater
	case "weight", "body_weight":
		return KindWeight
	case "body_fat", "body_fat_percentage":
		return KindBodyFat
	case "body_composition":
		return KindBodyComposition
	case "active_calories", "active_energy":
		return KindActiveCalories
	case "sleep", "sleep_session", "sleepsession":
		return KindSleepSession
	case "stress", "stress_sample", "stresssample":
		return KindStressSample
	case "exercise", "exercise_session", "exercisesession", "activity":
		return KindExerciseSession
	case "workout":
		return KindWorkout
	default:
		return KindCustomMeasurement
	}
}

// IsComplex reports whether the kind carries a structured payload instead of
// a single scalar value.
func (k EventKind) IsComplex() bool {
	switch k {
	case KindSleepSession, KindStressSample, KindExerciseSession, KindWorkout, KindBodyComposition:
		return true
	}
	return false
}

// IsSession reports whether the kind is a session event subject to the
// deduplication pre-pass.
func (k EventKind) IsSession() bool {
	switch k {
	case KindSleepSession, KindExerciseSession, KindWorkout:
		return true
	}
	return false
}

// StageEventPayload is one timed sleep stage interval as sent by a producer.
type StageEventPayload struct {
	StageType         string   `json:"stage_type"`
	StartTime         FlexTime `json:"start_time"`
	EndTime           FlexTime `json:"end_time"`
	DurationInSeconds int      `json:"duration_in_seconds"`
}

// StressReading is one intraday stress sample. Negative values mean the
// device had no data for that interval.
type StressReading struct {
	Time        FlexTime `json:"time"`
	StressLevel float64  `json:"stress_level"`
}

// HealthEvent is a single raw telemetry event from an ingest batch. Only
// Type is always present; the rest depends on the event kind. It is never
// persisted as-is.
type HealthEvent struct {
	Type      string `json:"type"`
	Value     any    `json:"value,omitempty"`
	Date      string `json:"date,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Source    string `json:"source,omitempty"`
	Note      string `json:"note,omitempty"`

	// Custom measurement hints.
	CategoryName string `json:"category,omitempty"`
	ValueKind    string `json:"value_kind,omitempty"`
	Frequency    string `json:"frequency,omitempty"`

	// Sleep session fields.
	Bedtime             FlexTime            `json:"bedtime,omitzero"`
	WakeTime            FlexTime            `json:"wake_time,omitzero"`
	DurationInSeconds   int                 `json:"duration_in_seconds,omitempty"`
	TimeAsleepInSeconds int                 `json:"time_asleep_in_seconds,omitempty"`
	StageEvents         []StageEventPayload `json:"stage_events,omitempty"`

	// Stress sample fields.
	Readings []StressReading `json:"readings,omitempty"`

	// Exercise/workout session fields.
	Name              string          `json:"name,omitempty"`
	ActivityType      string          `json:"activity_type,omitempty"`
	DurationInMinutes float64         `json:"duration_in_minutes,omitempty"`
	CaloriesBurned    float64         `json:"calories_burned,omitempty"`
	DistanceKm        *float64        `json:"distance_km,omitempty"`
	RawPayload        json.RawMessage `json:"raw_payload,omitempty"`

	// Body composition fields (partial; absent fields stay nil).
	Weight        *float64 `json:"weight,omitempty"`
	BodyFatPct    *float64 `json:"body_fat_percentage,omitempty"`
	BMI           *float64 `json:"bmi,omitempty"`
	BodyWaterPct  *float64 `json:"body_water_percentage,omitempty"`
	BoneMassKg    *float64 `json:"bone_mass,omitempty"`
	MuscleMassKg  *float64 `json:"muscle_mass,omitempty"`
}

// Kind returns the event's dispatch kind.
func (e *HealthEvent) Kind() EventKind {
	return KindOf(e.Type)
}

// ResolveDate resolves the calendar date an event belongs to. Exactly one of
// Date or Timestamp must yield a valid date; Date wins when both are set.
func (e *HealthEvent) ResolveDate() (time.Time, error) {
	s := e.Date
	if s == "" {
		s = e.Timestamp
	}
	if s == "" {
		return time.Time{}, fmt.Errorf("event %q has neither date nor timestamp", e.Type)
	}
	t, err := ParseFlexTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %q: %w", e.Type, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ResolveTimestamp returns the full event timestamp when one was sent, or
// midnight of the event date otherwise.
func (e *HealthEvent) ResolveTimestamp() (time.Time, error) {
	if e.Timestamp != "" {
		return ParseFlexTime(e.Timestamp)
	}
	return e.ResolveDate()
}

// ScalarFloat coerces the event value to a float64. JSON numbers come back
// as float64 from encoding/json; numeric strings are parsed so producers
// that quote everything still work.
func (e *HealthEvent) ScalarFloat() (float64, bool) {
	switch v := e.Value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ScalarString renders the event value as text.
func (e *HealthEvent) ScalarString() (string, bool) {
	switch v := e.Value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}
