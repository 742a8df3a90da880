package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestParseFlexTimeLayouts verifies all three accepted timestamp layouts parse.
func TestParseFlexTimeLayouts(t *testing.T) {
	cases := []string{
		"2024-06-15T07:00:00Z",
		"2024-06-15 07:00:00 +0000",
		"2024-06-15",
	}
	for _, s := range cases {
		got, err := ParseFlexTime(s)
		if err != nil {
			t.Errorf("ParseFlexTime(%q) error: %v", s, err)
			continue
		}
		if got.Year() != 2024 || got.Month() != time.June || got.Day() != 15 {
			t.Errorf("ParseFlexTime(%q) = %v, want 2024-06-15", s, got)
		}
	}
}

// TestParseFlexTimeInvalid verifies garbage input fails rather than
// silently producing a zero time.
func TestParseFlexTimeInvalid(t *testing.T) {
	if _, err := ParseFlexTime("not-a-date"); err == nil {
		t.Error("expected error for invalid time string")
	}
}

// TestKindOfVariants verifies producer type-string spellings map to the same kind.
func TestKindOfVariants(t *testing.T) {
	cases := map[string]EventKind{
		"step":          KindStep,
		"steps":         KindStep,
		"Water":         KindWater,
		"hydration":     KindWater,
		"weight":        KindWeight,
		"SleepSession":  KindSleepSession,
		"sleep_session": KindSleepSession,
		"stress":        KindStressSample,
		"workout":       KindWorkout,
		"exercise":      KindExerciseSession,
		"vo2_max":       KindCustomMeasurement,
		"":              KindCustomMeasurement,
	}
	for typ, want := range cases {
		if got := KindOf(typ); got != want {
			t.Errorf("KindOf(%q) = %v, want %v", typ, got, want)
		}
	}
}

// TestKindClassification verifies the complex/session split the orchestrator
// relies on: stress is complex but not a session, scalars are neither.
func TestKindClassification(t *testing.T) {
	if !KindStressSample.IsComplex() {
		t.Error("stress_sample should be complex")
	}
	if KindStressSample.IsSession() {
		t.Error("stress_sample should not be a session")
	}
	for _, k := range []EventKind{KindSleepSession, KindExerciseSession, KindWorkout} {
		if !k.IsSession() || !k.IsComplex() {
			t.Errorf("%v should be both session and complex", k)
		}
	}
	if KindStep.IsComplex() || KindStep.IsSession() {
		t.Error("step should be a plain scalar kind")
	}
}

// TestResolveDatePrefersDate verifies Date wins over Timestamp when both are set.
func TestResolveDatePrefersDate(t *testing.T) {
	e := HealthEvent{Type: "step", Date: "2024-06-15", Timestamp: "2024-06-16T01:00:00Z"}
	d, err := e.ResolveDate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Day() != 15 {
		t.Errorf("day = %d, want 15", d.Day())
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Errorf("resolved date should be midnight, got %v", d)
	}
}

// TestResolveDateMissing verifies an event with neither field fails.
func TestResolveDateMissing(t *testing.T) {
	e := HealthEvent{Type: "step"}
	if _, err := e.ResolveDate(); err == nil {
		t.Error("expected error when neither date nor timestamp is set")
	}
}

// TestScalarFloatCoercion verifies JSON numbers and numeric strings both
// coerce, and non-numeric strings are rejected.
func TestScalarFloatCoercion(t *testing.T) {
	var e HealthEvent
	if err := json.Unmarshal([]byte(`{"type":"step","value":10000,"date":"2024-06-15"}`), &e); err != nil {
		t.Fatal(err)
	}
	if f, ok := e.ScalarFloat(); !ok || f != 10000 {
		t.Errorf("ScalarFloat = %v, %v; want 10000, true", f, ok)
	}

	e.Value = " 72.5 "
	if f, ok := e.ScalarFloat(); !ok || f != 72.5 {
		t.Errorf("ScalarFloat = %v, %v; want 72.5, true", f, ok)
	}

	e.Value = "excellent"
	if _, ok := e.ScalarFloat(); ok {
		t.Error("non-numeric string should not coerce to float")
	}
}

// TestAgeOnBirthdayBoundary verifies the floor-of-year-difference adjustment
// when the birthday has not yet passed.
func TestAgeOnBirthdayBoundary(t *testing.T) {
	birth := time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC)
	p := &Profile{OwnerID: 1, BirthDate: &birth}

	before := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if age := p.AgeOn(before); age == nil || *age != 29 {
		t.Errorf("age before birthday = %v, want 29", age)
	}

	after := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	if age := p.AgeOn(after); age == nil || *age != 30 {
		t.Errorf("age on birthday = %v, want 30", age)
	}
}

// TestAgeOnNoBirthDate verifies a missing birth date yields nil, not zero.
func TestAgeOnNoBirthDate(t *testing.T) {
	p := &Profile{OwnerID: 1}
	if age := p.AgeOn(time.Now()); age != nil {
		t.Errorf("age = %v, want nil", age)
	}
	var nilProfile *Profile
	if age := nilProfile.AgeOn(time.Now()); age != nil {
		t.Errorf("nil profile age = %v, want nil", age)
	}
}

// TestNormalizeStageType verifies canonical, Apple, and unknown stage names.
func TestNormalizeStageType(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"deep", StageDeep, true},
		{"REM", StageREM, true},
		{"Core", StageLight, true},
		{"Asleep", StageLight, true},
		{"In Bed", StageAwake, true},
		{"hypnagogic", "hypnagogic", false},
	}
	for _, c := range cases {
		got, ok := NormalizeStageType(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormalizeStageType(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
