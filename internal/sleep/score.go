// Package sleep computes the 0–100 sleep quality score from a night's
// duration, efficiency, stage composition, and disturbance signals.
package sleep

import "math"

// Stage is one timed interval of a night, in the order it occurred. Order
// matters: consecutive awake stages count as a single disturbance.
type Stage struct {
	Type        string
	DurationSec int
}

// Input holds everything the scorer consumes. Age and Gender come from the
// owner's profile and may be absent; the scorer falls back to the adult
// defaults when they are.
type Input struct {
	TotalDurationSec int
	TimeAsleepSec    int
	Stages           []Stage
	Age              *int
	Gender           string
}

// Component weights. They sum to 100.
const (
	durationPoints    = 30.0
	efficiencyPoints  = 25.0
	deepPoints        = 15.0
	remPoints         = 15.0
	disturbancePoints = 15.0
)

// Score computes the weighted sleep quality score, clamped to [0, 100].
// A non-positive total duration scores 0 outright.
func Score(in Input) int {
	if in.TotalDurationSec <= 0 {
		return 0
	}

	total := durationScore(in.TotalDurationSec, in.Age) +
		efficiencyScore(in.TotalDurationSec, in.TimeAsleepSec) +
		stageScore(in) +
		disturbanceScore(in.Stages)

	score := int(math.Round(total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// durationBand returns the optimal sleep duration band in hours for an age.
func durationBand(age *int) (lo, hi float64) {
	switch {
	case age == nil:
		return 7, 9
	case *age < 18:
		return 8, 10
	case *age >= 65:
		return 7, 8
	default:
		return 7, 9
	}
}

// durationScore awards full points inside the age band and deducts 5 points
// per hour of deviation from the nearer edge.
func durationScore(totalSec int, age *int) float64 {
	lo, hi := durationBand(age)
	hours := float64(totalSec) / 3600
	return bandScore(hours, lo, hi, durationPoints, 5)
}

// efficiencyScore awards full points at 85% efficiency or above, deducting
// one point per percentage point below.
func efficiencyScore(totalSec, asleepSec int) float64 {
	eff := float64(asleepSec) / float64(totalSec) * 100
	if eff >= 85 {
		return efficiencyPoints
	}
	pts := efficiencyPoints - (85 - eff)
	if pts < 0 {
		return 0
	}
	return pts
}

// stageScore awards the deep-share and REM-share components. Shares are
// computed against deep + rem + (asleep - awake) seconds. Zero stage time
// contributes nothing.
func stageScore(in Input) float64 {
	var deepSec, remSec, awakeSec, stageSec int
	for _, s := range in.Stages {
		stageSec += s.DurationSec
		switch s.Type {
		case "deep":
			deepSec += s.DurationSec
		case "rem":
			remSec += s.DurationSec
		case "awake":
			awakeSec += s.DurationSec
		}
	}
	if stageSec == 0 {
		return 0
	}

	denom := float64(deepSec + remSec + (in.TimeAsleepSec - awakeSec))
	if denom <= 0 {
		return 0
	}

	deepPct := float64(deepSec) / denom * 100
	remPct := float64(remSec) / denom * 100

	deepLo, deepHi := 15.0, 25.0
	if in.Age != nil && *in.Age >= 65 {
		deepLo, deepHi = 10, 20
	}

	return bandScore(deepPct, deepLo, deepHi, deepPoints, 0.5) +
		bandScore(remPct, 20, 25, remPoints, 0.5)
}

// disturbanceScore starts at full points and deducts 0.5 per minute of
// cumulative awake time plus 2 per distinct contiguous awake period.
func disturbanceScore(stages []Stage) float64 {
	var awakeSec, awakeRuns int
	inRun := false
	for _, s := range stages {
		if s.Type == "awake" {
			awakeSec += s.DurationSec
			if !inRun {
				awakeRuns++
				inRun = true
			}
		} else {
			inRun = false
		}
	}

	pts := disturbancePoints - 0.5*float64(awakeSec)/60 - 2*float64(awakeRuns)
	if pts < 0 {
		return 0
	}
	return pts
}

// bandScore awards max points for values inside [lo, hi] and deducts
// perUnit points per unit of deviation from the nearer edge, floored at 0.
func bandScore(v, lo, hi, max, perUnit float64) float64 {
	var dev float64
	switch {
	case v < lo:
		dev = lo - v
	case v > hi:
		dev = v - hi
	default:
		return max
	}
	pts := max - perUnit*dev
	if pts < 0 {
		return 0
	}
	return pts
}
