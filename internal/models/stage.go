package models

import "strings"

// Canonical sleep stage types as stored in sleep_stage_events. Producers
// can also send names outside this set (Garmin emits "unknown" for
// unclassified intervals); those are stored lowercased as-is and excluded
// from the per-stage totals and the score's stage shares.
const (
	StageDeep  = "deep"
	StageLight = "light"
	StageREM   = "rem"
	StageAwake = "awake"
)

// stageTypeMap maps lowercased producer stage names to the canonical set.
// Garmin sends the canonical names already; Apple exports use Core/Asleep
// for light sleep and In Bed for awake time.
var stageTypeMap = map[string]string{
	"deep":     StageDeep,
	"light":    StageLight,
	"rem":      StageREM,
	"awake":    StageAwake,
	"core":     StageLight,
	"asleep":   StageLight,
	"in bed":   StageAwake,
	"restless": StageAwake,
}

// NormalizeStageType maps a producer stage name to its canonical type.
// Returns the canonical type and true if recognized, or the original
// lowercased string and false if unknown.
func NormalizeStageType(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := stageTypeMap[lower]; ok {
		return canonical, true
	}
	return lower, false
}
