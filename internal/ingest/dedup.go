package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vitalsink/vitalsink/internal/models"
)

// DedupRange is the date span a batch covers for one producer source.
// Previously stored session entries inside the span are purged before the
// batch is applied, so a resync that resends a day with different internal
// boundaries cannot leave stale fragments behind.
type DedupRange struct {
	Source string
	From   time.Time
	To     time.Time
}

// PlanDedup scans a batch for session events and computes the covered date
// span per source. Every session event contributes, manual entries
// included: events without a source group under the manual source, so
// re-submitting the same batch replaces entries instead of duplicating
// them. Events whose date does not parse are skipped here; the dispatch
// loop records them as errors later, using the same parsing rule.
func PlanDedup(events []models.HealthEvent) []DedupRange {
	type span struct{ from, to time.Time }
	spans := map[string]*span{}

	for i := range events {
		e := &events[i]
		if !e.Kind().IsSession() {
			continue
		}
		date, err := e.ResolveDate()
		if err != nil {
			continue
		}
		src := e.Source
		if src == "" {
			src = SourceManual
		}
		sp, ok := spans[src]
		if !ok {
			spans[src] = &span{from: date, to: date}
			continue
		}
		if date.Before(sp.from) {
			sp.from = date
		}
		if date.After(sp.to) {
			sp.to = date
		}
	}

	ranges := make([]DedupRange, 0, len(spans))
	for src, sp := range spans {
		ranges = append(ranges, DedupRange{Source: src, From: sp.from, To: sp.to})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Source < ranges[j].Source })
	return ranges
}

// commitDedup deletes previously stored session entries in each planned
// range. A failure here aborts the whole batch: applying new events on top
// of a partially purged range would break resync idempotency.
func (p *Pipeline) commitDedup(ctx context.Context, ownerID int, ranges []DedupRange) error {
	for _, r := range ranges {
		if err := p.store.DeleteSleepRange(ctx, ownerID, r.Source, r.From, r.To); err != nil {
			return fmt.Errorf("purging sleep entries for %q [%s, %s]: %w",
				r.Source, r.From.Format(models.DateOnlyLayout), r.To.Format(models.DateOnlyLayout), err)
		}
		if err := p.store.DeleteExerciseRange(ctx, ownerID, r.Source, r.From, r.To); err != nil {
			return fmt.Errorf("purging exercise entries for %q [%s, %s]: %w",
				r.Source, r.From.Format(models.DateOnlyLayout), r.To.Format(models.DateOnlyLayout), err)
		}
	}
	return nil
}
