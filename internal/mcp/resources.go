package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) dailySummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	owner := OwnerIDFromContext(ctx)

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	checkins, err := h.ds.QueryCheckIns(ctx, owner, today, tomorrow)
	if err != nil {
		return nil, err
	}

	// Yesterday's night usually carries today's sleep entry.
	sleep, err := h.ds.QuerySleepEntries(ctx, owner, today.AddDate(0, 0, -1), tomorrow)
	if err != nil {
		h.log.Warn("daily_summary: sleep query failed", "error", err)
	}

	exercises, err := h.ds.QueryExerciseLog(ctx, owner, today, tomorrow)
	if err != nil {
		h.log.Warn("daily_summary: exercise query failed", "error", err)
	}

	summary := map[string]any{
		"date":             today.Format("2006-01-02"),
		"check_ins":        checkins,
		"recent_sleep":     sleep,
		"todays_exercises": exercises,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) categoryCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	owner := OwnerIDFromContext(ctx)
	cats, err := h.ds.ListCategories(ctx, owner)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cats)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
