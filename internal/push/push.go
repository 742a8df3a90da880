package push

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vitalsink/vitalsink/internal/models"
)

// Stats tracks push progress.
type Stats struct {
	FilesTotal   int
	FilesPushed  int
	FilesSkipped int
	FilesErrored int

	EventsSent int
}

// Pusher walks an export directory of .json event files and POSTs each new
// or changed file's batch to the VitalSink server.
type Pusher struct {
	client    *Client
	state     *StateDB
	exportDir string
	dryRun    bool
	batchSize int
	log       *slog.Logger
	stats     Stats
}

// New creates a new Pusher.
func New(client *Client, state *StateDB, exportDir string, dryRun bool, batchSize int, log *slog.Logger) *Pusher {
	return &Pusher{
		client:    client,
		state:     state,
		exportDir: exportDir,
		dryRun:    dryRun,
		batchSize: batchSize,
		log:       log,
	}
}

// Run executes the push. Files are processed in name order so date-stamped
// exports land oldest first.
func (p *Pusher) Run() (*Stats, error) {
	var files []string
	err := filepath.WalkDir(p.exportDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return &p.stats, fmt.Errorf("walking %s: %w", p.exportDir, err)
	}
	sort.Strings(files)

	for _, path := range files {
		p.stats.FilesTotal++
		if err := p.pushFile(path); err != nil {
			p.stats.FilesErrored++
			p.log.Error("push failed", "file", path, "error", err)
		}
	}

	return &p.stats, nil
}

func (p *Pusher) pushFile(path string) error {
	rel, err := filepath.Rel(p.exportDir, path)
	if err != nil {
		rel = path
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	done, err := p.state.IsPushed(rel, info.Size(), hash)
	if err != nil {
		return fmt.Errorf("state lookup: %w", err)
	}
	if done {
		p.stats.FilesSkipped++
		p.log.Debug("already pushed", "file", rel)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}

	var events []models.HealthEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("parsing events: %w", err)
	}
	if len(events) == 0 {
		p.stats.FilesSkipped++
		return p.state.MarkPushed(rel, info.Size(), hash)
	}

	if p.dryRun {
		p.log.Info("dry run", "file", rel, "events", len(events))
		p.stats.FilesPushed++
		p.stats.EventsSent += len(events)
		return nil
	}

	for start := 0; start < len(events); start += p.batchSize {
		end := min(start+p.batchSize, len(events))
		if err := p.client.SendEvents(events[start:end]); err != nil {
			return fmt.Errorf("sending events %d-%d: %w", start, end, err)
		}
		p.stats.EventsSent += end - start
	}

	if err := p.state.MarkPushed(rel, info.Size(), hash); err != nil {
		return fmt.Errorf("recording push: %w", err)
	}
	p.stats.FilesPushed++
	p.log.Info("pushed", "file", rel, "events", len(events))
	return nil
}
