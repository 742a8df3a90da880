package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vitalsink/vitalsink/internal/push"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "VitalSink server URL (e.g. https://vitalsink.tail1234.ts.net)")
	exportPath := flag.String("path", "", "path to directory of exported .json event files")
	apiKey := flag.String("api-key", "", "API key for the ingest endpoint")
	owner := flag.String("owner", "", "owner login to ingest as (default: server default owner)")
	dryRun := flag.Bool("dry-run", false, "parse and count but don't send to server")
	batchSize := flag.Int("batch-size", 500, "events per ingest request")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("vitalsink-push", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: vitalsink-push -server <URL> -api-key <key> -path <export dir> [-owner login] [-dry-run] [-batch-size N]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	// Strip trailing slash from server URL
	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *exportPath)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".vitalsink-push")

	state, err := push.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	client := push.NewClient(*serverURL, *apiKey, *owner)

	if *dryRun {
		log.Info("DRY RUN mode: files will be parsed but not sent")
	}

	pusher := push.New(client, state, *exportPath, *dryRun, *batchSize, log)
	stats, err := pusher.Run()
	if err != nil {
		log.Error("push failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("push complete")
}

func printStats(stats *push.Stats) {
	fmt.Println()
	fmt.Println("=== Push Summary ===")
	fmt.Printf("  Files total:    %d\n", stats.FilesTotal)
	fmt.Printf("  Files pushed:   %d\n", stats.FilesPushed)
	fmt.Printf("  Files skipped:  %d (already pushed)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:  %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Events sent:    %d\n", stats.EventsSent)
	fmt.Println()
}
