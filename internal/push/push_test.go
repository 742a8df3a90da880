package push

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testPusher(t *testing.T, serverURL, exportDir string, dryRun bool) *Pusher {
	t.Helper()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	t.Cleanup(func() { state.Close() })
	client := NewClient(serverURL, "key", "")
	return New(client, state, exportDir, dryRun, 500, slog.New(slog.DiscardHandler))
}

func writeExport(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

// TestRunSkipsAlreadyPushed verifies that a second run over an unchanged
// export directory sends nothing.
func TestRunSkipsAlreadyPushed(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeExport(t, dir, "2024-03-10.json", `[{"type":"step","value":100,"date":"2024-03-10"}]`)
	writeExport(t, dir, "notes.txt", "not an export")

	p := testPusher(t, srv.URL, dir, false)

	stats, err := p.Run()
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if stats.FilesTotal != 1 || stats.FilesPushed != 1 || stats.EventsSent != 1 {
		t.Errorf("first run stats = %+v", stats)
	}
	if requests != 1 {
		t.Errorf("requests after first run = %d, want 1", requests)
	}

	p2 := New(p.client, p.state, dir, false, 500, p.log)
	stats, err = p2.Run()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.FilesSkipped != 1 || stats.FilesPushed != 0 {
		t.Errorf("second run stats = %+v", stats)
	}
	if requests != 1 {
		t.Errorf("requests after second run = %d, want 1", requests)
	}
}

// TestRunResendsChangedFile verifies that editing an already pushed file
// causes it to be sent again.
func TestRunResendsChangedFile(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeExport(t, dir, "export.json", `[{"type":"step","value":100,"date":"2024-03-10"}]`)

	p := testPusher(t, srv.URL, dir, false)
	if _, err := p.Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}

	writeExport(t, dir, "export.json", `[{"type":"step","value":250,"date":"2024-03-10"}]`)

	p2 := New(p.client, p.state, dir, false, 500, p.log)
	stats, err := p2.Run()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.FilesPushed != 1 {
		t.Errorf("changed file not re-pushed: %+v", stats)
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
}

// TestRunDryRun verifies that dry run counts events without sending or
// recording state.
func TestRunDryRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("dry run must not hit the server")
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeExport(t, dir, "export.json", `[{"type":"step","value":100,"date":"2024-03-10"},{"type":"water","value":500,"date":"2024-03-10"}]`)

	p := testPusher(t, srv.URL, dir, true)
	stats, err := p.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesPushed != 1 || stats.EventsSent != 2 {
		t.Errorf("stats = %+v", stats)
	}

	path := filepath.Join(dir, "export.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	pushed, err := p.state.IsPushed("export.json", info.Size(), hash)
	if err != nil {
		t.Fatalf("IsPushed: %v", err)
	}
	if pushed {
		t.Error("dry run must not record state")
	}
}

// TestRunMalformedFileCounted verifies that an unparseable file is counted
// as an error without aborting the rest of the run.
func TestRunMalformedFileCounted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeExport(t, dir, "a-broken.json", `{not json`)
	writeExport(t, dir, "b-good.json", `[{"type":"step","value":1,"date":"2024-03-10"}]`)

	p := testPusher(t, srv.URL, dir, false)
	stats, err := p.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesTotal != 2 || stats.FilesErrored != 1 || stats.FilesPushed != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
