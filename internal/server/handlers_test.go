package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vitalsink/vitalsink/internal/ingest"
	"github.com/vitalsink/vitalsink/internal/models"
)

type fakeIngester struct {
	result    *ingest.Result
	err       error
	gotEvents []models.HealthEvent
	gotOwner  int
}

func (f *fakeIngester) Ingest(_ context.Context, events []models.HealthEvent, ownerID int) (*ingest.Result, error) {
	f.gotEvents = events
	f.gotOwner = ownerID
	return f.result, f.err
}

type fakeOwners struct {
	id       int
	gotLogin string
}

func (f *fakeOwners) GetOrCreateOwner(_ context.Context, login, _ string) (int, error) {
	f.gotLogin = login
	return f.id, nil
}

func testServer(ing Ingester, owners OwnerDirectory) *Server {
	return &Server{
		ing:    ing,
		owners: owners,
		log:    slog.New(slog.DiscardHandler),
	}
}

// TestHandleIngestBatch verifies that a clean batch returns 200 with the
// processed list.
func TestHandleIngestBatch(t *testing.T) {
	fi := &fakeIngester{result: &ingest.Result{
		Processed: []ingest.ProcessedEvent{
			{Type: "step", Date: "2024-03-10", Source: "manual", Status: "success"},
		},
	}}
	fo := &fakeOwners{id: 7}
	s := testServer(fi, fo)

	body := `[{"type": "step", "value": 8000, "date": "2024-03-10"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleIngest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if len(fi.gotEvents) != 1 || fi.gotEvents[0].Type != "step" {
		t.Errorf("pipeline got events %+v", fi.gotEvents)
	}
	if fi.gotOwner != 7 {
		t.Errorf("pipeline got owner %d, want 7", fi.gotOwner)
	}

	var resp ingestResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Message != "all events processed" {
		t.Errorf("message = %q", resp.Message)
	}
}

// TestHandleIngestSingleObject verifies that a bare event object is treated
// as a one-element batch.
func TestHandleIngestSingleObject(t *testing.T) {
	fi := &fakeIngester{result: &ingest.Result{
		Processed: []ingest.ProcessedEvent{{Type: "weight", Status: "success"}},
	}}
	s := testServer(fi, &fakeOwners{id: 1})

	body := `{"type": "weight", "value": 70.5, "date": "2024-03-10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleIngest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(fi.gotEvents) != 1 || fi.gotEvents[0].Type != "weight" {
		t.Errorf("pipeline got events %+v", fi.gotEvents)
	}
}

// TestHandleIngestPartialFailure verifies that a batch with event errors
// returns 400 and echoes the failures.
func TestHandleIngestPartialFailure(t *testing.T) {
	fi := &fakeIngester{result: &ingest.Result{
		Processed: []ingest.ProcessedEvent{{Type: "step", Status: "success"}},
		Errors: []ingest.EventError{
			{Entry: models.HealthEvent{Type: "weight"}, Message: "weight: must be a positive number, got -1"},
		},
	}}
	s := testServer(fi, &fakeOwners{id: 1})

	body := `[{"type": "step", "value": 1, "date": "2024-03-10"}, {"type": "weight", "value": -1, "date": "2024-03-10"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleIngest(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Message string              `json:"message"`
		Errors  []ingest.EventError `json:"errors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Message != "1 of 2 events failed" {
		t.Errorf("message = %q", resp.Message)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Entry.Type != "weight" {
		t.Errorf("errors = %+v", resp.Errors)
	}
}

// TestHandleIngestInvalidJSON verifies that malformed bodies get 400
// without reaching the pipeline.
func TestHandleIngestInvalidJSON(t *testing.T) {
	fi := &fakeIngester{}
	s := testServer(fi, &fakeOwners{id: 1})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(`{"type": `))
	rec := httptest.NewRecorder()
	s.handleIngest(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if fi.gotEvents != nil {
		t.Error("pipeline should not run on malformed JSON")
	}
}

// TestHandleIngestOwnerHeader verifies that the X-Owner header selects the
// owner and that its absence falls back to the default login.
func TestHandleIngestOwnerHeader(t *testing.T) {
	fi := &fakeIngester{result: &ingest.Result{}}
	fo := &fakeOwners{id: 3}
	s := testServer(fi, fo)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(`[]`))
	req.Header.Set("X-Owner", "alice")
	rec := httptest.NewRecorder()
	s.handleIngest(rec, req)

	if fo.gotLogin != "alice" {
		t.Errorf("login = %q, want alice", fo.gotLogin)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/ingest", strings.NewReader(`[]`))
	rec = httptest.NewRecorder()
	s.handleIngest(rec, req)

	if fo.gotLogin != defaultOwnerLogin {
		t.Errorf("login = %q, want %q", fo.gotLogin, defaultOwnerLogin)
	}
}

// TestHandleUpsertProfileBadDate verifies that an unparseable birth date is
// rejected before touching storage.
func TestHandleUpsertProfileBadDate(t *testing.T) {
	s := testServer(&fakeIngester{}, &fakeOwners{id: 1})

	body := `{"birth_date": "15-01-1994", "gender": "male"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleUpsertProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestParseTimeRangeDefaults verifies the seven-day default window.
func TestParseTimeRangeDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sleep", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("parseTimeRange: %v", err)
	}
	if got := end.Sub(start).Hours(); got < 167 || got > 169 {
		t.Errorf("window = %.1f hours, want about 168", got)
	}
}

// TestParseTimeRangeDateOnly verifies that date-only bounds are accepted
// and the end bound covers the whole day.
func TestParseTimeRangeDateOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sleep?start=2024-03-01&end=2024-03-10", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("parseTimeRange: %v", err)
	}
	if start.Day() != 1 {
		t.Errorf("start = %v", start)
	}
	if end.Day() != 11 {
		t.Errorf("end should extend past the named day, got %v", end)
	}
}
