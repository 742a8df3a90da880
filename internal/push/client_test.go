package push

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vitalsink/vitalsink/internal/models"
)

// TestSendEventsHeaders verifies that the client sends the API key, owner,
// and content type headers with the event batch.
func TestSendEventsHeaders(t *testing.T) {
	var gotKey, gotOwner, gotContentType string
	var gotEvents []models.HealthEvent

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotOwner = r.Header.Get("X-Owner")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotEvents); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "alice")
	err := c.SendEvents([]models.HealthEvent{{Type: "step", Value: float64(100), Date: "2024-03-10"}})
	if err != nil {
		t.Fatalf("SendEvents: %v", err)
	}

	if gotKey != "secret" {
		t.Errorf("X-API-Key = %q, want secret", gotKey)
	}
	if gotOwner != "alice" {
		t.Errorf("X-Owner = %q, want alice", gotOwner)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if len(gotEvents) != 1 || gotEvents[0].Type != "step" {
		t.Errorf("server got events %+v", gotEvents)
	}
}

// TestSendEventsRetriesServerErrors verifies the retry loop recovers from a
// transient server error.
func TestSendEventsRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "")
	if err := c.SendEvents(nil); err != nil {
		t.Fatalf("SendEvents should succeed after retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

// TestSendEventsNoRetryOnRejection verifies that a 400 reply is returned
// immediately: resending a rejected batch would fail the same way.
func TestSendEventsNoRetryOnRejection(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, `{"message":"1 of 1 events failed"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "")
	if err := c.SendEvents(nil); err == nil {
		t.Fatal("expected rejection error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 400)", attempts)
	}
}
