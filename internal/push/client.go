package push

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vitalsink/vitalsink/internal/models"
)

// Client sends event batches to the VitalSink server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	owner      string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the VitalSink server.
func NewClient(serverURL, apiKey, owner string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		owner:     owner,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SendEvents POSTs a batch of events to the server's ingest endpoint.
// Retries up to 3 times with exponential backoff on failure. A 400 reply
// means the server rejected part of the batch; that is returned as an error
// without retrying since a resend would fail the same way.
func (c *Client) SendEvents(events []models.HealthEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshaling events: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/ingest", bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)
		if c.owner != "" {
			req.Header.Set("X-Owner", c.owner)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return nil
		case resp.StatusCode == http.StatusBadRequest:
			return fmt.Errorf("server rejected batch: %s", body)
		default:
			lastErr = fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, body)
		}
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}
