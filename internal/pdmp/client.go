// Package pdmp submits parsed dispense data to a state Prescription Drug
// Monitoring Program gateway.
package pdmp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client communicates with the PDMP gateway HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	stats      *SubmitStats
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		stats: NewSubmitStats(time.Hour),
	}
}

// DispenseSubmission is the body for POST /v1/dispenses: one dispense group
// flattened to its field addresses.
type DispenseSubmission struct {
	SubmissionID string            `json:"submission_id"`
	ReportID     string            `json:"report_id"`
	Version      string            `json:"version"`
	Sequence     int               `json:"sequence"`
	Fields       map[string]string `json:"fields"`
}

// ReportSubmission is the body for POST /v1/reports: the envelope summary of
// one ingested report.
type ReportSubmission struct {
	SubmissionID    string   `json:"submission_id"`
	ReportID        string   `json:"report_id"`
	Version         string   `json:"version"`
	SectionCount    int      `json:"section_count"`
	DispenseCount   int      `json:"dispense_count"`
	MissingRequired []string `json:"missing_required"`
}

// SubmitDispense sends one dispense group to the gateway. A fresh submission
// ID is assigned if the caller left it empty.
func (c *Client) SubmitDispense(ctx context.Context, sub DispenseSubmission) error {
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}
	return c.post(ctx, "/v1/dispenses", sub)
}

// SubmitReport sends the report-level summary to the gateway.
func (c *Client) SubmitReport(ctx context.Context, sub ReportSubmission) error {
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}
	return c.post(ctx, "/v1/reports", sub)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("pdmp gateway: %w", err)
	}
	defer resp.Body.Close()
	c.stats.Record(time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("pdmp %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	return nil
}

// Stats returns a snapshot of recent gateway latencies.
func (c *Client) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

// Close releases any resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// RetryableError indicates a transient gateway failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
