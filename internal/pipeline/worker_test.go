package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/asapgest/internal/config"
	"github.com/dgallion1/asapgest/internal/pdmp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(queueSize int) config.Config {
	return config.Config{
		WorkerCount:         1,
		MaxQueueSize:        queueSize,
		MaxConcurrentSubmit: 2,
		JobTTL:              time.Hour,
	}
}

func TestWorker_Process(t *testing.T) {
	var mu sync.Mutex
	var reports int
	var dispenses []pdmp.DispenseSubmission

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.URL.Path {
		case "/v1/reports":
			reports++
		case "/v1/dispenses":
			var sub pdmp.DispenseSubmission
			if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
				t.Errorf("decode dispense: %v", err)
			}
			dispenses = append(dispenses, sub)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	gateway := pdmp.NewClient(srv.URL, "key")
	defer gateway.Close()

	w := NewWorker(gateway, discardLogger(), 2)
	job := &Job{ID: "j1", ReportID: "r1", Status: StatusQueued, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	// Three patient runs: two sealed groups, the trailing one stays open.
	job.SetText("TH*4*01~IS*99*Acme~PHA*1~" +
		"PAT*a~DSP*rx1~PAT*b~DSP*rx2~PAT*c~DSP*rx3~" +
		"TP*1~TT*1*11~")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed (errors: %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.DispensesSubmitted != 2 {
		t.Errorf("DispensesSubmitted = %d, want 2", snap.Progress.DispensesSubmitted)
	}

	mu.Lock()
	defer mu.Unlock()
	if reports != 1 {
		t.Errorf("report submissions = %d, want 1", reports)
	}
	if len(dispenses) != 2 {
		t.Fatalf("dispense submissions = %d, want 2", len(dispenses))
	}
	for _, sub := range dispenses {
		if sub.ReportID != "r1" || sub.Version != "4" {
			t.Errorf("submission = %+v", sub)
		}
		if sub.SubmissionID == "" {
			t.Error("submission ID missing")
		}
	}
}

func TestWorker_InvalidFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("the gateway must not be called for an invalid report")
	}))
	defer srv.Close()

	gateway := pdmp.NewClient(srv.URL, "key")
	defer gateway.Close()

	w := NewWorker(gateway, discardLogger(), 2)
	job := &Job{ID: "j1", ReportID: "r1"}
	job.SetText("not an asap report")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusInvalidFormat {
		t.Fatalf("status = %s, want invalid_format", snap.Status)
	}
	if job.Document() != nil {
		t.Error("no document may exist after a format failure")
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("format failure must be recorded")
	}
}

func TestWorker_PartialOnGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/reports" {
			// Non-retryable failure for the summary; dispenses succeed.
			http.Error(w, "rejected", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	gateway := pdmp.NewClient(srv.URL, "key")
	defer gateway.Close()

	w := NewWorker(gateway, discardLogger(), 2)
	job := &Job{ID: "j1", ReportID: "r1"}
	job.SetText("TH*4~PAT*a~DSP*1~PAT*b~DSP*2~TT*1*5~")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial {
		t.Fatalf("status = %s, want partial", snap.Status)
	}
	if snap.Progress.DispensesSubmitted != 1 {
		t.Errorf("DispensesSubmitted = %d, want 1", snap.Progress.DispensesSubmitted)
	}
}

func TestOrchestrator_SubmitQueueFull(t *testing.T) {
	gateway := pdmp.NewClient("http://localhost:0", "key")
	defer gateway.Close()

	o := NewOrchestrator(testConfig(1), gateway, discardLogger())
	// Not started: the queue drains nowhere.
	if err := o.Submit(&Job{ID: "a"}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	err := o.Submit(&Job{ID: "b"})
	if err == nil {
		t.Fatal("expected queue-full error")
	}
	if got := o.GetJob("b").Snapshot().Status; got != StatusFailed {
		t.Errorf("overflow job status = %s, want failed", got)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("QueueDepth = %d, want 1", o.QueueDepth())
	}
}
