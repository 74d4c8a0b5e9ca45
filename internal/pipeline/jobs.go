package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/asapgest/internal/asap"
)

// JobStatus represents the state of a report ingestion job.
type JobStatus string

const (
	StatusQueued        JobStatus = "queued"
	StatusParsing       JobStatus = "parsing"
	StatusSubmitting    JobStatus = "submitting"
	StatusCompleted     JobStatus = "completed"
	StatusFailed        JobStatus = "failed"
	StatusPartial       JobStatus = "partial"
	StatusInvalidFormat JobStatus = "invalid_format"
)

// Job tracks the state of a single report ingestion.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	ReportID string    `json:"report_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	text   string
	doc    *asap.Document
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	SectionCount       int      `json:"section_count"`
	DispenseCount      int      `json:"dispense_count"`
	MissingRequired    []string `json:"missing_required"`
	DispensesSubmitted int      `json:"dispenses_submitted"`
	Errors             []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetText sets the raw report text for processing.
func (j *Job) SetText(text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.text = text
	j.ContentHash = ContentHashHex([]byte(text))
}

// Text returns the raw report text.
func (j *Job) Text() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.text
}

// SetDocument records the parse outcome. The document is immutable once
// parsed, so handing it out later without copying is safe.
func (j *Job) SetDocument(doc *asap.Document, sum asap.Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.doc = doc
	j.Progress.SectionCount = sum.SectionCount
	j.Progress.DispenseCount = sum.DispenseCount
	j.Progress.MissingRequired = sum.MissingRequired
	j.UpdatedAt = time.Now()
}

// Document returns the parsed document, or nil before parsing completed.
func (j *Job) Document() *asap.Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.doc
}

// IncrSubmitted atomically increments the submitted dispense count.
func (j *Job) IncrSubmitted() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DispensesSubmitted++
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	ReportID string    `json:"report_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	missing := j.Progress.MissingRequired
	if missing == nil {
		missing = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		ReportID: j.ReportID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			SectionCount:       j.Progress.SectionCount,
			DispenseCount:      j.Progress.DispenseCount,
			MissingRequired:    missing,
			DispensesSubmitted: j.Progress.DispensesSubmitted,
			Errors:             errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns the hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
