package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/aperturesearch/portfolio/internal/invoker"
	"github.com/aperturesearch/portfolio/internal/metrics"
	"github.com/aperturesearch/portfolio/internal/portfolio"
)

// RunStatus represents the state of a portfolio generation run.
type RunStatus string

const (
	StatusQueued    RunStatus = "queued"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Per-section state derived from the portfolio contents.
const (
	SectionPending   = "pending"
	SectionCompleted = "completed"
	SectionFailed    = "failed"
)

// maxLogEntries bounds the per-run activity log; oldest entries are trimmed.
const maxLogEntries = 50

// Run tracks the state of a single portfolio generation. The worker is the
// only writer during generation; API handlers read snapshots and may edit
// sections once the worker is done with them.
type Run struct {
	mu sync.Mutex

	ID     string
	Inputs portfolio.Inputs

	// Per-run overrides; empty means use the server defaults.
	Provider string
	APIKey   string

	status         RunStatus
	currentSection string
	errMsg         string
	log            []string

	createdAt time.Time
	updatedAt time.Time

	pf      *portfolio.Portfolio
	metrics *metrics.Metrics
}

// NewRun creates a queued run.
func NewRun(in portfolio.Inputs) *Run {
	now := time.Now()
	return &Run{
		ID:        NewRunID(),
		Inputs:    in,
		status:    StatusQueued,
		createdAt: now,
		updatedAt: now,
		pf:        portfolio.New(in),
	}
}

func (r *Run) touch() { r.updatedAt = time.Now() }

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	r.touch()
}

// Status returns the current run status.
func (r *Run) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// SetSection records the section currently being generated.
func (r *Run) SetSection(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentSection = id
	r.touch()
}

// Fail marks the run failed with the hard error's message preserved.
func (r *Run) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusFailed
	r.errMsg = err.Error()
	r.currentSection = ""
	r.touch()
}

// Complete marks the run finished.
func (r *Run) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusCompleted
	r.currentSection = ""
	r.touch()
}

// AddLog appends a line to the bounded activity log.
func (r *Run) AddLog(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, fmt.Sprintf(format, args...))
	if len(r.log) > maxLogEntries {
		r.log = r.log[len(r.log)-maxLogEntries:]
	}
	r.touch()
}

// Event implements invoker.EventSink, feeding retry activity into the run
// log.
func (r *Run) Event(e invoker.Event) {
	if e.Detail != "" {
		r.AddLog("attempt %d: %s (%s)", e.Attempt, e.Outcome, e.Detail)
		return
	}
	r.AddLog("attempt %d: %s", e.Attempt, e.Outcome)
}

// SectionText returns the section's current text.
func (r *Run) SectionText(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pf.Get(id)
}

// SetSectionText replaces one section's text, leaving every other section
// untouched. Used by the worker and by manual edits.
func (r *Run) SetSectionText(id, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pf.Set(id, text)
	r.touch()
}

// PortfolioCopy returns a detached portfolio holding a copy of the current
// section texts, safe to read without holding the run lock.
func (r *Run) PortfolioCopy() *portfolio.Portfolio {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := portfolio.New(r.Inputs)
	for id, text := range r.pf.Sections() {
		out.Set(id, text)
	}
	return out
}

// Markdown assembles the run's document in reading order.
func (r *Run) Markdown() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pf.Markdown()
}

// SetMetrics stores the extracted structured record.
func (r *Run) SetMetrics(m metrics.Metrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = &m
	r.touch()
}

// Metrics returns the extracted record, if extraction has run.
func (r *Run) Metrics() (metrics.Metrics, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.metrics == nil {
		return metrics.Metrics{}, false
	}
	return *r.metrics, true
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID             string            `json:"run_id"`
	Inputs         portfolio.Inputs  `json:"inputs"`
	Status         RunStatus         `json:"status"`
	CurrentSection string            `json:"current_section,omitempty"`
	Progress       int               `json:"progress"`
	TotalSections  int               `json:"total_sections"`
	Sections       map[string]string `json:"sections"`
	Log            []string          `json:"log"`
	Error          string            `json:"error,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the run state with per-section
// status derived from the portfolio contents.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	sections := make(map[string]string, len(portfolio.Catalog))
	for _, s := range portfolio.Catalog {
		text, ok := r.pf.Get(s.ID)
		switch {
		case !ok || text == "":
			sections[s.ID] = SectionPending
		case portfolio.IsErrorText(text):
			sections[s.ID] = SectionFailed
		default:
			sections[s.ID] = SectionCompleted
		}
	}

	log := make([]string, len(r.log))
	copy(log, r.log)

	return RunSnapshot{
		ID:             r.ID,
		Inputs:         r.Inputs,
		Status:         r.status,
		CurrentSection: r.currentSection,
		Progress:       r.pf.Progress(),
		TotalSections:  len(portfolio.Catalog),
		Sections:       sections,
		Log:            log,
		Error:          r.errMsg,
		CreatedAt:      r.createdAt,
		UpdatedAt:      r.updatedAt,
	}
}

// RunStore is a thread-safe in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (s *RunStore) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Cleanup removes runs idle past the TTL.
func (s *RunStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, run := range s.runs {
		run.mu.Lock()
		idle := now.Sub(run.updatedAt)
		run.mu.Unlock()
		if idle > s.ttl {
			delete(s.runs, id)
		}
	}
}
