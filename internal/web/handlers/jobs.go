package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/Prithvi-997/origin-brew/internal/album"
	"github.com/Prithvi-997/origin-brew/internal/constants"
)

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// AlbumJob is an album generation running in the background.
type AlbumJob struct {
	EventBroadcaster

	ID          string        `json:"id"`
	Status      JobStatus     `json:"status"`
	PhotoCount  int           `json:"photo_count"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Result      *album.Result `json:"result,omitempty"`
}

// GetStatus returns the current job status (implements SSEJob).
func (j *AlbumJob) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// Snapshot returns a copy of the job's public fields.
func (j *AlbumJob) Snapshot() AlbumJobView {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return AlbumJobView{
		ID:          j.ID,
		Status:      j.Status,
		PhotoCount:  j.PhotoCount,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		Result:      j.Result,
	}
}

// AlbumJobView is the JSON form of an AlbumJob.
type AlbumJobView struct {
	ID          string        `json:"id"`
	Status      JobStatus     `json:"status"`
	PhotoCount  int           `json:"photo_count"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Result      *album.Result `json:"result,omitempty"`
}

// Cancel cancels the job. A finished job keeps its status.
func (j *AlbumJob) Cancel() {
	j.mu.Lock()
	if isJobTerminal(j.Status) {
		j.mu.Unlock()
		return
	}
	j.Status = JobStatusCancelled
	now := time.Now()
	j.CompletedAt = &now
	j.mu.Unlock()
	j.EventBroadcaster.Cancel()
}

// start marks the job running unless it was cancelled first.
func (j *AlbumJob) start() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != JobStatusPending {
		return false
	}
	j.Status = JobStatusRunning
	return true
}

// finish records the outcome unless the job was cancelled meanwhile.
func (j *AlbumJob) finish(res *album.Result, err error) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status == JobStatusCancelled {
		return false
	}
	now := time.Now()
	j.CompletedAt = &now
	if err != nil {
		j.Status = JobStatusFailed
		j.Error = err.Error()
		return true
	}
	j.Status = JobStatusCompleted
	j.Result = res
	return true
}

// JobEvent represents an event from a job.
type JobEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting for async jobs.
// Embed this in job structs to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	cancel    context.CancelFunc
	listeners []chan JobEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan JobEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan JobEvent, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan JobEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Cancel cancels the job via context and sends a cancelled event.
func (b *EventBroadcaster) Cancel() {
	b.mu.RLock()
	cancel := b.cancel
	b.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
	b.SendEvent(JobEvent{Type: "cancelled", Message: "Job cancelled by user"})
}

func (b *EventBroadcaster) setCancel(cancel context.CancelFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancel = cancel
}

// SSEJob is the interface required by streamSSEEvents to stream job events via SSE.
type SSEJob interface {
	AddListener() chan JobEvent
	RemoveListener(ch chan JobEvent)
	GetStatus() JobStatus
}

// JobManager manages async jobs. Finished jobs are dropped once they are
// older than the retention period.
type JobManager struct {
	jobs      map[string]*AlbumJob
	mu        sync.RWMutex
	retention time.Duration
	now       func() time.Time
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:      make(map[string]*AlbumJob),
		retention: constants.JobRetention,
		now:       time.Now,
	}
}

// CreateJob creates a new pending album job.
func (m *JobManager) CreateJob(id string, photoCount int) *AlbumJob {
	job := &AlbumJob{
		ID:         id,
		Status:     JobStatusPending,
		PhotoCount: photoCount,
		StartedAt:  m.now(),
	}

	m.mu.Lock()
	m.prune()
	m.jobs[id] = job
	m.mu.Unlock()

	return job
}

// prune drops expired finished jobs. The caller holds m.mu.
func (m *JobManager) prune() {
	cutoff := m.now().Add(-m.retention)
	for id, job := range m.jobs {
		job.mu.RLock()
		expired := job.CompletedAt != nil && job.CompletedAt.Before(cutoff)
		job.mu.RUnlock()
		if expired {
			delete(m.jobs, id)
		}
	}
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *AlbumJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// DeleteJob removes a job.
func (m *JobManager) DeleteJob(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

// ListJobs returns all jobs.
func (m *JobManager) ListJobs() []*AlbumJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]*AlbumJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}
