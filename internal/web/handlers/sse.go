package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// sseKeepAlive is how often an idle stream gets a comment line so proxies
// do not close it.
const sseKeepAlive = 15 * time.Second

// isJobTerminal returns true if the job status is a terminal state
func isJobTerminal(status JobStatus) bool {
	return status == JobStatusCompleted || status == JobStatusFailed || status == JobStatusCancelled
}

// isTerminalEvent reports whether an event is the last one a job sends.
func isTerminalEvent(eventType string) bool {
	switch eventType {
	case "completed", "job_error", "cancelled":
		return true
	}
	return false
}

// sseStream writes numbered server-sent events.
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// openSSEStream resolves the {jobId} parameter and switches the response to
// an event stream. On failure it writes an error response and returns false.
func openSSEStream(w http.ResponseWriter, r *http.Request, lookupJob func(string) SSEJob) (SSEJob, *sseStream, bool) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return nil, nil, false
	}
	job := lookupJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return nil, nil, false
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, nil, false
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return job, &sseStream{w: w, flusher: flusher, nextID: 1}, true
}

func (s *sseStream) send(eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", eventType, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\nid: %d\ndata: %s\n\n", eventType, s.nextID, payload); err != nil {
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

func (s *sseStream) ping() error {
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// streamSSEEvents sends the job's current state as a "status" event, then
// relays job events until a terminal one, client disconnect or a closed
// channel. A job that already finished gets only the status event.
func streamSSEEvents(w http.ResponseWriter, r *http.Request, lookupJob func(string) SSEJob, snapshot func(SSEJob) any) {
	job, stream, ok := openSSEStream(w, r, lookupJob)
	if !ok {
		return
	}

	events := job.AddListener()
	defer job.RemoveListener(events)

	if err := stream.send("status", snapshot(job)); err != nil || isJobTerminal(job.GetStatus()) {
		return
	}

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := stream.ping(); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := stream.send(event.Type, event); err != nil || isTerminalEvent(event.Type) {
				return
			}
		}
	}
}
