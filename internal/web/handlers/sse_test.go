package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func listenerCount(j *AlbumJob) int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.listeners)
}

func TestStreamSSEEvents_RelaysUntilTerminalEvent(t *testing.T) {
	m := NewJobManager()
	job := m.CreateJob("job-1", 3)
	lookup := func(id string) SSEJob {
		if j := m.GetJob(id); j != nil {
			return j
		}
		return nil
	}

	recorder := httptest.NewRecorder()
	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/albums/jobs/job-1/events", nil), map[string]string{"jobId": "job-1"})
	done := make(chan struct{})
	go func() {
		defer close(done)
		streamSSEEvents(recorder, req, lookup, func(j SSEJob) any { return j.(*AlbumJob).Snapshot() })
	}()

	deadline := time.Now().Add(2 * time.Second)
	for listenerCount(job) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	// The status flips before the final event is sent; the stream must still
	// deliver everything up to that event.
	job.start()
	job.finish(nil, nil)
	job.SendEvent(JobEvent{Type: "trace", Message: "late trace"})
	job.SendEvent(JobEvent{Type: "completed"})
	job.SendEvent(JobEvent{Type: "trace", Message: "after the end"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after the completed event")
	}

	body := recorder.Body.String()
	for _, want := range []string{"event: status\nid: 1\n", "event: trace\nid: 2\n", "late trace", "event: completed\nid: 3\n"} {
		if !strings.Contains(body, want) {
			t.Errorf("stream missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "after the end") {
		t.Error("stream relayed an event after the terminal one")
	}
	if listenerCount(job) != 0 {
		t.Error("listener was not removed")
	}
}

func TestStreamSSEEvents_UnknownJob(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/albums/jobs/nope/events", nil), map[string]string{"jobId": "nope"})
	streamSSEEvents(recorder, req, func(string) SSEJob { return nil }, func(SSEJob) any { return nil })

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "job not found")
}
