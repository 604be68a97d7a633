package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Prithvi-997/origin-brew/internal/album"
	"github.com/Prithvi-997/origin-brew/internal/constants"
)

func TestJobManager_CreateGetDelete(t *testing.T) {
	m := NewJobManager()

	job := m.CreateJob("job-1", 5)
	if job.GetStatus() != JobStatusPending {
		t.Errorf("expected pending, got %s", job.GetStatus())
	}
	if got := m.GetJob("job-1"); got != job {
		t.Error("GetJob returned a different job")
	}
	if len(m.ListJobs()) != 1 {
		t.Errorf("expected 1 job, got %d", len(m.ListJobs()))
	}

	m.DeleteJob("job-1")
	if m.GetJob("job-1") != nil {
		t.Error("expected job to be deleted")
	}
}

func TestJobManager_PrunesExpiredJobs(t *testing.T) {
	m := NewJobManager()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	old := m.CreateJob("old", 1)
	finished := now.Add(-2 * constants.JobRetention)
	old.CompletedAt = &finished
	running := m.CreateJob("running", 1)

	m.CreateJob("new", 1)

	if m.GetJob("old") != nil {
		t.Error("expected expired job to be pruned")
	}
	if m.GetJob("running") != running {
		t.Error("unfinished job must be kept")
	}
}

func TestAlbumJob_CancelBeatsCompletion(t *testing.T) {
	job := NewJobManager().CreateJob("job", 1)
	cancelled := false
	job.setCancel(func() { cancelled = true })

	if !job.start() {
		t.Fatal("expected pending job to start")
	}
	job.Cancel()
	if !cancelled {
		t.Error("expected context cancel func to be called")
	}
	if job.finish(&album.Result{}, nil) {
		t.Error("finish must not overwrite a cancelled job")
	}
	snap := job.Snapshot()
	if snap.Status != JobStatusCancelled || snap.Result != nil {
		t.Errorf("expected cancelled job without result, got %+v", snap)
	}
}

func TestAlbumJob_CancelAfterCompletion(t *testing.T) {
	job := NewJobManager().CreateJob("job", 1)
	job.start()
	job.finish(nil, errors.New("boom"))

	job.Cancel()

	snap := job.Snapshot()
	if snap.Status != JobStatusFailed || snap.Error != "boom" {
		t.Errorf("expected failed job to stay failed, got %+v", snap)
	}
	if snap.CompletedAt == nil {
		t.Error("expected completion time")
	}
}

func TestAlbumJob_StartAfterCancel(t *testing.T) {
	job := NewJobManager().CreateJob("job", 1)
	job.Cancel()
	if job.start() {
		t.Error("cancelled job must not start")
	}
}

func TestEventBroadcaster(t *testing.T) {
	var b EventBroadcaster
	ch := b.AddListener()

	b.SendEvent(JobEvent{Type: "trace", Message: "hello"})
	select {
	case ev := <-ch:
		if ev.Type != "trace" || ev.Message != "hello" {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected an event")
	}

	// A full listener is skipped rather than blocking the sender.
	done := make(chan struct{})
	go func() {
		for range constants.EventChannelBuffer + 10 {
			b.SendEvent(JobEvent{Type: "trace"})
		}
		close(done)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("SendEvent blocked on a full listener")
	}

	b.RemoveListener(ch)
	for range ch {
	}
	if _, ok := <-ch; ok {
		t.Error("expected listener channel to be closed")
	}
}
