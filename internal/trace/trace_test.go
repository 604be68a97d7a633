package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNilLog(t *testing.T) {
	var l *Log
	l.Info("engine", "ignored")
	if got := l.Events(); got != nil {
		t.Errorf("expected nil events, got %v", got)
	}
}

func TestAdd(t *testing.T) {
	var forwarded []Event
	l := New(func(e Event) { forwarded = append(forwarded, e) })

	l.Info("plan", "page accepted", "page", 1, "layout", "layout8")
	l.Warn("plan", "assignment rejected", "reason")
	l.Debug("engine", "state")

	events := l.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if len(forwarded) != 3 {
		t.Errorf("expected 3 forwarded events, got %d", len(forwarded))
	}
	if events[0].Fields["page"] != 1 || events[0].Fields["layout"] != "layout8" {
		t.Errorf("unexpected fields %v", events[0].Fields)
	}
	if len(events[1].Fields) != 0 {
		t.Errorf("expected dangling key to be dropped, got %v", events[1].Fields)
	}
}

func TestFilter(t *testing.T) {
	l := New(nil)
	l.Debug("engine", "a")
	l.Info("engine", "b")
	l.Warn("plan", "c")

	if got := l.Filter("engine", LevelDebug); len(got) != 2 {
		t.Errorf("expected 2 engine events, got %d", len(got))
	}
	if got := l.Filter("", LevelWarn); len(got) != 1 || got[0].Message != "c" {
		t.Errorf("expected only the warning, got %v", got)
	}
}

func TestLoggerSink(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	l := New(LoggerSink(logger))

	l.Warn("plan", "page dropped", "page", 3)

	out := buf.String()
	if !strings.Contains(out, "page dropped") || !strings.Contains(out, "stage=plan") {
		t.Errorf("unexpected log output %q", out)
	}
}
