// Package trace records what the planner decided and why. Planning code
// appends to a Log passed by the caller instead of writing to a logger, so
// the same run can be replayed into a terminal, an SSE stream or a test.
package trace

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Level of an event.
type Level string

// Event levels.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
)

// Event is one recorded decision.
type Event struct {
	Level   Level          `json:"level"`
	Stage   string         `json:"stage"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Log collects events. A nil *Log discards everything, so callers that do
// not care can pass nil.
type Log struct {
	mu     sync.Mutex
	events []Event
	sink   func(Event)
}

// New returns a log that also forwards each event to sink, if non-nil.
func New(sink func(Event)) *Log {
	return &Log{sink: sink}
}

// Add appends an event. kv are alternating key/value pairs.
func (l *Log) Add(level Level, stage, msg string, kv ...any) {
	if l == nil {
		return
	}
	e := Event{Level: level, Stage: stage, Message: msg}
	if len(kv) > 0 {
		e.Fields = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.Fields[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}

	l.mu.Lock()
	l.events = append(l.events, e)
	sink := l.sink
	l.mu.Unlock()

	if sink != nil {
		sink(e)
	}
}

func (l *Log) Debug(stage, msg string, kv ...any) { l.Add(LevelDebug, stage, msg, kv...) }
func (l *Log) Info(stage, msg string, kv ...any)  { l.Add(LevelInfo, stage, msg, kv...) }
func (l *Log) Warn(stage, msg string, kv ...any)  { l.Add(LevelWarn, stage, msg, kv...) }

// Events returns a copy of the recorded events.
func (l *Log) Events() []Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Filter returns the events of one stage at or above level.
func (l *Log) Filter(stage string, level Level) []Event {
	var out []Event
	for _, e := range l.Events() {
		if (stage == "" || e.Stage == stage) && rank(e.Level) >= rank(level) {
			out = append(out, e)
		}
	}
	return out
}

func rank(l Level) int {
	switch l {
	case LevelWarn:
		return 2
	case LevelInfo:
		return 1
	default:
		return 0
	}
}

// LoggerSink forwards events to a charmbracelet logger.
func LoggerSink(logger *log.Logger) func(Event) {
	return func(e Event) {
		kv := make([]any, 0, 2+2*len(e.Fields))
		kv = append(kv, "stage", e.Stage)
		for k, v := range e.Fields {
			kv = append(kv, k, v)
		}
		switch e.Level {
		case LevelWarn:
			logger.Warn(e.Message, kv...)
		case LevelInfo:
			logger.Info(e.Message, kv...)
		default:
			logger.Debug(e.Message, kv...)
		}
	}
}
