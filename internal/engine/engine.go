// Package engine is the deterministic layout planner. It places every photo
// of a pool onto pages without outside help and is the fallback whenever an
// external plan is missing or only partly usable.
package engine

import (
	"errors"
	"fmt"
	"maps"

	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/page"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/Prithvi-997/origin-brew/internal/trace"
)

// ErrEngineExhausted means a photo could not be placed even in the
// single-frame fallback layout. It points at a broken catalog and aborts
// the whole generation.
var ErrEngineExhausted = errors.New("engine exhausted")

const stage = "engine"

// State of a planning run.
type State int

// Run states. Done is the only successful terminal state.
const (
	SelectingLayout State = iota
	Matching
	Materializing
	Exhausted
	Done
)

func (s State) String() string {
	switch s {
	case SelectingLayout:
		return "selecting_layout"
	case Matching:
		return "matching"
	case Materializing:
		return "materializing"
	case Exhausted:
		return "exhausted"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine plans pages from a catalog. It holds no per-run state and is safe
// for concurrent use.
type Engine struct {
	materializer *page.Materializer
	scorer       fit.Scorer
}

// New returns an engine rendering pages through m and scoring with s.
func New(m *page.Materializer, s fit.Scorer) *Engine {
	return &Engine{materializer: m, scorer: s}
}

// run is the mutable state of one Run call.
type run struct {
	e       *Engine
	pool    *photo.Pool
	used    map[string]bool
	layouts []*layout.Layout
	tr      *trace.Log

	next        int // index into layouts of the next candidate
	current     *layout.Layout
	fallback    bool
	assignments []page.Assignment
	remaining   []photo.Photo

	pages       []page.Page
	pageNumber  int
	attempts    int
	maxAttempts int
	reason      string
}

// Run places every photo of pool not in used onto new pages numbered from
// firstPage. used is not modified. The returned pages never share a photo
// with used or with each other.
func (e *Engine) Run(pool *photo.Pool, used map[string]bool, firstPage int, tr *trace.Log) ([]page.Page, error) {
	r := &run{
		e:           e,
		pool:        pool,
		used:        maps.Clone(used),
		layouts:     e.materializer.Catalog().ByFrameCountDesc(),
		tr:          tr,
		pageNumber:  firstPage,
		maxAttempts: 2 * pool.Len(),
	}
	if r.used == nil {
		r.used = make(map[string]bool)
	}

	state := SelectingLayout
	for {
		tr.Debug(stage, "state", "state", state.String(), "page", r.pageNumber)
		switch state {
		case Done:
			tr.Info(stage, "planned pages", "pages", len(r.pages), "attempts", r.attempts)
			return r.pages, nil
		case Exhausted:
			tr.Warn(stage, "exhausted", "reason", r.reason)
			return r.pages, fmt.Errorf("%w: %s", ErrEngineExhausted, r.reason)
		case SelectingLayout:
			state = r.selectLayout()
		case Matching:
			state = r.match()
		case Materializing:
			state = r.materialize()
		}
	}
}

// selectLayout picks the next candidate layout. A new round starts whenever
// the scan is back at the largest layout; each round counts as one attempt.
func (r *run) selectLayout() State {
	r.remaining = r.pool.Unused(r.used)
	if len(r.remaining) == 0 {
		return Done
	}

	if r.next == 0 {
		r.attempts++
		if r.attempts > r.maxAttempts {
			r.reason = fmt.Sprintf("%d photos left after %d attempts", len(r.remaining), r.maxAttempts)
			return Exhausted
		}
	}

	for r.next < len(r.layouts) {
		l := r.layouts[r.next]
		r.next++
		if l.FrameCount() <= len(r.remaining) {
			r.current, r.fallback = l, false
			return Matching
		}
	}

	r.current, r.fallback = r.e.materializer.Catalog().Fallback(), true
	return Matching
}

func (r *run) match() State {
	if r.fallback {
		p := r.remaining[0]
		f := r.current.Frames[0]
		if r.e.scorer.Rejected(p.AspectRatio, f.AspectRatio) {
			r.reason = fmt.Sprintf("photo %s (aspect %.3f) rejected by fallback layout %s", p.ID, p.AspectRatio, r.current.ID)
			return Exhausted
		}
		r.assignments = []page.Assignment{{FrameNumber: f.ID, PhotoID: p.ID}}
		r.tr.Info(stage, "single photo fallback", "photo", p.ID, "layout", r.current.ID)
		return Materializing
	}

	assignments, ok := AssignPhotosToFrames(r.remaining, r.current.Frames, r.used, r.e.scorer)
	if !ok {
		return SelectingLayout
	}
	r.assignments = assignments
	return Materializing
}

func (r *run) materialize() State {
	l := r.current
	p, err := r.e.materializer.CreatePage(r.pageNumber, l.ID, r.assignments, r.pool)
	if err == nil {
		err = page.Verify(p, l.FrameCount())
	}
	if err != nil {
		r.tr.Warn(stage, "materialization failed", "layout", l.ID, "page", r.pageNumber, "error", err.Error())
		if r.fallback {
			r.reason = fmt.Sprintf("fallback layout %s: %v", l.ID, err)
			return Exhausted
		}
		return SelectingLayout
	}

	for _, a := range r.assignments {
		r.used[a.PhotoID] = true
	}
	r.pages = append(r.pages, *p)
	r.tr.Debug(stage, "page created", "page", r.pageNumber, "layout", l.ID, "photos", len(r.assignments))
	r.pageNumber++
	r.next = 0
	return SelectingLayout
}
