package plan

import (
	"fmt"
	"math"

	"github.com/Prithvi-997/origin-brew/internal/engine"
	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/page"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/Prithvi-997/origin-brew/internal/trace"
)

const stage = "plan"

// DefaultMinAcceptRatio is the share of a layout's frames that must hold
// valid assignments for a proposed page to be kept and padded.
const DefaultMinAcceptRatio = 0.6

// Processor turns candidate plans into pages. Invalid assignments are
// dropped one by one and whatever the plan does not place goes to the
// deterministic engine.
type Processor struct {
	materializer   *page.Materializer
	engine         *engine.Engine
	scorer         fit.Scorer
	minAcceptRatio float64
}

// NewProcessor returns a processor. A non-positive minAcceptRatio selects
// DefaultMinAcceptRatio.
func NewProcessor(m *page.Materializer, e *engine.Engine, s fit.Scorer, minAcceptRatio float64) *Processor {
	if minAcceptRatio <= 0 || minAcceptRatio > 1 {
		minAcceptRatio = DefaultMinAcceptRatio
	}
	return &Processor{materializer: m, engine: e, scorer: s, minAcceptRatio: minAcceptRatio}
}

// MinFrames returns how many valid assignments a page of frameCount frames
// needs to be kept.
func (p *Processor) MinFrames(frameCount int) int {
	return int(math.Ceil(p.minAcceptRatio*float64(frameCount) - 1e-9))
}

// Process validates c against pool and returns the final page list. c may
// be nil, in which case every photo goes through the engine. Errors come
// from engine exhaustion or from rebuilding pages after duplicates are
// removed.
func (p *Processor) Process(c *Candidate, pool *photo.Pool, tr *trace.Log) ([]page.Page, error) {
	used := make(map[string]bool, pool.Len())
	var pages []page.Page

	if c != nil {
		for i, cp := range c.Pages {
			pg := p.processPage(i+1, len(pages)+1, cp, pool, used, tr)
			if pg == nil {
				continue
			}
			for _, id := range pg.PhotoIDs {
				used[id] = true
			}
			pages = append(pages, *pg)
		}
		tr.Info(stage, "plan applied", "proposed", len(c.Pages), "accepted", len(pages), "photos", len(used))
	}

	if len(used) < pool.Len() {
		tr.Info(stage, "placing leftover photos", "count", pool.Len()-len(used))
		extra, err := p.engine.Run(pool, used, len(pages)+1, tr)
		if err != nil {
			return nil, err
		}
		pages = append(pages, extra...)
	}

	pages, removed := page.Dedupe(pages)
	if removed > 0 {
		tr.Warn(stage, "duplicate pages removed", "count", removed)
		if err := p.materializer.Renumber(pages, pool); err != nil {
			return nil, err
		}
	}
	return pages, nil
}

// processPage validates one proposed page. proposed is the page's position
// in the plan, number the page number it gets if kept. It returns nil when
// the page is dropped; nothing is marked used in that case.
func (p *Processor) processPage(proposed, number int, cp CandidatePage, pool *photo.Pool, used map[string]bool, tr *trace.Log) *page.Page {
	l, ok := p.materializer.Catalog().Get(LayoutID(cp.LayoutToUse))
	if !ok {
		tr.Warn(stage, "unknown layout, page skipped", "proposed", proposed, "layout", cp.LayoutToUse)
		return nil
	}

	local := make(map[string]bool, len(cp.Frames))
	filled := make(map[int]bool, len(cp.Frames))
	var valid []page.Assignment
	reject := func(f CandidateFrame, reason string) {
		tr.Warn(stage, "assignment rejected", "proposed", proposed, "frame", f.FrameNumber, "photo", f.ImageID, "reason", reason)
	}

	for _, f := range cp.Frames {
		ph, ok := pool.Get(f.ImageID)
		switch {
		case !ok:
			reject(f, "unknown photo")
			continue
		case used[ph.ID]:
			reject(f, "photo already placed on an earlier page")
			continue
		case local[ph.ID]:
			reject(f, "photo repeated on this page")
			continue
		}
		frame, ok := l.Frame(f.FrameNumber)
		switch {
		case !ok:
			reject(f, fmt.Sprintf("frame out of range for %s", l.ID))
			continue
		case filled[frame.ID]:
			reject(f, "frame already assigned")
			continue
		case !p.scorer.Acceptable(ph.AspectRatio, frame.AspectRatio):
			reject(f, fmt.Sprintf("aspect %.2f does not fit frame %.2f", ph.AspectRatio, frame.AspectRatio))
			continue
		}
		local[ph.ID] = true
		filled[frame.ID] = true
		valid = append(valid, page.Assignment{FrameNumber: frame.ID, PhotoID: ph.ID})
	}

	need := l.FrameCount()
	if threshold := p.MinFrames(need); len(valid) < threshold {
		tr.Warn(stage, "page dropped", "proposed", proposed, "layout", l.ID, "valid", len(valid), "needed", threshold)
		return nil
	}

	if len(valid) < need {
		padded, ok := p.pad(l, valid, filled, pool, used, local)
		if !ok {
			tr.Warn(stage, "page dropped, not enough photos to pad", "proposed", proposed, "layout", l.ID)
			return nil
		}
		tr.Info(stage, "page padded", "proposed", proposed, "layout", l.ID, "added", len(padded)-len(valid))
		valid = padded
	}

	pg, err := p.materializer.CreatePage(number, l.ID, valid, pool)
	if err == nil {
		err = page.Verify(pg, need)
	}
	if err != nil {
		tr.Warn(stage, "materialization failed, photos released", "proposed", proposed, "layout", l.ID, "error", err.Error())
		return nil
	}
	return pg
}

// pad fills the empty frames of l in frame order with unused photos in pool
// order. Photos a frame would hard-reject are skipped for that frame.
func (p *Processor) pad(l *layout.Layout, valid []page.Assignment, filled map[int]bool, pool *photo.Pool, used, local map[string]bool) ([]page.Assignment, bool) {
	taken := make(map[string]bool, len(used)+len(local))
	for id := range used {
		taken[id] = true
	}
	for id := range local {
		taken[id] = true
	}
	candidates := pool.Unused(taken)

	out := append([]page.Assignment(nil), valid...)
	for _, f := range l.Frames {
		if filled[f.ID] {
			continue
		}
		found := false
		for _, ph := range candidates {
			if taken[ph.ID] || p.scorer.Rejected(ph.AspectRatio, f.AspectRatio) {
				continue
			}
			taken[ph.ID] = true
			out = append(out, page.Assignment{FrameNumber: f.ID, PhotoID: ph.ID})
			found = true
			break
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}
