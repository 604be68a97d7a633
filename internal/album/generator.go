// Package album turns a photo collection into an ordered list of pages. It
// asks the configured planner for a plan, repairs it and places whatever the
// plan missed with the deterministic engine.
package album

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Prithvi-997/origin-brew/internal/ai"
	"github.com/Prithvi-997/origin-brew/internal/constants"
	"github.com/Prithvi-997/origin-brew/internal/engine"
	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/page"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/Prithvi-997/origin-brew/internal/plan"
	"github.com/Prithvi-997/origin-brew/internal/trace"
	"github.com/google/uuid"
)

const stage = "album"

var (
	ErrNoPhotos = errors.New("no photos to place")
	// ErrIncompleteAlbum means the final pages do not hold every photo
	// exactly once. It indicates a bug, not bad input.
	ErrIncompleteAlbum = errors.New("album does not place every photo exactly once")
)

// Options configures a Generator.
type Options struct {
	// Planner is optional; without one every album is planned locally.
	Planner ai.Planner
	Timeout time.Duration // per planner call, zero for the default
	// Thresholds tunes matching. Its OrientationFactor is replaced by the
	// default so the engine classifies shapes exactly like photo and layout.
	Thresholds     fit.Thresholds
	MinAcceptRatio float64
}

// Result is a generated album.
type Result struct {
	Pages []page.Page `json:"pages"`
	// Notice tells the user the planner could not be used.
	Notice   string        `json:"notice,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Planner  string        `json:"planner,omitempty"`
	Usage    *ai.Usage     `json:"usage,omitempty"`
	Trace    []trace.Event `json:"trace,omitempty"`
}

// Generator is safe for concurrent use as long as its planner is.
type Generator struct {
	catalog      *layout.Catalog
	scorer       fit.Scorer
	materializer *page.Materializer
	processor    *plan.Processor
	planner      ai.Planner
	timeout      time.Duration
}

func NewGenerator(c *layout.Catalog, opts Options) *Generator {
	t := opts.Thresholds
	if t.MaxAspectDiff == 0 {
		t = fit.DefaultThresholds()
	}
	t.OrientationFactor = fit.Default.Thresholds().OrientationFactor
	scorer := fit.NewScorer(t)
	m := page.NewMaterializer(c)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultPlannerTimeout
	}
	return &Generator{
		catalog:      c,
		scorer:       scorer,
		materializer: m,
		processor:    plan.NewProcessor(m, engine.New(m, scorer), scorer, opts.MinAcceptRatio),
		planner:      opts.Planner,
		timeout:      timeout,
	}
}

// Catalog returns the layout catalog pages are built from.
func (g *Generator) Catalog() *layout.Catalog {
	return g.catalog
}

// Editor returns an editor over the same catalog.
func (g *Generator) Editor() *Editor {
	return &Editor{materializer: g.materializer}
}

// Generate plans pages for photos. Planner failures never fail generation;
// they only set Result.Notice. tr may be nil.
func (g *Generator) Generate(ctx context.Context, photos []photo.Photo, tr *trace.Log) (*Result, error) {
	pool, err := photo.NewPool(photos)
	if err != nil {
		return nil, err
	}
	if pool.Len() == 0 {
		return nil, ErrNoPhotos
	}

	res := &Result{}
	candidate := g.ask(ctx, ai.NewRequest(g.catalog, pool.Photos()), pool, res, tr)

	pages, err := g.processor.Process(candidate, pool, tr)
	if err != nil {
		return nil, err
	}
	if err := checkCoverage(pages, pool.IDs()); err != nil {
		return nil, err
	}

	tr.Info(stage, "album generated", "pages", len(pages), "photos", pool.Len())
	res.Pages = pages
	res.Trace = tr.Events()
	return res, nil
}

// Regenerate re-plans the photos of the pages at indices and puts the new
// pages where the first selected page was. With keepLayouts the planner is
// asked to reuse the current layouts. photos must contain every photo of the
// selected pages.
func (g *Generator) Regenerate(ctx context.Context, pages []page.Page, indices []int, photos []photo.Photo, keepLayouts bool, tr *trace.Log) (*Result, error) {
	idx := slices.Clone(indices)
	slices.Sort(idx)
	idx = slices.Compact(idx)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: no pages selected", ErrInvalidEdit)
	}
	for _, i := range idx {
		if i < 0 || i >= len(pages) {
			return nil, fmt.Errorf("%w: page index %d out of range", ErrInvalidEdit, i)
		}
	}

	all, err := photo.NewPool(photos)
	if err != nil {
		return nil, err
	}
	// A duplicated page repeats photos; each is re-planned once.
	var ids, keep []string
	seen := make(map[string]bool)
	for _, i := range idx {
		for _, id := range pages[i].PhotoIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		keep = append(keep, pages[i].LayoutName)
	}
	if len(ids) == 0 {
		return nil, ErrNoPhotos
	}
	pool, err := all.Subset(ids)
	if err != nil {
		return nil, err
	}

	req := ai.NewRequest(g.catalog, pool.Photos())
	if keepLayouts {
		req.KeepLayouts = slices.Compact(slices.Sorted(slices.Values(keep)))
	}

	res := &Result{}
	candidate := g.ask(ctx, req, pool, res, tr)
	fresh, err := g.processor.Process(candidate, pool, tr)
	if err != nil {
		return nil, err
	}
	if err := checkCoverage(fresh, pool.IDs()); err != nil {
		return nil, err
	}

	// Regenerated pages get fresh ids so their markup ids never collide with
	// pages kept from the old album.
	for i := range fresh {
		pg, err := g.materializer.Build(uuid.NewString(), fresh[i].PageNumber, fresh[i].LayoutName, fresh[i].Assignments(), pool)
		if err != nil {
			return nil, err
		}
		fresh[i] = *pg
	}

	selected := make(map[int]bool, len(idx))
	for _, i := range idx {
		selected[i] = true
	}
	out := make([]page.Page, 0, len(pages)-len(idx)+len(fresh))
	for i, pg := range pages {
		if i == idx[0] {
			out = append(out, fresh...)
		}
		if !selected[i] {
			out = append(out, pg)
		}
	}
	page.Renumber(out)

	tr.Info(stage, "pages regenerated", "replaced", len(idx), "new", len(fresh))
	res.Pages = out
	res.Trace = tr.Events()
	return res, nil
}

// ask returns the planner's candidate, or nil when there is no planner or it
// failed. Failures are recorded on res.
func (g *Generator) ask(ctx context.Context, req ai.Request, pool *photo.Pool, res *Result, tr *trace.Log) *plan.Candidate {
	if g.planner == nil {
		tr.Info(stage, "no planner configured, planning locally")
		return nil
	}
	res.Planner = g.planner.Name()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// The planner is shared by concurrent jobs; only this call's tokens go
	// on the result.
	res.Usage = &ai.Usage{}
	ctx = ai.WithCallUsage(ctx, res.Usage)

	start := time.Now()
	candidate, err := g.planner.Plan(ctx, req)

	if err != nil {
		res.Notice = noticeFor(err)
		tr.Warn(stage, "planner failed, planning locally", "planner", res.Planner, "error", err.Error())
		return nil
	}
	tr.Info(stage, "planner answered", "planner", res.Planner, "pages", len(candidate.Pages), "duration", time.Since(start).Round(time.Millisecond).String())

	for _, w := range plan.Lint(candidate, pool, g.catalog, g.scorer) {
		res.Warnings = append(res.Warnings, w.String())
	}
	return candidate
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		return "The AI planner is rate limited right now. Pages were laid out automatically."
	case errors.Is(err, ai.ErrQuotaExceeded):
		return "The AI planner usage limit was reached. Pages were laid out automatically."
	case errors.Is(err, context.DeadlineExceeded):
		return "The AI planner took too long to answer. Pages were laid out automatically."
	default:
		return "The AI planner was unavailable. Pages were laid out automatically."
	}
}

// checkCoverage verifies pages hold exactly the photos in ids.
func checkCoverage(pages []page.Page, ids []string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range page.PhotoIDs(pages) {
		if !want[id] {
			return fmt.Errorf("%w: unexpected photo %q", ErrIncompleteAlbum, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: photo %q placed twice", ErrIncompleteAlbum, id)
		}
		seen[id] = true
	}
	if len(seen) != len(want) {
		return fmt.Errorf("%w: %d of %d photos placed", ErrIncompleteAlbum, len(seen), len(want))
	}
	return nil
}
