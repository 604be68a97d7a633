package album

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/page"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/google/uuid"
)

var (
	ErrInvalidEdit = errors.New("invalid edit")
	ErrNoLayout    = errors.New("no layout fits the photo count")
)

// FrameRef addresses one frame: Page is a 0-based index into the page list,
// Frame the 1-based frame number.
type FrameRef struct {
	Page  int `json:"page"`
	Frame int `json:"frame"`
}

// Editor applies user edits to a page list. Every method returns a new
// slice, rebuilds the pages it touches and renumbers the result; the input
// is never modified.
type Editor struct {
	materializer *page.Materializer
}

func NewEditor(c *layout.Catalog) *Editor {
	return &Editor{materializer: page.NewMaterializer(c)}
}

func checkIndex(pages []page.Page, i int) error {
	if i < 0 || i >= len(pages) {
		return fmt.Errorf("%w: page index %d out of range", ErrInvalidEdit, i)
	}
	return nil
}

func checkFrame(pages []page.Page, r FrameRef) error {
	if err := checkIndex(pages, r.Page); err != nil {
		return err
	}
	if r.Frame < 1 || r.Frame > len(pages[r.Page].PhotoIDs) {
		return fmt.Errorf("%w: page %d has no frame %d", ErrInvalidEdit, r.Page+1, r.Frame)
	}
	return nil
}

func renumbered(pages []page.Page) []page.Page {
	page.Renumber(pages)
	return pages
}

// rebuild re-materializes pg with the given layout and photo ids.
func (e *Editor) rebuild(pg page.Page, id, layoutID string, ids []string, photos page.PhotoLookup) (page.Page, error) {
	assignments := make([]page.Assignment, len(ids))
	for i, pid := range ids {
		assignments[i] = page.Assignment{FrameNumber: i + 1, PhotoID: pid}
	}
	built, err := e.materializer.Build(id, pg.PageNumber, layoutID, assignments, photos)
	if err != nil {
		return page.Page{}, err
	}
	return *built, nil
}

// Reorder moves the page at from to position to.
func (e *Editor) Reorder(pages []page.Page, from, to int) ([]page.Page, error) {
	if err := checkIndex(pages, from); err != nil {
		return nil, err
	}
	if err := checkIndex(pages, to); err != nil {
		return nil, err
	}
	out := slices.Clone(pages)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, moved)
	return renumbered(out), nil
}

// Delete removes the page at index. Its photos leave the album.
func (e *Editor) Delete(pages []page.Page, index int) ([]page.Page, error) {
	if err := checkIndex(pages, index); err != nil {
		return nil, err
	}
	out := slices.Delete(slices.Clone(pages), index, index+1)
	return renumbered(out), nil
}

// Duplicate inserts a copy of the page at index right after it. This is the
// only way a photo can appear on two pages.
func (e *Editor) Duplicate(pages []page.Page, index int, photos page.PhotoLookup) ([]page.Page, error) {
	if err := checkIndex(pages, index); err != nil {
		return nil, err
	}
	src := pages[index]
	dup, err := e.rebuild(src, uuid.NewString(), src.LayoutName, src.PhotoIDs, photos)
	if err != nil {
		return nil, err
	}
	out := slices.Insert(slices.Clone(pages), index+1, dup)
	return renumbered(out), nil
}

// SwapPhotos exchanges the photos of two frames, on the same page or on
// different pages. Layouts stay as they are.
func (e *Editor) SwapPhotos(pages []page.Page, src, dst FrameRef, photos page.PhotoLookup) ([]page.Page, error) {
	if err := checkFrame(pages, src); err != nil {
		return nil, err
	}
	if err := checkFrame(pages, dst); err != nil {
		return nil, err
	}
	out := slices.Clone(pages)
	srcIDs := slices.Clone(out[src.Page].PhotoIDs)
	if src.Page == dst.Page {
		srcIDs[src.Frame-1], srcIDs[dst.Frame-1] = srcIDs[dst.Frame-1], srcIDs[src.Frame-1]
		pg, err := e.rebuild(out[src.Page], out[src.Page].ID, out[src.Page].LayoutName, srcIDs, photos)
		if err != nil {
			return nil, err
		}
		out[src.Page] = pg
		return renumbered(out), nil
	}

	dstIDs := slices.Clone(out[dst.Page].PhotoIDs)
	srcIDs[src.Frame-1], dstIDs[dst.Frame-1] = dstIDs[dst.Frame-1], srcIDs[src.Frame-1]
	a, err := e.rebuild(out[src.Page], out[src.Page].ID, out[src.Page].LayoutName, srcIDs, photos)
	if err != nil {
		return nil, err
	}
	b, err := e.rebuild(out[dst.Page], out[dst.Page].ID, out[dst.Page].LayoutName, dstIDs, photos)
	if err != nil {
		return nil, err
	}
	out[src.Page], out[dst.Page] = a, b
	return renumbered(out), nil
}

// MovePhoto takes the photo at src and inserts it on page dst.Page before
// frame dst.Frame (a frame past the end appends). Both pages switch to the
// layout that best fits their new photos. A page left empty is removed.
func (e *Editor) MovePhoto(pages []page.Page, src, dst FrameRef, photos page.PhotoLookup) ([]page.Page, error) {
	if err := checkFrame(pages, src); err != nil {
		return nil, err
	}
	if err := checkIndex(pages, dst.Page); err != nil {
		return nil, err
	}

	out := slices.Clone(pages)
	srcIDs := slices.Clone(out[src.Page].PhotoIDs)
	moved := srcIDs[src.Frame-1]
	srcIDs = slices.Delete(srcIDs, src.Frame-1, src.Frame)

	dstIDs := srcIDs
	if dst.Page != src.Page {
		dstIDs = slices.Clone(out[dst.Page].PhotoIDs)
	}
	pos := min(max(dst.Frame-1, 0), len(dstIDs))
	dstIDs = slices.Insert(dstIDs, pos, moved)

	relayout := func(i int, ids []string) error {
		l, err := e.layoutFor(ids, photos)
		if err != nil {
			return err
		}
		pg, err := e.rebuild(out[i], out[i].ID, l.ID, ids, photos)
		if err != nil {
			return err
		}
		out[i] = pg
		return nil
	}

	if err := relayout(dst.Page, dstIDs); err != nil {
		return nil, err
	}
	if dst.Page != src.Page {
		if len(srcIDs) == 0 {
			out = slices.Delete(out, src.Page, src.Page+1)
		} else if err := relayout(src.Page, srcIDs); err != nil {
			return nil, err
		}
	}
	return renumbered(out), nil
}

// ChangeLayout switches the page at index to layoutID, keeping its photos in
// frame order. The new layout must have exactly as many frames as the page
// has photos.
func (e *Editor) ChangeLayout(pages []page.Page, index int, layoutID string, photos page.PhotoLookup) ([]page.Page, error) {
	if err := checkIndex(pages, index); err != nil {
		return nil, err
	}
	l, ok := e.materializer.Catalog().Get(layoutID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", layout.ErrUnknownLayout, layoutID)
	}
	pg := pages[index]
	if l.FrameCount() != len(pg.PhotoIDs) {
		return nil, fmt.Errorf("%w: %s has %d frames, page has %d photos", ErrInvalidEdit, l.ID, l.FrameCount(), len(pg.PhotoIDs))
	}
	rebuilt, err := e.rebuild(pg, pg.ID, l.ID, pg.PhotoIDs, photos)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(pages)
	out[index] = rebuilt
	return renumbered(out), nil
}

// layoutFor resolves ids and picks the best layout with exactly that many
// frames.
func (e *Editor) layoutFor(ids []string, photos page.PhotoLookup) (*layout.Layout, error) {
	ps := make([]photo.Photo, 0, len(ids))
	for _, id := range ids {
		p, ok := photos.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: unknown photo %q", ErrInvalidEdit, id)
		}
		ps = append(ps, p)
	}
	l, exact := BestLayout(e.materializer.Catalog(), ps)
	if !exact {
		return nil, fmt.Errorf("%w: %d photos", ErrNoLayout, len(ids))
	}
	return l, nil
}

// BestLayout picks the layout whose frame orientations best match photos in
// order. When no layout has len(photos) frames it returns the first layout
// of the nearest frame count (the smaller on a tie) and exact=false.
func BestLayout(c *layout.Catalog, photos []photo.Photo) (l *layout.Layout, exact bool) {
	if len(photos) == 0 {
		return c.Fallback(), false
	}
	orientations := make([]fit.Orientation, len(photos))
	for i, p := range photos {
		orientations[i] = p.Orientation
	}
	if l := c.BestFor(orientations); l != nil {
		return l, true
	}

	n := len(photos)
	var best *layout.Layout
	bestDist := -1
	for _, cand := range c.All() {
		d := cand.FrameCount() - n
		if d < 0 {
			d = -d
		}
		if best == nil || d < bestDist || (d == bestDist && cand.FrameCount() < best.FrameCount()) {
			best, bestDist = cand, d
		}
	}
	return best, false
}
