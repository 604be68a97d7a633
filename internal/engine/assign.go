package engine

import (
	"cmp"
	"slices"

	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/page"
	"github.com/Prithvi-997/origin-brew/internal/photo"
)

type pair struct {
	frame int // index into frames
	photo int // index into pool
	score float64
}

// AssignPhotosToFrames fills every frame with a distinct unused photo from
// pool, committing the best-scoring pairs first. Hard-rejected pairs are never
// considered. Ties are broken by frame index, then pool order. It returns
// false when any frame is left empty; partial assignments are never returned.
func AssignPhotosToFrames(pool []photo.Photo, frames []layout.Frame, used map[string]bool, s fit.Scorer) ([]page.Assignment, bool) {
	if len(frames) == 0 {
		return nil, false
	}

	var pairs []pair
	for fi, f := range frames {
		for pi, p := range pool {
			if used[p.ID] || s.Rejected(p.AspectRatio, f.AspectRatio) {
				continue
			}
			pairs = append(pairs, pair{frame: fi, photo: pi, score: s.Score(p.AspectRatio, f.AspectRatio)})
		}
	}
	slices.SortStableFunc(pairs, func(a, b pair) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.frame, b.frame); c != 0 {
			return c
		}
		return cmp.Compare(a.photo, b.photo)
	})

	filled := make([]bool, len(frames))
	taken := make(map[string]bool, len(frames))
	out := make([]page.Assignment, 0, len(frames))
	for _, pr := range pairs {
		id := pool[pr.photo].ID
		if filled[pr.frame] || taken[id] {
			continue
		}
		filled[pr.frame] = true
		taken[id] = true
		out = append(out, page.Assignment{FrameNumber: frames[pr.frame].ID, PhotoID: id})
		if len(out) == len(frames) {
			break
		}
	}
	if len(out) < len(frames) {
		return nil, false
	}

	slices.SortFunc(out, func(a, b page.Assignment) int {
		return cmp.Compare(a.FrameNumber, b.FrameNumber)
	})
	return out, true
}
