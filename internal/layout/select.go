package layout

import (
	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/photo"
)

// orientationScore rewards frame-by-frame orientation agreement: 2 for an
// exact match, 1 when exactly one side is square.
func orientationScore(photos, frames []fit.Orientation) int {
	score := 0
	for i := range min(len(photos), len(frames)) {
		switch {
		case photos[i] == frames[i]:
			score += 2
		case photos[i] == fit.Square || frames[i] == fit.Square:
			score++
		}
	}
	return score
}

// BestFor picks the layout whose frame orientations best match the given
// photo orientations in order. Only layouts with exactly len(orientations)
// frames qualify; nil is returned when there are none.
func (c *Catalog) BestFor(orientations []fit.Orientation) *Layout {
	if len(orientations) == 0 {
		return nil
	}
	var best *Layout
	bestScore := -1
	for _, l := range c.WithFrameCount(len(orientations)) {
		if s := orientationScore(orientations, l.Orientations()); s > bestScore {
			best, bestScore = l, s
		}
	}
	return best
}

// Recommend suggests layouts suited to the collection's shape mix. The result
// is advisory and passed to planners as a hint.
func (c *Catalog) Recommend(d photo.Distribution) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(match func(*Layout) bool) {
		for _, l := range c.layouts {
			if !seen[l.ID] && match(l) {
				seen[l.ID] = true
				out = append(out, l.ID)
			}
		}
	}
	count := func(l *Layout, pred func(Frame) bool) int {
		n := 0
		for _, f := range l.Frames {
			if pred(f) {
				n++
			}
		}
		return n
	}

	if d.FullLengthPortraits > 0 {
		add(func(l *Layout) bool { return count(l, func(f Frame) bool { return f.AspectRatio < 0.7 }) > 0 })
	}
	if d.RegularPortraits >= 5 {
		add(func(l *Layout) bool { return count(l, func(f Frame) bool { return f.Orientation() == fit.Portrait }) >= 3 })
	}
	if d.Landscapes >= 5 {
		add(func(l *Layout) bool { return count(l, func(f Frame) bool { return f.Orientation() == fit.Landscape }) >= 4 })
	}
	if d.WidePanoramics >= 2 {
		add(func(l *Layout) bool { return count(l, func(f Frame) bool { return f.AspectRatio >= 1.6 }) >= 2 })
	}
	if d.Squares >= 4 {
		add(func(l *Layout) bool { return count(l, func(f Frame) bool { return f.Orientation() == fit.Square }) >= 2 })
	}
	return out
}
