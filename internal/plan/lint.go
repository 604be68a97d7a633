package plan

import (
	"fmt"

	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/photo"
)

// fullLengthAspect marks photos narrow enough to lose the subject in any
// wider-than-square frame.
const fullLengthAspect = 0.65

// Warning is an advisory finding about a candidate plan. Page is 1-based in
// plan order; Frame is 0 for page-level findings.
type Warning struct {
	Page    int    `json:"page"`
	Frame   int    `json:"frame,omitempty"`
	PhotoID string `json:"photoId,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Frame > 0 {
		return fmt.Sprintf("page %d frame %d: %s", w.Page, w.Frame, w.Message)
	}
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s", w.Page, w.Message)
	}
	return w.Message
}

// Lint reports problems in c without changing it. Process handles every
// finding on its own; Lint exists so they can be shown to a user.
func Lint(c *Candidate, pool *photo.Pool, cat *layout.Catalog, s fit.Scorer) []Warning {
	var warnings []Warning
	placed := make(map[string]int)

	for i, cp := range c.Pages {
		n := i + 1
		l, ok := cat.Get(LayoutID(cp.LayoutToUse))
		if !ok {
			warnings = append(warnings, Warning{Page: n, Message: fmt.Sprintf("unknown layout %q", cp.LayoutToUse)})
			continue
		}
		if len(cp.Frames) < l.FrameCount() {
			warnings = append(warnings, Warning{Page: n, Message: fmt.Sprintf("%s has %d frames, plan fills %d", l.ID, l.FrameCount(), len(cp.Frames))})
		}

		for _, f := range cp.Frames {
			ph, ok := pool.Get(f.ImageID)
			if !ok {
				warnings = append(warnings, Warning{Page: n, Frame: f.FrameNumber, PhotoID: f.ImageID, Message: "unknown photo"})
				continue
			}
			if prev, dup := placed[ph.ID]; dup {
				warnings = append(warnings, Warning{Page: n, Frame: f.FrameNumber, PhotoID: ph.ID, Message: fmt.Sprintf("photo already placed on page %d", prev)})
			} else {
				placed[ph.ID] = n
			}

			frame, ok := l.Frame(f.FrameNumber)
			if !ok {
				warnings = append(warnings, Warning{Page: n, Frame: f.FrameNumber, PhotoID: ph.ID, Message: fmt.Sprintf("%s has no frame %d", l.ID, f.FrameNumber)})
				continue
			}
			switch {
			case s.Rejected(ph.AspectRatio, frame.AspectRatio):
				warnings = append(warnings, Warning{Page: n, Frame: frame.ID, PhotoID: ph.ID, Message: "landscape photo in portrait frame"})
			case ph.AspectRatio < fullLengthAspect && frame.AspectRatio > 1:
				warnings = append(warnings, Warning{Page: n, Frame: frame.ID, PhotoID: ph.ID, Message: "full-length portrait in a wide frame"})
			case !s.Acceptable(ph.AspectRatio, frame.AspectRatio):
				warnings = append(warnings, Warning{Page: n, Frame: frame.ID, PhotoID: ph.ID, Message: fmt.Sprintf("poor fit: photo %.2f, frame %.2f", ph.AspectRatio, frame.AspectRatio)})
			}
		}
	}

	if missing := pool.Len() - len(placed); missing > 0 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("%d photos not placed by the plan", missing)})
	}
	return warnings
}
