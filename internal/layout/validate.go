package layout

import (
	"fmt"
	"math"

	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/svg"
)

// Severity levels for ValidationWarning.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationWarning describes a catalog integrity issue.
type ValidationWarning struct {
	LayoutID string `json:"layoutId"`
	FrameID  int    `json:"frameId"` // -1 for layout-level issues
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// AspectTolerance is the allowed difference between a frame's declared aspect
// ratio and the one measured from its template geometry.
const AspectTolerance = 0.02

// Validate checks every layout's template against its metadata.
func Validate(c *Catalog) []ValidationWarning {
	var warnings []ValidationWarning
	for _, l := range c.layouts {
		warnings = append(warnings, validateLayout(l, c.viewBox)...)
	}

	if fo := c.fallback.Frames[0].Orientation(); fo != fit.Square {
		warnings = append(warnings, ValidationWarning{
			LayoutID: c.fallback.ID,
			FrameID:  1,
			Message:  fmt.Sprintf("fallback frame is %s, some photos cannot be placed in it", fo),
			Severity: SeverityWarning,
		})
	}
	return warnings
}

// HasErrors reports whether any warning is an error.
func HasErrors(warnings []ValidationWarning) bool {
	for _, w := range warnings {
		if w.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateLayout(l *Layout, vb ViewBox) []ValidationWarning {
	const eps = 0.01
	layoutErr := func(msg string) ValidationWarning {
		return ValidationWarning{LayoutID: l.ID, FrameID: -1, Message: msg, Severity: SeverityError}
	}

	doc, err := svg.Parse(l.Template)
	if err != nil {
		return []ValidationWarning{layoutErr(err.Error())}
	}

	var warnings []ValidationWarning
	rects := doc.Frames()
	byFrame := make(map[int]svg.Rect, len(rects))
	for _, r := range rects {
		if _, dup := byFrame[r.FrameNumber]; dup {
			warnings = append(warnings, ValidationWarning{
				LayoutID: l.ID, FrameID: r.FrameNumber,
				Message:  "frame appears more than once in template",
				Severity: SeverityError,
			})
			continue
		}
		byFrame[r.FrameNumber] = r.Rect
	}

	for _, f := range l.Frames {
		r, ok := byFrame[f.ID]
		if !ok {
			warnings = append(warnings, ValidationWarning{
				LayoutID: l.ID, FrameID: f.ID,
				Message:  "frame has no shape in template",
				Severity: SeverityError,
			})
			continue
		}

		if vb.Width > 0 && vb.Height > 0 &&
			(r.X < -eps || r.Y < -eps || r.X+r.Width > vb.Width+eps || r.Y+r.Height > vb.Height+eps) {
			warnings = append(warnings, ValidationWarning{
				LayoutID: l.ID, FrameID: f.ID,
				Message:  fmt.Sprintf("frame box (%.1f,%.1f %.1fx%.1f) extends past page %.0fx%.0f", r.X, r.Y, r.Width, r.Height, vb.Width, vb.Height),
				Severity: SeverityError,
			})
		}

		if r.Height <= 0 || r.Width <= 0 {
			warnings = append(warnings, ValidationWarning{
				LayoutID: l.ID, FrameID: f.ID,
				Message:  "frame box is empty",
				Severity: SeverityError,
			})
			continue
		}
		if measured := r.Width / r.Height; math.Abs(measured-f.AspectRatio) > AspectTolerance {
			warnings = append(warnings, ValidationWarning{
				LayoutID: l.ID, FrameID: f.ID,
				Message:  fmt.Sprintf("declared aspect %.3f differs from template geometry %.3f", f.AspectRatio, measured),
				Severity: SeverityWarning,
			})
		}
	}

	if len(byFrame) > l.FrameCount() {
		warnings = append(warnings, layoutErr(fmt.Sprintf("template has %d frames, metadata declares %d", len(byFrame), l.FrameCount())))
	}

	for i := 1; i <= l.FrameCount(); i++ {
		ri, ok := byFrame[i]
		if !ok {
			continue
		}
		for j := i + 1; j <= l.FrameCount(); j++ {
			rj, ok := byFrame[j]
			if !ok {
				continue
			}
			if rectsOverlap(ri, rj, eps) {
				warnings = append(warnings, ValidationWarning{
					LayoutID: l.ID, FrameID: i,
					Message:  fmt.Sprintf("frame %d overlaps with frame %d", i, j),
					Severity: SeverityError,
				})
			}
		}
	}

	bindings := make([]svg.Binding, l.FrameCount())
	for i, f := range l.Frames {
		bindings[i] = svg.Binding{FrameNumber: f.ID, Href: "check"}
	}
	if bound := doc.BindImages(bindings); bound < l.FrameCount() {
		warnings = append(warnings, layoutErr(fmt.Sprintf("only %d of %d frames have an image slot", bound, l.FrameCount())))
	}

	return warnings
}

// rectsOverlap checks if two boxes overlap by more than eps.
func rectsOverlap(a, b svg.Rect, eps float64) bool {
	if a.X+a.Width <= b.X+eps || b.X+b.Width <= a.X+eps {
		return false
	}
	if a.Y+a.Height <= b.Y+eps || b.Y+b.Height <= a.Y+eps {
		return false
	}
	return true
}
