// Package photo holds the photo model consumed by the layout planner.
package photo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Prithvi-997/origin-brew/internal/fit"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidAspect is returned for photos without a positive aspect ratio.
var ErrInvalidAspect = errors.New("photo aspect ratio must be positive")

// Photo is an uploaded photograph. Orientation always follows AspectRatio.
type Photo struct {
	ID          string          `json:"id"`
	Width       int             `json:"width,omitempty"`
	Height      int             `json:"height,omitempty"`
	AspectRatio float64         `json:"aspectRatio"`
	Orientation fit.Orientation `json:"orientation"`
	Priority    float64         `json:"priority,omitempty"`
	URL         string          `json:"url,omitempty"`
	FileName    string          `json:"fileName,omitempty"`
}

// New creates a photo from pixel dimensions.
func New(id string, width, height int, url string) (Photo, error) {
	if width <= 0 || height <= 0 {
		return Photo{}, fmt.Errorf("photo %s: invalid dimensions %dx%d: %w", id, width, height, ErrInvalidAspect)
	}
	p := Photo{ID: id, Width: width, Height: height, URL: url}
	if err := p.Normalize(); err != nil {
		return Photo{}, err
	}
	p.Priority = Priority(width, height)
	return p, nil
}

// FromAspect creates a photo when only the aspect ratio is known.
func FromAspect(id string, aspect float64, url string) (Photo, error) {
	p := Photo{ID: id, AspectRatio: aspect, URL: url}
	if err := p.Normalize(); err != nil {
		return Photo{}, err
	}
	return p, nil
}

// Normalize canonicalizes the ID and re-derives AspectRatio (when dimensions
// are known) and Orientation. Decoded manifests must be normalized before use
// since a client-supplied orientation is not trusted.
func (p *Photo) Normalize() error {
	p.ID = NormalizeID(p.ID)
	if p.ID == "" {
		return errors.New("photo id is required")
	}
	if p.Width > 0 && p.Height > 0 {
		p.AspectRatio = float64(p.Width) / float64(p.Height)
	}
	if p.AspectRatio <= 0 {
		return fmt.Errorf("photo %s: %w", p.ID, ErrInvalidAspect)
	}
	p.Orientation = fit.Default.Classify(p.AspectRatio)
	return nil
}

// NormalizeID trims whitespace and applies Unicode NFC so ids round-trip
// through external planners that may re-encode them.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// Priority scores a photo 0-100 from its resolution and how far its aspect
// ratio is from the common 3:2.
func Priority(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	megapixels := float64(width) * float64(height) / 1_000_000
	sizeFactor := min(megapixels/12, 1) * 50
	aspect := float64(width) / float64(height)
	uniqueness := abs(aspect-1.5) * 10
	return min(100, sizeFactor+uniqueness+25)
}

// CollectionPriorities scores each photo relative to the rest of the
// collection: resolution plus how unusual its aspect ratio is.
func CollectionPriorities(photos []Photo) []int {
	scores := make([]int, len(photos))
	for i, p := range photos {
		score := 50.0
		if p.Width > 0 && p.Height > 0 {
			megapixels := float64(p.Width) * float64(p.Height) / 1_000_000
			score += min(megapixels/12, 1) * 30
		}
		var sum float64
		for j, other := range photos {
			if j != i {
				sum += abs(other.AspectRatio - p.AspectRatio)
			}
		}
		score += min(sum/float64(len(photos))*20, 20)
		scores[i] = int(min(100, score) + 0.5)
	}
	return scores
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
