// Package fit scores how well a photo's proportions match a frame's target
// proportions. A single threshold set classifies both photos and frames.
package fit

import "math"

// Orientation is the coarse shape class of a photo or frame.
type Orientation string

// Orientation values.
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
	Square    Orientation = "square"
)

// Thresholds configures the scorer. The zero value is not usable; start from
// DefaultThresholds.
type Thresholds struct {
	// OrientationFactor is the ratio by which one side must exceed the other
	// for a shape to count as landscape or portrait.
	OrientationFactor float64
	// MaxAspectDiff is the largest aspect-ratio difference Acceptable allows.
	MaxAspectDiff float64
	// SameSideBonus multiplies the score when photo and frame are on the same
	// side of aspect 1.0.
	SameSideBonus float64
	// MismatchDiff and MismatchPenalty penalize marginal matches.
	MismatchDiff    float64
	MismatchPenalty float64
	// SevereDiff and SeverePenalty apply on top of the mismatch penalty.
	SevereDiff    float64
	SeverePenalty float64
}

// DefaultThresholds returns the canonical thresholds: portrait below 1/1.1
// (about 0.91), landscape from 1.1, acceptable within 0.35.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OrientationFactor: 1.1,
		MaxAspectDiff:     0.35,
		SameSideBonus:     1.15,
		MismatchDiff:      0.6,
		MismatchPenalty:   0.2,
		SevereDiff:        1.2,
		SeverePenalty:     0.05,
	}
}

// Scorer evaluates photo/frame pairs. It is a value type and safe for
// concurrent use.
type Scorer struct {
	t Thresholds
}

// NewScorer returns a scorer using t.
func NewScorer(t Thresholds) Scorer {
	return Scorer{t: t}
}

// Default is the scorer built from DefaultThresholds.
var Default = NewScorer(DefaultThresholds())

// Thresholds returns the scorer's configuration.
func (s Scorer) Thresholds() Thresholds {
	return s.t
}

// Classify returns the orientation of an aspect ratio (width/height).
func (s Scorer) Classify(aspect float64) Orientation {
	const eps = 1e-9
	switch {
	case aspect >= s.t.OrientationFactor-eps:
		return Landscape
	case aspect*s.t.OrientationFactor <= 1+eps:
		return Portrait
	default:
		return Square
	}
}

// Rejected reports whether the pair is never allowed: a landscape photo in a
// portrait frame.
func (s Scorer) Rejected(photoAspect, frameAspect float64) bool {
	return s.Classify(photoAspect) == Landscape && s.Classify(frameAspect) == Portrait
}

// Acceptable reports whether a proposed placement is good enough to keep.
// Opposite orientations in either direction are refused, as is any pair whose
// aspect ratios differ by more than MaxAspectDiff.
func (s Scorer) Acceptable(photoAspect, frameAspect float64) bool {
	if s.Rejected(photoAspect, frameAspect) {
		return false
	}
	po, fo := s.Classify(photoAspect), s.Classify(frameAspect)
	if po == Portrait && fo == Landscape {
		return false
	}
	return math.Abs(photoAspect-frameAspect) <= s.t.MaxAspectDiff
}

// Score returns a compatibility score for the pair; higher is better. Rejected
// pairs score 0. Marginal pairs are penalized but still positive so a matcher
// can fall back to them.
func (s Scorer) Score(photoAspect, frameAspect float64) float64 {
	if s.Rejected(photoAspect, frameAspect) {
		return 0
	}
	diff := math.Abs(photoAspect - frameAspect)
	score := 1 / (1 + diff)
	if (photoAspect < 1) == (frameAspect < 1) {
		score *= s.t.SameSideBonus
	}
	if diff > s.t.MismatchDiff {
		score *= s.t.MismatchPenalty
	}
	if diff > s.t.SevereDiff {
		score *= s.t.SeverePenalty
	}
	return score
}
