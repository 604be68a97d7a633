// Package plan validates and repairs page plans proposed by an external
// planner before they become album pages.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPlan is returned by Parse for a plan without pages.
var ErrEmptyPlan = errors.New("plan has no pages")

// CandidateFrame proposes one photo for one frame.
type CandidateFrame struct {
	FrameNumber int    `json:"frame_number"`
	ImageID     string `json:"image_id"`
}

// CandidatePage proposes a layout and its frame assignments.
type CandidatePage struct {
	LayoutToUse string           `json:"layout_to_use"`
	Frames      []CandidateFrame `json:"frames"`
}

// Candidate is an unvalidated plan. Nothing in it is trusted.
type Candidate struct {
	Pages []CandidatePage `json:"pages"`
}

// Parse decodes a candidate plan.
func Parse(data []byte) (*Candidate, error) {
	var c Candidate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	if len(c.Pages) == 0 {
		return nil, ErrEmptyPlan
	}
	return &c, nil
}

// LayoutID maps a planner's layout reference to a catalog id. Planners
// sometimes answer with the template file name.
func LayoutID(ref string) string {
	return strings.TrimSuffix(strings.TrimSpace(ref), ".svg")
}

// PhotoCount returns the number of frame assignments across all pages.
func (c *Candidate) PhotoCount() int {
	n := 0
	for _, p := range c.Pages {
		n += len(p.Frames)
	}
	return n
}
