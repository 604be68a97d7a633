// Package page turns a layout plus frame assignments into a rendered page
// and filters duplicate pages out of an album.
package page

import (
	"slices"
	"strings"

	"github.com/Prithvi-997/origin-brew/internal/photo"
)

// Assignment places one photo into one frame of a page.
type Assignment struct {
	FrameNumber int    `json:"frameNumber"`
	PhotoID     string `json:"photoId"`
}

// FrameCoordinates is the materialized box of a frame.
type FrameCoordinates struct {
	FrameNumber int     `json:"frameNumber"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

// Page is one materialized album page. Pages are rebuilt, never patched,
// when their layout or photos change.
type Page struct {
	ID               string             `json:"id"`
	PageNumber       int                `json:"pageNumber"`
	LayoutName       string             `json:"layoutName"`
	SVGContent       string             `json:"svgContent"`
	PhotoIDs         []string           `json:"photoIds"`
	FrameCoordinates []FrameCoordinates `json:"frameCoordinates"`
}

// Assignments returns the page's frame assignments; PhotoIDs[i] is frame i+1.
func (p *Page) Assignments() []Assignment {
	out := make([]Assignment, len(p.PhotoIDs))
	for i, id := range p.PhotoIDs {
		out[i] = Assignment{FrameNumber: i + 1, PhotoID: id}
	}
	return out
}

// PhotoLookup resolves photo ids. *photo.Pool implements it.
type PhotoLookup interface {
	Get(id string) (photo.Photo, bool)
}

// Signature identifies a page's composition regardless of frame order.
func Signature(p Page) string {
	ids := slices.Clone(p.PhotoIDs)
	slices.Sort(ids)
	return p.LayoutName + "|" + strings.Join(ids, ",")
}

// Dedupe drops every page whose signature repeats an earlier page's and
// returns the survivors in order plus the number removed. Input pages are
// not modified.
func Dedupe(pages []Page) ([]Page, int) {
	seen := make(map[string]bool, len(pages))
	out := make([]Page, 0, len(pages))
	for _, p := range pages {
		sig := Signature(p)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, p)
	}
	return out, len(pages) - len(out)
}

// Renumber assigns contiguous 1-based page numbers in slice order. Ids and
// markup are kept; Materializer.Renumber rebuilds positional ids instead.
func Renumber(pages []Page) {
	for i := range pages {
		pages[i].PageNumber = i + 1
	}
}

// PhotoIDs returns every photo id placed across pages, in page order.
func PhotoIDs(pages []Page) []string {
	var ids []string
	for _, p := range pages {
		ids = append(ids, p.PhotoIDs...)
	}
	return ids
}
