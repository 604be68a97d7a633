// Package layout provides the catalog of page layouts: template markup plus
// per-frame aspect-ratio metadata.
package layout

import (
	"cmp"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sync"

	"github.com/Prithvi-997/origin-brew/internal/fit"
	"gopkg.in/yaml.v3"
)

//go:embed catalog
var embedded embed.FS

const manifestFile = "layouts.yaml"

// ErrUnknownLayout is returned when a layout id is not in the catalog.
var ErrUnknownLayout = errors.New("unknown layout")

// Frame is one photo slot of a layout.
type Frame struct {
	ID          int     `yaml:"id" json:"id"`
	AspectRatio float64 `yaml:"aspect_ratio" json:"aspect_ratio"`
}

// Orientation classifies the frame's target aspect ratio.
func (f Frame) Orientation() fit.Orientation {
	return fit.Default.Classify(f.AspectRatio)
}

// Layout is an immutable page template.
type Layout struct {
	ID       string  `yaml:"id" json:"id"`
	File     string  `yaml:"template" json:"-"`
	Frames   []Frame `yaml:"frames" json:"frames"`
	Template string  `yaml:"-" json:"-"`
}

// FrameCount returns the number of frames.
func (l *Layout) FrameCount() int {
	return len(l.Frames)
}

// Frame returns the frame with the given 1-based id.
func (l *Layout) Frame(id int) (Frame, bool) {
	if id < 1 || id > len(l.Frames) {
		return Frame{}, false
	}
	return l.Frames[id-1], true
}

// Orientations returns frame orientations in frame order.
func (l *Layout) Orientations() []fit.Orientation {
	out := make([]fit.Orientation, len(l.Frames))
	for i, f := range l.Frames {
		out[i] = f.Orientation()
	}
	return out
}

// ViewBox is the page size in template user units.
type ViewBox struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

type manifest struct {
	Fallback string    `yaml:"fallback"`
	ViewBox  ViewBox   `yaml:"view_box"`
	Layouts  []*Layout `yaml:"layouts"`
}

// Catalog is a read-only layout registry, safe for concurrent use.
type Catalog struct {
	layouts  []*Layout
	byID     map[string]*Layout
	fallback *Layout
	viewBox  ViewBox
}

// New builds a catalog from layouts in the given order. fallback must name a
// single-frame layout.
func New(layouts []*Layout, fallback string, viewBox ViewBox) (*Catalog, error) {
	c := &Catalog{
		byID:    make(map[string]*Layout, len(layouts)),
		viewBox: viewBox,
	}
	for _, l := range layouts {
		if l.ID == "" {
			return nil, errors.New("layout id is required")
		}
		if _, dup := c.byID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate layout %q", l.ID)
		}
		if len(l.Frames) == 0 {
			return nil, fmt.Errorf("layout %s has no frames", l.ID)
		}
		for i, f := range l.Frames {
			if f.ID != i+1 {
				return nil, fmt.Errorf("layout %s: frame %d has id %d, frame ids must be 1..n in order", l.ID, i+1, f.ID)
			}
			if f.AspectRatio <= 0 {
				return nil, fmt.Errorf("layout %s: frame %d has non-positive aspect ratio", l.ID, f.ID)
			}
		}
		c.byID[l.ID] = l
		c.layouts = append(c.layouts, l)
	}

	fb, ok := c.byID[fallback]
	if !ok {
		return nil, fmt.Errorf("fallback layout %q: %w", fallback, ErrUnknownLayout)
	}
	if fb.FrameCount() != 1 {
		return nil, fmt.Errorf("fallback layout %s must have exactly one frame, has %d", fallback, fb.FrameCount())
	}
	c.fallback = fb
	return c, nil
}

// Load reads layouts.yaml and the templates it names from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, manifestFile)
	if err != nil {
		return nil, fmt.Errorf("reading layout manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing layout manifest: %w", err)
	}
	for _, l := range m.Layouts {
		if l.File == "" {
			l.File = l.ID + ".svg"
		}
		tpl, err := fs.ReadFile(fsys, path.Join("templates", l.File))
		if err != nil {
			return nil, fmt.Errorf("reading template for %s: %w", l.ID, err)
		}
		l.Template = string(tpl)
	}
	return New(m.Layouts, m.Fallback, m.ViewBox)
}

// LoadDir loads a catalog laid out like the built-in one from a directory.
func LoadDir(dir string) (*Catalog, error) {
	return Load(os.DirFS(dir))
}

var builtin = sync.OnceValues(func() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "catalog")
	if err != nil {
		return nil, err
	}
	return Load(sub)
})

// Builtin returns the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	return builtin()
}

// Get looks up a layout by id.
func (c *Catalog) Get(id string) (*Layout, bool) {
	l, ok := c.byID[id]
	return l, ok
}

// All returns layouts in catalog order.
func (c *Catalog) All() []*Layout {
	return slices.Clone(c.layouts)
}

// Len returns the number of layouts.
func (c *Catalog) Len() int {
	return len(c.layouts)
}

// Fallback returns the universal single-frame layout.
func (c *Catalog) Fallback() *Layout {
	return c.fallback
}

// ViewBox returns the page size shared by all templates.
func (c *Catalog) ViewBox() ViewBox {
	return c.viewBox
}

// ByFrameCountDesc returns layouts ordered by descending frame count,
// catalog order within equal counts.
func (c *Catalog) ByFrameCountDesc() []*Layout {
	out := slices.Clone(c.layouts)
	slices.SortStableFunc(out, func(a, b *Layout) int {
		return cmp.Compare(b.FrameCount(), a.FrameCount())
	})
	return out
}

// WithFrameCount returns layouts with exactly n frames in catalog order.
func (c *Catalog) WithFrameCount(n int) []*Layout {
	var out []*Layout
	for _, l := range c.layouts {
		if l.FrameCount() == n {
			out = append(out, l)
		}
	}
	return out
}

// MaxFrameCount returns the largest frame count in the catalog.
func (c *Catalog) MaxFrameCount() int {
	n := 0
	for _, l := range c.layouts {
		n = max(n, l.FrameCount())
	}
	return n
}

// Metadata is the catalog description sent to external planners.
type Metadata struct {
	FrameCount int     `json:"frameCount"`
	Frames     []Frame `json:"frames"`
}

// Metadata returns per-layout frame metadata keyed by layout id.
func (c *Catalog) Metadata() map[string]Metadata {
	out := make(map[string]Metadata, len(c.layouts))
	for _, l := range c.layouts {
		out[l.ID] = Metadata{FrameCount: l.FrameCount(), Frames: slices.Clone(l.Frames)}
	}
	return out
}
