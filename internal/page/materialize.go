package page

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/Prithvi-997/origin-brew/internal/svg"
)

// ErrIncompleteBinding means fewer images were bound than the page needs.
var ErrIncompleteBinding = errors.New("page has unbound frames")

// Materializer renders pages from catalog templates.
type Materializer struct {
	catalog *layout.Catalog
	href    func(photo.Photo) string
}

// NewMaterializer returns a materializer over c.
func NewMaterializer(c *layout.Catalog) *Materializer {
	return &Materializer{catalog: c, href: Href}
}

// Href is the locator bound into a frame: the photo URL, or a urn naming the
// photo when it has none.
func Href(p photo.Photo) string {
	if p.URL != "" {
		return p.URL
	}
	return "urn:photo:" + url.PathEscape(p.ID)
}

// Catalog returns the catalog pages are rendered from.
func (m *Materializer) Catalog() *layout.Catalog {
	return m.catalog
}

// CreatePage materializes page number n with id "page-n".
func (m *Materializer) CreatePage(n int, layoutID string, assignments []Assignment, photos PhotoLookup) (*Page, error) {
	return m.Build("page-"+strconv.Itoa(n), n, layoutID, assignments, photos)
}

// Renumber numbers pages 1..n in slice order. A page with a positional id
// ("page-n") whose number moves is rebuilt under its new number, so its id
// and markup ids follow; any other id is kept and only the number changes.
func (m *Materializer) Renumber(pages []Page, photos PhotoLookup) error {
	for i := range pages {
		n := i + 1
		old := pages[i].PageNumber
		if old == n {
			continue
		}
		if pages[i].ID != "page-"+strconv.Itoa(old) {
			pages[i].PageNumber = n
			continue
		}
		pg, err := m.CreatePage(n, pages[i].LayoutName, pages[i].Assignments(), photos)
		if err != nil {
			return fmt.Errorf("renumbering page %d: %w", old, err)
		}
		pages[i] = *pg
	}
	return nil
}

// Build materializes a page with an explicit id. Template ids are suffixed
// with a token derived from the page id.
func (m *Materializer) Build(id string, n int, layoutID string, assignments []Assignment, photos PhotoLookup) (*Page, error) {
	l, ok := m.catalog.Get(layoutID)
	if !ok {
		return nil, fmt.Errorf("page %d: %w: %s", n, layout.ErrUnknownLayout, layoutID)
	}

	sorted := slices.Clone(assignments)
	slices.SortStableFunc(sorted, func(a, b Assignment) int {
		return cmp.Compare(a.FrameNumber, b.FrameNumber)
	})

	frames := make(map[int]bool, len(sorted))
	used := make(map[string]bool, len(sorted))
	bindings := make([]svg.Binding, 0, len(sorted))
	photoIDs := make([]string, 0, len(sorted))
	for _, a := range sorted {
		if _, ok := l.Frame(a.FrameNumber); !ok {
			return nil, fmt.Errorf("page %d: frame %d out of range for %s", n, a.FrameNumber, l.ID)
		}
		if frames[a.FrameNumber] {
			return nil, fmt.Errorf("page %d: frame %d assigned twice", n, a.FrameNumber)
		}
		p, ok := photos.Get(a.PhotoID)
		if !ok {
			return nil, fmt.Errorf("page %d: unknown photo %q", n, a.PhotoID)
		}
		if used[p.ID] {
			return nil, fmt.Errorf("page %d: photo %s placed twice", n, p.ID)
		}
		frames[a.FrameNumber] = true
		used[p.ID] = true
		bindings = append(bindings, svg.Binding{FrameNumber: a.FrameNumber, Href: m.href(p)})
		photoIDs = append(photoIDs, p.ID)
	}

	doc, err := svg.Parse(l.Template)
	if err != nil {
		return nil, fmt.Errorf("page %d: template %s: %w", n, l.ID, err)
	}
	doc.Namespace(suffixFor(id))
	if bound := doc.BindImages(bindings); bound < len(bindings) {
		return nil, fmt.Errorf("page %d: %w: %d of %d bound in %s", n, ErrIncompleteBinding, bound, len(bindings), l.ID)
	}

	markup, err := doc.String()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", n, err)
	}

	rects := doc.Frames()
	coords := make([]FrameCoordinates, len(rects))
	for i, r := range rects {
		coords[i] = FrameCoordinates{FrameNumber: r.FrameNumber, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}

	return &Page{
		ID:               id,
		PageNumber:       n,
		LayoutName:       l.ID,
		SVGContent:       markup,
		PhotoIDs:         photoIDs,
		FrameCoordinates: coords,
	}, nil
}

// suffixFor turns a page id into an XML-name-safe token.
func suffixFor(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return -1
		}
	}, id)
}

// Verify checks that the page markup binds at least expected images.
func Verify(p *Page, expected int) error {
	n, err := svg.CountBoundImages(p.SVGContent)
	if err != nil {
		return err
	}
	if n < expected {
		return fmt.Errorf("%w: %d of %d bound on %s", ErrIncompleteBinding, n, expected, p.ID)
	}
	return nil
}
