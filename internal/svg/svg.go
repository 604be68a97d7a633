// Package svg manipulates layout templates: it namespaces element ids, binds
// photo locators into frame patterns and extracts frame geometry.
package svg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Document is a parsed SVG template.
type Document struct {
	doc    *etree.Document
	suffix string
}

// Parse parses SVG markup.
func Parse(markup string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(markup); err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}
	if doc.Root() == nil || doc.Root().Tag != "svg" {
		return nil, fmt.Errorf("parsing svg: root element is not <svg>")
	}
	return &Document{doc: doc}, nil
}

// String serializes the document.
func (d *Document) String() (string, error) {
	s, err := d.doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("writing svg: %w", err)
	}
	return s, nil
}

// elements returns the root and all of its descendants in document order.
func (d *Document) elements() []*etree.Element {
	var out []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		out = append(out, e)
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(d.doc.Root())
	return out
}

// Namespace appends "_suffix" to every id and rewrites local references
// (href, xlink:href and url(#id) in any attribute) to match, so several
// copies of one template can live in the same HTML document.
func (d *Document) Namespace(suffix string) {
	els := d.elements()
	renamed := make(map[string]string)
	for _, e := range els {
		for i := range e.Attr {
			a := &e.Attr[i]
			if a.Space == "" && a.Key == "id" && a.Value != "" {
				newID := a.Value + "_" + suffix
				renamed[a.Value] = newID
				a.Value = newID
			}
		}
	}
	if len(renamed) == 0 {
		d.suffix = suffix
		return
	}

	for _, e := range els {
		for i := range e.Attr {
			a := &e.Attr[i]
			if a.Key == "id" && a.Space == "" {
				continue
			}
			a.Value = rewriteRefs(a.Value, renamed)
		}
	}
	d.suffix = suffix
}

func rewriteRefs(val string, renamed map[string]string) string {
	if strings.HasPrefix(val, "#") {
		if newID, ok := renamed[val[1:]]; ok {
			return "#" + newID
		}
		return val
	}
	if !strings.Contains(val, "url(#") {
		return val
	}
	var b strings.Builder
	rest := val
	for {
		i := strings.Index(rest, "url(#")
		if i < 0 {
			b.WriteString(rest)
			break
		}
		j := strings.IndexByte(rest[i:], ')')
		if j < 0 {
			b.WriteString(rest)
			break
		}
		id := rest[i+len("url(#") : i+j]
		b.WriteString(rest[:i])
		if newID, ok := renamed[id]; ok {
			b.WriteString("url(#" + newID + ")")
		} else {
			b.WriteString(rest[i : i+j+1])
		}
		rest = rest[i+j+1:]
	}
	return b.String()
}

// baseID strips the namespace suffix added by Namespace.
func (d *Document) baseID(id string) string {
	if d.suffix == "" {
		return id
	}
	return strings.TrimSuffix(id, "_"+d.suffix)
}

func (d *Document) patterns() []*etree.Element {
	var out []*etree.Element
	for _, e := range d.elements() {
		if e.Tag == "pattern" {
			out = append(out, e)
		}
	}
	return out
}

// framePattern finds the pattern for a 1-based frame number: id "img{n}"
// first, then an id ending in "-{n}", then the n-th pattern in the document.
func (d *Document) framePattern(patterns []*etree.Element, frame int) *etree.Element {
	primary := "img" + strconv.Itoa(frame)
	secondary := "-" + strconv.Itoa(frame)
	for _, p := range patterns {
		if d.baseID(p.SelectAttrValue("id", "")) == primary {
			return p
		}
	}
	for _, p := range patterns {
		if strings.HasSuffix(d.baseID(p.SelectAttrValue("id", "")), secondary) {
			return p
		}
	}
	if frame >= 1 && frame <= len(patterns) {
		return patterns[frame-1]
	}
	return nil
}

func firstImage(e *etree.Element) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.Tag == "image" {
			return c
		}
		if img := firstImage(c); img != nil {
			return img
		}
	}
	return nil
}

// Binding places a resource locator into a frame.
type Binding struct {
	FrameNumber int
	Href        string
}

// BindImages sets the image href of each binding's frame pattern and returns
// how many bindings found an image slot.
func (d *Document) BindImages(bindings []Binding) int {
	patterns := d.patterns()
	bound := 0
	for _, b := range bindings {
		p := d.framePattern(patterns, b.FrameNumber)
		if p == nil {
			continue
		}
		img := firstImage(p)
		if img == nil {
			continue
		}
		img.CreateAttr("href", b.Href)
		img.CreateAttr("xlink:href", b.Href)
		img.CreateAttr("preserveAspectRatio", "xMidYMid slice")
		bound++
	}
	return bound
}

// BoundImages counts <image> elements whose href is set to something other
// than an empty data URI.
func (d *Document) BoundImages() int {
	n := 0
	for _, e := range d.elements() {
		if e.Tag != "image" {
			continue
		}
		for _, a := range e.Attr {
			if a.Key != "href" {
				continue
			}
			v := strings.TrimSpace(a.Value)
			if v != "" && v != "data:," {
				n++
				break
			}
		}
	}
	return n
}

// CountBoundImages parses markup and counts bound images.
func CountBoundImages(markup string) (int, error) {
	d, err := Parse(markup)
	if err != nil {
		return 0, err
	}
	return d.BoundImages(), nil
}

// Namespace is a convenience wrapper around Document.Namespace.
func Namespace(markup, suffix string) (string, error) {
	d, err := Parse(markup)
	if err != nil {
		return "", err
	}
	d.Namespace(suffix)
	return d.String()
}
