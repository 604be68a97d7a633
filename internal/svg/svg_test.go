package svg

import (
	"strings"
	"testing"
)

const testTemplate = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 1200 900">
  <defs>
    <clipPath id="page-clip"><rect x="0" y="0" width="1200" height="900"/></clipPath>
    <pattern id="img1" width="1" height="1"><image href="" xlink:href="" width="1" height="1"/></pattern>
    <pattern id="img2" width="1" height="1"><image href="" xlink:href="" width="1" height="1"/></pattern>
    <pattern id="img10" width="1" height="1"><image href="" xlink:href="" width="1" height="1"/></pattern>
  </defs>
  <g clip-path="url(#page-clip)">
    <use href="#frame1"/>
    <rect id="frame1" x="40" y="40" width="550" height="340" fill="url(#img1)"/>
    <path id="frame2" d="M610 40 H1160 V380 H610 Z" fill="url(#img2)"/>
    <rect id="frame10" x="40" y="400" width="100" height="100" fill="url(#img10)"/>
  </g>
</svg>`

func TestNamespace_RewritesIDsAndReferences(t *testing.T) {
	out, err := Namespace(testTemplate, "page3")
	if err != nil {
		t.Fatalf("Namespace failed: %v", err)
	}

	for _, want := range []string{
		`id="page-clip_page3"`,
		`clip-path="url(#page-clip_page3)"`,
		`id="img1_page3"`,
		`fill="url(#img1_page3)"`,
		`fill="url(#img10_page3)"`,
		`href="#frame1_page3"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %s", want)
		}
	}
	if strings.Contains(out, `url(#img1)`) {
		t.Error("expected no un-namespaced references to remain")
	}
}

func TestNamespace_TwoCopiesDoNotCollide(t *testing.T) {
	a, _ := Namespace(testTemplate, "page1")
	b, _ := Namespace(testTemplate, "page2")
	if strings.Contains(b, `id="img1_page1"`) || !strings.Contains(a, `id="img1_page1"`) {
		t.Error("expected distinct ids per page")
	}
}

func TestBindImages_ExactPatternMatch(t *testing.T) {
	d, err := Parse(testTemplate)
	if err != nil {
		t.Fatal(err)
	}
	d.Namespace("page1")

	bound := d.BindImages([]Binding{
		{FrameNumber: 1, Href: "https://example.com/a.jpg"},
		{FrameNumber: 10, Href: "https://example.com/j.jpg"},
	})
	if bound != 2 {
		t.Errorf("expected 2 bound, got %d", bound)
	}
	if n := d.BoundImages(); n != 2 {
		t.Errorf("expected 2 bound images, got %d", n)
	}

	out, _ := d.String()
	// Frame 1 must not land in img10.
	i1 := strings.Index(out, `id="img1_page1"`)
	i10 := strings.Index(out, `id="img10_page1"`)
	ia := strings.Index(out, "a.jpg")
	ij := strings.Index(out, "j.jpg")
	if !(i1 < ia && ia < i10 && i10 < ij) {
		t.Errorf("images bound to wrong patterns:\n%s", out)
	}
	if !strings.Contains(out, `preserveAspectRatio="xMidYMid slice"`) {
		t.Error("expected preserveAspectRatio to be set")
	}
	if !strings.Contains(out, `xlink:href="https://example.com/a.jpg"`) {
		t.Error("expected xlink:href to be set")
	}
}

func TestBindImages_SuffixAndPositionalFallback(t *testing.T) {
	markup := `<svg xmlns="http://www.w3.org/2000/svg">
  <pattern id="photo-1"><image href=""/></pattern>
  <pattern id="second"><image href=""/></pattern>
</svg>`
	d, err := Parse(markup)
	if err != nil {
		t.Fatal(err)
	}
	bound := d.BindImages([]Binding{
		{FrameNumber: 1, Href: "one.jpg"},
		{FrameNumber: 2, Href: "two.jpg"},
		{FrameNumber: 3, Href: "three.jpg"},
	})
	if bound != 2 {
		t.Errorf("expected 2 bound, got %d", bound)
	}
}

func TestBoundImages_IgnoresPlaceholders(t *testing.T) {
	markup := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
  <image href=""/>
  <image href="data:,"/>
  <image xlink:href="ok.jpg"/>
  <image href="https://cdn.example.com/trips/undefined-road/1.jpg"/>
</svg>`
	n, err := CountBoundImages(markup)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("<svg"); err == nil {
		t.Error("expected error for truncated markup")
	}
	if _, err := Parse("<html></html>"); err == nil {
		t.Error("expected error for non-svg root")
	}
}

func TestExtractFrames(t *testing.T) {
	ns, _ := Namespace(testTemplate, "page1")
	frames, err := ExtractFrames(ns)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}

	want := []FrameRect{
		{FrameNumber: 1, Rect: Rect{X: 40, Y: 40, Width: 550, Height: 340}},
		{FrameNumber: 2, Rect: Rect{X: 610, Y: 40, Width: 550, Height: 340}},
		{FrameNumber: 10, Rect: Rect{X: 40, Y: 400, Width: 100, Height: 100}},
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d: expected %+v, got %+v", i, want[i], frames[i])
		}
	}
}

func TestParsePathBBox(t *testing.T) {
	tests := []struct {
		name string
		d    string
		want Rect
		ok   bool
	}{
		{"rectangle", "M75 50 H425 V550 H75 Z", Rect{X: 75, Y: 50, Width: 350, Height: 500}, true},
		{"lowercase and commas", "m10,20 h30 v40 h10 z", Rect{X: 10, Y: 20, Width: 20, Height: 20}, true},
		{"line segments", "M0 0 L100 0 L100 50 L0 50 Z", Rect{X: 0, Y: 0, Width: 100, Height: 50}, true},
		{"decimals", "M1.5 2.5 H10.5 V20", Rect{X: 1.5, Y: 2.5, Width: 9, Height: 17.5}, true},
		{"no move", "H10 V10", Rect{}, false},
		{"move only", "M10 10", Rect{}, false},
		{"curve", "M0 0 C10 10 20 20 30 30", Rect{}, false},
		{"empty", "", Rect{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePathBBox(tt.d)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
