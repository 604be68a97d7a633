package layout

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Prithvi-997/origin-brew/internal/fit"
	"github.com/Prithvi-997/origin-brew/internal/photo"
)

func mustBuiltin(t *testing.T) *Catalog {
	t.Helper()
	c, err := Builtin()
	if err != nil {
		t.Fatalf("loading builtin catalog: %v", err)
	}
	return c
}

func TestBuiltin(t *testing.T) {
	c := mustBuiltin(t)

	if c.Len() != 17 {
		t.Errorf("expected 17 layouts, got %d", c.Len())
	}
	if c.Fallback().ID != "layout19" {
		t.Errorf("expected fallback layout19, got %s", c.Fallback().ID)
	}
	if c.MaxFrameCount() != 6 {
		t.Errorf("expected max frame count 6, got %d", c.MaxFrameCount())
	}

	counts := map[int][]string{}
	for _, l := range c.All() {
		if l.Template == "" {
			t.Errorf("layout %s has empty template", l.ID)
		}
		counts[l.FrameCount()] = append(counts[l.FrameCount()], l.ID)
	}
	want := map[int]int{1: 1, 2: 2, 3: 3, 4: 3, 5: 6, 6: 2}
	for n, expected := range want {
		if len(counts[n]) != expected {
			t.Errorf("expected %d layouts with %d frames, got %v", expected, n, counts[n])
		}
	}
}

func TestBuiltin_FrameOrientations(t *testing.T) {
	c := mustBuiltin(t)
	P, L, S := fit.Portrait, fit.Landscape, fit.Square

	tests := map[string][]fit.Orientation{
		"layout8":  {L, L, P, P, P},
		"layout11": {S, S, L, L},
		"layout13": {S, S, S, S},
		"layout14": {P, S, S, S},
		"layout15": {S, L, L, L, L},
		"layout16": {L, P, P, P, L},
		"layout17": {L, L, L, L, S, S},
		"layout18": {P, P, P, L, P, P},
		"layout19": {S},
		"layout20": {P, P},
		"layout21": {L, L},
	}
	for id, want := range tests {
		l, ok := c.Get(id)
		if !ok {
			t.Errorf("missing layout %s", id)
			continue
		}
		if got := l.Orientations(); !slices.Equal(got, want) {
			t.Errorf("%s: expected %v, got %v", id, want, got)
		}
	}
}

func TestBuiltin_Validates(t *testing.T) {
	c := mustBuiltin(t)
	for _, w := range Validate(c) {
		t.Errorf("%s frame %d: %s (%s)", w.LayoutID, w.FrameID, w.Message, w.Severity)
	}
}

func TestByFrameCountDesc(t *testing.T) {
	c := mustBuiltin(t)
	sorted := c.ByFrameCountDesc()
	for i := 1; i < len(sorted); i++ {
		if sorted[i].FrameCount() > sorted[i-1].FrameCount() {
			t.Fatalf("layouts not in descending frame count at %d", i)
		}
	}
	if sorted[len(sorted)-1].FrameCount() != 1 {
		t.Errorf("expected single-frame layout last")
	}
}

func TestNew_Errors(t *testing.T) {
	single := &Layout{ID: "one", Frames: []Frame{{ID: 1, AspectRatio: 1}}}

	tests := []struct {
		name     string
		layouts  []*Layout
		fallback string
	}{
		{"unknown fallback", []*Layout{single}, "missing"},
		{"fallback with two frames", []*Layout{{ID: "two", Frames: []Frame{{ID: 1, AspectRatio: 1}, {ID: 2, AspectRatio: 1}}}}, "two"},
		{"duplicate id", []*Layout{single, single}, "one"},
		{"non-contiguous frames", []*Layout{single, {ID: "gap", Frames: []Frame{{ID: 1, AspectRatio: 1}, {ID: 3, AspectRatio: 1}}}}, "one"},
		{"zero aspect", []*Layout{{ID: "z", Frames: []Frame{{ID: 1}}}}, "z"},
		{"no frames", []*Layout{single, {ID: "empty"}}, "one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.layouts, tt.fallback, ViewBox{}); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := New([]*Layout{single}, "missing", ViewBox{})
	if !errors.Is(err, ErrUnknownLayout) {
		t.Errorf("expected ErrUnknownLayout, got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `fallback: solo
view_box:
  width: 100
  height: 100
layouts:
  - id: solo
    frames:
      - id: 1
        aspect_ratio: 1
`
	tpl := `<svg xmlns="http://www.w3.org/2000/svg"><defs><pattern id="img1"><image href=""/></pattern></defs><rect x="0" y="0" width="100" height="100" fill="url(#img1)"/></svg>`
	if err := os.WriteFile(filepath.Join(dir, "layouts.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "templates", "solo.svg"), []byte(tpl), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if c.Fallback().ID != "solo" {
		t.Errorf("expected solo fallback, got %s", c.Fallback().ID)
	}
	if warnings := Validate(c); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", warnings)
	}
}

func TestLoadDir_MissingTemplate(t *testing.T) {
	dir := t.TempDir()
	manifest := "fallback: solo\nlayouts:\n  - id: solo\n    frames:\n      - id: 1\n        aspect_ratio: 1\n"
	if err := os.WriteFile(filepath.Join(dir, "layouts.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Error("expected error for missing template")
	}
}

func TestValidate_DetectsProblems(t *testing.T) {
	tpl := `<svg xmlns="http://www.w3.org/2000/svg">
  <pattern id="img1"><image href=""/></pattern>
  <pattern id="img2"><image href=""/></pattern>
  <rect x="0" y="0" width="60" height="50" fill="url(#img1)"/>
  <rect x="50" y="0" width="60" height="50" fill="url(#img2)"/>
</svg>`
	solo := &Layout{ID: "solo", Frames: []Frame{{ID: 1, AspectRatio: 1}}, Template: `<svg xmlns="http://www.w3.org/2000/svg"><pattern id="img1"><image href=""/></pattern><rect width="100" height="100" fill="url(#img1)"/></svg>`}
	bad := &Layout{ID: "bad", Frames: []Frame{{ID: 1, AspectRatio: 1.2}, {ID: 2, AspectRatio: 2}}, Template: tpl}
	c, err := New([]*Layout{bad, solo}, "solo", ViewBox{Width: 100, Height: 100})
	if err != nil {
		t.Fatal(err)
	}

	warnings := Validate(c)
	var overlap, bounds, aspect bool
	for _, w := range warnings {
		switch {
		case w.Message == "frame 1 overlaps with frame 2":
			overlap = true
		case w.FrameID == 2 && w.Severity == SeverityError:
			bounds = true
		case w.FrameID == 2 && w.Severity == SeverityWarning:
			aspect = true
		}
	}
	if !overlap {
		t.Error("expected overlap error")
	}
	if !bounds {
		t.Error("expected bounds error for frame 2")
	}
	if !aspect {
		t.Error("expected aspect warning for frame 2")
	}
	if !HasErrors(warnings) {
		t.Error("expected HasErrors to be true")
	}
}

func TestBestFor(t *testing.T) {
	c := mustBuiltin(t)
	P, L, S := fit.Portrait, fit.Landscape, fit.Square

	tests := []struct {
		name         string
		orientations []fit.Orientation
		want         string
	}{
		{"two landscapes", []fit.Orientation{L, L}, "layout21"},
		{"two portraits", []fit.Orientation{P, P}, "layout20"},
		{"four squares", []fit.Orientation{S, S, S, S}, "layout13"},
		{"mixed five", []fit.Orientation{L, P, P, P, L}, "layout16"},
		{"single", []fit.Orientation{L}, "layout19"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.BestFor(tt.orientations)
			if got == nil || got.ID != tt.want {
				t.Errorf("expected %s, got %v", tt.want, got)
			}
		})
	}

	if got := c.BestFor(make([]fit.Orientation, 9)); got != nil {
		t.Errorf("expected nil for 9 frames, got %s", got.ID)
	}
}

func TestRecommend(t *testing.T) {
	c := mustBuiltin(t)

	if got := c.Recommend(photo.Distribution{}); len(got) != 0 {
		t.Errorf("expected no recommendations, got %v", got)
	}

	got := c.Recommend(photo.Distribution{FullLengthPortraits: 1})
	for _, id := range []string{"layout20", "layout22"} {
		if !slices.Contains(got, id) {
			t.Errorf("expected %s in %v", id, got)
		}
	}
	if slices.Contains(got, "layout21") {
		t.Errorf("did not expect landscape layout in %v", got)
	}

	got = c.Recommend(photo.Distribution{Landscapes: 6})
	if !slices.Contains(got, "layout9") || !slices.Contains(got, "layout17") {
		t.Errorf("expected landscape-heavy layouts, got %v", got)
	}
}

func TestMetadata(t *testing.T) {
	c := mustBuiltin(t)
	m := c.Metadata()
	if len(m) != c.Len() {
		t.Fatalf("expected %d entries, got %d", c.Len(), len(m))
	}
	l8 := m["layout8"]
	if l8.FrameCount != 5 || len(l8.Frames) != 5 {
		t.Errorf("unexpected layout8 metadata: %+v", l8)
	}
}
