package album

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/page"
	"github.com/Prithvi-997/origin-brew/internal/photo"
)

// testAlbum builds [layout20 p1 p2] [layout21 p3 p4] [layout19 p5].
func testAlbum(t *testing.T) (*Editor, []page.Page, *photo.Pool) {
	t.Helper()
	e := NewEditor(builtin(t))
	pool, err := photo.NewPool(testPhotos(t))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	var pages []page.Page
	for i, tc := range []struct {
		layout string
		ids    []string
	}{
		{"layout20", []string{"p1", "p2"}},
		{"layout21", []string{"p3", "p4"}},
		{"layout19", []string{"p5"}},
	} {
		var as []page.Assignment
		for j, id := range tc.ids {
			as = append(as, page.Assignment{FrameNumber: j + 1, PhotoID: id})
		}
		pg, err := e.materializer.CreatePage(i+1, tc.layout, as, pool)
		if err != nil {
			t.Fatalf("CreatePage: %v", err)
		}
		pages = append(pages, *pg)
	}
	return e, pages, pool
}

func idsOf(pages []page.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.ID
	}
	return out
}

func TestReorder(t *testing.T) {
	e, pages, _ := testAlbum(t)

	out, err := e.Reorder(pages, 0, 2)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if got, want := idsOf(out), []string{"page-2", "page-3", "page-1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	checkNumbered(t, out)
	if pages[0].ID != "page-1" || pages[0].PageNumber != 1 {
		t.Error("input was modified")
	}

	if _, err := e.Reorder(pages, 0, 3); !errors.Is(err, ErrInvalidEdit) {
		t.Errorf("expected ErrInvalidEdit, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	e, pages, _ := testAlbum(t)

	out, err := e.Delete(pages, 1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, want := idsOf(out), []string{"page-1", "page-3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, want %v", got, want)
	}
	checkNumbered(t, out)
	if len(pages) != 3 {
		t.Error("input was modified")
	}

	if _, err := e.Delete(pages, -1); !errors.Is(err, ErrInvalidEdit) {
		t.Errorf("expected ErrInvalidEdit, got %v", err)
	}
}

func TestDuplicate(t *testing.T) {
	e, pages, pool := testAlbum(t)

	out, err := e.Duplicate(pages, 0, pool)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 pages, got %d", len(out))
	}
	checkNumbered(t, out)

	dup := out[1]
	if dup.ID == pages[0].ID || strings.HasPrefix(dup.ID, "page-") {
		t.Errorf("duplicate id = %q", dup.ID)
	}
	if !reflect.DeepEqual(dup.PhotoIDs, pages[0].PhotoIDs) || dup.LayoutName != pages[0].LayoutName {
		t.Errorf("duplicate differs: %+v", dup)
	}
	if dup.SVGContent == pages[0].SVGContent {
		t.Error("duplicate shares markup ids with the original")
	}
	if !reflect.DeepEqual(dup.FrameCoordinates, pages[0].FrameCoordinates) {
		t.Error("duplicate geometry differs")
	}
}

func TestSwapPhotos_AcrossPages(t *testing.T) {
	e, pages, pool := testAlbum(t)

	out, err := e.SwapPhotos(pages, FrameRef{Page: 0, Frame: 1}, FrameRef{Page: 1, Frame: 2}, pool)
	if err != nil {
		t.Fatalf("SwapPhotos: %v", err)
	}
	if got := out[0].PhotoIDs; !reflect.DeepEqual(got, []string{"p4", "p2"}) {
		t.Errorf("page 1 = %v", got)
	}
	if got := out[1].PhotoIDs; !reflect.DeepEqual(got, []string{"p3", "p1"}) {
		t.Errorf("page 2 = %v", got)
	}
	if out[0].LayoutName != "layout20" || out[1].LayoutName != "layout21" {
		t.Error("layouts changed")
	}
	if !strings.Contains(out[0].SVGContent, "https://cdn.example.com/p4.jpg") {
		t.Error("page 1 markup not rebuilt")
	}
	if out[0].ID != pages[0].ID {
		t.Error("swap should keep page ids")
	}
	if !reflect.DeepEqual(pages[0].PhotoIDs, []string{"p1", "p2"}) {
		t.Error("input was modified")
	}
}

func TestSwapPhotos_SamePage(t *testing.T) {
	e, pages, pool := testAlbum(t)

	out, err := e.SwapPhotos(pages, FrameRef{Page: 0, Frame: 1}, FrameRef{Page: 0, Frame: 2}, pool)
	if err != nil {
		t.Fatalf("SwapPhotos: %v", err)
	}
	if got := out[0].PhotoIDs; !reflect.DeepEqual(got, []string{"p2", "p1"}) {
		t.Errorf("page 1 = %v", got)
	}

	if _, err := e.SwapPhotos(pages, FrameRef{Page: 0, Frame: 3}, FrameRef{Page: 0, Frame: 1}, pool); !errors.Is(err, ErrInvalidEdit) {
		t.Errorf("expected ErrInvalidEdit, got %v", err)
	}
}

func TestMovePhoto_RemovesEmptyPage(t *testing.T) {
	e, pages, pool := testAlbum(t)

	out, err := e.MovePhoto(pages, FrameRef{Page: 2, Frame: 1}, FrameRef{Page: 0, Frame: 99}, pool)
	if err != nil {
		t.Fatalf("MovePhoto: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(out))
	}
	checkNumbered(t, out)
	if got := out[0].PhotoIDs; !reflect.DeepEqual(got, []string{"p1", "p2", "p5"}) {
		t.Errorf("page 1 = %v", got)
	}
	if out[0].LayoutName != "layout22" {
		t.Errorf("page 1 layout = %s, want layout22", out[0].LayoutName)
	}
	if len(out[0].FrameCoordinates) != 3 {
		t.Errorf("expected 3 frames, got %d", len(out[0].FrameCoordinates))
	}
}

func TestMovePhoto_AdjustsBothLayouts(t *testing.T) {
	e, pages, pool := testAlbum(t)

	out, err := e.MovePhoto(pages, FrameRef{Page: 1, Frame: 1}, FrameRef{Page: 0, Frame: 1}, pool)
	if err != nil {
		t.Fatalf("MovePhoto: %v", err)
	}
	if got := out[0].PhotoIDs; !reflect.DeepEqual(got, []string{"p3", "p1", "p2"}) {
		t.Errorf("page 1 = %v", got)
	}
	if got := out[1]; got.LayoutName != "layout19" || !reflect.DeepEqual(got.PhotoIDs, []string{"p4"}) {
		t.Errorf("page 2 = %s %v", got.LayoutName, got.PhotoIDs)
	}
}

func TestMovePhoto_WithinPage(t *testing.T) {
	e, pages, pool := testAlbum(t)

	out, err := e.MovePhoto(pages, FrameRef{Page: 1, Frame: 1}, FrameRef{Page: 1, Frame: 2}, pool)
	if err != nil {
		t.Fatalf("MovePhoto: %v", err)
	}
	if got := out[1].PhotoIDs; !reflect.DeepEqual(got, []string{"p4", "p3"}) {
		t.Errorf("page 2 = %v", got)
	}
	if len(out) != 3 {
		t.Errorf("expected 3 pages, got %d", len(out))
	}
}

func TestChangeLayout(t *testing.T) {
	e, pages, pool := testAlbum(t)

	out, err := e.ChangeLayout(pages, 0, "layout21", pool)
	if err != nil {
		t.Fatalf("ChangeLayout: %v", err)
	}
	if out[0].LayoutName != "layout21" || !reflect.DeepEqual(out[0].PhotoIDs, []string{"p1", "p2"}) {
		t.Errorf("page 1 = %s %v", out[0].LayoutName, out[0].PhotoIDs)
	}
	if pages[0].LayoutName != "layout20" {
		t.Error("input was modified")
	}

	if _, err := e.ChangeLayout(pages, 0, "layout22", pool); !errors.Is(err, ErrInvalidEdit) {
		t.Errorf("expected ErrInvalidEdit, got %v", err)
	}
	if _, err := e.ChangeLayout(pages, 0, "layout99", pool); !errors.Is(err, layout.ErrUnknownLayout) {
		t.Errorf("expected ErrUnknownLayout, got %v", err)
	}
}

func TestBestLayout(t *testing.T) {
	c := builtin(t)
	ps := testPhotos(t)

	tests := []struct {
		name   string
		photos []photo.Photo
		want   string
		exact  bool
	}{
		{"two landscapes", []photo.Photo{ps[2], ps[3]}, "layout21", true},
		{"two portraits", []photo.Photo{ps[0], ps[1]}, "layout20", true},
		{"single", []photo.Photo{ps[4]}, "layout19", true},
		{"none", nil, "layout19", false},
		{"too many", []photo.Photo{ps[0], ps[1], ps[2], ps[3], ps[4], ps[0], ps[1]}, "layout17", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, exact := BestLayout(c, tt.photos)
			if l == nil || l.ID != tt.want || exact != tt.exact {
				t.Errorf("BestLayout() = %v, %v; want %s, %v", l, exact, tt.want, tt.exact)
			}
		})
	}
}
