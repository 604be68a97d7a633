package svg

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Rect is an axis-aligned box in template user units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FrameRect is the box occupied by a numbered frame.
type FrameRect struct {
	FrameNumber int `json:"frameNumber"`
	Rect
}

const frameFillPrefix = "url(#img"

// frameNumber parses the frame number out of a fill such as
// "url(#img3_page2)".
func frameNumber(fill string) (int, bool) {
	if !strings.HasPrefix(fill, frameFillPrefix) {
		return 0, false
	}
	rest := fill[len(frameFillPrefix):]
	end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0, false
	}
	if end < 0 {
		end = len(rest)
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func attrFloat(val string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0
	}
	return f
}

// Frames extracts frame boxes from <rect> and <path> elements filled with a
// frame pattern, ordered by frame number. Paths that are not simple
// rectilinear outlines are skipped.
func (d *Document) Frames() []FrameRect {
	var frames []FrameRect
	for _, e := range d.elements() {
		if e.Tag != "rect" && e.Tag != "path" {
			continue
		}
		n, ok := frameNumber(e.SelectAttrValue("fill", ""))
		if !ok {
			continue
		}
		switch e.Tag {
		case "rect":
			frames = append(frames, FrameRect{FrameNumber: n, Rect: Rect{
				X:      attrFloat(e.SelectAttrValue("x", "0")),
				Y:      attrFloat(e.SelectAttrValue("y", "0")),
				Width:  attrFloat(e.SelectAttrValue("width", "0")),
				Height: attrFloat(e.SelectAttrValue("height", "0")),
			}})
		case "path":
			if r, ok := ParsePathBBox(e.SelectAttrValue("d", "")); ok {
				frames = append(frames, FrameRect{FrameNumber: n, Rect: r})
			}
		}
	}
	slices.SortStableFunc(frames, func(a, b FrameRect) int {
		return cmp.Compare(a.FrameNumber, b.FrameNumber)
	})
	return frames
}

// ExtractFrames parses markup and returns its frame boxes.
func ExtractFrames(markup string) ([]FrameRect, error) {
	d, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	return d.Frames(), nil
}

// pathTokens splits path data into command letters and numbers.
func pathTokens(data string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range data {
		switch {
		case unicode.IsLetter(r) && r != 'e' && r != 'E':
			flush()
			tokens = append(tokens, string(r))
		case r == ',' || unicode.IsSpace(r):
			flush()
		case r == '-' && cur.Len() > 0 && !strings.HasSuffix(strings.ToUpper(cur.String()), "E"):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// ParsePathBBox computes the bounding box of a rectilinear path built from
// an initial move followed by horizontal, vertical or straight line segments
// ("M75 50 H425 V550 H75 Z"). Command letters are read case-insensitively and
// coordinates as absolute.
func ParsePathBBox(data string) (Rect, bool) {
	tokens := pathTokens(strings.ToUpper(data))
	if len(tokens) == 0 || tokens[0] != "M" {
		return Rect{}, false
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	addX := func(x float64) { minX, maxX = min(minX, x), max(maxX, x) }
	addY := func(y float64) { minY, maxY = min(minY, y), max(maxY, y) }

	var cmd string
	var nums []float64
	segments := 0
	apply := func() bool {
		switch cmd {
		case "M", "L":
			if len(nums) == 0 || len(nums)%2 != 0 {
				return false
			}
			for i := 0; i < len(nums); i += 2 {
				addX(nums[i])
				addY(nums[i+1])
			}
			if cmd == "L" || len(nums) > 2 {
				segments++
			}
		case "H":
			for _, x := range nums {
				addX(x)
			}
			segments += len(nums)
		case "V":
			for _, y := range nums {
				addY(y)
			}
			segments += len(nums)
		case "Z", "":
		default:
			return false
		}
		return true
	}

	for _, tok := range tokens {
		if len(tok) == 1 && unicode.IsLetter(rune(tok[0])) {
			if !apply() {
				return Rect{}, false
			}
			cmd, nums = tok, nums[:0]
			continue
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Rect{}, false
		}
		nums = append(nums, f)
	}
	if !apply() || segments == 0 {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
