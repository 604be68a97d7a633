package photo

import (
	"fmt"
	"image"
	"io/fs"
	"math/bits"

	"golang.org/x/image/draw"
)

// SimilarThreshold is the largest difference-hash distance at which two
// photos count as near duplicates, e.g. shots from one burst.
const SimilarThreshold = 6

// DiffHash returns the 64-bit difference hash of an image: it is shrunk to
// 9x8 gray pixels and each bit records whether a pixel is brighter than its
// right neighbour.
func DiffHash(img image.Image) uint64 {
	small := image.NewGray(image.Rect(0, 0, 9, 8))
	draw.BiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var hash uint64
	for y := range 8 {
		for x := range 8 {
			hash <<= 1
			if small.GrayAt(x, y).Y > small.GrayAt(x+1, y).Y {
				hash |= 1
			}
		}
	}
	return hash
}

// HashFile decodes a whole image file and returns its difference hash.
func HashFile(fsys fs.FS, name string) (uint64, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", name, err)
	}
	return DiffHash(img), nil
}

// GroupSimilar groups ids whose hashes are within threshold of each other,
// transitively. Only groups with more than one member are returned, each in
// input order.
func GroupSimilar(ids []string, hashes []uint64, threshold int) [][]string {
	parent := make([]int, len(ids))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			if bits.OnesCount64(hashes[i]^hashes[j]) <= threshold {
				if ri, rj := find(i), find(j); ri != rj {
					parent[rj] = ri
				}
			}
		}
	}

	byRoot := make(map[int]int)
	var groups [][]string
	for i, id := range ids {
		r := find(i)
		g, ok := byRoot[r]
		if !ok {
			g = len(groups)
			byRoot[r] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], id)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g) > 1 {
			out = append(out, g)
		}
	}
	return out
}

// FindSimilar hashes the named files and groups near duplicates. Files that
// cannot be decoded are returned in failed and left out of the grouping.
func FindSimilar(fsys fs.FS, names []string, threshold int) (groups [][]string, failed map[string]error) {
	failed = make(map[string]error)
	ids := make([]string, 0, len(names))
	hashes := make([]uint64, 0, len(names))
	for _, name := range names {
		h, err := HashFile(fsys, name)
		if err != nil {
			failed[name] = err
			continue
		}
		ids = append(ids, name)
		hashes = append(hashes, h)
	}
	return GroupSimilar(ids, hashes, threshold), failed
}
