package photo

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// IsSupported reports whether the file extension is one AnalyzeDir reads.
func IsSupported(name string) bool {
	return slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(name)))
}

// AnalyzeFile reads only the image header to get its dimensions. Width and
// height are the displayed ones: EXIF orientations 5-8 rotate by 90 degrees,
// so the stored dimensions are swapped for them.
func AnalyzeFile(fsys fs.FS, name, url string) (Photo, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return Photo{}, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Photo{}, fmt.Errorf("decoding %s: %w", name, err)
	}

	width, height := cfg.Width, cfg.Height
	if format == "jpeg" || format == "tiff" {
		if o := exifOrientation(fsys, name); o >= 5 && o <= 8 {
			width, height = height, width
		}
	}

	p, err := New(path.Base(name), width, height, url)
	if err != nil {
		return Photo{}, err
	}
	p.FileName = path.Base(name)
	return p, nil
}

// exifOrientation returns the EXIF Orientation tag of a file, or 1 (upright)
// when the file has none or it cannot be read.
func exifOrientation(fsys fs.FS, name string) int {
	f, err := fsys.Open(name)
	if err != nil {
		return 1
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

// AnalyzeResult is the outcome of a directory scan.
type AnalyzeResult struct {
	Photos     []Photo
	Files      []string // relative path of each photo, same order as Photos
	Duplicates []string // file names skipped because the name was already seen
	Failed     map[string]error
}

// ListImages returns the supported image files under fsys in walk order.
func ListImages(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if IsSupported(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	return files, nil
}

// AnalyzeDir scans dir for images. The photo URL is baseURL joined with the
// file's slash-separated relative path. Files sharing a name with an earlier
// file are reported as duplicates. onFile, if set, is called after each file.
func AnalyzeDir(dir, baseURL string, onFile func(name string)) (*AnalyzeResult, error) {
	fsys := os.DirFS(dir)
	files, err := ListImages(fsys)
	if err != nil {
		return nil, err
	}

	res := &AnalyzeResult{Failed: make(map[string]error)}
	seen := make(map[string]bool, len(files))
	for _, name := range files {
		base := strings.ToLower(path.Base(name))
		if seen[base] {
			res.Duplicates = append(res.Duplicates, name)
		} else {
			seen[base] = true
			url := name
			if baseURL != "" {
				url = strings.TrimSuffix(baseURL, "/") + "/" + name
			}
			p, err := AnalyzeFile(fsys, name, url)
			if err != nil {
				res.Failed[name] = err
			} else {
				res.Photos = append(res.Photos, p)
				res.Files = append(res.Files, name)
			}
		}
		if onFile != nil {
			onFile(name)
		}
	}
	return res, nil
}
