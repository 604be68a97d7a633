package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Prithvi-997/origin-brew/internal/album"
	"github.com/Prithvi-997/origin-brew/internal/config"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/Prithvi-997/origin-brew/internal/trace"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate photobook pages for a photo collection",
	Long: `Generate an album from a photo manifest or a directory of images.

The configured AI planner proposes pages; invalid or missing parts of its plan
are repaired and every remaining photo is placed by the deterministic engine.
Without a planner (or with --no-ai) the engine lays out the whole album.

Examples:
  origin-brew plan --dir ./wedding --out album.json --svg-dir pages/
  origin-brew plan --manifest photos.json --provider gemini --json`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringP("manifest", "m", "", "Photo manifest (JSON) to plan")
	planCmd.Flags().StringP("dir", "d", "", "Directory of images to plan")
	planCmd.Flags().String("base-url", "", "URL prefix for photo links when reading a directory")
	planCmd.Flags().StringP("out", "o", "", "Write the album JSON to this file")
	planCmd.Flags().String("svg-dir", "", "Write one SVG file per page to this directory")
	planCmd.Flags().String("provider", "", "Planner provider: openai, gemini, ollama or none (overrides PLANNER_PROVIDER)")
	planCmd.Flags().Bool("no-ai", false, "Lay out with the deterministic engine only")
	planCmd.Flags().Bool("json", false, "Print the album as JSON instead of a summary")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	manifestPath := mustGetString(cmd, "manifest")
	dir := mustGetString(cmd, "dir")
	jsonOutput := mustGetBool(cmd, "json")

	if (manifestPath == "") == (dir == "") {
		return errors.New("exactly one of --manifest or --dir is required")
	}

	cfg := config.Load()
	if provider := mustGetString(cmd, "provider"); provider != "" {
		cfg.Planner.Provider = provider
	}

	var photos []photo.Photo
	if manifestPath != "" {
		var err error
		if photos, err = readManifest(manifestPath); err != nil {
			return err
		}
	} else {
		res, err := scanPhotos(dir, mustGetString(cmd, "base-url"), jsonOutput, logger)
		if err != nil {
			return err
		}
		photos = res.Photos
	}

	g, err := newGenerator(ctx, cfg, mustGetBool(cmd, "no-ai"), logger)
	if err != nil {
		return err
	}

	start := time.Now()
	logger.Info("planning album", "photos", len(photos))
	res, err := g.Generate(ctx, photos, trace.New(trace.LoggerSink(logger)))
	if err != nil {
		return fmt.Errorf("generating album: %w", err)
	}
	elapsed := time.Since(start).Round(time.Millisecond)

	// The trace already went to the logger; keep the written album small.
	res.Trace = nil

	if out := mustGetString(cmd, "out"); out != "" {
		if err := writeJSONFile(out, res); err != nil {
			return err
		}
		logger.Info("album written", "file", out)
	}
	var svgFiles []string
	if svgDir := mustGetString(cmd, "svg-dir"); svgDir != "" {
		if svgFiles, err = writePageSVGs(svgDir, res); err != nil {
			return err
		}
	}

	if jsonOutput {
		return outputJSON(res)
	}
	printAlbumSummary(res, len(photos), elapsed, svgFiles)
	return nil
}

// writePageSVGs writes page-N.svg files and returns their paths.
func writePageSVGs(dir string, res *album.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	paths := make([]string, 0, len(res.Pages))
	for _, p := range res.Pages {
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.svg", p.PageNumber))
		if err := os.WriteFile(path, []byte(p.SVGContent), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func printAlbumSummary(res *album.Result, photoCount int, elapsed time.Duration, svgFiles []string) {
	fmt.Println()
	printTitle(fmt.Sprintf("%d pages for %d photos", len(res.Pages), photoCount))
	for _, p := range res.Pages {
		printPageLine(p.PageNumber, p.LayoutName, p.PhotoIDs)
	}
	fmt.Println()

	planner := res.Planner
	if planner == "" {
		planner = "engine only"
	}
	printKeyValue("Planner", planner)
	printKeyValue("Time", elapsed.String())
	if res.Usage != nil && (res.Usage.InputTokens > 0 || res.Usage.OutputTokens > 0) {
		printKeyValue("Tokens", fmt.Sprintf("%d in / %d out", res.Usage.InputTokens, res.Usage.OutputTokens))
		printKeyValue("Cost", fmt.Sprintf("$%.4f", res.Usage.TotalCost))
	}
	if res.Notice != "" {
		printWarning("%s", res.Notice)
	}
	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
	if len(svgFiles) > 0 {
		printSuccess("Pages written")
		for _, f := range svgFiles {
			printFile(f)
		}
	}
}
