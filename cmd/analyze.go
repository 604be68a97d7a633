package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Prithvi-997/origin-brew/internal/config"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dir>",
	Short: "Read image dimensions and write a photo manifest",
	Long: `Scan a directory for images, read their dimensions from the file headers
and write a manifest that 'origin-brew plan --manifest' accepts.

Files whose name was already seen in another folder are skipped as
duplicates. With --similar every image is decoded and visually near
identical shots are listed. The summary shows the shape mix of the collection and the
layouts suggested for it.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("base-url", "", "URL prefix for photo links (defaults to relative paths)")
	analyzeCmd.Flags().StringP("out", "o", "", "Write the manifest to this file")
	analyzeCmd.Flags().Bool("json", false, "Print the manifest as JSON instead of a summary")
	analyzeCmd.Flags().Bool("similar", false, "Decode every image and report near duplicates such as burst shots")
}

// newScanProgressBar creates a progress bar for a directory scan, or nil when quiet.
func newScanProgressBar(count int, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return nil
	}
	return progressbar.NewOptions(count,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Reading photos"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}

// scanPhotos analyzes dir, logging skipped files.
func scanPhotos(dir, baseURL string, quiet bool, logger *log.Logger) (*photo.AnalyzeResult, error) {
	files, err := photo.ListImages(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported images in %s", dir)
	}

	bar := newScanProgressBar(len(files), quiet)
	res, err := photo.AnalyzeDir(dir, baseURL, func(string) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	for _, name := range res.Duplicates {
		logger.Warn("skipping duplicate file name", "file", name)
	}
	names := make([]string, 0, len(res.Failed))
	for name := range res.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		logger.Warn("skipping unreadable image", "file", name, "error", res.Failed[name])
	}
	return res, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	jsonOutput := mustGetBool(cmd, "json")
	out := mustGetString(cmd, "out")

	res, err := scanPhotos(args[0], mustGetString(cmd, "base-url"), jsonOutput, logger)
	if err != nil {
		return err
	}
	m := manifest{Photos: res.Photos}

	if out != "" {
		if err := writeJSONFile(out, m); err != nil {
			return err
		}
	}
	if jsonOutput {
		return outputJSON(m)
	}

	catalog, err := loadCatalog(config.Load())
	if err != nil {
		return err
	}
	d := photo.Distribute(res.Photos)

	fmt.Println()
	printTitle(fmt.Sprintf("%d photos", len(res.Photos)))
	printKeyValue("Full portrait", fmt.Sprint(d.FullLengthPortraits))
	printKeyValue("Portrait", fmt.Sprint(d.RegularPortraits))
	printKeyValue("Square", fmt.Sprint(d.Squares))
	printKeyValue("Landscape", fmt.Sprint(d.Landscapes))
	printKeyValue("Panoramic", fmt.Sprint(d.WidePanoramics))
	if recommended := catalog.Recommend(d); len(recommended) > 0 {
		printKeyValue("Suggested", fmt.Sprint(recommended))
	}
	if n := len(res.Duplicates) + len(res.Failed); n > 0 {
		printWarning("%d files skipped", n)
	}
	if mustGetBool(cmd, "similar") {
		groups, failed := photo.FindSimilar(os.DirFS(args[0]), res.Files, photo.SimilarThreshold)
		for name, err := range failed {
			logger.Warn("could not hash image", "file", name, "error", err)
		}
		for _, g := range groups {
			printWarning("near duplicates: %s", strings.Join(g, ", "))
		}
	}
	if out != "" {
		printSuccess("Manifest written")
		printFile(out)
	}
	return nil
}
