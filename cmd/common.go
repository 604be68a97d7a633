package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Prithvi-997/origin-brew/internal/ai"
	"github.com/Prithvi-997/origin-brew/internal/album"
	"github.com/Prithvi-997/origin-brew/internal/config"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/charmbracelet/log"
)

// loadCatalog returns the catalog from LAYOUT_CATALOG_DIR, or the built-in
// one.
func loadCatalog(cfg *config.Config) (*layout.Catalog, error) {
	if cfg.Catalog.Dir == "" {
		return layout.Builtin()
	}
	c, err := layout.LoadDir(cfg.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading layout catalog from %s: %w", cfg.Catalog.Dir, err)
	}
	return c, nil
}

// newGenerator wires the catalog, planner and engine thresholds from cfg.
// With noAI the planner is skipped entirely.
func newGenerator(ctx context.Context, cfg *config.Config, noAI bool, logger *log.Logger) (*album.Generator, error) {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	if warnings := layout.Validate(catalog); layout.HasErrors(warnings) {
		for _, w := range warnings {
			logger.Error("layout catalog", "layout", w.LayoutID, "frame", w.FrameID, "problem", w.Message)
		}
		return nil, fmt.Errorf("layout catalog has errors, run 'origin-brew layouts validate'")
	}

	var planner ai.Planner
	if !noAI {
		planner, err = ai.NewPlanner(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("creating planner: %w", err)
		}
	}
	if planner != nil {
		logger.Debug("planner ready", "provider", cfg.PlannerProvider(), "model", planner.Name(), "cache", cfg.Cache.RedisURL != "")
	} else {
		logger.Debug("no planner, using the deterministic engine only")
	}

	return album.NewGenerator(catalog, album.Options{
		Planner:        planner,
		Timeout:        cfg.Planner.Timeout,
		Thresholds:     cfg.Engine.Thresholds(),
		MinAcceptRatio: cfg.Engine.MinAcceptRatio,
	}), nil
}

// manifest is the photo list file read by plan and written by analyze.
type manifest struct {
	Photos []photo.Photo `json:"photos"`
}

// readManifest reads a manifest file. A bare JSON array of photos is
// accepted too.
func readManifest(path string) ([]photo.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var photos []photo.Photo
		if err := json.Unmarshal(data, &photos); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
		return photos, nil
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m.Photos, nil
}
