package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Prithvi-997/origin-brew/internal/config"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/spf13/cobra"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "Inspect the layout catalog",
}

var layoutsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List layouts with their frames",
	Long: `List every layout in the active catalog (LAYOUT_CATALOG_DIR, or the
built-in one) with frame count and frame aspect ratios.`,
	RunE: runLayoutsList,
}

var layoutsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check layout templates against their metadata",
	Long: `Validate every layout template: frame elements must exist, lie inside the
page, not overlap, and match the declared aspect ratios.

Exits with an error when any problem has error severity.`,
	RunE: runLayoutsValidate,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
	layoutsCmd.AddCommand(layoutsListCmd)
	layoutsCmd.AddCommand(layoutsValidateCmd)

	layoutsListCmd.Flags().Bool("json", false, "Output as JSON")
	layoutsValidateCmd.Flags().Bool("json", false, "Output as JSON")
}

func runLayoutsList(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog(config.Load())
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(map[string]any{
			"fallback": catalog.Fallback().ID,
			"view_box": catalog.ViewBox(),
			"layouts":  catalog.Metadata(),
		})
	}

	vb := catalog.ViewBox()
	printTitle(fmt.Sprintf("%d layouts", catalog.Len()))
	printKeyValue("Page", fmt.Sprintf("%g x %g", vb.Width, vb.Height))
	printKeyValue("Fallback", catalog.Fallback().ID)
	fmt.Println()
	for _, l := range catalog.ByFrameCountDesc() {
		ratios := make([]string, len(l.Frames))
		for i, f := range l.Frames {
			ratios[i] = fmt.Sprintf("%.3f %s", f.AspectRatio, f.Orientation())
		}
		printKeyValue(l.ID, fmt.Sprintf("%d frames  %s", l.FrameCount(), strings.Join(ratios, ", ")))
	}
	return nil
}

func runLayoutsValidate(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog(config.Load())
	if err != nil {
		return err
	}
	warnings := layout.Validate(catalog)

	if mustGetBool(cmd, "json") {
		if err := outputJSON(warnings); err != nil {
			return err
		}
	} else {
		for _, w := range warnings {
			where := w.LayoutID
			if w.FrameID > 0 {
				where = fmt.Sprintf("%s frame %d", w.LayoutID, w.FrameID)
			}
			printWarning("%s %s: %s", w.Severity, where, w.Message)
		}
		if len(warnings) == 0 {
			printSuccess("%d layouts OK", catalog.Len())
		}
	}

	if layout.HasErrors(warnings) {
		return errors.New("layout catalog has errors")
	}
	return nil
}
