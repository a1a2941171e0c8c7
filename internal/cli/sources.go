package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/law-makers/pricewatch/internal/api/handler"
	"github.com/law-makers/pricewatch/internal/app"
	"github.com/law-makers/pricewatch/internal/config"
	"github.com/law-makers/pricewatch/internal/ui"
	"github.com/law-makers/pricewatch/pkg/models"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured marketplaces and their extraction rules",
	Example: `  # Built-in catalog
  pricewatch sources

  # Check a custom rules file
  pricewatch sources --config rules.json --json`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noBrowser: "true"},
	RunE:        runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	catalog, err := app.LoadCatalog(cfg)
	if err != nil {
		return err
	}

	if cfg.JSONLog {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(handler.DescribeSources(catalog))
	}
	printSources(cmd.OutOrStdout(), catalog)
	return nil
}

func printSources(w io.Writer, catalog []models.ExtractionRule) {
	for _, r := range catalog {
		brandFilter := "off"
		if r.BrandFilter {
			brandFilter = "on"
		}
		fmt.Fprintf(w, "\n%s %s\n", ui.ColorBold+ui.ColorCyan+r.DisplayName+ui.ColorReset, ui.Dim("("+string(r.Source)+")"))
		fmt.Fprintf(w, "  %s %s\n", ui.Dim("URL:         "), r.URLTemplate)
		fmt.Fprintf(w, "  %s %s\n", ui.Dim("Wait for:    "), r.WaitSelector)
		fmt.Fprintf(w, "  %s %s\n", ui.Dim("Timeout:     "), r.WaitTimeout)
		fmt.Fprintf(w, "  %s %s\n", ui.Dim("Brand filter:"), brandFilter)
	}
	fmt.Fprintln(w)
}
