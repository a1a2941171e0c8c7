package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/pricewatch/internal/app"
	"github.com/law-makers/pricewatch/internal/engine/aggregate"
	"github.com/law-makers/pricewatch/internal/ui"
	"github.com/law-makers/pricewatch/internal/utils/output"
	"github.com/law-makers/pricewatch/pkg/models"
)

var (
	category   string
	brand      string
	outputPath string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search all marketplaces once and print the listings",
	Long: `Renders each marketplace's search page for "<category> <brand>" concurrently
and prints up to --cap listings per source whose price falls in the band.

A source that times out or fails is reported as an error without affecting
the others.`,
	Example: `  # Compare Acme laptops across every marketplace
  pricewatch search --category laptop --brand Acme

  # Only Amazon and Flipkart, more listings per source
  pricewatch search -c laptop -b Acme --only amazon,flipkart --cap 10

  # Save a CSV report
  pricewatch search -c laptop -b Acme -o prices.csv

  # Machine-readable output
  pricewatch search -c laptop -b Acme --json`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	addQueryFlags(searchCmd)
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&category, "category", "c", "", "Product category (e.g. laptop)")
	cmd.Flags().StringVarP(&brand, "brand", "b", "", "Brand name (e.g. Acme)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Also save results to a file (.json, .csv, .html or .md)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	resp, err := query(cmd, a, false)
	if err != nil {
		return err
	}
	if err := report(cmd, a, resp); err != nil {
		return err
	}

	if len(resp.Results) > 0 && failedSources(resp) == len(resp.Results) {
		return fmt.Errorf("all %d sources failed", len(resp.Results))
	}
	return nil
}

// query runs one search with a progress bar on stderr unless output is
// quiet or JSON. fresh skips the cache lookup.
func query(cmd *cobra.Command, a *app.Application, fresh bool) (*models.SearchResponse, error) {
	var opts []aggregate.Option

	if !a.Config.Quiet && !a.Config.JSONLog {
		bar := newProgressBar(cmd.ErrOrStderr(), len(a.Catalog))
		defer bar.Finish()
		opts = append(opts, aggregate.WithOnResult(func(r models.SourceResult) {
			bar.Describe(r.DisplayName + " " + string(r.Status))
			_ = bar.Add(1)
		}))
	}

	search := a.Search
	if fresh {
		search = a.SearchFresh
	}
	return search(contextOf(cmd), category, brand, opts...)
}

// report prints resp in the configured style and saves it when -o is set
func report(cmd *cobra.Command, a *app.Application, resp *models.SearchResponse) error {
	w := cmd.OutOrStdout()

	if a.Config.JSONLog {
		if err := output.WriteJSON(w, resp); err != nil {
			return err
		}
	} else {
		printResults(w, resp)
		if !a.Config.Quiet {
			printSummary(w, resp)
		}
	}

	if outputPath != "" {
		if err := output.Save(resp, outputPath); err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
		log.Info().Str("file", outputPath).Msg("Output saved")
		if !a.Config.Quiet && !a.Config.JSONLog {
			fmt.Fprintf(w, "%s %s\n", ui.Success("Saved to"), outputPath)
		}
	}
	return nil
}

func failedSources(resp *models.SearchResponse) int {
	n := 0
	for _, res := range resp.Results {
		if res.Status == models.StatusError {
			n++
		}
	}
	return n
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
