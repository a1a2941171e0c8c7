package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/law-makers/pricewatch/internal/ui"
	"github.com/law-makers/pricewatch/pkg/models"
)

const maxNameWidth = 64

// printResults writes one table per source, in catalog order
func printResults(w io.Writer, resp *models.SearchResponse) {
	fmt.Fprintf(w, "\n%s %s %s\n", ui.Bold("Results for"), ui.ColorWhite+resp.Query.Category+ui.ColorReset, ui.ColorWhite+resp.Query.Brand+ui.ColorReset)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	for _, res := range resp.Results {
		fmt.Fprintf(w, "\n%s  %s  %s\n",
			ui.ColorBold+ui.ColorCyan+res.DisplayName+ui.ColorReset,
			ui.Status(res.Status),
			ui.Dim(res.Elapsed.Round(time.Millisecond).String()))

		switch res.Status {
		case models.StatusError:
			fmt.Fprintf(w, "  %s %s\n", ui.Dim("Error:"), ui.Error(res.Error))
			continue
		case models.StatusNoMatches:
			fmt.Fprintf(w, "  %s\n", ui.Info("No listings in the price band"))
			continue
		}

		for i, l := range res.Listings {
			fmt.Fprintf(w, "  %s %-*s  %s\n",
				ui.Dim(fmt.Sprintf("%d.", i+1)),
				maxNameWidth, truncate(l.Name, maxNameWidth),
				ui.Success(l.DisplayPrice))
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
}

// printSummary writes the one-line footer shown after the tables
func printSummary(w io.Writer, resp *models.SearchResponse) {
	failed := failedSources(resp)
	line := fmt.Sprintf("%d listing(s) from %d source(s) in %s",
		resp.TotalListings(), len(resp.Results), resp.Duration.Round(time.Millisecond))
	if resp.Cached {
		line += " (cached)"
	}
	fmt.Fprintf(w, "%s", ui.Bold(line))
	if failed > 0 {
		fmt.Fprintf(w, "  %s", ui.Error(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintln(w)
}

// truncate shortens s to width runes, marking the cut with "..."
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// newProgressBar tracks sources as they finish; it clears itself when done
func newProgressBar(w io.Writer, sources int) *progressbar.ProgressBar {
	return progressbar.NewOptions(sources,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Searching"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
}
