package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/pricewatch/internal/app"
	"github.com/law-makers/pricewatch/internal/config"
	"github.com/law-makers/pricewatch/internal/ui"
)

// noBrowser marks commands that run without starting a renderer
const noBrowser = "pricewatch/no-browser"

// newApplication builds the Application for a command; tests swap it for a
// fake-renderer constructor.
var newApplication = app.New

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pricewatch",
	Short: "Compare laptop prices across GeM, Amazon and Flipkart",
	Long: `Pricewatch renders marketplace search pages in a headless browser, extracts
product names and prices, and reports the listings that fall in the price band.

Sources are queried concurrently. A slow or broken marketplace only marks its
own result as failed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       app.Version,
}

// Execute runs the CLI and returns the process exit code. The application is
// closed here rather than in a post-run hook so it is released on errors too.
func Execute(ctx context.Context) int {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if a := GetAppFromCmd(cmd); a != nil {
		_ = a.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Error("Error:"), err)
		return 1
	}
	return 0
}

func init() {
	// Lazily initialize the application before running commands (avoid starting a browser for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		if cmd.Annotations[noBrowser] != "" {
			app.ConfigureLogging(cfg)
			return nil
		}

		a, err := newApplication(cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)

		log.Debug().
			Str("renderer", a.Renderer.Name()).
			Int("sources", len(a.Catalog)).
			Msg("Configuration loaded")
		return nil
	}

	config.RegisterFlags(rootCmd)

	rootCmd.Flags().BoolP("help", "h", false, "Help for pricewatch")
	rootCmd.Flags().Bool("version", false, "Version for pricewatch")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(helpFunc)
	rootCmd.SetUsageFunc(usageFunc)
}
