package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/pricewatch/internal/api"
	"github.com/law-makers/pricewatch/internal/config"
	"github.com/law-makers/pricewatch/internal/ui"
)

const shutdownTimeout = 15 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search form and JSON API over HTTP",
	Long: `Starts an HTTP server exposing the HTML search form at / and a JSON API
under /api/v1. Successful searches are cached for --cache-ttl and each client
IP is limited to --rate-limit searches per second.`,
	Example: `  # Listen on the default address
  pricewatch serve

  # Custom port, allowing one frontend origin
  pricewatch serve --addr :9090 --cors-origin https://prices.example.com`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	config.RegisterServeFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	ctx := contextOf(cmd)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           api.NewRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
		// long enough for the slowest source's wait plus rendering
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info().Str("addr", a.Config.Addr).Str("renderer", a.Renderer.Name()).Msg("Server listening")
	if !a.Config.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Success("Listening on"), a.Config.Addr)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
