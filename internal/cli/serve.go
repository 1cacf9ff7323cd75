package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trrcms/trrcms/internal/metrics"
)

func serveMetricsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-metrics",
		Short: "Expose Prometheus metrics until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config.Metrics
			server := metrics.NewHTTPServer(cfg.Address, cfg.Port)
			app.Logger.Info().Str("addr", server.Addr).Msg("Serving metrics")

			errCh := make(chan error, 1)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-stop:
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}
}

func healthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the central backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Client.Health(cmdContext()); err != nil {
				return err
			}
			fmt.Printf("✓ Backend reachable at %s\n", app.Config.Backend.BaseURL)
			return nil
		},
	}
}
