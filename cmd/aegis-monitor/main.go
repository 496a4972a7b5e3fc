// aegis-monitor runs the watchlist monitor as a standalone daemon, for
// deployments that keep alerting separate from the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobmcallan/aegis/internal/app"
)

func main() {
	ctx := context.Background()

	a, err := app.NewApp(ctx, os.Getenv("AEGIS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	if err := a.StartMonitor(); err != nil {
		a.Logger.Fatal().Err(err).Msg("Failed to start watchlist monitor")
	}

	a.Logger.Info().
		Dur("interval", a.Config.Monitor.GetInterval()).
		Float64("threshold_pct", a.Config.Monitor.PriceThresholdPct).
		Msg("Monitor ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	a.Logger.Info().Msg("Shutdown signal received")
	a.Close()
	a.Logger.Info().Msg("Monitor stopped")
}
