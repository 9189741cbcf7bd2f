package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"urban-parking/internal/config"
	"urban-parking/internal/feed"
	"urban-parking/internal/logging"
	"urban-parking/internal/parking"
	"urban-parking/internal/server"
)

var (
	mode = flag.String("mode", "", "Mode to run: cli, server, both or demo (overrides MODE)")
	port = flag.String("port", "", "Port for HTTP server (overrides PORT)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *mode != "" {
		cfg.Server.Mode = *mode
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, cfg.OTel.ServiceName, cfg.OTel.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	logging.Init(cfg.OTel.ServiceName, cfg.Server.Environment)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch cfg.Server.Mode {
	case "cli":
		runCLI(ctx, cancel, cfg, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, telemetryProvider, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, telemetryProvider, sigChan)
	case "demo":
		runDemo(ctx, cfg, telemetryProvider)
	}

	shutdownTelemetry(telemetryProvider)
}

func facilityBuilder(cfg config.Config, clock parking.Clock, telemetryProvider *parking.TelemetryProvider) parking.FacilityBuilder {
	return func(capacity int) (*parking.InstrumentedFacility, error) {
		pricing, err := cfg.Parking.PricingEngine()
		if err != nil {
			return nil, err
		}
		return parking.NewInstrumentedFacility(parking.NewFacility(capacity, pricing, clock), telemetryProvider)
	}
}

func wallClock(cfg config.Config) parking.Clock {
	clock, err := cfg.Parking.Clock()
	if err != nil {
		log.Fatalf("Invalid time zone: %v", err)
	}
	return clock
}

func runCLI(ctx context.Context, cancel context.CancelFunc, cfg config.Config, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	clock := wallClock(cfg)
	site := newSite(ctx, cfg, clock, telemetryProvider)
	newShell(site, clock, telemetryProvider).Run(ctx)
}

// newSite puts a facility of the configured capacity in service.
func newSite(ctx context.Context, cfg config.Config, clock parking.Clock, telemetryProvider *parking.TelemetryProvider) *parking.Site {
	site := parking.NewSite(facilityBuilder(cfg, clock, telemetryProvider))
	if _, err := site.Replace(ctx, cfg.Parking.Capacity); err != nil {
		log.Fatalf("Failed to create parking lot: %v", err)
	}
	return site
}

func newShell(site *parking.Site, clock parking.Clock, telemetryProvider *parking.TelemetryProvider) *parking.Shell {
	return parking.NewShell(os.Stdin, os.Stdout, site, clock, telemetryProvider)
}

func newServer(ctx context.Context, cfg config.Config, site *parking.Site) *server.Server {
	hub := feed.NewHub()
	go hub.Run(ctx)

	handler := server.NewHandler(cfg.OTel.ServiceName, site, hub)
	return server.NewServer(cfg.Server.Port, handler)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg config.Config, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	site := newSite(ctx, cfg, wallClock(cfg), telemetryProvider)
	srv := newServer(ctx, cfg, site)

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		shutdownServer(ctx, srv)
		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error(ctx, "server error", "error", err.Error())
	}
}

// runBoth serves HTTP and the shell from one site, so both drive the same gates.
func runBoth(ctx context.Context, cancel context.CancelFunc, cfg config.Config, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	clock := wallClock(cfg)
	site := newSite(ctx, cfg, clock, telemetryProvider)
	srv := newServer(ctx, cfg, site)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		newShell(site, clock, telemetryProvider).Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		shutdownServer(ctx, srv)
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "server error", "error", err.Error())
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
		shutdownServer(ctx, srv)
	case <-ctx.Done():
		logging.Info(ctx, "context cancelled")
	}
}

func runDemo(ctx context.Context, cfg config.Config, telemetryProvider *parking.TelemetryProvider) {
	loc, err := cfg.Parking.Location()
	if err != nil {
		log.Fatalf("Invalid time zone: %v", err)
	}
	clock := parking.NewManualClock(time.Now().In(loc))

	facility, err := facilityBuilder(cfg, clock.Now, telemetryProvider)(cfg.Parking.Capacity)
	if err != nil {
		log.Fatalf("Failed to create parking lot: %v", err)
	}

	if err := parking.RunDemo(ctx, os.Stdout, facility, clock); err != nil {
		logging.Error(ctx, "demo failed", "error", err.Error())
	}
}

func shutdownServer(ctx context.Context, srv *server.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "server shutdown error", "error", err.Error())
	}
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	logging.Info(context.Background(), "shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}
}
