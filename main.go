// Huawei HiLink Modem Exporter
//
// This exporter talks to a USB-attached Huawei modem (E303 in HiLink mode),
// exposes its connection status and SMS counters in Prometheus format, serves
// a small JSON API over the modem and can forward received SMS to NSQ.
//
// Usage:
//
//	modem-exporter [flags]
//
// Flags:
//
//	-config string    Path to config file (default: no config file)
//	-port int         Port to serve metrics and the API on (default: 9101)
//	-url string       Modem API root (default: http://192.168.8.1/api)
//	-model string     Modem model: huawei_e303, auto (default: auto)
//	-forward          Forward received SMS to NSQ
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huawei3g/modem-exporter/api"
	"github.com/huawei3g/modem-exporter/config"
	"github.com/huawei3g/modem-exporter/forward"
	"github.com/huawei3g/modem-exporter/metrics"
	"github.com/huawei3g/modem-exporter/modem"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "Port to serve metrics and the API on (default: 9101)")
	modemURL := flag.String("url", "", "Modem API root (default: http://192.168.8.1/api)")
	model := flag.String("model", "", "Modem model: huawei_e303, auto (default: auto)")
	forwardSMS := flag.Bool("forward", false, "Forward received SMS to NSQ")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("modem-exporter %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Load environment variables
	config.LoadConfigFromEnv(cfg)

	// Override with command line flags
	if *port != 0 {
		cfg.Metrics.Port = *port
	}
	if *modemURL != "" {
		cfg.Modem.URL = *modemURL
	}
	if *model != "" {
		cfg.Modem.Model = *model
	}
	if *forwardSMS {
		cfg.Forward.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	slog.Info("starting modem exporter",
		"version", version,
		"url", cfg.Modem.URL,
		"model", cfg.Modem.Model,
		"port", cfg.Metrics.Port,
	)

	// Create modem client
	clientCfg := cfg.ToClientConfig()
	client, err := modem.NewClient(clientCfg)
	if err != nil {
		slog.Error("failed to create modem client", "error", err)
		os.Exit(1)
	}
	shared := modem.Synchronized(client)

	slog.Info("using modem", "model", shared.GetModel(), "interface", shared.Interface())

	// Create metrics collector; closing it closes the modem client
	collector := metrics.NewCollector(shared)
	defer collector.Close()
	prometheus.MustRegister(collector)

	requestTimeout := cfg.RequestTimeout()
	router := api.NewRouter(api.NewHandler(shared, clientCfg.Locator), requestTimeout)
	router.Handle(cfg.Metrics.Path, promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Forward.Enabled {
		publisher, err := forward.NewNSQPublisher(cfg.Forward.NSQDAddr)
		if err != nil {
			slog.Error("failed to create nsq publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		if err := publisher.Ping(); err != nil {
			slog.Warn("nsqd not reachable yet", "addr", cfg.Forward.NSQDAddr, "error", err)
		}

		fwd, err := forward.NewForwarder(shared, publisher, cfg.Forward.Topic, cfg.Forward.Interval, cfg.Forward.DeleteAfterForward)
		if err != nil {
			slog.Error("failed to create sms forwarder", "error", err)
			os.Exit(1)
		}
		go fwd.Run(ctx)
		slog.Info("forwarding sms", "nsqd", cfg.Forward.NSQDAddr, "topic", cfg.Forward.Topic, "interval", cfg.Forward.Interval)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutting down")
		daemon.SdNotify(false, daemon.SdNotifyStopping)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		slog.Warn("sd_notify failed", "error", err)
	}

	// Start server
	slog.Info("serving", "metrics", fmt.Sprintf("http://localhost:%d%s", cfg.Metrics.Port, cfg.Metrics.Path))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("exporter stopped")
}
