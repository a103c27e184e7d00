package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wegjgwioj/miniresp/engine"
	"github.com/wegjgwioj/miniresp/internal/logging"
	"github.com/wegjgwioj/miniresp/internal/metrics"
	"github.com/wegjgwioj/miniresp/router"
	"github.com/wegjgwioj/miniresp/server"
)

var (
	addr       string
	metricsAddr string
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the server and block until it shuts down",
	Example: "  miniresp-server serve --addr :6399 --metrics-addr :9399",
	RunE:    runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":6399", "listen address, e.g. 127.0.0.1:6399")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus /metrics listen address (empty to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.New(logLevel)
	m := metrics.New()

	eng := engine.New()
	r := router.New(eng, log, m)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go r.Run(ctx)

	if metricsAddr != "" {
		go serveMetrics(log, metricsAddr, m)
	}

	s := server.New(addr, r, log, m)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Errorf("serve: shutdown: %v", err)
		}
	}()

	return s.Start()
}

func serveMetrics(log logging.Logger, addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	log.Infof("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics server: %v", fmt.Errorf("listen and serve: %w", err))
	}
}
