package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wolfman30/mhrs-agent/internal/httpserver"
	"github.com/wolfman30/mhrs-agent/internal/observability/metrics"
	"github.com/wolfman30/mhrs-agent/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tools over stdio",
	Long: `Start Chrome and serve the MHRS tools to an MCP client on stdin/stdout.

Logs go to stderr. When METRICS_ADDR is set, /health and /metrics are served
on that address as well.

Example client entry:
  {"command": "mhrs", "args": ["serve", "--env-file", "/path/to/.env"]}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		m := metrics.NewToolMetrics(prometheus.DefaultRegisterer)
		a, err := newApp(ctx, m)
		if err != nil {
			return err
		}
		defer a.Close()

		a.logger.Info("starting mhrs tool server",
			"env", a.cfg.Env,
			"version", version,
			"headless", a.cfg.BrowserHeadless,
		)

		if a.cfg.MetricsAddr != "" {
			router := httpserver.New(&httpserver.Config{
				Logger:         a.logger,
				MetricsHandler: promhttp.Handler(),
				Authenticated:  a.service.Session().Authenticated,
			})
			go func() {
				if err := httpserver.Serve(ctx, a.cfg.MetricsAddr, router, a.logger); err != nil {
					a.logger.Error("metrics server error", "error", err)
				}
			}()
		}

		t := tools.New(a.service, tools.WithMetrics(m), tools.WithLogger(a.logger))
		if err := tools.Serve(ctx, tools.NewServer(t, version)); err != nil && ctx.Err() == nil {
			a.logger.Error("tool server stopped", "error", err)
			return err
		}
		a.logger.Info("tool server stopped")
		return nil
	},
}
