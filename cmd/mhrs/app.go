package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/wolfman30/mhrs-agent/internal/browser"
	appconfig "github.com/wolfman30/mhrs-agent/internal/config"
	"github.com/wolfman30/mhrs-agent/internal/mhrs"
	"github.com/wolfman30/mhrs-agent/internal/observability/metrics"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

// app is the wiring shared by every command that touches the portal.
type app struct {
	cfg     *appconfig.Config
	logger  *logging.Logger
	chrome  *browser.Chrome
	service *mhrs.Service
}

// newApp loads configuration and starts the browser. m may be nil.
func newApp(ctx context.Context, m *metrics.ToolMetrics) (*app, error) {
	cfg := appconfig.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel)

	click := browser.ClickPolicy{
		Attempts: uint(cfg.ClickAttempts),
		Backoff:  cfg.ClickBackoff,
	}
	if m != nil {
		click.OnRetry = m.ObserveClickRetry
	}

	chrome, err := browser.NewChrome(ctx, browser.ChromeConfig{
		Headless:        cfg.BrowserHeadless,
		ExecPath:        cfg.BrowserExecPath,
		WindowWidth:     cfg.BrowserWindowWidth,
		WindowHeight:    cfg.BrowserWindowHeight,
		Timeout:         cfg.WaitTimeout,
		LoadingSelector: mhrs.SelectorLoading,
		Click:           click,
	}, browser.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}

	service := mhrs.NewService(chrome, mhrs.ServiceConfig{
		BaseURL:             cfg.BaseURL,
		Credentials:         mhrs.Credentials{Username: cfg.Username, Password: cfg.Password},
		WaitTimeout:         cfg.WaitTimeout,
		RegistryWaitTimeout: cfg.RegistryWaitTimeout,
	}, mhrs.WithServiceLogger(logger))

	return &app{cfg: cfg, logger: logger, chrome: chrome, service: service}, nil
}

func (a *app) Close() {
	if err := a.chrome.Close(); err != nil {
		a.logger.Warn("failed to close browser", "error", err)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
