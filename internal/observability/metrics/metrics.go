package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ToolMetrics exposes counters/histograms for tool calls and browser retries.
type ToolMetrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	clickRetries *prometheus.CounterVec
}

func NewToolMetrics(reg prometheus.Registerer) *ToolMetrics {
	m := &ToolMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mhrs",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total tool calls by outcome status",
		}, []string{"tool", "status"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mhrs",
			Subsystem: "tools",
			Name:      "call_duration_seconds",
			Help:      "Wall time of tool calls, browser time included",
			// Flows drive a real browser and take seconds to minutes.
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		}, []string{"tool"}),
		clickRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mhrs",
			Subsystem: "browser",
			Name:      "click_retries_total",
			Help:      "Failed click attempts that were retried",
		}, []string{"selector"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callDuration, m.clickRetries)
	return m
}

func (m *ToolMetrics) ObserveCall(tool, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(tool, status).Inc()
	m.callDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveClickRetry matches browser.ClickPolicy's OnRetry hook.
func (m *ToolMetrics) ObserveClickRetry(selector string, _ uint, _ error) {
	if m == nil {
		return
	}
	m.clickRetries.WithLabelValues(selector).Inc()
}
