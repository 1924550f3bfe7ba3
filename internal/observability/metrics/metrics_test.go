package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) []*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()
		}
	}
	return nil
}

func label(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestToolMetricsObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewToolMetrics(reg)

	m.ObserveCall("book", "success", 3*time.Second)
	m.ObserveCall("book", "success", time.Second)
	m.ObserveCall("book", "max_appointments_exceeded", time.Second)

	calls := gather(t, reg, "mhrs_tools_calls_total")
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, "book", label(c, "tool"))
		switch label(c, "status") {
		case "success":
			assert.Equal(t, 2.0, c.GetCounter().GetValue())
		case "max_appointments_exceeded":
			assert.Equal(t, 1.0, c.GetCounter().GetValue())
		default:
			t.Fatalf("unexpected status %q", label(c, "status"))
		}
	}

	durations := gather(t, reg, "mhrs_tools_call_duration_seconds")
	require.Len(t, durations, 1)
	assert.Equal(t, uint64(3), durations[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 5.0, durations[0].GetHistogram().GetSampleSum(), 1e-9)
}

func TestToolMetricsClickRetries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewToolMetrics(reg)

	m.ObserveClickRetry("#randevu-ara-buton", 1, errors.New("stale"))
	m.ObserveClickRetry("#randevu-ara-buton", 2, errors.New("stale"))

	retries := gather(t, reg, "mhrs_browser_click_retries_total")
	require.Len(t, retries, 1)
	assert.Equal(t, "#randevu-ara-buton", label(retries[0], "selector"))
	assert.Equal(t, 2.0, retries[0].GetCounter().GetValue())
}

func TestToolMetricsNilSafe(t *testing.T) {
	var m *ToolMetrics
	m.ObserveCall("list_active", "success", time.Second)
	m.ObserveClickRetry("button", 1, nil)
}
