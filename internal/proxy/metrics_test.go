package proxy

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"gotest.tools/v3/assert"
)

func TestMetrics_FrameParsedAndBytesForwarded(t *testing.T) {
	m := NewMetrics(nil, nil)

	m.FrameParsed(directionClientToServer, true)
	m.FrameParsed(directionClientToServer, false)
	m.BytesForwarded(directionClientToServer, 17)

	reg := prometheus.NewRegistry()
	assert.NilError(t, reg.Register(m))

	families, err := reg.Gather()
	assert.NilError(t, err)

	got := metricValue(t, families, "gdbproxy_frames_parsed_total", "client_to_server")
	assert.Equal(t, got, float64(2))

	got = metricValue(t, families, "gdbproxy_checksum_failures_total", "client_to_server")
	assert.Equal(t, got, float64(1))

	got = metricValue(t, families, "gdbproxy_bytes_forwarded_total", "client_to_server")
	assert.Equal(t, got, float64(17))
}

func TestMetrics_SessionOpenedAndClosed(t *testing.T) {
	m := NewMetrics(nil, nil)

	m.SessionOpened(1)
	m.SessionOpened(2)
	m.SessionClosed(1)

	reg := prometheus.NewRegistry()
	assert.NilError(t, reg.Register(m))

	families, err := reg.Gather()
	assert.NilError(t, err)

	got := metricValue(t, families, "gdbproxy_active_sessions", "")
	assert.Equal(t, got, float64(1))
}

func TestMetrics_UnknownDirectionInvokesErrorCallback(t *testing.T) {
	var gotErr error

	m := NewMetrics(nil, func(err error) { gotErr = err })
	m.FrameParsed(direction("sideways"), true)

	assert.ErrorContains(t, gotErr, "unknown direction")
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name, directionLabel string) float64 {
	t.Helper()

	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}

		for _, metric := range fam.GetMetric() {
			if directionLabel == "" {
				if g := metric.GetGauge(); g != nil {
					return g.GetValue()
				}

				if c := metric.GetCounter(); c != nil {
					return c.GetValue()
				}
			}

			for _, label := range metric.GetLabel() {
				if label.GetName() == "direction" && label.GetValue() == directionLabel {
					if c := metric.GetCounter(); c != nil {
						return c.GetValue()
					}
				}
			}
		}
	}

	t.Fatalf("metric %q (direction=%q) not found", name, directionLabel)

	return 0
}
