package proxy

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// direction labels the two independent flows of a session.
type direction string

const (
	directionClientToServer direction = "client_to_server"
	directionServerToClient direction = "server_to_client"
)

// counters holds the cumulative values tracked for one direction.
type counters struct {
	framesParsed     uint64
	checksumFailures uint64
	bytesForwarded   uint64
}

// Metrics is a custom prometheus.Collector exposing the proxy's frame and
// byte counters alongside the count of sessions currently open. It follows
// the same constructor-and-Collect shape as a collector that polls
// per-connection kernel statistics on each scrape, except there is nothing
// to poll here: every counter is updated synchronously by the session
// and forwarding code as frames and bytes cross the wire, and Collect only
// reads the accumulated totals.
type Metrics struct {
	mu       sync.Mutex
	byDir    map[direction]*counters
	sessions map[int64]struct{}

	framesDesc    *prometheus.Desc
	checksumDesc  *prometheus.Desc
	bytesDesc     *prometheus.Desc
	sessionsDesc  *prometheus.Desc
	errorCallback func(error)
}

// NewMetrics returns a Metrics collector with all counters at zero.
// errorCallback, if non-nil, is invoked when Collect encounters an
// inconsistency it can only log, not fail on (Collect never returns an
// error; prometheus.Collector has no error return).
func NewMetrics(constLabels prometheus.Labels, errorCallback func(error)) *Metrics {
	m := &Metrics{
		byDir: map[direction]*counters{
			directionClientToServer: {},
			directionServerToClient: {},
		},
		sessions:      make(map[int64]struct{}),
		errorCallback: errorCallback,
		framesDesc: prometheus.NewDesc(
			"gdbproxy_frames_parsed_total",
			"Number of RSP packet and notification frames parsed, by direction.",
			[]string{"direction"}, constLabels,
		),
		checksumDesc: prometheus.NewDesc(
			"gdbproxy_checksum_failures_total",
			"Number of RSP frames with an invalid checksum, by direction.",
			[]string{"direction"}, constLabels,
		),
		bytesDesc: prometheus.NewDesc(
			"gdbproxy_bytes_forwarded_total",
			"Bytes forwarded verbatim to the opposite socket, by direction.",
			[]string{"direction"}, constLabels,
		),
		sessionsDesc: prometheus.NewDesc(
			"gdbproxy_active_sessions",
			"Number of sessions currently open.",
			nil, constLabels,
		),
	}

	return m
}

func (m *Metrics) Describe(descs chan<- *prometheus.Desc) {
	descs <- m.framesDesc
	descs <- m.checksumDesc
	descs <- m.bytesDesc
	descs <- m.sessionsDesc
}

func (m *Metrics) Collect(metrics chan<- prometheus.Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for dir, c := range m.byDir {
		metrics <- prometheus.MustNewConstMetric(m.framesDesc, prometheus.CounterValue, float64(c.framesParsed), string(dir))
		metrics <- prometheus.MustNewConstMetric(m.checksumDesc, prometheus.CounterValue, float64(c.checksumFailures), string(dir))
		metrics <- prometheus.MustNewConstMetric(m.bytesDesc, prometheus.CounterValue, float64(c.bytesForwarded), string(dir))
	}

	metrics <- prometheus.MustNewConstMetric(m.sessionsDesc, prometheus.GaugeValue, float64(len(m.sessions)))
}

// SessionOpened records a newly accepted session.
func (m *Metrics) SessionOpened(sessionID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = struct{}{}
}

// SessionClosed records the end of a session.
func (m *Metrics) SessionClosed(sessionID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
}

// FrameParsed increments the per-direction frame counter and, if the
// frame's checksum was invalid, the per-direction checksum-failure counter.
func (m *Metrics) FrameParsed(dir direction, validChecksum bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byDir[dir]
	if !ok {
		if m.errorCallback != nil {
			m.errorCallback(unknownDirectionError(dir))
		}

		return
	}

	c.framesParsed++

	if !validChecksum {
		c.checksumFailures++
	}
}

// BytesForwarded increments the per-direction byte counter.
func (m *Metrics) BytesForwarded(dir direction, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byDir[dir]
	if !ok {
		if m.errorCallback != nil {
			m.errorCallback(unknownDirectionError(dir))
		}

		return
	}

	c.bytesForwarded += uint64(n)
}

type unknownDirectionError direction

func (e unknownDirectionError) Error() string {
	return "proxy: unknown direction label: " + string(e)
}
