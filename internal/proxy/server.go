package proxy

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// Config collects the proxy shell's external interface, per §6: a listen
// address, the required upstream GDB server address, a log directory, a
// verbosity flag and an optional metrics listen address.
type Config struct {
	ListenAddr   string
	UpstreamAddr string
	LogDir       string
	Verbose      bool
	NoColor      bool
	MetricsAddr  string
}

// Server owns the accept loop: it binds ListenAddr, and for every accepted
// connection dials UpstreamAddr and hands the pair to a new Session. Session
// ids come from a counter owned by the Server, incremented atomically as
// each accepted connection is handled.
type Server struct {
	cfg     Config
	logger  *logrus.Logger
	metrics *Metrics

	nextID atomic.Int64

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewServer constructs a Server. logger must not be nil; metrics may be
// nil, in which case no Prometheus counters are updated.
func NewServer(cfg Config, logger *logrus.Logger, metrics *Metrics) *Server {
	setNoColor(cfg.NoColor)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[int64]*Session),
	}
}

// Run binds the listen address and accepts connections until ctx is
// canceled. A canceled context closes the listener, which ends the accept
// loop, and force-closes every tracked session (closeAllSessions), whose
// forwarding tasks then return as their sockets close; Run waits for all
// of them to finish before returning.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %q: %w", s.cfg.ListenAddr, err)
	}

	if s.cfg.MetricsAddr != "" && s.metrics != nil {
		s.startMetricsServer(ctx)
	}

	go func() {
		<-ctx.Done()
		listener.Close()
		s.closeAllSessions()
	}()

	s.logger.WithFields(logrus.Fields{
		"listen":   s.cfg.ListenAddr,
		"upstream": s.cfg.UpstreamAddr,
	}).Info("accepting connections")

	var wg sync.WaitGroup

	for {
		conn, err := listener.Accept()
		if err != nil {
			wg.Wait()

			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("accepting connection: %w", err)
		}

		wg.Add(1)

		go func() {
			defer wg.Done()
			s.handleConn(conn)
		}()
	}
}

// handleConn dials the upstream server for one accepted client connection
// and runs a Session over the pair. Errors dialing upstream are logged and
// the client connection is closed; they never reach the accept loop, per
// §7's propagation rule.
func (s *Server) handleConn(client net.Conn) {
	id := s.nextID.Add(1)
	correlationID := xid.New().String()

	entry := s.logger.WithFields(logrus.Fields{
		"session_id":     id,
		"correlation_id": correlationID,
	})

	upstream, err := net.Dial("tcp", s.cfg.UpstreamAddr)
	if err != nil {
		entry.WithError(err).Error("dialing upstream")
		client.Close()

		return
	}

	var logFile *os.File
	if s.cfg.LogDir != "" {
		f, ferr := openSessionLog(s.cfg.LogDir, id, time.Now())
		if ferr != nil {
			entry.WithError(ferr).Warn("opening session log file")
		} else {
			logFile = f
		}
	}

	var logWriter io.Writer
	var logCloser io.Closer
	if logFile != nil {
		logWriter = logFile
		logCloser = logFile
	}

	printer := NewPrinter(os.Stdout, logWriter, s.cfg.Verbose)

	session := NewSession(id, correlationID, client, upstream, printer, s.metrics, entry, logCloser)

	s.addSession(id, session)
	defer s.removeSession(id)

	entry.Info("session opened")
	session.Run()
	entry.Info("session closed")
}

func (s *Server) addSession(id int64, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = sess
}

func (s *Server) removeSession(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// ActiveSessionCount reports how many sessions are currently being served.
func (s *Server) ActiveSessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// closeAllSessions force-closes every currently tracked session, per §5's
// "a parent-level cancellation (shutdown) propagates to all sessions".
func (s *Server) closeAllSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		sess.Close()
	}
}

// startMetricsServer serves s.metrics on cfg.MetricsAddr until ctx is
// canceled. Failures are logged, not fatal: the proxy still forwards
// traffic without a working metrics endpoint.
func (s *Server) startMetricsServer(ctx context.Context) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(s.metrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	httpServer := &http.Server{Addr: s.cfg.MetricsAddr, Handler: mux}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("metrics server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()
}
