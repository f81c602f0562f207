package proxy

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/relaygdb/gdbproxy/internal/rsp"
	"github.com/sirupsen/logrus"
)

// readBufferSize bounds each Read call on either socket half. RSP frames
// are small; this is generous headroom for qXfer chunks and binary memory
// transfers without letting one slow peer pin an unbounded buffer.
const readBufferSize = 4096

// Session is the ephemeral object paired with one accepted client
// connection, per §3: a monotonic id, two socket halves, two independent
// parser and dissector instances (one per direction, per the two-dissector
// design discussed in DESIGN.md), and an optional append-only log
// sink. It is destroyed when either half closes.
type Session struct {
	ID            int64
	CorrelationID string

	client   *instrumentedConn
	upstream *instrumentedConn

	printer *Printer
	metrics *Metrics
	logger  *logrus.Entry
	logFile io.Closer

	closeOnce sync.Once
}

// NewSession wraps an already-accepted client connection and an already-
// dialed upstream connection into a Session. printer, metrics, logger and
// logFile may each be nil; a nil component is simply skipped.
func NewSession(id int64, correlationID string, client, upstream net.Conn, printer *Printer, metrics *Metrics, logger *logrus.Entry, logFile io.Closer) *Session {
	s := &Session{
		ID:            id,
		CorrelationID: correlationID,
		printer:       printer,
		metrics:       metrics,
		logger:        logger,
		logFile:       logFile,
	}

	s.client = wrapConn(client, nil)
	s.upstream = wrapConn(upstream, nil)

	if err := setNoDelay(client); err != nil && s.logger != nil {
		s.logger.WithError(err).Debug("setting TCP_NODELAY on client socket")
	}

	if err := setNoDelay(upstream); err != nil && s.logger != nil {
		s.logger.WithError(err).Debug("setting TCP_NODELAY on upstream socket")
	}

	return s
}

// Run forwards bytes in both directions until either side closes, then
// tears down the whole session. It blocks until both forwarding tasks have
// exited, matching §5's "session task spawns two forwarding tasks and
// awaits both".
func (s *Session) Run() {
	if s.metrics != nil {
		s.metrics.SessionOpened(s.ID)
	}

	defer func() {
		if s.metrics != nil {
			s.metrics.SessionClosed(s.ID)
		}

		if s.logFile != nil {
			s.logFile.Close()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		s.forward(s.client, s.upstream, directionClientToServer)
	}()

	go func() {
		defer wg.Done()
		s.forward(s.upstream, s.client, directionServerToClient)
	}()

	wg.Wait()
}

// forward copies bytes read from src to dst, feeding each read through a
// direction-scoped parser and dissector for display, until src yields an
// error (including EOF). On return it closes both halves, which is how
// cancellation reaches the sibling forwarding task: a closed socket makes
// its Read return immediately.
func (s *Session) forward(src, dst *instrumentedConn, dir direction) {
	defer s.closeBoth()

	parser := rsp.NewParser()
	dissector := rsp.NewDissector()

	buf := make([]byte, readBufferSize)

	for {
		n, err := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]

			if _, werr := dst.Write(chunk); werr != nil {
				s.logTransportError(dir, fmt.Errorf("writing to peer: %w", werr))
				return
			}

			if s.metrics != nil {
				s.metrics.BytesForwarded(dir, n)
			}

			s.report(dissector, parser.Feed(chunk), dir)
		}

		if err != nil {
			if err != io.EOF {
				s.logTransportError(dir, fmt.Errorf("reading: %w", err))
			}

			return
		}
	}
}

// report prints and counts every frame decoded from one Read's worth of
// bytes. Commands flow client->server; responses flow server->client.
func (s *Session) report(dissector *rsp.Dissector, frames []rsp.Frame, dir direction) {
	isResponse := dir == directionServerToClient

	for _, f := range frames {
		validChecksum := true
		if f.IsResponseCandidate() {
			validChecksum = f.ValidChecksum

			if s.metrics != nil {
				s.metrics.FrameParsed(dir, f.ValidChecksum)
			}
		}

		if s.printer == nil {
			continue
		}

		dissection := dissector.Dissect(f, isResponse)

		hexExcerpt := ""
		if s.printer.verbose {
			hexExcerpt = hexExcerptOf(f.Payload)
		}

		s.printer.PrintFrame(time.Now(), dir, string(f.Raw), dissection, validChecksum, hexExcerpt)
	}
}

// Close ends the session by closing both socket halves, which causes
// both forwarding tasks in Run to return. It is safe to call more than
// once and safe to call concurrently with Run.
func (s *Session) Close() {
	s.closeBoth()
}

func (s *Session) closeBoth() {
	s.closeOnce.Do(func() {
		s.client.Close()
		s.upstream.Close()
	})
}

func (s *Session) logTransportError(dir direction, err error) {
	if s.logger != nil {
		s.logger.WithField("direction", string(dir)).Warn(err)
	}

	if s.printer != nil {
		s.printer.PrintError(err.Error())
	}
}
