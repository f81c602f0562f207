package proxy

import (
	"net"
	"time"
)

// instrumentedConn wraps a net.Conn, tracking byte counts and the first/last
// read and write timestamps across its lifetime. It is adapted from the
// connection-wrapping pattern used to gather per-connection statistics for
// TCP sockets: the fields it tracks here are simpler (no kernel tcp_info),
// since this proxy has no use for congestion-control internals, but the
// wrap-and-track shape is the same.
type instrumentedConn struct {
	net.Conn

	openedAt time.Time
	closedAt time.Time

	firstRxAt time.Time
	lastRxAt  time.Time
	firstTxAt time.Time
	lastTxAt  time.Time

	rxBytes int64
	txBytes int64
	rxErr   error
	txErr   error

	onClose func(*instrumentedConn)
}

// wrapConn returns conn wrapped with byte/timestamp tracking. onClose, if
// non-nil, is invoked once when Close is called, after closedAt is set, so
// the caller can emit a final summary line.
func wrapConn(conn net.Conn, onClose func(*instrumentedConn)) *instrumentedConn {
	return &instrumentedConn{
		Conn:     conn,
		openedAt: time.Now(),
		onClose:  onClose,
	}
}

func (c *instrumentedConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)

	if n > 0 {
		ts := time.Now()
		if c.firstRxAt.IsZero() {
			c.firstRxAt = ts
		}

		c.lastRxAt = ts
		c.rxBytes += int64(n)
	}

	if err != nil {
		if netErr, ok := err.(net.Error); !ok || !netErr.Timeout() {
			c.rxErr = err
		}
	}

	return n, err
}

func (c *instrumentedConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)

	if n > 0 {
		ts := time.Now()
		if c.firstTxAt.IsZero() {
			c.firstTxAt = ts
		}

		c.lastTxAt = ts
		c.txBytes += int64(n)
	}

	if err != nil {
		if netErr, ok := err.(net.Error); !ok || !netErr.Timeout() {
			c.txErr = err
		}
	}

	return n, err
}

func (c *instrumentedConn) Close() error {
	c.closedAt = time.Now()
	err := c.Conn.Close()

	if c.onClose != nil {
		c.onClose(c)
	}

	return err
}

// duration returns how long the connection was open. If it is still open,
// it returns the elapsed time so far.
func (c *instrumentedConn) duration() time.Duration {
	end := c.closedAt
	if end.IsZero() {
		end = time.Now()
	}

	return end.Sub(c.openedAt)
}
