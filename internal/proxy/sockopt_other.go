//go:build !(linux || darwin || windows)

package proxy

import "net"

// setNoDelay is a no-op on platforms with no wired-up fast path; the proxy
// still functions, just without the TCP_NODELAY hint.
func setNoDelay(conn net.Conn) error {
	return nil
}
