//go:build windows

package proxy

import "net"

// setNoDelay uses net.TCPConn's portable SetNoDelay on platforms where the
// raw-fd/setsockopt path used on Linux and Darwin isn't wired up.
func setNoDelay(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	return tcpConn.SetNoDelay(true)
}
