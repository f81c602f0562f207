//go:build linux || darwin

package proxy

import (
	"net"

	"github.com/higebu/netfd"
	"golang.org/x/sys/unix"
)

// setNoDelay disables Nagle's algorithm on conn's underlying fd so small
// RSP frames are not coalesced before reaching the wire; a debugger and
// its stub exchange many short command/response packets and batching
// them defeats the point of showing each one as it crosses the proxy.
func setNoDelay(conn net.Conn) error {
	if _, ok := conn.(*net.TCPConn); !ok {
		return nil
	}

	fd := netfd.GetFdFromConn(conn)

	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
}
