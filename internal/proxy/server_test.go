package proxy

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gotest.tools/v3/assert"
)

func TestServer_ForwardsAcceptedConnectionToUpstream(t *testing.T) {
	upstreamListener, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NilError(t, err)
	defer upstreamListener.Close()

	upstreamConnCh := make(chan net.Conn, 1)
	go func() {
		conn, err := upstreamListener.Accept()
		if err == nil {
			upstreamConnCh <- conn
		}
	}()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	server := NewServer(Config{
		ListenAddr:   "127.0.0.1:0",
		UpstreamAddr: upstreamListener.Addr().String(),
	}, logger, nil)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NilError(t, err)
	listener.Close()

	server.cfg.ListenAddr = listener.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Run(ctx)
	}()

	var client net.Conn
	for i := 0; i < 50; i++ {
		client, err = net.Dial("tcp", server.cfg.ListenAddr)
		if err == nil {
			break
		}

		time.Sleep(10 * time.Millisecond)
	}
	assert.NilError(t, err)
	defer client.Close()

	_, err = client.Write([]byte("$g#67"))
	assert.NilError(t, err)

	var upstreamConn net.Conn
	select {
	case upstreamConn = <-upstreamConnCh:
	case <-time.After(2 * time.Second):
		t.Fatal("upstream never accepted a connection")
	}
	defer upstreamConn.Close()

	buf := make([]byte, 16)
	n, err := upstreamConn.Read(buf)
	assert.NilError(t, err)
	assert.Equal(t, string(buf[:n]), "$g#67")

	cancel()

	select {
	case err := <-serverDone:
		assert.NilError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server.Run did not return after cancellation")
	}
}

func TestServer_ActiveSessionCountTracksLifecycle(t *testing.T) {
	server := &Server{sessions: make(map[int64]*Session)}

	assert.Equal(t, server.ActiveSessionCount(), 0)

	server.addSession(1, &Session{})
	assert.Equal(t, server.ActiveSessionCount(), 1)

	server.removeSession(1)
	assert.Equal(t, server.ActiveSessionCount(), 0)
}
