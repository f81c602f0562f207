package proxy

import (
	"bytes"
	"net"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestSession_ForwardsBytesVerbatimAndDissects(t *testing.T) {
	setNoColor(true)

	client, clientPeer := net.Pipe()
	upstream, upstreamPeer := net.Pipe()

	var out bytes.Buffer
	printer := NewPrinter(&out, nil, false)
	metrics := NewMetrics(nil, nil)

	sess := NewSession(1, "corr-1", client, upstream, printer, metrics, nil, nil)

	done := make(chan struct{})
	go func() {
		sess.Run()
		close(done)
	}()

	go func() {
		_, _ = clientPeer.Write([]byte("$g#67"))
	}()

	buf := make([]byte, 16)
	n, err := upstreamPeer.Read(buf)
	assert.NilError(t, err)
	assert.Equal(t, string(buf[:n]), "$g#67")

	go func() {
		_, _ = upstreamPeer.Write([]byte("$00#00"))
	}()

	buf2 := make([]byte, 16)
	n2, err := clientPeer.Read(buf2)
	assert.NilError(t, err)
	assert.Equal(t, string(buf2[:n2]), "$00#00")

	clientPeer.Close()
	upstreamPeer.Close()

	<-done

	assert.Assert(t, strings.Contains(out.String(), "Read all registers"))
}

func TestSession_ClosingClientEndsUpstreamForward(t *testing.T) {
	client, clientPeer := net.Pipe()
	upstream, upstreamPeer := net.Pipe()
	defer upstreamPeer.Close()

	sess := NewSession(2, "corr-2", client, upstream, nil, nil, nil, nil)

	done := make(chan struct{})
	go func() {
		sess.Run()
		close(done)
	}()

	clientPeer.Close()

	<-done

	_, err := upstreamPeer.Write([]byte("x"))
	assert.Assert(t, err != nil)
}
