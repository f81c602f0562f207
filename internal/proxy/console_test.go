package proxy

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestPrintFrame_FormatAndLogMirror(t *testing.T) {
	setNoColor(true)

	var out, log bytes.Buffer
	p := NewPrinter(&out, &log, false)

	ts := time.Date(2026, 7, 31, 9, 2, 3, 123_000_000, time.UTC)
	p.PrintFrame(ts, directionClientToServer, "$g#67", "Read all registers", true, "")

	assert.Assert(t, strings.Contains(out.String(), "[09:02:03.123]"))
	assert.Assert(t, strings.Contains(out.String(), "<--"))
	assert.Assert(t, strings.Contains(out.String(), "$g#67"))
	assert.Assert(t, strings.Contains(out.String(), "Read all registers"))
	assert.Equal(t, out.String(), log.String())
}

func TestPrintFrame_BadChecksumAnnotated(t *testing.T) {
	setNoColor(true)

	var out bytes.Buffer
	p := NewPrinter(&out, nil, false)

	p.PrintFrame(time.Now(), directionServerToClient, "$OK#00", "OK", false, "")

	assert.Assert(t, strings.Contains(out.String(), "[bad checksum]"))
}

func TestPrintFrame_VerboseAppendsHexExcerpt(t *testing.T) {
	setNoColor(true)

	var out bytes.Buffer
	p := NewPrinter(&out, nil, true)

	p.PrintFrame(time.Now(), directionClientToServer, "$g#67", "Read all registers", true, "6768")

	assert.Assert(t, strings.Contains(out.String(), "Raw: 6768"))
}

func TestTruncateHex(t *testing.T) {
	short := "abcd"
	assert.Equal(t, truncateHex(short), short)

	long := strings.Repeat("ab", 40)
	got := truncateHex(long)
	assert.Assert(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, len([]rune(got)), 65)
}

func TestStripANSI(t *testing.T) {
	colored := "\x1b[36m<--\x1b[0m hello"
	assert.Equal(t, stripANSI(colored), "<-- hello")
}

func TestHexExcerptOf(t *testing.T) {
	assert.Equal(t, hexExcerptOf([]byte{0x67, 0x01}), "6701")
}
