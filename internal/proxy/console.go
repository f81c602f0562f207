package proxy

import (
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/fatih/color"
)

// arrowFor renders the direction marker used in the console output format:
// "<--" for client->server, "-->" for server->client.
func arrowFor(dir direction) string {
	if dir == directionClientToServer {
		return "<--"
	}

	return "-->"
}

var (
	arrowColor   = color.New(color.FgCyan)
	dissectColor = color.New(color.FgWhite)
	errorColor   = color.New(color.FgRed)
	badChecksum  = color.New(color.FgYellow)
)

// Printer renders per-packet protocol trace lines to stdout (colored,
// subject to color.NoColor) and, if set, an ANSI-stripped copy to a
// per-session log file. It is the "dedicated console writer" the ambient
// logging layer defers to for the packet transcript, distinct from the
// leveled operational logger.
type Printer struct {
	out     io.Writer
	log     io.Writer
	verbose bool
}

// NewPrinter returns a Printer writing to out (normally os.Stdout) and
// optionally mirroring an ANSI-stripped copy to log.
func NewPrinter(out io.Writer, log io.Writer, verbose bool) *Printer {
	return &Printer{out: out, log: log, verbose: verbose}
}

// PrintFrame renders one packet line per §6's console output format.
func (p *Printer) PrintFrame(ts time.Time, dir direction, rawOnWire string, dissection string, validChecksum bool, hexExcerpt string) {
	arrow := arrowColor.Sprint(arrowFor(dir))

	dissectionText := dissection
	if !validChecksum {
		dissectionText += " [bad checksum]"
	}

	line := fmt.Sprintf("[%s]   %s %s\n                     %s",
		ts.Format("15:04:05.000"), arrow, rawOnWire, colorizeDissection(dissectionText, validChecksum))

	if p.verbose && hexExcerpt != "" {
		line += fmt.Sprintf("\n                     Raw: %s", truncateHex(hexExcerpt))
	}

	fmt.Fprintln(p.out, line)

	if p.log != nil {
		fmt.Fprintln(p.log, stripANSI(line))
	}
}

// PrintError renders a red-prefixed transport error line, per §7's
// user-visibility requirement.
func (p *Printer) PrintError(detail string) {
	line := errorColor.Sprintf("Error: %s", detail)

	fmt.Fprintln(p.out, line)

	if p.log != nil {
		fmt.Fprintln(p.log, stripANSI(line))
	}
}

func colorizeDissection(s string, validChecksum bool) string {
	if !validChecksum {
		return badChecksum.Sprint(s)
	}

	return dissectColor.Sprint(s)
}

// truncateHex truncates a hex excerpt string to 64 hex characters,
// appending an ellipsis if it was longer.
func truncateHex(s string) string {
	const maxChars = 64

	if len(s) <= maxChars {
		return s
	}

	return s[:maxChars] + "…"
}

// hexExcerptOf renders payload as a hex string for the verbose "Raw:" line.
func hexExcerptOf(payload []byte) string {
	return hex.EncodeToString(payload)
}

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// stripANSI removes color escape codes, used when mirroring a console
// line into a log file (§6: "Lines are ANSI-stripped copies of stdout
// lines").
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// setNoColor toggles fatih/color's global switch, honoring --no-color.
func setNoColor(disabled bool) {
	color.NoColor = disabled
}
