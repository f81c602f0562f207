// Package rsp implements the GDB Remote Serial Protocol: an incremental
// byte-stream parser (Parser) and a context-aware payload decoder
// (Dissector). Neither component interprets RSP to the point of
// simulating a target; they only frame and describe what crosses the wire.
package rsp

import "fmt"

// Framing bytes, per the RSP presentation layer.
const (
	ByteAck        = '+'
	ByteNack       = '-'
	ByteInterrupt  = 0x03
	BytePacketOpen = '$'
	ByteNotifyOpen = '%'
	ByteEnd        = '#'
	ByteEscape     = '}'
	EscapeXOR      = 0x20
)

// signalNames maps POSIX signal numbers 1..31 to their conventional names,
// as referenced by the C/S/T RSP packets.
var signalNames = map[int]string{
	1: "SIGHUP", 2: "SIGINT", 3: "SIGQUIT", 4: "SIGILL",
	5: "SIGTRAP", 6: "SIGABRT", 7: "SIGBUS", 8: "SIGFPE",
	9: "SIGKILL", 10: "SIGUSR1", 11: "SIGSEGV", 12: "SIGUSR2",
	13: "SIGPIPE", 14: "SIGALRM", 15: "SIGTERM", 16: "SIGSTKFLT",
	17: "SIGCHLD", 18: "SIGCONT", 19: "SIGSTOP", 20: "SIGTSTP",
	21: "SIGTTIN", 22: "SIGTTOU", 23: "SIGURG", 24: "SIGXCPU",
	25: "SIGXFSZ", 26: "SIGVTALRM", 27: "SIGPROF", 28: "SIGWINCH",
	29: "SIGIO", 30: "SIGPWR", 31: "SIGSYS",
}

// SignalName returns the POSIX name for a signal number, or a generic
// "signal <n>" label for numbers outside the known table.
func SignalName(n int) string {
	if name, ok := signalNames[n]; ok {
		return name
	}
	return fmt.Sprintf("signal %d", n)
}

// breakpointKinds maps the Z/z packet type digit to a human label.
var breakpointKinds = map[byte]string{
	'0': "software breakpoint",
	'1': "hardware breakpoint",
	'2': "write watchpoint",
	'3': "read watchpoint",
	'4': "access watchpoint",
}

// BreakpointKindName returns the label for a Z/z type digit, or "" if
// the digit is out of range.
func BreakpointKindName(kind byte) string {
	return breakpointKinds[kind]
}

// vContOpNames maps a vCont action letter to a description.
var vContOpNames = map[byte]string{
	'c': "continue",
	'C': "continue with signal",
	's': "step",
	'S': "step with signal",
	't': "stop",
	'r': "range step",
}
