package rsp

import (
	"fmt"
	"strings"
)

// dissectCommand renders a command (non-response) payload. It recognizes
// the canonical syntax for each prefix and falls back to a passthrough
// label when the pattern does not match; dissection never fails.
func dissectCommand(payload []byte) string {
	s := string(payload)

	switch s[0] {
	case 'm':
		return dissectReadMemory(s[1:], "")
	case 'M':
		return dissectWriteMemory(s[1:], "")
	case 'x':
		return dissectReadMemory(s[1:], "binary ")
	case 'X':
		return dissectWriteMemory(s[1:], "binary ")
	case 'g':
		if s == "g" {
			return "Read all registers"
		}
	case 'G':
		return fmt.Sprintf("Write all registers (%d hex chars)", len(s)-1)
	case 'p':
		return dissectReadRegister(s[1:])
	case 'P':
		return dissectWriteRegister(s[1:])
	case 'c':
		return dissectContinueStep(s, "c", "Continue")
	case 's':
		return dissectContinueStep(s, "s", "Single step")
	case 'C':
		return dissectContinueStepSignal(s, "C", "Continue")
	case 'S':
		return dissectContinueStepSignal(s, "S", "Step")
	case 'Z':
		return dissectBreakpoint(s, "Insert")
	case 'z':
		return dissectBreakpoint(s, "Remove")
	case '?':
		if s == "?" {
			return "Query halt reason"
		}
	case 'k':
		if s == "k" {
			return "Kill request"
		}
	case 'D':
		if s == "D" {
			return "Detach"
		}
	case '!':
		if s == "!" {
			return "Enable extended mode"
		}
	case 'R':
		return "Restart program"
	case 'T':
		return dissectThreadAlive(s[1:])
	case 'H':
		return dissectSetThread(s[1:])
	case 'v':
		return dissectV(s)
	case 'q', 'Q':
		return dissectQ(s)
	}

	return "Command: " + s
}

func dissectReadMemory(body, binary string) string {
	addr, length, ok := splitAddrLength(body)
	if !ok {
		return "Read memory: " + body
	}

	return fmt.Sprintf("Read %d %sbytes from 0x%s", length, binary, addr)
}

func dissectWriteMemory(body, binary string) string {
	hdr, _, ok := cutByte(body, ':')
	if !ok {
		return "Write memory: " + body
	}

	addr, length, ok := splitAddrLength(hdr)
	if !ok {
		return "Write memory: " + body
	}

	return fmt.Sprintf("Write %d %sbytes to 0x%s", length, binary, addr)
}

// splitAddrLength parses "<A>,<L>" returning the address text as-is and
// the length as a decimal int. Addresses are displayed in their original
// hex form (0x-prefixed by the caller), lengths in decimal per spec.
func splitAddrLength(body string) (addr string, length uint64, ok bool) {
	a, l, found := cutByte(body, ',')
	if !found {
		return "", 0, false
	}

	n, hexOK := parseHex(l)
	if !hexOK || a == "" {
		return "", 0, false
	}

	return a, n, true
}

func dissectReadRegister(body string) string {
	n, ok := parseHex(body)
	if !ok {
		return "Read register: " + body
	}

	return fmt.Sprintf("Read register %d", n)
}

func dissectWriteRegister(body string) string {
	n, v, ok := cutByte(body, '=')
	if !ok {
		return "Write register: " + body
	}

	nv, okN := parseHex(n)
	if !okN {
		return "Write register: " + body
	}

	return fmt.Sprintf("Write register %d = 0x%s", nv, v)
}

func dissectContinueStep(s, prefix, label string) string {
	if s == prefix {
		return label
	}

	return fmt.Sprintf("%s at 0x%s", label, strings.TrimPrefix(s, prefix))
}

func dissectContinueStepSignal(s, prefix, label string) string {
	body := strings.TrimPrefix(s, prefix)

	sigPart, addrPart, hasAddr := cutByte(body, ';')
	if !hasAddr {
		sigPart = body
	}

	sig, ok := parseHex(sigPart)
	if !ok {
		return label + " with signal: " + body
	}

	name := SignalName(int(sig))
	if hasAddr && addrPart != "" {
		return fmt.Sprintf("%s with %s at 0x%s", label, name, addrPart)
	}

	return fmt.Sprintf("%s with %s", label, name)
}

func dissectBreakpoint(s, verb string) string {
	// [Z|z]<T>,<A>,<K>
	if len(s) < 2 {
		return verb + " breakpoint: " + s
	}

	rest := s[1:]

	parts := strings.SplitN(rest, ",", 3)
	if len(parts) < 2 || parts[0] == "" {
		return verb + " breakpoint: " + s
	}

	kindName := BreakpointKindName(parts[0][0])
	if kindName == "" {
		kindName = "breakpoint"
	}

	return fmt.Sprintf("%s %s at 0x%s", verb, kindName, parts[1])
}

func dissectThreadAlive(body string) string {
	if body == "" {
		return "Query thread status"
	}

	return "Query thread status: " + body
}

func dissectSetThread(body string) string {
	if body == "" {
		return "Set thread context"
	}

	op := body[0]
	rest := body[1:]

	opName := "for subsequent operations"
	switch op {
	case 'g':
		opName = "for general operations"
	case 'c':
		opName = "for continue/step"
	}

	return fmt.Sprintf("Set thread %s %s", rest, opName)
}

// cutByte splits s at the first occurrence of sep, reporting ok=false if
// sep is absent.
func cutByte(s string, sep byte) (before, after string, ok bool) {
	i := strings.IndexByte(s, sep)
	if i < 0 {
		return s, "", false
	}

	return s[:i], s[i+1:], true
}
