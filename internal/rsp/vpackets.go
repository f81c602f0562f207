package rsp

import (
	"fmt"
	"strings"
)

// dissectV renders a "v"-prefixed command. RSP's v-packets have no common
// grammar; each is matched by its own literal or colon-delimited prefix,
// longest match first where one name prefixes another (vCont vs vCont?).
func dissectV(s string) string {
	switch {
	case s == "vCont?":
		return "Query supported vCont actions"
	case strings.HasPrefix(s, "vCont;"):
		return dissectVCont(strings.TrimPrefix(s, "vCont;"))
	case s == "vCont":
		return "Continue (no actions)"
	case strings.HasPrefix(s, "vKill;"):
		return dissectVKill(strings.TrimPrefix(s, "vKill;"))
	case strings.HasPrefix(s, "vRun;") || s == "vRun":
		return dissectVRun(strings.TrimPrefix(s, "vRun"))
	case strings.HasPrefix(s, "vAttach;"):
		return "Attach to process " + strings.TrimPrefix(s, "vAttach;")
	case s == "vStopped":
		return "Query next queued stop reply"
	case s == "vMustReplyEmpty":
		return "Reply-empty capability probe"
	case strings.HasPrefix(s, "vFile:"):
		return dissectVFile(strings.TrimPrefix(s, "vFile:"))
	case strings.HasPrefix(s, "vFlashErase:"):
		return dissectVFlashErase(strings.TrimPrefix(s, "vFlashErase:"))
	case strings.HasPrefix(s, "vFlashWrite:"):
		return dissectVFlashWrite(strings.TrimPrefix(s, "vFlashWrite:"))
	case s == "vFlashDone":
		return "Flash programming complete"
	}

	return "v-command: " + s
}

// dissectVCont renders the semicolon-separated action list of a vCont
// packet. Each action is a letter (optionally followed by a signal in
// hex for C/S) and an optional ":<thread-id>" scoping it to one thread;
// an action with no thread-id scoping applies to every other thread.
func dissectVCont(body string) string {
	actions := strings.Split(body, ";")

	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, dissectVContAction(a))
	}

	return "Continue with actions: " + strings.Join(parts, ", ")
}

func dissectVContAction(a string) string {
	if a == "" {
		return "(empty action)"
	}

	op := a[0]
	rest := a[1:]

	sigPart, threadPart, hasThread := cutByte(rest, ':')
	if !hasThread {
		sigPart = rest
	}

	name, known := vContOpNames[op]
	if !known {
		name = fmt.Sprintf("unknown action %q", string(op))
	}

	if (op == 'C' || op == 'S') && sigPart != "" {
		if sig, ok := parseHex(sigPart); ok {
			name = fmt.Sprintf("%s (%s)", name, SignalName(int(sig)))
		}
	}

	if hasThread && threadPart != "" {
		return fmt.Sprintf("%s on thread %s", name, threadPart)
	}

	return name + " on all other threads"
}

func dissectVKill(body string) string {
	pid, ok := parseHex(body)
	if !ok {
		return "Kill process: " + body
	}

	return fmt.Sprintf("Kill process %d", pid)
}

func dissectVRun(body string) string {
	body = strings.TrimPrefix(body, ";")
	if body == "" {
		return "Run program (use current executable and arguments)"
	}

	fields := strings.Split(body, ";")

	decoded := make([]string, 0, len(fields))
	for _, f := range fields {
		decoded = append(decoded, hexDecodeString(f))
	}

	if len(decoded) == 1 {
		return "Run program: " + decoded[0]
	}

	return fmt.Sprintf("Run program: %s (args: %s)", decoded[0], strings.Join(decoded[1:], " "))
}

// dissectVFile renders a vFile sub-operation. Paths are hex-encoded on
// the wire and are decoded back to text for display (open, stat, unlink,
// readlink, mkdir); the arguments of the other sub-operations, including
// pwrite's data, are shown as received.
func dissectVFile(body string) string {
	op, rest, ok := cutByte(body, ':')
	if !ok {
		return "File operation: " + body
	}

	switch op {
	case "open":
		path, flags, _ := cutByte(rest, ',')
		return fmt.Sprintf("Open file %q (flags %s)", hexDecodeString(path), flags)
	case "close":
		return "Close file descriptor " + rest
	case "pread":
		return "Read from file descriptor " + rest
	case "pwrite":
		return "Write to file descriptor " + rest
	case "fstat":
		return "Stat file descriptor " + rest
	case "stat":
		return fmt.Sprintf("Stat file %q", hexDecodeString(rest))
	case "unlink":
		return fmt.Sprintf("Delete file %q", hexDecodeString(rest))
	case "readlink":
		return fmt.Sprintf("Read link %q", hexDecodeString(rest))
	case "mkdir":
		path, mode, _ := cutByte(rest, ',')
		return fmt.Sprintf("Create directory %q (mode %s)", hexDecodeString(path), mode)
	case "setfs":
		return "Set filesystem context for pid " + rest
	}

	return "File operation " + op + ": " + rest
}

func dissectVFlashErase(body string) string {
	addr, length, ok := splitAddrLength(body)
	if !ok {
		return "Erase flash: " + body
	}

	return fmt.Sprintf("Erase %d bytes of flash at 0x%s", length, addr)
}

func dissectVFlashWrite(body string) string {
	addr, _, ok := cutByte(body, ':')
	if !ok {
		return "Write flash: " + body
	}

	return "Write flash at 0x" + addr
}
