package rsp

import (
	"fmt"
	"strings"
)

// qXferObjects maps a qXfer object keyword to a display label.
var qXferObjects = map[string]string{
	"features":       "target description",
	"memory-map":     "memory map",
	"threads":        "thread list",
	"libraries":      "library list",
	"libraries-svr4": "SVR4 library list",
	"auxv":           "auxiliary vector",
	"exec-file":      "executable file name",
	"osdata":         "OS data",
	"siginfo":        "signal info",
	"fdpic":          "FDPIC loadmap",
}

// qNames maps a fixed q-query (no arguments, or handled wholesale) to a
// display label.
var qNames = map[string]string{
	"qAttached":        "Query whether attached to an existing process",
	"qC":               "Query current thread id",
	"qfThreadInfo":     "Query first batch of thread ids",
	"qsThreadInfo":     "Query next batch of thread ids",
	"qOffsets":         "Query section load offsets",
	"qTStatus":         "Query trace status",
	"qHostInfo":        "Query host information",
	"qProcessInfo":     "Query process information",
	"qSymbol::":        "Notify: no further symbol lookups needed",
	"QStartNoAckMode":  "Request to disable acknowledgement mode",
	"QNonStop:1":       "Enable non-stop mode",
	"QNonStop:0":       "Disable non-stop mode",
	"QThreadEvents:1":  "Enable thread create/exit events",
	"QThreadEvents:0":  "Disable thread create/exit events",
	"QCatchSyscalls:0": "Disable syscall catching",
}

// dissectQ renders a "q" or "Q" prefixed query/set command.
func dissectQ(s string) string {
	if name, ok := qNames[s]; ok {
		return name
	}

	switch {
	case strings.HasPrefix(s, "qSupported"):
		return dissectQSupported(s)
	case strings.HasPrefix(s, "qXfer:"):
		return dissectQXfer(strings.TrimPrefix(s, "qXfer:"))
	case strings.HasPrefix(s, "qRcmd,"):
		return "Monitor command: " + hexDecodeString(strings.TrimPrefix(s, "qRcmd,"))
	case strings.HasPrefix(s, "qSymbol:"):
		return dissectQSymbol(strings.TrimPrefix(s, "qSymbol:"))
	case strings.HasPrefix(s, "qSearch:memory:"):
		return "Search memory: " + strings.TrimPrefix(s, "qSearch:memory:")
	case strings.HasPrefix(s, "qThreadExtraInfo,"):
		return "Query extra info for thread " + strings.TrimPrefix(s, "qThreadExtraInfo,")
	case strings.HasPrefix(s, "qGetTLSAddr:"):
		return dissectQGetTLSAddr(strings.TrimPrefix(s, "qGetTLSAddr:"))
	case strings.HasPrefix(s, "qRegisterInfo"):
		return "Query register info: " + strings.TrimPrefix(s, "qRegisterInfo")
	case strings.HasPrefix(s, "qMemoryRegionInfo:"):
		return "Query memory region info at 0x" + strings.TrimPrefix(s, "qMemoryRegionInfo:")
	case strings.HasPrefix(s, "QPassSignals:"):
		return "Pass signals: " + strings.TrimPrefix(s, "QPassSignals:")
	case strings.HasPrefix(s, "QProgramSignals:"):
		return "Deliver signals: " + strings.TrimPrefix(s, "QProgramSignals:")
	case strings.HasPrefix(s, "QSetWorkingDir:"):
		return "Set working directory: " + hexDecodeString(strings.TrimPrefix(s, "QSetWorkingDir:"))
	case strings.HasPrefix(s, "QEnvironmentHexEncoded:"):
		return "Set environment variable: " + hexDecodeString(strings.TrimPrefix(s, "QEnvironmentHexEncoded:"))
	case s == "QEnvironmentReset":
		return "Reset environment"
	case s == "QDisableRandomization:1":
		return "Disable address space randomization"
	case s == "QDisableRandomization:0":
		return "Enable address space randomization"
	}

	return "Query: " + s
}

func dissectQSupported(s string) string {
	rest := strings.TrimPrefix(s, "qSupported")
	rest = strings.TrimPrefix(rest, ":")

	if rest == "" {
		return "Query supported features"
	}

	return "Query supported features, client offers: " + strings.ReplaceAll(rest, ";", ", ")
}

// dissectQXfer renders "object:read|write:annex:offset,length" or the
// write form "object:write:annex:offset:data".
func dissectQXfer(rest string) string {
	fields := strings.SplitN(rest, ":", 4)
	if len(fields) < 4 {
		return "Transfer object: " + rest
	}

	object, verb, annex, tail := fields[0], fields[1], fields[2], fields[3]

	label, ok := qXferObjects[object]
	if !ok {
		label = object
	}

	annexPart := ""
	if annex != "" {
		annexPart = fmt.Sprintf(" (annex %q)", annex)
	}

	switch verb {
	case "read":
		return fmt.Sprintf("Read %s%s, range %s", label, annexPart, tail)
	case "write":
		offset, _, _ := cutByte(tail, ':')
		return fmt.Sprintf("Write %s%s at offset %s", label, annexPart, offset)
	}

	return fmt.Sprintf("Transfer %s%s", label, annexPart)
}

func dissectQSymbol(body string) string {
	if body == "" {
		return "Query symbol (none pending)"
	}

	name, addr, ok := cutByte(body, ':')
	if !ok || addr == "" {
		return "Request symbol lookup: " + hexDecodeString(body)
	}

	return fmt.Sprintf("Symbol %q resolved to 0x%s", hexDecodeString(addr), name)
}

func dissectQGetTLSAddr(body string) string {
	parts := strings.SplitN(body, ",", 3)
	if len(parts) != 3 {
		return "Get TLS address: " + body
	}

	return fmt.Sprintf("Get TLS address: offset 0x%s, link map 0x%s, thread %s", parts[0], parts[1], parts[2])
}
