// Command gdbproxy is a transparent TCP proxy for the GDB Remote Serial
// Protocol: it forwards bytes verbatim between a debugger and a GDB/LLDB
// server while printing a colored, human-readable dissection of every
// frame that crosses the wire.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/relaygdb/gdbproxy/internal/proxy"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		listenAddr   string
		upstreamAddr string
		logDir       string
		verbose      bool
		noColor      bool
		metricsAddr  string
	)

	fs := pflag.NewFlagSet("gdbproxy", pflag.ContinueOnError)
	fs.StringVarP(&listenAddr, "listen", "l", "localhost:1234", "listen address")
	fs.StringVarP(&upstreamAddr, "server", "s", "", "upstream GDB server address (required)")
	fs.StringVarP(&logDir, "logdir", "d", "gdbproxy_logs", "log directory")
	fs.BoolVarP(&verbose, "verbose", "v", false, "include a hex excerpt of each packet payload")
	fs.BoolVar(&noColor, "no-color", false, "disable ANSI color")
	fs.StringVar(&metricsAddr, "metrics", "", "optional HOST:PORT to serve Prometheus metrics on")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		fmt.Fprintln(os.Stderr, err)

		return 2
	}

	if upstreamAddr == "" {
		fmt.Fprintln(os.Stderr, "gdbproxy: -s HOST:PORT is required")
		fs.Usage()

		return 2
	}

	if err := validateHostPort(listenAddr); err != nil {
		fmt.Fprintf(os.Stderr, "gdbproxy: -l %s\n", err)
		fs.Usage()

		return 2
	}

	if err := validateHostPort(upstreamAddr); err != nil {
		fmt.Fprintf(os.Stderr, "gdbproxy: -s %s\n", err)
		fs.Usage()

		return 2
	}

	childArgs := fs.Args()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	metrics := proxy.NewMetrics(nil, func(err error) {
		logger.WithError(err).Warn("metrics collector")
	})

	server := proxy.NewServer(proxy.Config{
		ListenAddr:   listenAddr,
		UpstreamAddr: upstreamAddr,
		LogDir:       logDir,
		Verbose:      verbose,
		NoColor:      noColor,
		MetricsAddr:  metricsAddr,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)

	go func() {
		serverErr <- server.Run(ctx)
	}()

	if len(childArgs) > 0 {
		return runWithChild(ctx, logger, childArgs, serverErr, stop)
	}

	select {
	case <-ctx.Done():
		<-serverErr

		return 0
	case err := <-serverErr:
		if err != nil {
			logger.WithError(err).Error("server stopped")

			return 1
		}

		return 0
	}
}

// validateHostPort reports whether addr parses as a HOST:PORT pair, per
// §7's "bad HOST:PORT ... print usage and exit non-zero before any I/O".
func validateHostPort(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid HOST:PORT %q: %w", addr, err)
	}

	if port == "" {
		return fmt.Errorf("invalid HOST:PORT %q: missing port", addr)
	}

	return nil
}

// runWithChild runs CMD ARGS alongside the proxy, per §6's trailing
// "-- CMD ARGS..." form, and exits with the child's exit code.
func runWithChild(ctx context.Context, logger *logrus.Logger, args []string, serverErr <-chan error, stop context.CancelFunc) int {
	cmdColor := color.New(color.FgMagenta)
	fmt.Fprintf(os.Stdout, "%s Starting: %s\n\n", cmdColor.Sprint("[cmd]"), strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		logger.WithError(err).Error("starting child process")
		stop()
		<-serverErr

		return 1
	}

	err := cmd.Wait()
	stop()
	<-serverErr

	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	logger.WithError(err).Error("running child process")

	return 1
}
