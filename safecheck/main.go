package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"safeRestServer/checker"
	"safeRestServer/config"
	"safeRestServer/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(buildChecker).ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintln(os.Stderr, ee.msg)
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

// buildChecker wires the same lookups the server uses. Logs go to stderr
// so stdout stays parseable with --json.
func buildChecker(ctx context.Context, verbose bool) (urlChecker, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	level := "error"
	if verbose {
		level = cfg.LogLevel
	}
	log := logger.NewWithOutput(level, os.Stderr)
	if !verbose {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	chk, cleanup, err := checker.FromConfig(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return chk, cleanup, nil
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func fprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
