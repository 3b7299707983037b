package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/g960059/ormlite"
)

func openConn(ctx context.Context) (*ormlite.Connection, error) {
	if dir := filepath.Dir(flagDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	opts := ormlite.DefaultOpenOptions()
	if flagVerbose {
		opts.TraceEnabled = true
		opts.TimeExecutionEnabled = true
		opts.Tracer = func(event ormlite.TraceEvent) {
			log.Debug("statement", "sql", event.SQL, "duration", event.Duration, "err", event.Err)
		}
	}
	return ormlite.Open(ctx, flagDBPath, opts)
}
