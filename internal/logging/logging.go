// Package logging builds the logrus logger shared by the CLI commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options selects level and output format.
type Options struct {
	Level  string // trace, debug, info, warn, error
	Format string // text or json
	// Timestamps are off by default: the hosting harness stamps each line
	// on ingestion.
	Timestamps bool
	Out        io.Writer // defaults to stderr
}

// New returns a configured logger.
func New(opts Options) (*logrus.Logger, error) {
	lvl := logrus.InfoLevel
	if opts.Level != "" {
		var err error
		lvl, err = logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	l := logrus.New()
	l.SetLevel(lvl)
	if opts.Out != nil {
		l.SetOutput(opts.Out)
	} else {
		l.SetOutput(os.Stderr)
	}

	switch strings.ToLower(opts.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: !opts.Timestamps,
			FullTimestamp:    opts.Timestamps,
			DisableColors:    true,
		})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{
			DisableTimestamp: !opts.Timestamps,
		})
	default:
		return nil, fmt.Errorf("log format must be text or json, got %q", opts.Format)
	}
	return l, nil
}
