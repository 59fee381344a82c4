package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// configureLogger creates a logger with the level taken from --log-level,
// falling back to --verbose. Without either flag the logger is effectively
// silent so that scan output stays clean.
func configureLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	logLevel := logrus.PanicLevel

	if levelStr, _ := cmd.Flags().GetString("log-level"); levelStr != "" {
		parsed, err := logrus.ParseLevel(levelStr)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", levelStr)
		}
		logLevel = parsed
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = logrus.DebugLevel
	}

	logger := logrus.New()
	logger.SetLevel(logLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger, nil
}
