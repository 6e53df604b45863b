// Package logging configures the process-wide slog default logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var logFile *os.File

// Init installs the default logger. Output goes to stderr, and is
// additionally teed to logFilePath when logToFile is set.
func Init(levelStr, formatStr string, logToFile bool, logFilePath string) error {
	var out io.Writer = os.Stderr

	if logToFile {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		logFile = file
		out = io.MultiWriter(os.Stderr, file)
	}

	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(formatStr) == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// Close releases the log file if one was opened.
func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
