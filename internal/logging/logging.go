package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup initializes a zerolog.Logger based on the requested format.
// format can be "text" (human-friendly console) or "json" (structured).
// When logFile is set, every event is also appended to that file in plain
// text; the returned Closer releases it.
func Setup(format, logFile string) (zerolog.Logger, io.Closer, error) {
	var console io.Writer = os.Stderr
	if format == "text" {
		console = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}
	if logFile == "" {
		return zerolog.New(console).With().Timestamp().Logger(), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return zerolog.Nop(), nil, err
	}
	file := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
	}
	w := zerolog.MultiLevelWriter(console, zerolog.ConsoleWriter{
		Out:        file,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	})
	return zerolog.New(w).With().Timestamp().Logger(), file, nil
}
