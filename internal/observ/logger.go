package observ

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs the global logger: human-readable console output on
// stderr plus, when logFile is set, the same lines appended to that file.
// Every line carries the run_id of this invocation.
func InitLogger(level, logFile string) zerolog.Logger {
	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}}
	if logFile != "" {
		// #nosec G302 G304 -- user-selected log file
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v, using stderr only\n", logFile, err)
		} else {
			writers = append(writers, file)
		}
	}

	lvl := ParseLogLevel(level)
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(io.MultiWriter(writers...)).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()

	log.Debug().Str("level", lvl.String()).Str("file", logFile).Msg("logger initialized")
	return log.Logger
}

// ParseLogLevel maps a level name to zerolog; unknown names mean info.
func ParseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
