package gpu

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

func init() {
	switch strings.ToUpper(os.Getenv("GLARRAY_LOG_LEVEL")) {
	case "OFF":
		slog.SetLogLoggerLevel(slog.LevelError + 4)
	case "ERROR":
		slog.SetLogLoggerLevel(slog.LevelError)
	case "WARN":
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "INFO":
		slog.SetLogLoggerLevel(slog.LevelInfo)
	case "DEBUG":
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
}

// Config holds the settings a Context is usually created with.
type Config struct {
	// Name of the native backend, "soft" or "gl"
	Backend string

	GCMode GCMode
}

// ConfigFromEnv reads GLARRAY_BACKEND and GLARRAY_GC_MODE. The backend
// defaults to "soft", the gc mode to none.
func ConfigFromEnv() (Config, error) {
	conf := Config{
		Backend: strings.ToLower(os.Getenv("GLARRAY_BACKEND")),
	}

	if conf.Backend == "" {
		conf.Backend = "soft"
	}

	mode, err := ParseGCMode(os.Getenv("GLARRAY_GC_MODE"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GLARRAY_GC_MODE: %w", err)
	}

	conf.GCMode = mode

	return conf, nil
}
