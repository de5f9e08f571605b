package config

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// logLevel backs the default logger so the level can change while running.
var logLevel = new(slog.LevelVar)

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	logLevel.Set(ParseLevel(cfg.Level))

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// WatchLogging re-applies the logging level whenever the config file
// changes. It returns immediately when no config file is in use; otherwise
// the watch lasts until ctx is done.
func WatchLogging(ctx context.Context, configFile string) {
	v := newViper(configFile)
	if err := v.ReadInConfig(); err != nil {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if ctx.Err() != nil {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			slog.Warn("ignoring invalid config change", "path", e.Name, "error", err)
			return
		}
		level := ParseLevel(cfg.Logging.Level)
		if level != logLevel.Level() {
			logLevel.Set(level)
			slog.Info("log level changed", "level", level.String())
		}
	})
	v.WatchConfig()

	slog.Debug("watching config file", "path", v.ConfigFileUsed())
}
