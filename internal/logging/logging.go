// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Initialize installs a tint handler at the requested level as the default
// logger. Level names follow slog ("debug", "info", "warn", "error").
func Initialize(levelName string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("could not parse log level: %v", err)
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}
