package cli

import (
	"io"
	"log/slog"

	"shotty/src/config"
)

// setupLogging installs a text slog handler on w as the default logger.
func setupLogging(w io.Writer, level string) error {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return err
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
	return nil
}
