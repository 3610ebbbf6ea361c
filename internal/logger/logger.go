package logger

import (
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// New returns a slog.Logger writing to w. Format "json" uses the standard
// JSON handler; anything else uses charm's human-readable text handler.
func New(w io.Writer, level, format string) *slog.Logger {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(level)); err != nil {
		slogLevel = slog.LevelInfo
	}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel}))
	}

	charmLevel, err := charmlog.ParseLevel(level)
	if err != nil {
		charmLevel = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           charmLevel,
	})
	return slog.New(handler)
}
