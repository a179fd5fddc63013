// Package logging строит корневой логгер сервиса поверх hclog.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New создаёт корневой логгер. Неизвестный уровень трактуется как info.
func New(name, level string, json bool) hclog.Logger {
	return NewWithOutput(name, level, json, os.Stderr)
}

// NewWithOutput работает как New, но пишет в произвольный writer.
func NewWithOutput(name, level string, json bool, out io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      lvl,
		Output:     out,
		JSONFormat: json,
	})
}

// OrNop возвращает logger или логгер, который ничего не пишет.
func OrNop(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
