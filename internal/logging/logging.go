// Package logging routes the standard logger through a level filter.
// Messages carry their level as a bracketed prefix, e.g. "[WARN] ...";
// lines without a prefix are always printed.
package logging

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/hashicorp/logutils"
)

var Levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

// New returns a filter writing to w that drops messages below level.
// An unknown level falls back to INFO.
func New(w io.Writer, level string) *logutils.LevelFilter {
	return &logutils.LevelFilter{
		Levels:   Levels,
		MinLevel: parseLevel(level),
		Writer:   w,
	}
}

// Setup installs the filter on the standard logger.
func Setup(level string) {
	log.SetOutput(New(os.Stderr, level))
}

func parseLevel(level string) logutils.LogLevel {
	l := logutils.LogLevel(strings.ToUpper(strings.TrimSpace(level)))
	for _, known := range Levels {
		if l == known {
			return l
		}
	}
	return "INFO"
}
