// Package obslog wires the ambient structured-logging concern (§6 --log,
// §7 fatal/recoverable reporting) onto github.com/rs/zerolog, grounded on
// smilemakc-mbflow's internal/infrastructure/logger and factory.go
// (`log.Fatal().Err(err).Msg(...)`-style chained calls).
package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console-pretty logger writing to stderr, the default
// when --log is absent.
func New() zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(w).With().Timestamp().Logger()
}

// OpenLogFile implements §6's `--log` file-redirection naming rule:
// log/<domainStem>_<yyyymmdd_HHMMSS>[_n].log, where _n increments until
// a free name is found. domainPath is the positional domain-file
// argument; now is the process start time.
func OpenLogFile(domainPath string, now time.Time) (*os.File, string, error) {
	if err := os.MkdirAll("log", 0o755); err != nil {
		return nil, "", fmt.Errorf("obslog: creating log directory: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(domainPath), filepath.Ext(domainPath))
	base := fmt.Sprintf("%s_%s", stem, now.Format("20060102_150405"))

	path := filepath.Join("log", base+".log")
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join("log", fmt.Sprintf("%s_%d.log", base, n))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("obslog: opening log file: %w", err)
	}
	return f, path, nil
}

// NewFile returns a plain (non-colored) logger writing to f, used once
// --log has redirected output to a file.
func NewFile(f *os.File) zerolog.Logger {
	return zerolog.New(f).With().Timestamp().Logger()
}
