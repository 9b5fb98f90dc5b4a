// Package applog is the module's structured-enough logging layer: plain
// log.Printf/fmt.Printf progress lines in the teacher's own idiom (its
// search and storage packages log this way rather than through a
// structured logging library — none of the five example repos import
// zap/zerolog/logrus). Used by the sector LRU, the trap DB builder, and the
// façade for progress and diagnostic lines.
package applog

import (
	"log"
	"os"
	"time"
)

// Logger is a small prefix-tagged wrapper over the standard logger, one per
// long-lived component (a sector cache, a builder worker, the façade).
type Logger struct {
	*log.Logger
	component string
}

// New returns a Logger that prefixes every line with "[component] ".
func New(component string) *Logger {
	return &Logger{
		Logger:    log.New(os.Stderr, "["+component+"] ", log.LstdFlags),
		component: component,
	}
}

// Progress logs a percent-complete line, mirroring
// perfect_sector.cpp's read_em_set percentage/ETA reporting.
func (l *Logger) Progress(stage string, done, total int64, started time.Time) {
	if total <= 0 {
		l.Printf("%s: %d done", stage, done)
		return
	}
	pct := float64(done) / float64(total) * 100
	elapsed := time.Since(started)
	var eta time.Duration
	if done > 0 {
		eta = time.Duration(float64(elapsed) / float64(done) * float64(total-done))
	}
	l.Printf("%s: %d/%d (%.1f%%), elapsed %s, eta %s", stage, done, total, pct, elapsed.Round(time.Second), eta.Round(time.Second))
}

// Diagnosticf logs a one-off diagnostic line (non-fatal warnings, skip
// notices) distinct from Progress's fixed layout.
func (l *Logger) Diagnosticf(format string, args ...any) {
	l.Printf("diagnostic: "+format, args...)
}
