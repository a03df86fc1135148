// Package metrics is the process-wide metrics seam. Import code calls the
// package-level helpers; main picks a Backend (or none) at startup.
package metrics

import (
	"sync"
	"time"
)

// Labels are metric dimensions such as {"kind": "inserted"}.
type Labels map[string]string

// Backend receives metric events. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

// Metric names emitted by the importer.
const (
	StepTotal           = "elbimport_step_total"
	StepDurationSeconds = "elbimport_step_duration_seconds"
	RecordsTotal        = "elbimport_records_total"
	FilesTotal          = "elbimport_files_total"
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b; nil restores the no-op backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush asks the current backend to submit buffered data.
func Flush() error { return current().Flush() }

// RecordStep counts one completed step and its duration. status is "ok" or
// "error".
func RecordStep(step, status string, d time.Duration) {
	b := current()
	l := Labels{"step": step, "status": status}
	b.IncCounter(StepTotal, 1, l)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), l)
}

// RecordRecords counts records by outcome ("inserted" or "rejected").
func RecordRecords(kind string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(n), Labels{"kind": kind})
}

// RecordFile counts one processed log file.
func RecordFile(status string) {
	current().IncCounter(FilesTotal, 1, Labels{"status": status})
}
