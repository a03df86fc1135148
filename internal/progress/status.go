// Package progress renders the single-line import status:
//
//	file 2 of 7, 48,213 records imported
//
// The line is redrawn in place with a carriage return and finished with
// "done" on its own line.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
)

// DefaultEvery is how many records pass between redraws.
const DefaultEvery = 1000

// Status tracks files and records for one run. A nil *Status is valid and
// prints nothing.
type Status struct {
	mu      sync.Mutex
	w       io.Writer
	every   int64
	total   int
	file    int
	records int64
	pending int64
}

// New returns a Status writing to w for a run over totalFiles files.
func New(w io.Writer, totalFiles int) *Status {
	return &Status{w: w, every: DefaultEvery, total: totalFiles}
}

// SetEvery changes the redraw interval; n < 1 redraws on every record.
func (s *Status) SetEvery(n int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.every = int64(n)
}

// StartFile marks file number n (1-based) as current and redraws.
func (s *Status) StartFile(n int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = n
	s.draw()
}

// Add counts n imported records.
func (s *Status) Add(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records += int64(n)
	s.pending += int64(n)
	if s.pending >= s.every {
		s.draw()
	}
}

// Records is the running total.
func (s *Status) Records() int64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// Done draws the final counts and prints "done".
func (s *Status) Done() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total > 0 {
		s.draw()
		fmt.Fprintln(s.w)
	}
	fmt.Fprintln(s.w, "done")
}

// Line renders the status text without the carriage return.
func Line(file, total int, records int64) string {
	return fmt.Sprintf("file %d of %d, %s records imported", file, total, humanize.Comma(records))
}

func (s *Status) draw() {
	s.pending = 0
	fmt.Fprint(s.w, "\r"+Line(s.file, s.total, s.records))
}
