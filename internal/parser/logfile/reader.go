// Package logfile tokenizes load balancer access-log files: one record per
// line, fields separated by a single space, CSV-style double quoting.
package logfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"elbimport/internal/record"
)

// Options tunes the CSV reader.
type Options struct {
	// LazyQuotes accepts bare quotes inside fields instead of failing the line.
	LazyQuotes bool
}

// FileAccessError means a log file could not be opened for reading. It is
// reported before any row is produced.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("log file %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// ParseError is a line the CSV reader could not split, such as an unbalanced
// quote.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// Reader yields one RawRow per log line in a single forward pass. Each
// physical line is split on its own, so an unbalanced quote never pulls the
// following lines into the same record.
type Reader struct {
	path string
	f    *os.File
	br   *bufio.Reader
	opt  Options
	line int
}

// Open checks and opens path. Missing, unreadable and directory paths fail
// here with a *FileAccessError.
func Open(path string, opt Options) (*Reader, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	if fi.IsDir() {
		return nil, &FileAccessError{Path: path, Err: errors.New("is a directory")}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}

	r := NewReader(f, opt)
	r.path = path
	r.f = f
	return r, nil
}

// NewReader tokenizes an already open stream. Closing r does not close src.
func NewReader(src io.Reader, opt Options) *Reader {
	// Drop a leading BOM and replace invalid UTF-8 so one bad user agent
	// cannot make the database reject the statement.
	dec := transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	return &Reader{br: bufio.NewReader(dec), opt: opt}
}

func (r *Reader) splitLine(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = ' '
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = r.opt.LazyQuotes
	return cr.Read()
}

// Path returns the file being read, or "" for NewReader streams.
func (r *Reader) Path() string { return r.path }

// Next returns the next row. It returns io.EOF after the last line and a
// *ParseError for lines that cannot be tokenized; reading may continue after
// a ParseError.
func (r *Reader) Next() (record.RawRow, error) {
	for {
		text, err := r.br.ReadString('\n')
		if err != nil && err != io.EOF {
			return record.RawRow{}, fmt.Errorf("read %s: %w", r.path, err)
		}
		if text == "" && err == io.EOF {
			return record.RawRow{}, io.EOF
		}
		r.line++

		text = strings.TrimRight(text, "\r\n")
		if text == "" {
			continue
		}

		tokens, perr := r.splitLine(text)
		if perr != nil {
			var pe *csv.ParseError
			if errors.As(perr, &pe) {
				return record.RawRow{}, &ParseError{Line: r.line, Err: pe.Err}
			}
			return record.RawRow{}, &ParseError{Line: r.line, Err: perr}
		}
		return record.RawRow{Line: r.line, Tokens: tokens}, nil
	}
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	return r.f.Close()
}
