// Package importer drives a run: list the log files, prepare the table, then
// stream every line through decode, escape and insert, in file order.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"elbimport/internal/metrics"
	"elbimport/internal/parser/logfile"
	"elbimport/internal/progress"
	"elbimport/internal/record"
	"elbimport/internal/sqlgen"
	"elbimport/internal/storage"
)

// Logger is the minimal logging interface used by the importer.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// ErrorPolicy decides what a malformed line does to the run.
type ErrorPolicy int

const (
	// Abort stops the run at the first malformed line.
	Abort ErrorPolicy = iota
	// Skip logs the line, counts it as rejected and continues.
	Skip
)

// ErrTableMissing is returned when the target table does not exist and
// Create is off.
var ErrTableMissing = errors.New("table does not exist")

// Importer holds everything one run needs. Repo and Decoder are required.
type Importer struct {
	Repo    storage.Repository
	Decoder *record.Decoder
	Table   string

	// Drop drops the table first and implies Create.
	Drop bool
	// Create creates the table when it does not exist.
	Create bool

	OnError ErrorPolicy
	Reader  logfile.Options

	Logger Logger
	// Status receives the "file X of Y" line; nil prints nothing.
	Status io.Writer
}

// Summary describes a finished (or failed) run.
type Summary struct {
	Files    int
	Records  int64
	Rejected int64
	Duration time.Duration
}

// Run imports every log file in dir. The returned Summary counts what was
// inserted before any error.
func (im *Importer) Run(ctx context.Context, dir string) (Summary, error) {
	start := time.Now()
	var sum Summary

	if im.Repo == nil || im.Decoder == nil {
		return sum, fmt.Errorf("importer: Repo and Decoder are required")
	}
	if im.Table == "" {
		return sum, fmt.Errorf("importer: Table is required")
	}
	logf := im.logger()

	files, err := ListLogFiles(dir)
	if err != nil {
		return sum, err
	}
	logf("stage=list dir=%s files=%d", dir, len(files))

	setupStart := time.Now()
	if err := im.SetupTable(ctx); err != nil {
		metrics.RecordStep("setup", "error", time.Since(setupStart))
		return sum, err
	}
	metrics.RecordStep("setup", "ok", time.Since(setupStart))
	logf("stage=table_setup ok table=%s duration=%s", im.Table, durMS(setupStart))

	var status *progress.Status
	if im.Status != nil {
		status = progress.New(im.Status, len(files))
	}

	for i, path := range files {
		status.StartFile(i + 1)

		fileStart := time.Now()
		inserted, rejected, err := im.importFile(ctx, path, status)
		sum.Records += inserted
		sum.Rejected += rejected
		metrics.RecordRecords("inserted", int(inserted))
		metrics.RecordRecords("rejected", int(rejected))

		if err != nil {
			metrics.RecordFile("error")
			metrics.RecordStep("file", "error", time.Since(fileStart))
			sum.Duration = time.Since(start)
			return sum, fmt.Errorf("import %s: %w", path, err)
		}
		sum.Files++
		metrics.RecordFile("ok")
		metrics.RecordStep("file", "ok", time.Since(fileStart))
		logf("stage=file ok path=%s records=%d rejected=%d duration=%s", path, inserted, rejected, durMS(fileStart))
	}

	status.Done()
	sum.Duration = time.Since(start)
	return sum, nil
}

// SetupTable drops and/or creates the target table according to Drop and
// Create.
func (im *Importer) SetupTable(ctx context.Context) error {
	if im.Drop {
		if err := im.Repo.Exec(ctx, sqlgen.DropTable(im.Repo.Dialect(), im.Table)); err != nil {
			return fmt.Errorf("drop table %s: %w", im.Table, err)
		}
		return im.create(ctx)
	}

	exists, err := im.Repo.TableExists(ctx, im.Table)
	if err != nil {
		return fmt.Errorf("check table %s: %w", im.Table, err)
	}
	if exists {
		return nil
	}
	if !im.Create {
		return fmt.Errorf("%w: %s; rerun with -create", ErrTableMissing, im.Table)
	}
	return im.create(ctx)
}

func (im *Importer) create(ctx context.Context) error {
	stmt := sqlgen.CreateTable(im.Repo.Dialect(), im.Table, im.Decoder.Model())
	if err := im.Repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", im.Table, err)
	}
	return nil
}

// importFile streams one file. Malformed lines abort or are skipped per
// OnError; database and I/O errors always abort.
func (im *Importer) importFile(ctx context.Context, path string, status *progress.Status) (inserted, rejected int64, err error) {
	r, err := logfile.Open(path, im.Reader)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()

	logf := im.logger()
	d := im.Repo.Dialect()
	model := im.Decoder.Model()

	for {
		if err := ctx.Err(); err != nil {
			return inserted, rejected, err
		}

		row, err := r.Next()
		if err == io.EOF {
			return inserted, rejected, nil
		}

		var rec record.LogRecord
		if err == nil {
			rec, err = im.Decoder.Decode(row)
		}
		if err != nil {
			if !isMalformed(err) || im.OnError != Skip {
				return inserted, rejected, err
			}
			rejected++
			logf("stage=file skipped path=%s reason=%v", path, err)
			continue
		}

		stmt, err := sqlgen.Insert(d, im.Table, sqlgen.EscapeRecord(d, rec, model), model)
		if err != nil {
			return inserted, rejected, err
		}
		if err := im.Repo.Exec(ctx, stmt); err != nil {
			return inserted, rejected, fmt.Errorf("line %d: %w", row.Line, err)
		}
		inserted++
		status.Add(1)
	}
}

func isMalformed(err error) bool {
	var de *record.DecodeError
	var pe *logfile.ParseError
	return errors.As(err, &de) || errors.As(err, &pe)
}

func (im *Importer) logger() func(format string, v ...any) {
	if im.Logger == nil {
		return log.New(io.Discard, "", 0).Printf
	}
	return im.Logger.Printf
}

func durMS(start time.Time) time.Duration { return time.Since(start).Truncate(time.Millisecond) }
