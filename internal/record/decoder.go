package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"elbimport/internal/schema"
)

// Decoder converts RawRows into LogRecords using a field model. A Decoder
// holds no mutable state and can be reused for every row of a run.
type Decoder struct {
	model  *schema.FieldModel
	header []string
	opt    schema.DeriveOptions

	// srcIdx[i] is the header position read by model field i.
	srcIdx []int
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithHeader overrides the raw token header (default schema.ELBHeader).
func WithHeader(header []string) Option {
	return func(d *Decoder) { d.header = append([]string(nil), header...) }
}

// WithLocation sets the zone timestamps are rendered in (default UTC).
func WithLocation(loc *time.Location) Option {
	return func(d *Decoder) { d.opt.Location = loc }
}

// WithStrictTime makes unparseable timestamps a decode error instead of
// falling back to schema.FallbackTime.
func WithStrictTime(strict bool) Option {
	return func(d *Decoder) { d.opt.StrictTime = strict }
}

// NewDecoder binds model to a header. It fails when a field reads a token the
// header does not define.
func NewDecoder(model *schema.FieldModel, opts ...Option) (*Decoder, error) {
	if model == nil {
		return nil, fmt.Errorf("record: nil field model")
	}
	d := &Decoder{
		model:  model,
		header: schema.ELBHeader,
		opt:    schema.DeriveOptions{Location: time.UTC},
	}
	for _, o := range opts {
		o(d)
	}
	if d.opt.Location == nil {
		d.opt.Location = time.UTC
	}

	pos := make(map[string]int, len(d.header))
	for i, h := range d.header {
		pos[h] = i
	}

	d.srcIdx = make([]int, model.Len())
	for i := 0; i < model.Len(); i++ {
		f := model.Field(i)
		p, ok := pos[f.SourceToken()]
		if !ok {
			return nil, &DecodeError{
				Field:  f.Name,
				Reason: fmt.Sprintf("token %q not in header", f.SourceToken()),
				Err:    ErrMissingToken,
			}
		}
		d.srcIdx[i] = p
	}
	return d, nil
}

// Model returns the field model the decoder renders.
func (d *Decoder) Model() *schema.FieldModel { return d.model }

// Header returns a copy of the raw token header.
func (d *Decoder) Header() []string { return append([]string(nil), d.header...) }

// Decode builds a LogRecord with one value per model field, in model order.
func (d *Decoder) Decode(row RawRow) (LogRecord, error) {
	if len(row.Tokens) != len(d.header) {
		return LogRecord{}, &DecodeError{
			Line:   row.Line,
			Reason: fmt.Sprintf("got %d tokens, want %d", len(row.Tokens), len(d.header)),
			Err:    ErrTokenCountMismatch,
		}
	}

	columns := d.model.ColumnNames()
	values := make([]string, len(columns))
	for i := range columns {
		f := d.model.Field(i)
		v, err := f.Derive.Apply(row.Tokens[d.srcIdx[i]], d.opt)
		if err != nil {
			return LogRecord{}, &DecodeError{
				Line:   row.Line,
				Field:  f.Name,
				Reason: err.Error(),
				Err:    fmt.Errorf("%w: %w", ErrDerivation, err),
			}
		}
		if err := checkNumber(f.Type, v); err != nil {
			return LogRecord{}, &DecodeError{
				Line:   row.Line,
				Field:  f.Name,
				Reason: err.Error(),
				Err:    ErrInvalidNumber,
			}
		}
		values[i] = v
	}
	return newLogRecord(columns, values), nil
}

// Decode decodes row against the load balancer header with default options.
func Decode(row RawRow, model *schema.FieldModel) (LogRecord, error) {
	d, err := NewDecoder(model)
	if err != nil {
		return LogRecord{}, err
	}
	return d.Decode(row)
}

// IsNull reports whether a numeric value stands for "no value". Load
// balancers write "-" when there was no backend response.
func IsNull(v string) bool { return v == "" || v == "-" }

// checkNumber keeps unquoted columns free of anything but a number, so a log
// payload can never smuggle SQL into the statement.
func checkNumber(t schema.SQLType, v string) error {
	if !t.Numeric() || IsNull(v) {
		return nil
	}
	var err error
	switch t.Kind {
	case schema.KindFloat:
		var f float64
		f, err = strconv.ParseFloat(v, 64)
		if err == nil && (math.IsNaN(f) || math.IsInf(f, 0) || strings.ContainsAny(v, "xXpP")) {
			err = strconv.ErrSyntax
		}
	case schema.KindSmallInt:
		_, err = strconv.ParseInt(v, 10, 16)
	case schema.KindUnsignedBigInt:
		_, err = strconv.ParseUint(v, 10, 64)
	}
	if err != nil {
		return fmt.Errorf("%q is not a valid %s", v, t.Kind)
	}
	return nil
}
