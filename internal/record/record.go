// Package record turns tokenized access-log lines into typed rows ready for
// SQL rendering.
package record

import "elbimport/internal/schema"

// RawRow is one tokenized log line. Tokens are positional and line up with a
// fixed header (schema.ELBHeader for load balancer logs).
type RawRow struct {
	Line   int // 1-based physical line number, 0 when unknown
	Tokens []string
}

// LogRecord is one decoded row: a value per model field, in model order.
// It is immutable once built.
type LogRecord struct {
	columns []string
	values  []string
	index   map[string]int
}

func newLogRecord(columns, values []string) LogRecord {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return LogRecord{columns: columns, values: values, index: idx}
}

// Len returns the number of fields in the record.
func (r LogRecord) Len() int { return len(r.values) }

// Columns returns a copy of the column names, in order.
func (r LogRecord) Columns() []string { return append([]string(nil), r.columns...) }

// Values returns a copy of the values, aligned with Columns.
func (r LogRecord) Values() []string { return append([]string(nil), r.values...) }

// Get returns the value of the named field.
func (r LogRecord) Get(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Map returns a new record whose values are fn(field, value). Fields absent
// from model are copied unchanged.
func (r LogRecord) Map(model *schema.FieldModel, fn func(f schema.FieldSpec, v string) string) LogRecord {
	values := make([]string, len(r.values))
	for i, c := range r.columns {
		f, ok := model.Lookup(c)
		if !ok {
			values[i] = r.values[i]
			continue
		}
		values[i] = fn(f, r.values[i])
	}
	return LogRecord{columns: r.columns, values: values, index: r.index}
}
