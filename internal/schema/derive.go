package schema

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Derivation names the strategy that turns a raw token into a column value.
// The zero value copies the token unchanged.
type Derivation string

const (
	DerivePassthrough Derivation = ""
	// DeriveTimestamp reparses the token and renders it as "2006-01-02 15:04:05".
	DeriveTimestamp Derivation = "timestamp"
	// DeriveHost keeps the part of an "ip:port" token before the first ':'.
	DeriveHost Derivation = "host"
	// DerivePort keeps the part after the first ':', or "-" when there is none.
	DerivePort Derivation = "port"
	// DeriveMethod keeps the part of a "METHOD URL" token before the first space.
	DeriveMethod Derivation = "method"
	// DeriveURL keeps the part after the first space; a token without one fails.
	DeriveURL Derivation = "url"
)

// TimestampLayout is the rendering used for timestamp columns.
const TimestampLayout = "2006-01-02 15:04:05"

// NoPort is the value of a port column when the source token has no port.
const NoPort = "-"

var (
	ErrNoSeparator      = errors.New("separator not found")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// DeriveOptions carries the process-level settings a derivation may need.
// The zero value means UTC and lenient timestamps.
type DeriveOptions struct {
	Location *time.Location

	// StrictTime makes unparseable timestamps an error instead of rendering
	// FallbackTime.
	StrictTime bool
}

func (d Derivation) valid() bool {
	switch d {
	case DerivePassthrough, DeriveTimestamp, DeriveHost, DerivePort, DeriveMethod, DeriveURL:
		return true
	}
	return false
}

// Apply runs the strategy over one raw token.
func (d Derivation) Apply(raw string, opt DeriveOptions) (string, error) {
	switch d {
	case DerivePassthrough:
		return raw, nil
	case DeriveTimestamp:
		return formatTimestamp(raw, opt)
	case DeriveHost:
		host, _, _ := strings.Cut(raw, ":")
		return host, nil
	case DerivePort:
		_, port, ok := strings.Cut(raw, ":")
		if !ok {
			return NoPort, nil
		}
		return port, nil
	case DeriveMethod:
		method, _, _ := strings.Cut(raw, " ")
		return method, nil
	case DeriveURL:
		_, url, ok := strings.Cut(raw, " ")
		if !ok {
			return "", fmt.Errorf("%w: no space in %q", ErrNoSeparator, raw)
		}
		return url, nil
	default:
		return "", fmt.Errorf("unknown derivation %q", string(d))
	}
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// Zone-less layouts are read in the configured location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	TimestampLayout,
}

// FallbackTime is what unparseable timestamps render as in lenient mode: one
// second after the Unix epoch, the smallest value a MySQL TIMESTAMP accepts.
var FallbackTime = time.Unix(1, 0)

// formatTimestamp converts an access-log timestamp into the configured zone.
// Unparseable input renders FallbackTime unless opt.StrictTime is set.
func formatTimestamp(raw string, opt DeriveOptions) (string, error) {
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}

	ts, err := parseTimestamp(strings.TrimSpace(raw), loc)
	if err != nil {
		if opt.StrictTime {
			return "", err
		}
		ts = FallbackTime
	}
	return ts.In(loc).Format(TimestampLayout), nil
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	for _, layout := range zonedLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
