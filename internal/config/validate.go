package config

import (
	"fmt"
	"slices"
	"strings"
)

// Severity classifies an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding. Path names the offending setting.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string { return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message) }

// ConfigError carries the error-severity issues that make a Config unusable.
type ConfigError struct {
	Issues []Issue
}

func (e *ConfigError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		msgs = append(msgs, i.Path+": "+i.Message)
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Err returns a *ConfigError for the error-severity issues, or nil.
func Err(issues []Issue) error {
	var errs []Issue
	for _, i := range issues {
		if i.Severity == SeverityError {
			errs = append(errs, i)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ConfigError{Issues: errs}
}

// Validate checks a normalized Config. Warnings do not stop a run.
func (c Config) Validate() []Issue {
	var out []Issue
	errorf := func(path, format string, a ...any) {
		out = append(out, Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, a...)})
	}
	warnf := func(path, format string, a ...any) {
		out = append(out, Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, a...)})
	}

	if c.Dir == "" {
		errorf("dir", "log directory is required")
	}
	if c.Table == "" {
		errorf("table", "table name is required")
	} else if strings.ContainsRune(c.Table, 0) {
		errorf("table", "table name contains a NUL byte")
	}

	switch {
	case !slices.Contains(StorageKinds, c.Storage):
		errorf("storage", "unknown storage %q (want one of %s)", c.Storage, strings.Join(StorageKinds, ", "))
	case c.Storage == "mysql":
		if c.DSN == "" && c.Database == "" {
			errorf("db", "database name is required for mysql (or set dsn)")
		}
		if c.DSN != "" && c.Database != "" {
			warnf("db", "ignored because dsn is set")
		}
	case c.Storage == "dryrun":
	default:
		if c.DSN == "" {
			errorf("dsn", "dsn is required for storage %s", c.Storage)
		}
	}

	switch c.OnError {
	case OnErrorAbort, OnErrorSkip:
	default:
		errorf("on_error", "unknown policy %q (want abort or skip)", c.OnError)
	}

	if _, err := c.Location(); err != nil {
		errorf("timezone", "%v", err)
	}

	switch c.MetricsBackend {
	case "", "none", "datadog":
	default:
		errorf("metrics_backend", "unknown backend %q (want none or datadog)", c.MetricsBackend)
	}

	if len(c.Fields) > 0 {
		if _, err := c.Model(); err != nil {
			errorf("fields", "%v", err)
		}
	}

	if c.Drop {
		warnf("drop", "table %q will be dropped and recreated", c.Table)
	}
	return out
}
