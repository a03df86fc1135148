package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"elbimport/internal/parser/logfile"
)

// LogExt is the suffix of files ListLogFiles picks up.
const LogExt = ".log"

// ListLogFiles returns the regular files in dir whose names end in ".log",
// as full paths sorted by name. Subdirectories are not descended into.
// Symlinks count when they resolve to a regular file.
func ListLogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &logfile.FileAccessError{Path: dir, Err: err}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), LogExt) {
			continue
		}
		full := filepath.Join(dir, e.Name())

		if e.Type()&os.ModeSymlink != 0 {
			fi, err := os.Stat(full)
			if err != nil {
				return nil, &logfile.FileAccessError{Path: full, Err: fmt.Errorf("resolve symlink: %w", err)}
			}
			if !fi.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		out = append(out, full)
	}
	return out, nil
}
