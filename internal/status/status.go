// Package status tracks the soft failures a run accumulates: exports that
// failed to write, files that failed to download, thread replies that could
// not be resolved. None of these abort the run; they are counted and surfaced
// in the end-of-run summary.
package status

import (
	"fmt"
	"strings"
)

// Status is the per-run counter set. One instance is created per invocation
// and passed by reference into each component that can degrade. The run is
// single-threaded, so plain fields are enough.
type Status struct {
	// Stats
	FilesDownloaded   int
	FilesAlreadyExist int

	// Errors
	ExportJSONFailed   bool
	ExportTextFailed   bool
	ExportSQLiteFailed bool
	FileFailures       int

	// Warnings
	ThreadMsgsNotFound int
	UnclassifiedFiles  int
}

// Errors returns the number of recoverable errors encountered.
func (s *Status) Errors() int {
	n := s.FileFailures
	if s.ExportJSONFailed {
		n++
	}
	if s.ExportTextFailed {
		n++
	}
	if s.ExportSQLiteFailed {
		n++
	}
	return n
}

// Warnings returns the number of warnings encountered.
func (s *Status) Warnings() int {
	return s.ThreadMsgsNotFound + s.UnclassifiedFiles
}

// OK reports whether the run finished without soft failures.
func (s *Status) OK() bool {
	return s.Errors() == 0 && s.Warnings() == 0
}

// Summary renders the end-of-run report.
func (s *Status) Summary() string {
	var b strings.Builder
	if s.OK() {
		b.WriteString("Program finished successfully\n")
	} else {
		fmt.Fprintf(&b, "Program finished with %d errors and %d warnings\n", s.Errors(), s.Warnings())
	}

	// A stat, not a failure: files skipped (or replaced) because a file with
	// the same name was already in the download directory.
	if s.FilesAlreadyExist > 0 {
		fmt.Fprintf(&b, "%d files already existed\n", s.FilesAlreadyExist)
	}

	if s.Errors() > 0 {
		b.WriteString("ERRORS:\n")
		if s.ExportJSONFailed {
			b.WriteString("JSON export failed\n")
		}
		if s.ExportTextFailed {
			b.WriteString("Text export failed\n")
		}
		if s.ExportSQLiteFailed {
			b.WriteString("SQLite export failed\n")
		}
		if s.FileFailures > 0 {
			total := s.FileFailures + s.FilesDownloaded
			fmt.Fprintf(&b, "Could not download %d files (%d total)\n", s.FileFailures, total)
		}
	}

	if s.Warnings() > 0 {
		b.WriteString("WARNINGS:\n")
		if s.ThreadMsgsNotFound > 0 {
			fmt.Fprintf(&b, "Could not find %d thread messages\n", s.ThreadMsgsNotFound)
		}
		if s.UnclassifiedFiles > 0 {
			fmt.Fprintf(&b, "%d files were neither shared nor uploaded\n", s.UnclassifiedFiles)
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}
