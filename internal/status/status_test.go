package status

import (
	"strings"
	"testing"
)

func TestSummary_Clean(t *testing.T) {
	s := &Status{FilesDownloaded: 3}
	if !s.OK() {
		t.Fatal("downloads alone are not failures")
	}
	if got := s.Summary(); got != "Program finished successfully" {
		t.Fatalf("got %q", got)
	}
}

func TestSummary_ErrorsAndWarnings(t *testing.T) {
	s := &Status{
		ExportJSONFailed:   true,
		FileFailures:       2,
		FilesDownloaded:    5,
		ThreadMsgsNotFound: 1,
	}

	if got := s.Errors(); got != 3 {
		t.Fatalf("expected 3 errors, got %d", got)
	}
	if got := s.Warnings(); got != 1 {
		t.Fatalf("expected 1 warning, got %d", got)
	}

	out := s.Summary()
	if !strings.Contains(out, "3 errors and 1 warnings") {
		t.Fatalf("summary header wrong:\n%s", out)
	}
	if !strings.Contains(out, "JSON export failed") {
		t.Fatalf("missing json line:\n%s", out)
	}
	if !strings.Contains(out, "Could not download 2 files (7 total)") {
		t.Fatalf("missing file line:\n%s", out)
	}
	if !strings.Contains(out, "Could not find 1 thread messages") {
		t.Fatalf("missing thread line:\n%s", out)
	}
}

func TestSummary_FilesAlreadyExist(t *testing.T) {
	s := &Status{FilesAlreadyExist: 3}
	if !s.OK() {
		t.Fatal("pre-existing files are not failures")
	}

	out := s.Summary()
	if !strings.Contains(out, "Program finished successfully") {
		t.Fatalf("run without failures should still report success:\n%s", out)
	}
	if !strings.Contains(out, "3 files already existed") {
		t.Fatalf("already-existing files must be surfaced:\n%s", out)
	}
}

func TestSummary_FilesAlreadyExistWithErrors(t *testing.T) {
	s := &Status{ExportTextFailed: true, FilesAlreadyExist: 2}
	out := s.Summary()
	if !strings.Contains(out, "2 files already existed") {
		t.Fatalf("already-existing files must be surfaced alongside errors:\n%s", out)
	}
	if !strings.Contains(out, "Text export failed") {
		t.Fatalf("missing text line:\n%s", out)
	}
}

func TestSummary_WarningsOnly(t *testing.T) {
	s := &Status{ThreadMsgsNotFound: 2}
	out := s.Summary()
	if strings.Contains(out, "ERRORS") {
		t.Fatalf("no error section expected:\n%s", out)
	}
	if !strings.Contains(out, "WARNINGS:") {
		t.Fatalf("warning section expected:\n%s", out)
	}
}
