// Package logging provides tests for console logger construction.
package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  log.Level
	}{
		{"debug", "debug", log.DebugLevel},
		{"info", "info", log.InfoLevel},
		{"warn", "warn", log.WarnLevel},
		{"warning", "warning", log.WarnLevel},
		{"error", "error", log.ErrorLevel},
		{"fatal", "fatal", log.FatalLevel},
		{"mixed case", " DEBUG ", log.DebugLevel},
		{"unknown defaults to warn", "unknown", log.WarnLevel},
		{"empty defaults to warn", "", log.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   log.Formatter
	}{
		{"json", "json", log.JSONFormatter},
		{"logfmt", "logfmt", log.LogfmtFormatter},
		{"text", "text", log.TextFormatter},
		{"unknown defaults to text", "unknown", log.TextFormatter},
		{"empty defaults to text", "", log.TextFormatter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFormatter(tt.format); got != tt.want {
				t.Errorf("ParseFormatter(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestValidLevelAndFormat(t *testing.T) {
	if !ValidLevel("Info") || ValidLevel("loud") {
		t.Error("ValidLevel mismatch")
	}
	if !ValidFormat("logfmt") || ValidFormat("xml") {
		t.Error("ValidFormat mismatch")
	}
}

func TestNewWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = log.DebugLevel
	logger := New(&buf, opts)

	logger.Debug("task added", "id", "abc")

	out := buf.String()
	if !strings.Contains(out, "task added") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "id=abc") {
		t.Errorf("expected key/value in output, got %q", out)
	}
	if !strings.Contains(out, "todo") {
		t.Errorf("expected prefix in output, got %q", out)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Level != log.WarnLevel {
		t.Errorf("Level = %v, want %v", opts.Level, log.WarnLevel)
	}
	if opts.Formatter != log.TextFormatter {
		t.Errorf("Formatter = %v, want text", opts.Formatter)
	}
	if opts.ReportTimestamp || opts.ReportCaller {
		t.Error("timestamps and caller should be off by default")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger == nil {
		t.Fatal("Discard() returned nil")
	}
	logger.Error("dropped")
}
