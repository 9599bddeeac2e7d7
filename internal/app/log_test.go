package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		runID   string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			runID:   "run-123",
			level:   slog.LevelInfo,
			message: "habit created",
			want:    "2024-06-15T14:30:45Z\tINFO\trun-123\thabit created\n",
		},
		{
			name:    "debug level",
			runID:   "run-456",
			level:   slog.LevelDebug,
			message: "resolving date",
			want:    "2024-06-15T14:30:45Z\tDEBUG\trun-456\tresolving date\n",
		},
		{
			name:    "with record attrs",
			runID:   "run-789",
			level:   slog.LevelInfo,
			message: "completion toggled",
			attrs:   []slog.Attr{slog.String("habit", "h-1"), slog.Int("streak", 42)},
			want:    "2024-06-15T14:30:45Z\tINFO\trun-789\tcompletion toggled\thabit=h-1\tstreak=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &fileHandler{w: &buf, runID: tt.runID, level: slog.LevelDebug}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestFileHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &fileHandler{w: &buf, runID: "run-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "pomodoro")}).(*fileHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "cycle started", 0)
	r.AddAttrs(slog.String("id", "p-1"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=pomodoro") {
		t.Errorf("expected pre-set attr component=pomodoro, got: %q", got)
	}
	if !strings.Contains(got, "id=p-1") {
		t.Errorf("expected record attr id=p-1, got: %q", got)
	}

	h3 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*fileHandler)
	if len(h.attrs) != 0 || len(h3.attrs) != 1 {
		t.Errorf("WithAttrs mutated the original handler: %d, %d", len(h.attrs), len(h3.attrs))
	}
}

func TestFileHandler_Enabled(t *testing.T) {
	h := &fileHandler{level: slog.LevelInfo}
	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, true},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, closer, err := newLogger(dir, "run-1", false, &console)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	logger.Debug("resolving date")
	logger.Info("habit created", "id", "h-1")
	logger.Warn("malformed completion date", "raw", "2024-13-01")

	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	file := string(data)
	if !strings.Contains(file, "\tINFO\trun-1\thabit created\tid=h-1") {
		t.Errorf("log file missing info record:\n%s", file)
	}
	if !strings.Contains(file, "malformed completion date") {
		t.Errorf("log file missing warn record:\n%s", file)
	}
	if strings.Contains(file, "resolving date") {
		t.Errorf("debug record written without debug enabled:\n%s", file)
	}

	out := console.String()
	if !strings.Contains(out, "malformed completion date") {
		t.Errorf("console missing warning: %q", out)
	}
	if strings.Contains(out, "habit created") {
		t.Errorf("console shows info record: %q", out)
	}
}

func TestNewLogger_Debug(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := newLogger(t.TempDir(), "run-2", true, &console)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer closer.Close()

	logger.Debug("resolving date", "raw", "")
	if !strings.Contains(console.String(), "resolving date") {
		t.Errorf("console missing debug record: %q", console.String())
	}
}
