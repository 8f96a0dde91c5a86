package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func resetLogger() {
	Init(Options{})
}

func TestInit_DefaultLevel_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	Info("indicator fetched")
	if !strings.Contains(buf.String(), "indicator fetched") {
		t.Error("Info message should be logged at default level")
	}

	buf.Reset()
	Debug("request body")
	if strings.Contains(buf.String(), "request body") {
		t.Error("Debug message should not be logged at default level")
	}
}

func TestInit_DebugLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Output: buf})
	defer resetLogger()

	Debug("form encoded", "fields", 5)
	if !strings.Contains(buf.String(), "form encoded") {
		t.Error("Debug message should be logged when Debug=true")
	}
}

func TestInit_QuietOverridesDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Quiet: true, Output: buf})
	defer resetLogger()

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	for _, hidden := range []string{"debug message", "info message", "warn message"} {
		if strings.Contains(out, hidden) {
			t.Errorf("%q should not be logged when Quiet=true", hidden)
		}
	}
	if !strings.Contains(out, "error message") {
		t.Error("Error should be logged when Quiet=true")
	}
}

func TestInit_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Output: buf})
	defer resetLogger()

	Info("pivot complete", "rows", 42)

	out := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected JSON object, got %q", out)
	}
	if !strings.Contains(out, `"rows":42`) {
		t.Errorf("expected rows attribute in JSON output, got %q", out)
	}
}

func TestInit_ColorFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Color: true, Output: buf})
	defer resetLogger()

	Info("coloured output", "indicator", "Electricity import (GWh)")

	out := buf.String()
	if !strings.Contains(out, "coloured output") {
		t.Error("expected message in colour output")
	}
	if !strings.Contains(out, "Electricity import (GWh)") {
		t.Error("expected attribute value in colour output")
	}
}

func TestInit_JSONWinsOverColor(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Color: true, Output: buf})
	defer resetLogger()

	Info("json please")
	if !strings.Contains(buf.String(), `"msg":"json please"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestInit_CustomLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	custom := slog.New(slog.NewTextHandler(buf, nil))
	Init(Options{Logger: custom, Output: &bytes.Buffer{}})
	defer resetLogger()

	Info("through custom")
	if !strings.Contains(buf.String(), "through custom") {
		t.Error("custom logger should receive output")
	}
}

func TestWith_ReturnsLoggerWithAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	l := With("run_id", "abc123")
	l.Info("run started")

	out := buf.String()
	if !strings.Contains(out, "run_id=abc123") {
		t.Errorf("expected run_id attribute, got %q", out)
	}
}

func TestContextVariants(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Output: buf})
	defer resetLogger()

	ctx := context.Background()
	DebugContext(ctx, "debug ctx")
	InfoContext(ctx, "info ctx")
	WarnContext(ctx, "warn ctx")
	ErrorContext(ctx, "error ctx", "error", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"debug ctx", "info ctx", "warn ctx", "error ctx", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestSetLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	SetLogger(slog.New(slog.NewTextHandler(buf, nil)))
	defer resetLogger()

	Warn("replaced")
	if !strings.Contains(buf.String(), "replaced") {
		t.Error("SetLogger should replace the package logger")
	}
}
