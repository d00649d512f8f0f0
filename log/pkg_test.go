package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := Default()
	defer func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	}()

	var buf bytes.Buffer

	Config(
		WithOutput(&buf),
		WithLevel(LevelTrace),
		WithFormat(FormatJSON),
		WithPretty(false),
	)

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
		msg   string
	}{
		{"Trace", Trace, "TRACE", "trace message"},
		{"Debug", Debug, "DEBUG", "debug message"},
		{"Info", Info, "INFO", "info message"},
		{"Warn", Warn, "WARN", "warn message"},
		{"Error", Error, "ERROR", "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg, slog.String("key", "value"))

			output := buf.String()
			if !strings.Contains(output, tt.msg) {
				t.Errorf(
					"expected output to contain message %q, got: %s",
					tt.msg,
					output,
				)
			}
			if !strings.Contains(output, tt.level) {
				t.Errorf(
					"expected output to contain level %q, got: %s",
					tt.level,
					output,
				)
			}
			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("expected output to contain attribute, got: %s", output)
			}
		})
	}
}

func TestPackage_With_DerivesFromDefault(t *testing.T) {
	original := Default()
	defer func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	}()

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithPretty(false))
	With(slog.String("doc", "button.yaml")).Info("parsed")

	if !strings.Contains(buf.String(), "doc=button.yaml") {
		t.Errorf("expected derived attribute, got: %s", buf.String())
	}
}
