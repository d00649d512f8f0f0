package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.caller != DefaultCaller {
		t.Error("expected caller disabled by default")
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format %v, got %v", DefaultFormat, logger.Format())
	}
}

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelError), WithPretty(false))

	logger.Info("info message")

	if buf.Len() > 0 {
		t.Error("info message logged when level is Error")
	}

	logger.Error("error message")

	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_Trace_RendersTraceLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithPretty(false))
	logger.Trace("walk node", slog.Int("id", 3))

	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE level, got: %s", buf.String())
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithPretty(false)).Info("with source")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller file in output, got: %s", buf.String())
	}

	buf.Reset()
	Make(&buf, WithCaller(false), WithPretty(false)).Info("without source")

	if strings.Contains(buf.String(), "source=") {
		t.Error("source included when disabled")
	}
}

func TestLogger_WithFormat_SetsOutputFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false))
		logger.Info("test message", slog.String("key", "value"))

		var result map[string]any
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}

		if result["msg"] != "test message" || result["key"] != "value" {
			t.Errorf("unexpected JSON record: %v", result)
		}
	})

	t.Run("pretty_text", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatText), WithPretty(true), WithTimeLayout("none"))
		logger.Info("test message", slog.String("key", "value"))

		output := buf.String()
		for _, want := range []string{"test message", "key", "value", "INFO"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in pretty output, got: %s", want, output)
			}
		}

		if strings.Contains(output, "time") {
			t.Errorf("expected timestamp disabled, got: %s", output)
		}
	})

	t.Run("pretty_json", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatJSON), WithPretty(true))
		logger.With(slog.String("pass", "setter")).Warn("deferred")

		output := buf.String()
		for _, want := range []string{`"msg"`, "deferred", `"pass"`, "setter"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected %q in pretty JSON, got: %s", want, output)
			}
		}
	})
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false)).With(slog.String("component", "markup"))
	logger.Info("loaded")

	if !strings.Contains(buf.String(), "component=markup") {
		t.Errorf("expected attribute in output, got: %s", buf.String())
	}
}

func TestLogger_Wrap_OverridesWithoutMutatingBase(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelWarn))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelWarn {
		t.Errorf("base level changed to %v", base.Level())
	}

	if wrapped.Level() != LevelDebug {
		t.Errorf("wrapped level = %v, want debug", wrapped.Level())
	}
}

func TestLogger_Enabled_TracksLevel(t *testing.T) {
	ctx := context.Background()
	logger := Make(&bytes.Buffer{}, WithLevel(LevelDebug))

	if logger.Enabled(ctx, LevelTrace) {
		t.Error("trace enabled at Debug level")
	}

	if !logger.Enabled(ctx, LevelDebug) {
		t.Error("debug disabled at Debug level")
	}

	if !logger.Wrap(WithLevel(LevelTrace)).Enabled(ctx, LevelTrace) {
		t.Error("trace disabled after Wrap with Trace level")
	}

	var zero Logger
	if zero.Enabled(ctx, LevelError) {
		t.Error("zero logger reports enabled")
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var logger Logger

	logger.Info("discarded")
	logger.ErrorContext(context.Background(), "discarded")

	if logger.With(slog.Int("n", 1)).Logger != nil {
		t.Error("With on zero logger produced a live logger")
	}
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	var buf syncBuffer

	logger := Make(&buf, WithPretty(false))

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			logger.Info("concurrent", slog.Int("i", i))
		}()
	}

	wg.Wait()

	if got := strings.Count(buf.String(), "concurrent"); got != 16 {
		t.Errorf("expected 16 records, got %d", got)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
