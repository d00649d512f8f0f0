package log

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"
	"time"
)

func TestConfig_Options(t *testing.T) {
	base := makeConfig(&bytes.Buffer{})

	tests := []struct {
		name  string
		opt   Option
		check func(config) bool
	}{
		{"trace level", WithLevel(LevelTrace), func(c config) bool { return c.level == LevelTrace }},
		{"error level", WithLevel(LevelError), func(c config) bool { return c.level == LevelError }},
		{"json format", WithFormat(FormatJSON), func(c config) bool { return c.format == FormatJSON }},
		{"caller", WithCaller(true), func(c config) bool { return c.caller }},
		{"plain", WithPretty(false), func(c config) bool { return !c.pretty }},
		{"nil output", WithOutput(nil), func(c config) bool { return c.output != nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base.clone(tt.opt)
			if !tt.check(c) {
				t.Errorf("option not applied: %+v", c)
			}

			if c.mutex == base.mutex {
				t.Error("clone shares the base lock")
			}
		})
	}

	if base.level != DefaultLevel || base.format != DefaultFormat || !base.pretty {
		t.Errorf("clone mutated base config: %+v", base)
	}
}

func TestConfig_HandlerOptions_ReplaceAttr(t *testing.T) {
	stamp := time.Date(2026, 3, 9, 8, 15, 30, 250000000, time.UTC)

	tests := []struct {
		name   string
		layout string
		attr   slog.Attr
		want   string
		drop   bool
	}{
		{"trace level name", "RFC3339", slog.Any(slog.LevelKey, slog.Level(LevelTrace)), "TRACE", false},
		{"offset level name", "RFC3339", slog.Any(slog.LevelKey, slog.Level(LevelInfo+2)), "INFO+2", false},
		{"named layout", "RFC3339", slog.Time(slog.TimeKey, stamp), "2026-03-09T08:15:30Z", false},
		{"named layout any case", "rfc-3339-nano", slog.Time(slog.TimeKey, stamp), "2026-03-09T08:15:30.25Z", false},
		{"short alias", "ms", slog.Time(slog.TimeKey, stamp), "Mar  9 08:15:30.250", false},
		{"custom layout verbatim", "15:04 Jan 2", slog.Time(slog.TimeKey, stamp), "08:15 Mar 9", false},
		{"none disables time", "none", slog.Time(slog.TimeKey, stamp), "", true},
		{"blank disables time", " \t", slog.Time(slog.TimeKey, stamp), "", true},
		{"other keys untouched", "RFC3339", slog.String("pass", "setter"), "setter", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := makeConfig(&bytes.Buffer{}, WithTimeLayout(tt.layout))
			got := c.handlerOptions().ReplaceAttr(nil, tt.attr)

			if tt.drop {
				if !got.Equal(slog.Attr{}) {
					t.Errorf("expected attribute dropped, got %v", got)
				}

				return
			}

			if got.Value.String() != tt.want {
				t.Errorf("got %q, want %q", got.Value.String(), tt.want)
			}
		})
	}
}

func TestConfig_Handler_SelectsKind(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		pretty bool
		want   string
	}{
		{"pretty text", FormatText, true, "*log.prettyTextHandler"},
		{"pretty json", FormatJSON, true, "*log.prettyJSONHandler"},
		{"plain text", FormatText, false, "*slog.TextHandler"},
		{"plain json", FormatJSON, false, "*slog.JSONHandler"},
		{"unknown format", Format(9), false, "slog.discardHandler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := makeConfig(&bytes.Buffer{}, WithFormat(tt.format), WithPretty(tt.pretty))
			if got := typeName(c.handler()); got != tt.want {
				t.Errorf("handler %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLevel_String_Offsets(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelTrace + 2, "trace+2"},
		{LevelTrace - 1, "trace-1"},
		{LevelDebug, "debug"},
		{LevelInfo + 2, "info+2"},
		{LevelWarn + 1, "warn+1"},
		{LevelError + 4, "error+4"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"warn", LevelWarn},
		{"info+2", LevelInfo + 2},
		{"verbose", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for name := range Levels() {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q).String() = %q", name, got)
		}
	}
}

func TestParseFormat_UnknownFallsBack(t *testing.T) {
	if got := ParseFormat("JSON "); got != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v", got)
	}

	if got := ParseFormat("yaml"); got != DefaultFormat {
		t.Errorf("ParseFormat(yaml) = %v, want default %v", got, DefaultFormat)
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
