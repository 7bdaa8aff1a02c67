package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupWriterJSONCarriesComponentAndRequestID(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	SetupWriter(&buf, "info", "json")

	WithComponent("server").Info("loaded", "entries", 13)
	FromContext(WithRequestID(context.Background(), "req-1")).Debug("hidden")
	FromContext(WithRequestID(context.Background(), "req-2")).Warn("slow query")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected debug to be filtered, got %d lines: %s", len(lines), buf.String())
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if first["component"] != "server" || first["entries"] != float64(13) {
		t.Fatalf("unexpected first record %v", first)
	}
	if !strings.Contains(lines[1], `"request_id":"req-2"`) {
		t.Fatalf("expected request id in %s", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}
