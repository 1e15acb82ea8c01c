package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithLevel(slog.LevelWarn), WithFormat(FormatJSON), WithOutput(&buf), WithAttr(slog.String("service", "test")))
	l.Info("hidden")
	l.Warn("shown", "key", "199001011234")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("json: %v", err)
	}
	if rec["msg"] != "shown" || rec["service"] != "test" || rec["key"] != "199001011234" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNewIgnoresInvalidOptions(t *testing.T) {
	var buf bytes.Buffer
	l := New(nil, WithFormat("xml"), WithOutput(nil), WithOutput(&buf))
	l.Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}

func TestFromStrings(t *testing.T) {
	var buf bytes.Buffer
	l, err := FromStrings("DEBUG", "json", &buf)
	if err != nil {
		t.Fatalf("FromStrings: %v", err)
	}
	l.Debug("dbg")
	if !strings.Contains(buf.String(), `"service":"hotelctl"`) {
		t.Fatalf("expected service attr, got %q", buf.String())
	}
	if _, err := FromStrings("loud", "json", &buf); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := FromStrings("info", "yaml", &buf); err == nil {
		t.Fatalf("expected format error")
	}
}
