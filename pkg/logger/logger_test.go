package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode entry: %v (%s)", err, buf.String())
	}
	return entry
}

func TestErrorKeepsContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: zerolog.DebugLevel, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithCartSession(ctx, "sess-1")
	log.Error(ctx, "checkout failed", errors.New("boom"))

	entry := decodeEntry(t, buf)
	if entry["request_id"] != "req-123" || entry["cart_session"] != "sess-1" {
		t.Fatalf("expected context fields, got %v", entry)
	}
	if entry["error"] != "boom" || entry["service"] != "api" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["stack"]; !ok {
		t.Fatal("expected stack on error entries")
	}
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{ServiceName: "api", Output: buf}).Warn(context.Background(), "quiet")
	if _, ok := decodeEntry(t, buf)["stack"]; ok {
		t.Fatal("warn should not carry a stack by default")
	}

	buf.Reset()
	New(Options{ServiceName: "api", Output: buf, WarnStack: true}).Warn(context.Background(), "loud")
	if _, ok := decodeEntry(t, buf)["stack"]; !ok {
		t.Fatal("expected stack when warn stack is enabled")
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: zerolog.InfoLevel, Output: buf})
	log.Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info, got %s", buf.String())
	}
}

func TestFieldsDoNotLeakBetweenContexts(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Output: buf})

	base := context.Background()
	_ = log.WithField(base, "product_id", "lumina-turquoise")
	log.Info(base, "plain")

	if _, ok := decodeEntry(t, buf)["product_id"]; ok {
		t.Fatal("fields attached to a derived context must not reach the parent")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"invalid": zerolog.InfoLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warn":    zerolog.WarnLevel,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
