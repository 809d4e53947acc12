package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WarnContextAddsFieldsAndTrace(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).Named("fetch").With("kind", "injuries")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WarnContext(ctx, "optional fetch degraded", "key", "team=5", "error", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got=%d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "fetch" {
		t.Fatalf("unexpected logger name: %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["kind"] != "injuries" {
		t.Fatalf("expected kind field, got %+v", fields)
	}
	if fields["key"] != "team=5" {
		t.Fatalf("expected key field, got %+v", fields)
	}
	if fields["error"] != "boom" {
		t.Fatalf("expected error field, got %+v", fields)
	}
	if fields["trace_id"] != traceID.String() {
		t.Fatalf("expected trace id, got %+v", fields)
	}
}

func TestLogger_OddArgsAndNilReceiver(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(FromZap(zap.New(core)))
	t.Cleanup(func() { SetDefault(nil) })

	var logger *Logger
	logger.Info("dangling", "only-key")
	logger.Debug("filtered")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry through default logger, got=%d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["only-key"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
}

func TestNewJSONWriter_WritesJSONLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo)
	logger.Info("cache hit", "kind", "teams")
	logger.Debug("ignored")

	out := buf.String()
	if !strings.Contains(out, `"msg":"cache hit"`) || !strings.Contains(out, `"kind":"teams"`) {
		t.Fatalf("unexpected output: %s", out)
	}
	if strings.Contains(out, "ignored") {
		t.Fatalf("debug entry should be filtered: %s", out)
	}
}

func TestSetMirror_ReceivesEnabledEntries(t *testing.T) {
	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		if msg == "mirrored" || msg == "mirror filtered" {
			got = append(got, level.String()+":"+msg)
		}
	})
	t.Cleanup(func() { SetMirror(nil) })

	core, _ := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))
	logger.Warn("mirrored", "kind", "odds")
	logger.Debug("mirror filtered")

	if len(got) != 1 || got[0] != "warn:mirrored" {
		t.Fatalf("unexpected mirrored entries: %v", got)
	}

	SetMirror(nil)
	logger.Warn("mirrored")
	if len(got) != 1 {
		t.Fatalf("mirror must be removable, got %v", got)
	}
}
