package observability

import (
	"testing"

	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	if !shouldSkipUptraceLog(logging.LevelDebug, "cache hit") {
		t.Fatalf("expected debug cache hit to stay local")
	}
	if shouldSkipUptraceLog(logging.LevelWarn, "cache hit") {
		t.Fatalf("did not expect warn entries to be skipped")
	}
	if shouldSkipUptraceLog(logging.LevelDebug, "optional fetch degraded") {
		t.Fatalf("did not expect unrelated debug entry to be skipped")
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"key", "roster:team=5", "attempt", 2, "payload"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "key" || attrs[0].Value.AsString() != "roster:team=5" {
		t.Fatalf("unexpected key attribute")
	}
	if attrs[1].Key != "attempt" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute")
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute")
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"pts": 31.4,
		"won": true,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}
}
