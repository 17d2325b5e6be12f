package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestError_IncludesContextAndError(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "ride-engine", slog.LevelDebug)

	ctx := WithRideID(WithRequestID(context.Background(), "req-1"), "ride-1")
	Error(ctx, log, "geo_marker_write", "marker write failed", errors.New("boom"), "sink", "postgres")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}

	want := map[string]string{
		"service":    "ride-engine",
		"action":     "geo_marker_write",
		"request_id": "req-1",
		"ride_id":    "ride-1",
		"error":      "boom",
		"sink":       "postgres",
		"msg":        "marker write failed",
		"level":      "ERROR",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("entry[%q] = %v, want %q", k, entry[k], v)
		}
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("entry has no timestamp key")
	}
}

func TestInfo_OmitsEmptyIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "ride-engine", slog.LevelDebug)

	Info(context.Background(), log, "startup", "ready")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if _, ok := entry["request_id"]; ok {
		t.Error("request_id present without a request on the context")
	}
	if _, ok := entry["ride_id"]; ok {
		t.Error("ride_id present without a ride on the context")
	}
}
