package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestConfigure_Level(t *testing.T) {
	defer Configure(Options{})

	Configure(Options{Level: "warn"})
	if L().Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
	if !L().Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("warn should be enabled at warn level")
	}

	t.Setenv("AUGMENT_LOG_LEVEL", "DEBUG")
	t.Setenv("AUGMENT_LOG_JSON", "true")
	InitFromEnv()
	if !L().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be enabled from env")
	}
}

func TestFor_TagsComponent(t *testing.T) {
	defer Configure(Options{})

	var buf bytes.Buffer
	Configure(Options{JSON: true, Output: &buf})
	For("pipeline").Info("hello", "n", 1)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["component"] != "pipeline" || rec["msg"] != "hello" {
		t.Fatalf("unexpected record: %v", rec)
	}
}
