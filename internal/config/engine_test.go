package config

import (
	"path/filepath"
	"testing"
)

func TestLoadEngineConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadEngineConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.GRPCPort != 7070 || cfg.MetricsPort != 9100 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEngineConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "augmentd.yml", `grpc_port: 8080
pipeline: pipeline.yml
log:
  level: info
`)
	t.Setenv("AUGMENT_GRPC_PORT", "9090")
	t.Setenv("AUGMENT_LOG__LEVEL", "debug")

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if cfg.GRPCPort != 9090 {
		t.Fatalf("want env grpc_port 9090, got %d", cfg.GRPCPort)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("want env log level debug, got %q", cfg.Log.Level)
	}
	if cfg.Pipeline != "pipeline.yml" {
		t.Fatalf("want pipeline from file, got %q", cfg.Pipeline)
	}
}
