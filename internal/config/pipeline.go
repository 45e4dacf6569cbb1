package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"augment/internal/spec"
)

const SupportedSchema = "v1"

// LoadPipelineSpec parses a pipeline YAML, validates schema_version and the
// transformer entries, and returns the parsed spec and an absolute path to
// the source config (if set).
func LoadPipelineSpec(path string) (spec.File, string, error) {
	var cfg spec.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, "", err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, "", fmt.Errorf("pipeline %s: %w", path, err)
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = SupportedSchema
	}
	if cfg.SchemaVersion != SupportedSchema {
		return cfg, "", fmt.Errorf("pipeline schema_version %q not supported (want %q)", cfg.SchemaVersion, SupportedSchema)
	}
	if err := validateTransformers("transformers", cfg.Transformers); err != nil {
		return cfg, "", err
	}
	if err := validateTransformers("serve", cfg.Serve); err != nil {
		return cfg, "", err
	}
	for _, t := range cfg.Serve {
		if t.Type != "inproc" {
			return cfg, "", fmt.Errorf("serve: transformer %q must be inproc, got %q", t.Name, t.Type)
		}
	}
	confPath := cfg.Source.Config
	if confPath != "" && !filepath.IsAbs(confPath) {
		confPath = filepath.Join(filepath.Dir(path), confPath)
	}
	return cfg, confPath, nil
}

func validateTransformers(section string, ts []spec.TransformerSpec) error {
	seen := make(map[string]bool, len(ts))
	for i, t := range ts {
		if t.Name == "" {
			return fmt.Errorf("%s[%d]: name is required", section, i)
		}
		if seen[t.Name] {
			return fmt.Errorf("%s: duplicate transformer name %q", section, t.Name)
		}
		seen[t.Name] = true
		switch t.Type {
		case "inproc":
			if t.Op == "" {
				return fmt.Errorf("%s: transformer %q: op is required for inproc", section, t.Name)
			}
		case "grpc":
			if t.Address == "" {
				return fmt.Errorf("%s: transformer %q: address is required for grpc", section, t.Name)
			}
		default:
			return fmt.Errorf("%s: transformer %q: unsupported type %q", section, t.Name, t.Type)
		}
	}
	return nil
}
