package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Engine is the process-level configuration of augmentd.
type Engine struct {
	GRPCPort    int    `koanf:"grpc_port"`
	MetricsPort int    `koanf:"metrics_port"`
	Pipeline    string `koanf:"pipeline"` // optional pipeline YAML
	Log         struct {
		Level string `koanf:"level"`
		JSON  bool   `koanf:"json"`
	} `koanf:"log"`
}

const envPrefix = "AUGMENT_"

// LoadEngineConfig merges YAML (if present) with env-vars. Env keys drop the
// AUGMENT_ prefix and use `__` for nesting: AUGMENT_LOG__LEVEL sets log.level.
func LoadEngineConfig(path string) (Engine, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Engine{}, err
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey(envPrefix)), nil); err != nil {
		return Engine{}, err
	}

	var cfg Engine
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyEngineDefaults(&cfg)
	return cfg, nil
}

func envKey(prefix string) func(string) string {
	return func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", ".")
	}
}

func applyEngineDefaults(c *Engine) {
	if c.GRPCPort == 0 {
		c.GRPCPort = 7070
	}
	if c.MetricsPort == 0 {
		c.MetricsPort = 9100
	}
}
