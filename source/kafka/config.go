package kafka

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type CommitMode string

const (
	CommitAuto CommitMode = "auto" // mark once emitted
	CommitE2E  CommitMode = "e2e"  // mark once every sink acked
)

type Config struct {
	Brokers   []string `koanf:"brokers"`
	Topics    []string `koanf:"topics"`
	GroupID   string   `koanf:"group_id"`
	StartFrom string   `koanf:"start_from"` // oldest|newest (default newest)
	Version   string   `koanf:"version"`
	TLSEn     bool     `koanf:"tls_enabled"`
	SASLUser  string   `koanf:"sasl_user"`
	SASLPass  string   `koanf:"sasl_pass"`

	CommitMode CommitMode `koanf:"commit_mode"` // auto|e2e
	// MaxInFlight bounds frames emitted but not yet acked.
	MaxInFlight int64         `koanf:"max_in_flight"`
	CommitInt   time.Duration `koanf:"commit_interval"`
}

const envPrefix = "AUGMENT_KAFKA__"

// LoadConfig merges YAML (if present) with env-vars: AUGMENT_KAFKA__GROUP_ID
// sets group_id.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("kafka schema_version %q not supported (want v1)", sv)
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	if len(cfg.Brokers) == 0 {
		return cfg, errors.New("kafka: at least one broker is required")
	}
	if len(cfg.Topics) == 0 {
		return cfg, errors.New("kafka: at least one topic is required")
	}
	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 1024
	}
	if c.CommitInt == 0 {
		c.CommitInt = 5 * time.Second
	}
	if c.CommitMode != CommitAuto && c.CommitMode != CommitE2E {
		c.CommitMode = CommitAuto
	}
	if c.StartFrom == "" {
		c.StartFrom = "newest"
	}
	if c.GroupID == "" {
		c.GroupID = "augment"
	}
	if c.Version == "" {
		c.Version = "2.8.0"
	}
}
