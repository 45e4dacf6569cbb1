package kafka

import (
	"fmt"
	"maps"
	"slices"
)

// Factory builds an Adapter (e.g., SaramaDriver).
type Factory func() Adapter

var registry = map[string]Factory{}

// Register is called from each driver's init() or main().
func Register(name string, f Factory) {
	registry[name] = f
}

// NewAdapter returns a driver by name ("sarama", ...).
func NewAdapter(name string) (Adapter, error) {
	if f, ok := registry[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("kafka: unsupported driver %q (registered: %v)", name, slices.Sorted(maps.Keys(registry)))
}

func init() {
	Register("sarama", func() Adapter { return &SaramaDriver{} })
}
