package config

import (
	"fmt"

	"augment/source/kafka"
)

// LoadKafkaConfig loads the consumer settings named by a pipeline's
// source.config. An empty path leaves the AUGMENT_KAFKA__ env overlay as the
// only input.
func LoadKafkaConfig(path string) (kafka.Config, error) {
	c, err := kafka.LoadConfig(path)
	if err != nil {
		if path == "" {
			path = "<env only>"
		}
		return c, fmt.Errorf("source.config %s: %w", path, err)
	}
	return c, nil
}
