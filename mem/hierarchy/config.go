package hierarchy

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/mem/cache"
)

// Config describes a complete memory hierarchy: an ordered list of cache
// levels, nearest to the CPU first, over one main memory.
type Config struct {
	// Caches lists the cache levels from nearest-to-CPU to farthest. It
	// may be empty, in which case accesses go straight to main memory.
	Caches []cache.Config `json:"caches"`

	// Memory configures the terminal main memory.
	Memory mem.MainMemoryConfig `json:"memory"`
}

// DefaultConfig returns the two-level hierarchy used when no
// configuration file is given: a small write-through L1 over a larger
// write-back L2 over a 1024-word main memory.
func DefaultConfig() Config {
	return Config{
		Caches: []cache.Config{
			{
				Name:          "L1",
				Size:          64,
				LineSize:      8,
				Associativity: 2,
				AccessTime:    10,
				WritePolicy:   cache.WriteThrough,
				Replacement:   cache.LRU,
			},
			{
				Name:          "L2",
				Size:          256,
				LineSize:      16,
				Associativity: 4,
				AccessTime:    30,
				WritePolicy:   cache.WriteBack,
				Replacement:   cache.LRU,
			},
		},
		Memory: mem.DefaultMainMemoryConfig(),
	}
}

// Validate returns an error describing the first invalid level.
func (c Config) Validate() error {
	for i, cc := range c.Caches {
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("cache level %d: %w", i, err)
		}
	}

	if err := c.Memory.Validate(); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads a hierarchy configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy config file: %w", err)
	}

	config := &Config{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse hierarchy config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hierarchy config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a hierarchy configuration to a JSON file.
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize hierarchy config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write hierarchy config file: %w", err)
	}

	return nil
}
