package cache

import (
	"fmt"
)

// WritePolicy selects how writes propagate to the next level.
type WritePolicy string

// Supported write policies.
const (
	// WriteThrough propagates every write to the next level immediately.
	WriteThrough WritePolicy = "write-through"

	// WriteBack buffers writes in the cache and propagates them only on
	// eviction or an explicit write-back.
	WriteBack WritePolicy = "write-back"
)

// ReplacementPolicy selects the victim when a full set must accept a new
// block. The policy is fixed at construction.
type ReplacementPolicy string

// Supported replacement policies.
const (
	// LRU evicts the least recently used line.
	LRU ReplacementPolicy = "lru"

	// FIFO evicts the line installed longest ago, independent of the
	// access pattern after installation.
	FIFO ReplacementPolicy = "fifo"

	// Random evicts a uniformly random line.
	Random ReplacementPolicy = "random"
)

// Config holds the construction parameters of a cache level. All fields
// are immutable after construction.
type Config struct {
	// Name identifies the level in statistics and error messages.
	Name string `json:"name"`

	// Size is the total capacity in words.
	Size uint64 `json:"size"`

	// LineSize is the number of words per cache line.
	LineSize uint64 `json:"line_size"`

	// Associativity is the number of ways per set.
	Associativity uint64 `json:"associativity"`

	// AccessTime is the latency added per access at this level.
	AccessTime uint64 `json:"access_time"`

	// WritePolicy is either WriteThrough or WriteBack.
	WritePolicy WritePolicy `json:"write_policy"`

	// Replacement is the victim-selection policy. Defaults to LRU when
	// empty.
	Replacement ReplacementPolicy `json:"replacement"`
}

// NumSets returns the number of sets implied by the geometry.
func (c Config) NumSets() uint64 {
	return c.Size / (c.LineSize * c.Associativity)
}

// Validate returns an error describing the first invalid field.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("cache name must not be empty")
	}
	if c.Size == 0 {
		return fmt.Errorf("size must be > 0")
	}
	if c.LineSize == 0 {
		return fmt.Errorf("line_size must be > 0")
	}
	if c.Associativity == 0 {
		return fmt.Errorf("associativity must be > 0")
	}
	if c.Size%(c.LineSize*c.Associativity) != 0 {
		return fmt.Errorf(
			"size %d is not divisible by line_size*associativity (%d)",
			c.Size, c.LineSize*c.Associativity)
	}

	switch c.WritePolicy {
	case WriteThrough, WriteBack:
	default:
		return fmt.Errorf("unknown write policy %q", c.WritePolicy)
	}

	switch c.Replacement {
	case LRU, FIFO, Random, "":
	default:
		return fmt.Errorf("unknown replacement policy %q", c.Replacement)
	}

	return nil
}
