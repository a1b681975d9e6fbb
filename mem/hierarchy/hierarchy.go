// Package hierarchy assembles cache levels and main memory into one
// memory hierarchy and exposes the top of the chain to the CPU side.
package hierarchy

import (
	"fmt"

	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/mem/cache"
)

// Hierarchy is an ordered chain of cache levels terminated by a main
// memory. Reads and writes enter at the topmost level and cascade
// downward on misses; Flush pushes buffered modifications the other way.
type Hierarchy struct {
	caches []*cache.Cache
	memory *mem.MainMemory
	top    mem.Level
}

// New builds a hierarchy from the given configuration. Levels are
// constructed farthest-from-CPU first so that each cache is wired to the
// level below it. cacheOpts (for example cache.WithObserver) are applied
// to every cache level.
func New(config Config, cacheOpts ...cache.Option) (*Hierarchy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	memory, err := mem.NewMainMemory(config.Memory)
	if err != nil {
		return nil, err
	}

	h := &Hierarchy{
		caches: make([]*cache.Cache, len(config.Caches)),
		memory: memory,
	}

	var next mem.Level = memory
	for i := len(config.Caches) - 1; i >= 0; i-- {
		c, err := cache.New(config.Caches[i], next, cacheOpts...)
		if err != nil {
			return nil, fmt.Errorf("cache level %d: %w", i, err)
		}

		h.caches[i] = c
		next = c
	}

	h.top = next

	return h, nil
}

// Read reads the word at addr through the top of the hierarchy.
func (h *Hierarchy) Read(addr uint64) (mem.Word, error) {
	return h.top.Read(addr)
}

// Write writes value at addr through the top of the hierarchy.
func (h *Hierarchy) Write(addr uint64, value mem.Word) error {
	return h.top.Write(addr, value)
}

// Flush calls WriteBackAll on every cache level from nearest-to-CPU to
// farthest, so dirty data cascades toward main memory in one pass.
func (h *Hierarchy) Flush() error {
	for _, c := range h.caches {
		if err := c.WriteBackAll(); err != nil {
			return err
		}
	}

	return nil
}

// TotalExecTime returns the sum of the cumulative access time of every
// level, main memory included.
func (h *Hierarchy) TotalExecTime() uint64 {
	var total uint64
	for _, c := range h.caches {
		total += c.Stats().AccessTime
	}
	total += h.memory.Stats().AccessTime

	return total
}

// Caches returns the cache levels, nearest to the CPU first.
func (h *Hierarchy) Caches() []*cache.Cache {
	return h.caches
}

// Memory returns the terminal main memory.
func (h *Hierarchy) Memory() *mem.MainMemory {
	return h.memory
}

// Top returns the level that the CPU side should issue accesses to.
func (h *Hierarchy) Top() mem.Level {
	return h.top
}

// LevelStats pairs a level name with its counters.
type LevelStats struct {
	Name  string
	Stats mem.Stats
}

// StatsByLevel returns a statistics snapshot for every level, nearest to
// the CPU first, main memory last.
func (h *Hierarchy) StatsByLevel() []LevelStats {
	stats := make([]LevelStats, 0, len(h.caches)+1)
	for _, c := range h.caches {
		stats = append(stats, LevelStats{Name: c.Name(), Stats: c.Stats()})
	}
	stats = append(stats, LevelStats{Name: h.memory.Name(), Stats: h.memory.Stats()})

	return stats
}
