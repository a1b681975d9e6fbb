package cache

import (
	"fmt"
	"math/rand"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/memsim/mem"
)

// Cache is one set-associative level of a memory hierarchy. It owns a
// word-granular data store, uses an Akita cache directory for tag, valid,
// dirty, and LRU state, and forwards misses and write-backs to the next
// level through the mem.Level contract.
//
// A Cache is not safe for concurrent use; every access runs to
// completion, including cascading accesses to lower levels, before the
// call returns.
type Cache struct {
	config  Config
	numSets uint64

	// Akita cache directory for tag/state management.
	directory *akitacache.DirectoryImpl

	// Data storage, indexed by setID*associativity + wayID.
	dataStore [][]mem.Word

	// Installation sequence numbers for FIFO victim selection, indexed
	// like dataStore.
	installSeq   []uint64
	installCount uint64

	next     mem.Level
	stats    mem.Stats
	observer mem.Observer
	rng      *rand.Rand
}

// Option configures a Cache at construction.
type Option func(*Cache)

// WithObserver installs a sink that receives an event after every
// completed read or write.
func WithObserver(o mem.Observer) Option {
	return func(c *Cache) {
		c.observer = o
	}
}

// WithRandSeed seeds the random replacement policy. The default seed is
// fixed so that runs are reproducible.
func WithRandSeed(seed int64) Option {
	return func(c *Cache) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates a cache level from the given configuration. next is the
// level that misses and write-backs are forwarded to; it may be another
// Cache or a mem.MainMemory.
func New(config Config, next mem.Level, opts ...Option) (*Cache, error) {
	if config.Replacement == "" {
		config.Replacement = LRU
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}

	numSets := config.NumSets()
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]mem.Word, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]mem.Word, config.LineSize)
	}

	c := &Cache{
		config:  config,
		numSets: numSets,
		directory: akitacache.NewDirectory(
			int(numSets),
			int(config.Associativity),
			int(config.LineSize),
			akitacache.NewLRUVictimFinder(),
		),
		dataStore:  dataStore,
		installSeq: make([]uint64, totalBlocks),
		next:       next,
		rng:        rand.New(rand.NewSource(1)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Name returns the cache's name.
func (c *Cache) Name() string {
	return c.config.Name
}

// Config returns the cache's configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() mem.Stats {
	return c.stats
}

// ResetStats clears the counters without touching cached data.
func (c *Cache) ResetStats() {
	c.stats = mem.Stats{}
}

// Reset invalidates every line without write-back and clears the
// counters.
func (c *Cache) Reset() {
	c.directory.Reset()
	for i := range c.dataStore {
		for j := range c.dataStore[i] {
			c.dataStore[i][j] = 0
		}
	}
	for i := range c.installSeq {
		c.installSeq[i] = 0
	}
	c.installCount = 0
	c.stats = mem.Stats{}
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*int(c.config.Associativity) + block.WayID
}

// Read returns the word stored at addr, fetching the containing block
// from the next level on a miss.
func (c *Cache) Read(addr uint64) (mem.Word, error) {
	c.stats.Reads++
	c.stats.AccessTime += c.config.AccessTime

	blockAddr := addr - addr%c.config.LineSize
	offset := addr % c.config.LineSize

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		value := c.dataStore[c.blockIndex(block)][offset]
		c.emit(mem.OpRead, true, addr, value)

		return value, nil
	}

	c.stats.Misses++

	filled, err := c.fill(blockAddr)
	if err != nil {
		return 0, err
	}

	value := c.dataStore[c.blockIndex(filled)][offset]
	c.emit(mem.OpRead, false, addr, value)

	return value, nil
}

// Write stores value at addr. Under write-back the line is marked dirty;
// under write-through the word is forwarded to the next level
// immediately and the line stays clean. Misses are write-allocated.
func (c *Cache) Write(addr uint64, value mem.Word) error {
	c.stats.Writes++
	c.stats.AccessTime += c.config.AccessTime

	blockAddr := addr - addr%c.config.LineSize
	offset := addr % c.config.LineSize

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		c.dataStore[c.blockIndex(block)][offset] = value

		if c.config.WritePolicy == WriteBack {
			block.IsDirty = true
		} else if err := c.forward(addr, value); err != nil {
			return err
		}

		c.emit(mem.OpWrite, true, addr, value)

		return nil
	}

	c.stats.Misses++

	filled, err := c.fill(blockAddr)
	if err != nil {
		return err
	}
	c.dataStore[c.blockIndex(filled)][offset] = value

	if c.config.WritePolicy == WriteBack {
		filled.IsDirty = true
	} else if err := c.forward(addr, value); err != nil {
		return err
	}

	c.emit(mem.OpWrite, false, addr, value)

	return nil
}

// WriteBackAll writes every valid dirty line to the next level at its
// block address and clears the dirty bits. It is used to guarantee that
// the backing store reflects all cached modifications at the end of a
// run.
func (c *Cache) WriteBackAll() error {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if !block.IsValid || !block.IsDirty {
				continue
			}

			if c.next == nil {
				return fmt.Errorf(
					"%s: cannot write back address %d: %w",
					c.config.Name, block.Tag, mem.ErrNoBackingStore)
			}

			if err := c.writeBackLine(block); err != nil {
				return err
			}
			block.IsDirty = false
		}
	}

	return nil
}

// fill installs the block at blockAddr, evicting a victim if the set is
// full. The installed line is clean; the caller marks it dirty when
// needed. A dirty victim is written back before its slot is reused.
func (c *Cache) fill(blockAddr uint64) (*akitacache.Block, error) {
	if c.next == nil {
		return nil, fmt.Errorf("%s: miss on address %d: %w",
			c.config.Name, blockAddr, mem.ErrNoBackingStore)
	}

	victim := c.findVictim(blockAddr)
	data := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++

		if victim.IsDirty && c.config.WritePolicy == WriteBack {
			if err := c.writeBackLine(victim); err != nil {
				return nil, err
			}
		}

		victim.IsValid = false
		victim.IsDirty = false
	}

	for i := range data {
		w, err := c.next.Read(blockAddr + uint64(i))
		if err != nil {
			return nil, err
		}
		data[i] = w
	}

	// Tag stores the block-aligned address.
	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	c.installCount++
	c.installSeq[c.blockIndex(victim)] = c.installCount
	c.directory.Visit(victim)

	return victim, nil
}

// writeBackLine writes one line's words to the next level.
func (c *Cache) writeBackLine(block *akitacache.Block) error {
	data := c.dataStore[c.blockIndex(block)]

	for i, w := range data {
		addr := block.Tag + uint64(i)
		if err := c.next.Write(addr, w); err != nil {
			return fmt.Errorf("%s: write-back of address %d to %s failed: %w",
				c.config.Name, addr, c.next.Name(), err)
		}
	}

	c.stats.Writebacks++

	return nil
}

// forward propagates a write-through word to the next level.
func (c *Cache) forward(addr uint64, value mem.Word) error {
	if c.next == nil {
		return fmt.Errorf("%s: cannot propagate write to address %d: %w",
			c.config.Name, addr, mem.ErrNoBackingStore)
	}

	return c.next.Write(addr, value)
}

// emit reports a completed access to the observer, if one is installed.
func (c *Cache) emit(op mem.Op, hit bool, addr uint64, value mem.Word) {
	if c.observer == nil {
		return
	}

	c.observer.Observe(mem.Event{
		Level: c.config.Name,
		Op:    op,
		Hit:   hit,
		Addr:  addr,
		Value: value,
	})
}
