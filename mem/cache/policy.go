package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// findVictim returns the line that will receive the block at blockAddr.
// A full set always yields a victim, so the result is never nil for a
// properly constructed cache.
func (c *Cache) findVictim(blockAddr uint64) *akitacache.Block {
	if c.config.Replacement == LRU {
		// The directory's LRU victim finder already prefers free ways.
		return c.directory.FindVictim(blockAddr)
	}

	_, setIdx, _ := Decode(blockAddr, c.config.LineSize, c.numSets)
	set := c.directory.GetSets()[setIdx]

	// Prefer a free way regardless of policy.
	for _, block := range set.Blocks {
		if !block.IsValid {
			return block
		}
	}

	switch c.config.Replacement {
	case FIFO:
		return c.oldestInstalled(set)
	default:
		return set.Blocks[c.rng.Intn(len(set.Blocks))]
	}
}

// oldestInstalled returns the valid block with the smallest installation
// sequence number.
func (c *Cache) oldestInstalled(set akitacache.Set) *akitacache.Block {
	var oldest *akitacache.Block
	var oldestSeq uint64

	for _, block := range set.Blocks {
		seq := c.installSeq[c.blockIndex(block)]
		if oldest == nil || seq < oldestSeq {
			oldest = block
			oldestSeq = seq
		}
	}

	return oldest
}
