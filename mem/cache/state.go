package cache

import (
	"github.com/sarchlab/memsim/mem"
)

// LineState describes one valid cache line in a state snapshot.
type LineState struct {
	// Set and Way locate the line within the cache.
	Set int
	Way int

	// Tag is the upper address bits identifying the block occupying the
	// line, as produced by Decode.
	Tag uint64

	// Data is a copy of the line's words.
	Data []mem.Word
}

// State returns a read-only snapshot of every valid line, ordered by set
// then way. It has no side effects and is intended for external
// visualizers.
func (c *Cache) State() []LineState {
	var lines []LineState

	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if !block.IsValid {
				continue
			}

			tag, _, _ := Decode(block.Tag, c.config.LineSize, c.numSets)

			data := make([]mem.Word, c.config.LineSize)
			copy(data, c.dataStore[c.blockIndex(block)])

			lines = append(lines, LineState{
				Set:  block.SetID,
				Way:  block.WayID,
				Tag:  tag,
				Data: data,
			})
		}
	}

	return lines
}
