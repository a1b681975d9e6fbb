// Package cache implements a set-associative cache level built on Akita
// cache directory components.
package cache

// Decode splits a word address into its tag, set index, and line offset
// for a cache with the given line size and set count. The arithmetic
// form is used uniformly; bitmasking would be an equivalent optimization
// for power-of-two geometries.
func Decode(addr, lineSize, numSets uint64) (tag, set, offset uint64) {
	offset = addr % lineSize
	set = (addr / lineSize) % numSets
	tag = addr / (lineSize * numSets)

	return tag, set, offset
}

// Reconstruct returns the block-aligned address of the line identified
// by tag and set. It is the exact inverse of Decode: for any address a,
// Reconstruct(Decode(a)) + offset == a.
func Reconstruct(tag, set, lineSize, numSets uint64) uint64 {
	return tag*lineSize*numSets + set*lineSize
}
