// Package mem defines the read/write contract shared by every level of a
// memory hierarchy, together with the statistics, event, and error types
// that the levels expose to their collaborators.
//
// A hierarchy is a chain of Level implementations: zero or more
// set-associative caches terminated by a MainMemory. Because caches and
// main memory implement the same interface, any Level can serve as the
// next level of any cache.
package mem

import (
	"errors"
)

// Word is the fixed integer width stored at every address. The model is
// word-addressed: one address holds exactly one Word.
type Word = int64

// Level is the uniform contract between adjacent levels of the memory
// hierarchy. Caches forward misses and write-backs to their next Level;
// main memory terminates the chain.
type Level interface {
	// Name identifies the level in statistics and error messages.
	Name() string

	// Read returns the word stored at addr.
	Read(addr uint64) (Word, error)

	// Write stores value at addr.
	Write(addr uint64, value Word) error

	// WriteBackAll pushes every buffered modification to the next level.
	// Levels without buffered state implement it as a no-op.
	WriteBackAll() error

	// Stats returns a snapshot of the level's counters.
	Stats() Stats
}

// Stats holds the per-level access counters. All counters increase
// monotonically for the lifetime of a level and reset only when the
// level itself is reset.
type Stats struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64

	// AccessTime is the cumulative latency, in the level's latency
	// units, of every access served so far.
	AccessTime uint64
}

// TotalAccesses returns the number of reads and writes served.
func (s Stats) TotalAccesses() uint64 {
	return s.Reads + s.Writes
}

// HitRate returns hits/(hits+misses), or 0 when no access has completed.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Op distinguishes the two operations a level serves.
type Op uint8

// Operations reported in events.
const (
	OpRead Op = iota
	OpWrite
)

// String returns the lower-case operation name.
func (o Op) String() string {
	if o == OpWrite {
		return "write"
	}
	return "read"
}

// Event describes one completed cache access. Events carry plain data
// only; rendering is left entirely to the observer.
type Event struct {
	// Level is the name of the cache that served the access.
	Level string

	// Op is the operation kind.
	Op Op

	// Hit reports whether the access hit in this level.
	Hit bool

	// Addr is the accessed address.
	Addr uint64

	// Value is the word read or written.
	Value Word
}

// Observer receives an Event after every cache access. Implementations
// must not call back into the hierarchy.
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(e Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// ErrOutOfBounds reports an address outside the addressable range of the
// terminal memory. It propagates unchanged through all cache levels.
var ErrOutOfBounds = errors.New("address out of bounds")

// ErrNoBackingStore reports a miss in a level that has no next level to
// forward to.
var ErrNoBackingStore = errors.New("no backing store")
