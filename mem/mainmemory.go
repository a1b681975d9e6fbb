package mem

import (
	"fmt"
)

// MainMemoryConfig holds the construction parameters of a MainMemory.
type MainMemoryConfig struct {
	// Name identifies the memory in statistics and error messages.
	Name string `json:"name"`

	// Size is the number of addressable words.
	Size uint64 `json:"size"`

	// AccessTime is the latency added per read or write.
	AccessTime uint64 `json:"access_time"`
}

// DefaultMainMemoryConfig returns the configuration used by the default
// hierarchy: 1024 words at 100 latency units per access.
func DefaultMainMemoryConfig() MainMemoryConfig {
	return MainMemoryConfig{
		Name:       "MainMemory",
		Size:       1024,
		AccessTime: 100,
	}
}

// Validate returns an error describing the first invalid field.
func (c MainMemoryConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("memory name must not be empty")
	}
	if c.Size == 0 {
		return fmt.Errorf("memory size must be > 0")
	}
	return nil
}

// MainMemory is the terminal level of a hierarchy: a flat, zero-initialized
// array of words with a fixed access latency. It has no next level.
type MainMemory struct {
	name       string
	accessTime uint64
	data       []Word
	stats      Stats
}

// NewMainMemory creates a main memory from the given configuration.
func NewMainMemory(config MainMemoryConfig) (*MainMemory, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid memory config: %w", err)
	}

	return &MainMemory{
		name:       config.Name,
		accessTime: config.AccessTime,
		data:       make([]Word, config.Size),
	}, nil
}

// Name returns the memory's name.
func (m *MainMemory) Name() string {
	return m.name
}

// Size returns the number of addressable words.
func (m *MainMemory) Size() uint64 {
	return uint64(len(m.data))
}

// Read returns the word at addr.
func (m *MainMemory) Read(addr uint64) (Word, error) {
	if err := m.checkBounds(addr); err != nil {
		return 0, err
	}

	m.stats.Reads++
	m.stats.AccessTime += m.accessTime

	return m.data[addr], nil
}

// Write stores value at addr.
func (m *MainMemory) Write(addr uint64, value Word) error {
	if err := m.checkBounds(addr); err != nil {
		return err
	}

	m.stats.Writes++
	m.stats.AccessTime += m.accessTime
	m.data[addr] = value

	return nil
}

// WriteBackAll is a no-op: main memory buffers nothing.
func (m *MainMemory) WriteBackAll() error {
	return nil
}

// Stats returns a snapshot of the memory's counters.
func (m *MainMemory) Stats() Stats {
	return m.stats
}

// ResetStats clears the counters without touching stored words.
func (m *MainMemory) ResetStats() {
	m.stats = Stats{}
}

// Reset zeroes the stored words and the counters.
func (m *MainMemory) Reset() {
	for i := range m.data {
		m.data[i] = 0
	}
	m.stats = Stats{}
}

func (m *MainMemory) checkBounds(addr uint64) error {
	if addr >= uint64(len(m.data)) {
		return fmt.Errorf("%s: address %d outside [0, %d): %w",
			m.name, addr, len(m.data), ErrOutOfBounds)
	}
	return nil
}
