// Package loader reads program and data files for the simulator.
package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/memsim/insts"
	"github.com/sarchlab/memsim/mem"
)

// Load reads and parses an assembly program file.
func Load(path string) (*insts.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	prog, err := insts.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return prog, nil
}

// LoadData seeds main memory from a data file. Each non-empty line holds
// an address and a value separated by whitespace; addresses accept
// decimal or 0x-prefixed hex, values are decimal. `;` starts a comment.
// Words are written directly to main memory, bypassing the caches; the
// writes count toward the memory's statistics, so callers that want a
// clean baseline can reset the memory's statistics afterwards.
func LoadData(path string, memory *mem.MainMemory) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read data file: %w", err)
	}

	for i, line := range strings.Split(string(src), "\n") {
		lineNum := i + 1

		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("%s: line %d: expected \"address value\"",
				path, lineNum)
		}

		addr, err := strconv.ParseUint(fields[0], 0, 64)
		if err != nil {
			return fmt.Errorf("%s: line %d: bad address %q",
				path, lineNum, fields[0])
		}

		value, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%s: line %d: bad value %q",
				path, lineNum, fields[1])
		}

		if err := memory.Write(addr, value); err != nil {
			return fmt.Errorf("%s: line %d: %w", path, lineNum, err)
		}
	}

	return nil
}
