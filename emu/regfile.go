// Package emu provides functional execution of toy assembly programs
// against a memory hierarchy.
package emu

import (
	"github.com/sarchlab/memsim/insts"
	"github.com/sarchlab/memsim/mem"
)

// RegFile represents the CPU's general-purpose register file.
type RegFile struct {
	// R holds the register values, indexed by insts.Reg.
	R [insts.RegCount]mem.Word
}

// Read returns the value of reg.
func (r *RegFile) Read(reg insts.Reg) mem.Word {
	return r.R[reg]
}

// Write sets the value of reg.
func (r *RegFile) Write(reg insts.Reg, value mem.Word) {
	r.R[reg] = value
}
