package emu

import (
	"fmt"

	"github.com/sarchlab/memsim/insts"
	"github.com/sarchlab/memsim/mem"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the program terminated (HALT or end of program).
	Halted bool

	// Err is set if an error occurred during execution. Memory-hierarchy
	// errors abort the run rather than being skipped.
	Err error
}

// Emulator executes parsed programs. All memory operands go through the
// top of a memory hierarchy, so cache behavior can be observed
// instruction by instruction.
type Emulator struct {
	regFile *RegFile
	memory  mem.Level
	program *insts.Program

	pc int

	// Comparison flags set by CMP.
	cmpZero     bool
	cmpNegative bool

	instructionCount uint64
	maxInstructions  uint64
}

// Option is a functional option for configuring the Emulator.
type Option func(*Emulator)

// WithMaxInstructions sets the maximum number of instructions to
// execute. A value of 0 means no limit.
func WithMaxInstructions(max uint64) Option {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates an emulator that issues its memory accesses to the
// given level, normally the top of a hierarchy.
func NewEmulator(memory mem.Level, opts ...Option) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		memory:  memory,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// LoadProgram installs a parsed program and resets execution state.
func (e *Emulator) LoadProgram(program *insts.Program) {
	e.program = program
	e.pc = 0
	e.cmpZero = false
	e.cmpNegative = false
	e.instructionCount = 0
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// PC returns the index of the next instruction to execute.
func (e *Emulator) PC() int {
	return e.pc
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.program == nil {
		return StepResult{Err: fmt.Errorf("no program loaded")}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: fmt.Errorf("max instructions reached")}
	}

	// Running off the end of the program halts it.
	if e.pc >= len(e.program.Instructions) {
		return StepResult{Halted: true}
	}

	inst := e.program.Instructions[e.pc]
	e.pc++

	result := e.execute(inst)
	e.instructionCount++

	return result
}

// Run executes instructions until the program halts or an error occurs.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
		if result.Halted {
			return nil
		}
	}
}

// execute dispatches one instruction.
func (e *Emulator) execute(inst insts.Instruction) StepResult {
	switch inst.Op {
	case insts.OpHALT:
		return StepResult{Halted: true}

	case insts.OpMOV, insts.OpLOAD, insts.OpSTORE:
		value, err := e.operandValue(inst.Src)
		if err != nil {
			return StepResult{Err: e.fail(inst, err)}
		}
		if err := e.writeOperand(inst.Dst, value); err != nil {
			return StepResult{Err: e.fail(inst, err)}
		}

	case insts.OpADD, insts.OpSUB, insts.OpAND, insts.OpOR, insts.OpXOR:
		value, err := e.operandValue(inst.Src)
		if err != nil {
			return StepResult{Err: e.fail(inst, err)}
		}

		current := e.regFile.Read(inst.Dst.Reg)
		e.regFile.Write(inst.Dst.Reg, alu(inst.Op, current, value))

	case insts.OpNOT:
		e.regFile.Write(inst.Dst.Reg, ^e.regFile.Read(inst.Dst.Reg))

	case insts.OpCMP:
		b, err := e.operandValue(inst.Src)
		if err != nil {
			return StepResult{Err: e.fail(inst, err)}
		}
		a := e.regFile.Read(inst.Dst.Reg)
		e.cmpZero = a == b
		e.cmpNegative = a < b

	case insts.OpJMP:
		e.pc = e.program.Labels[inst.Target]

	case insts.OpJZ:
		if e.cmpZero {
			e.pc = e.program.Labels[inst.Target]
		}

	case insts.OpJGE:
		if !e.cmpNegative {
			e.pc = e.program.Labels[inst.Target]
		}

	default:
		return StepResult{
			Err: fmt.Errorf("line %d: unknown instruction", inst.Line),
		}
	}

	return StepResult{}
}

// alu applies a two-operand ALU operation.
func alu(op insts.Op, a, b mem.Word) mem.Word {
	switch op {
	case insts.OpADD:
		return a + b
	case insts.OpSUB:
		return a - b
	case insts.OpAND:
		return a & b
	case insts.OpOR:
		return a | b
	default:
		return a ^ b
	}
}

// operandValue evaluates a source operand. Memory operands read through
// the hierarchy.
func (e *Emulator) operandValue(op insts.Operand) (mem.Word, error) {
	switch op.Kind {
	case insts.OperandRegister:
		return e.regFile.Read(op.Reg), nil
	case insts.OperandImmediate:
		return op.Imm, nil
	case insts.OperandMemDirect:
		return e.memory.Read(op.Addr)
	case insts.OperandMemRegister:
		addr, err := e.effectiveAddr(op.Reg)
		if err != nil {
			return 0, err
		}
		return e.memory.Read(addr)
	default:
		return 0, fmt.Errorf("missing operand")
	}
}

// writeOperand stores a value to a destination operand. Memory operands
// write through the hierarchy.
func (e *Emulator) writeOperand(op insts.Operand, value mem.Word) error {
	switch op.Kind {
	case insts.OperandRegister:
		e.regFile.Write(op.Reg, value)
		return nil
	case insts.OperandMemDirect:
		return e.memory.Write(op.Addr, value)
	case insts.OperandMemRegister:
		addr, err := e.effectiveAddr(op.Reg)
		if err != nil {
			return err
		}
		return e.memory.Write(addr, value)
	default:
		return fmt.Errorf("operand cannot be written")
	}
}

// effectiveAddr reads a register as an address, rejecting negatives.
func (e *Emulator) effectiveAddr(reg insts.Reg) (uint64, error) {
	v := e.regFile.Read(reg)
	if v < 0 {
		return 0, fmt.Errorf("negative address %d in register %v: %w",
			v, reg, mem.ErrOutOfBounds)
	}
	return uint64(v), nil
}

// fail annotates an execution error with the source line.
func (e *Emulator) fail(inst insts.Instruction, err error) error {
	return fmt.Errorf("line %d: %v: %w", inst.Line, inst.Op, err)
}
