// Package insts provides instruction definitions and parsing for the
// simulator's toy assembly language.
//
// Programs are plain text, one instruction per line. Operands are
// separated by spaces or commas; `;` starts a comment; a line ending in
// `:` defines a jump label. Supported operand forms:
//   - eax .. edi       register
//   - #42, 42          immediate
//   - [100]            direct memory address
//   - [eax]            register-indirect memory address
//
// Usage:
//
//	prog, err := insts.Parse(src)
//	fmt.Printf("Op: %v, Dst: %v\n", prog.Instructions[0].Op, prog.Instructions[0].Dst)
package insts

// Op represents an opcode of the toy instruction set.
type Op uint8

// Opcodes.
const (
	OpUnknown Op = iota
	OpMOV
	OpLOAD
	OpSTORE
	OpADD
	OpSUB
	OpAND
	OpOR
	OpXOR
	OpNOT
	OpCMP
	OpJMP
	OpJZ
	OpJGE
	OpHALT
)

var opNames = map[Op]string{
	OpMOV:   "mov",
	OpLOAD:  "load",
	OpSTORE: "store",
	OpADD:   "add",
	OpSUB:   "sub",
	OpAND:   "and",
	OpOR:    "or",
	OpXOR:   "xor",
	OpNOT:   "not",
	OpCMP:   "cmp",
	OpJMP:   "jmp",
	OpJZ:    "jz",
	OpJGE:   "jge",
	OpHALT:  "halt",
}

// String returns the lower-case mnemonic.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// Reg identifies one of the general-purpose registers.
type Reg uint8

// General-purpose registers.
const (
	RegEAX Reg = iota
	RegEBX
	RegECX
	RegEDX
	RegESI
	RegEDI

	// RegCount is the number of general-purpose registers.
	RegCount
)

var regNames = [RegCount]string{"eax", "ebx", "ecx", "edx", "esi", "edi"}

// String returns the register's assembly name.
func (r Reg) String() string {
	if r < RegCount {
		return regNames[r]
	}
	return "invalid"
}

// OperandKind distinguishes the operand forms.
type OperandKind uint8

// Operand kinds.
const (
	OperandNone OperandKind = iota
	OperandRegister
	OperandImmediate
	OperandMemDirect
	OperandMemRegister
)

// Operand is one decoded instruction operand.
type Operand struct {
	Kind OperandKind

	// Reg is set for OperandRegister and OperandMemRegister.
	Reg Reg

	// Imm is set for OperandImmediate.
	Imm int64

	// Addr is set for OperandMemDirect.
	Addr uint64
}

// Instruction is one decoded instruction.
type Instruction struct {
	Op Op

	// Dst is the first operand, Src the second. Either may be
	// OperandNone depending on the opcode.
	Dst Operand
	Src Operand

	// Target is the label a jump transfers control to.
	Target string

	// Line is the 1-based source line, kept for error reporting.
	Line int
}

// Program is a parsed program: the instruction list plus the label map
// from name to instruction index.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
}
