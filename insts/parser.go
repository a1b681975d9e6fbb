package insts

import (
	"fmt"
	"strconv"
	"strings"
)

var opByName = map[string]Op{
	"mov":   OpMOV,
	"load":  OpLOAD,
	"store": OpSTORE,
	"add":   OpADD,
	"sub":   OpSUB,
	"and":   OpAND,
	"or":    OpOR,
	"xor":   OpXOR,
	"not":   OpNOT,
	"cmp":   OpCMP,
	"jmp":   OpJMP,
	"jz":    OpJZ,
	"jge":   OpJGE,
	"halt":  OpHALT,
}

var regByName = map[string]Reg{
	"eax": RegEAX,
	"ebx": RegEBX,
	"ecx": RegECX,
	"edx": RegEDX,
	"esi": RegESI,
	"edi": RegEDI,
}

// Parse parses a program listing into instructions and labels.
func Parse(src string) (*Program, error) {
	prog := &Program{
		Labels: map[string]int{},
	}

	for i, line := range strings.Split(src, "\n") {
		lineNum := i + 1

		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			label := strings.TrimSpace(strings.TrimSuffix(line, ":"))
			if label == "" {
				return nil, fmt.Errorf("line %d: empty label", lineNum)
			}
			if _, exists := prog.Labels[label]; exists {
				return nil, fmt.Errorf("line %d: duplicate label %q", lineNum, label)
			}
			prog.Labels[label] = len(prog.Instructions)
			continue
		}

		inst, err := parseInstruction(line, lineNum)
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, inst)
	}

	for _, inst := range prog.Instructions {
		if inst.Target == "" {
			continue
		}
		if _, ok := prog.Labels[inst.Target]; !ok {
			return nil, fmt.Errorf("line %d: undefined label %q",
				inst.Line, inst.Target)
		}
	}

	return prog, nil
}

// parseInstruction parses one non-empty, label-free source line.
func parseInstruction(line string, lineNum int) (Instruction, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))

	op, ok := opByName[strings.ToLower(fields[0])]
	if !ok {
		return Instruction{}, fmt.Errorf("line %d: unknown instruction %q",
			lineNum, fields[0])
	}

	inst := Instruction{Op: op, Line: lineNum}
	operands := fields[1:]

	switch op {
	case OpHALT:
		if len(operands) != 0 {
			return Instruction{}, fmt.Errorf(
				"line %d: %v takes no operands", lineNum, op)
		}

	case OpJMP, OpJZ, OpJGE:
		if len(operands) != 1 {
			return Instruction{}, fmt.Errorf(
				"line %d: %v requires exactly 1 operand", lineNum, op)
		}
		inst.Target = operands[0]

	case OpNOT:
		if len(operands) != 1 {
			return Instruction{}, fmt.Errorf(
				"line %d: %v requires exactly 1 operand", lineNum, op)
		}

		dst, err := parseOperand(operands[0], lineNum)
		if err != nil {
			return Instruction{}, err
		}
		if dst.Kind != OperandRegister {
			return Instruction{}, fmt.Errorf(
				"line %d: %v requires a register operand", lineNum, op)
		}
		inst.Dst = dst

	default:
		if len(operands) != 2 {
			return Instruction{}, fmt.Errorf(
				"line %d: %v requires exactly 2 operands", lineNum, op)
		}

		dst, err := parseOperand(operands[0], lineNum)
		if err != nil {
			return Instruction{}, err
		}
		src, err := parseOperand(operands[1], lineNum)
		if err != nil {
			return Instruction{}, err
		}
		inst.Dst = dst
		inst.Src = src

		if err := checkOperandKinds(inst, lineNum); err != nil {
			return Instruction{}, err
		}
	}

	return inst, nil
}

// checkOperandKinds enforces the operand forms each two-operand opcode
// accepts.
func checkOperandKinds(inst Instruction, lineNum int) error {
	isMem := func(o Operand) bool {
		return o.Kind == OperandMemDirect || o.Kind == OperandMemRegister
	}

	switch inst.Op {
	case OpMOV:
		if inst.Dst.Kind == OperandImmediate {
			return fmt.Errorf(
				"line %d: mov destination must be a register or memory", lineNum)
		}
		if isMem(inst.Dst) && isMem(inst.Src) {
			return fmt.Errorf(
				"line %d: mov cannot move memory to memory", lineNum)
		}

	case OpLOAD:
		if inst.Dst.Kind != OperandRegister || !isMem(inst.Src) {
			return fmt.Errorf(
				"line %d: load requires a register destination and a memory source",
				lineNum)
		}

	case OpSTORE:
		if !isMem(inst.Dst) || isMem(inst.Src) {
			return fmt.Errorf(
				"line %d: store requires a memory destination and a register or immediate source",
				lineNum)
		}

	case OpADD, OpSUB, OpAND, OpOR, OpXOR:
		if inst.Dst.Kind != OperandRegister || isMem(inst.Src) {
			return fmt.Errorf(
				"line %d: %v requires a register destination and a register or immediate source",
				lineNum, inst.Op)
		}

	case OpCMP:
		if inst.Dst.Kind != OperandRegister || isMem(inst.Src) {
			return fmt.Errorf(
				"line %d: cmp requires a register and a register or immediate",
				lineNum)
		}
	}

	return nil
}

// parseOperand parses a single operand token.
func parseOperand(tok string, lineNum int) (Operand, error) {
	if strings.HasPrefix(tok, "#") {
		imm, err := strconv.ParseInt(tok[1:], 10, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: bad immediate %q",
				lineNum, tok)
		}
		return Operand{Kind: OperandImmediate, Imm: imm}, nil
	}

	if strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]") {
		inner := strings.TrimSpace(tok[1 : len(tok)-1])

		if reg, ok := regByName[strings.ToLower(inner)]; ok {
			return Operand{Kind: OperandMemRegister, Reg: reg}, nil
		}

		addr, err := strconv.ParseUint(inner, 0, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: bad memory operand %q",
				lineNum, tok)
		}
		return Operand{Kind: OperandMemDirect, Addr: addr}, nil
	}

	if reg, ok := regByName[strings.ToLower(tok)]; ok {
		return Operand{Kind: OperandRegister, Reg: reg}, nil
	}

	// Bare integers are accepted as immediates.
	if imm, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Operand{Kind: OperandImmediate, Imm: imm}, nil
	}

	return Operand{}, fmt.Errorf("line %d: unknown operand %q", lineNum, tok)
}
