package program

import "fmt"

// Intcode opcodes. The low two decimal digits of an instruction word select one.
const (
	ADD           = 1
	MUL           = 2
	INPUT         = 3
	OUTPUT        = 4
	JUMP_IF_TRUE  = 5
	JUMP_IF_FALSE = 6
	LESS_THAN     = 7
	EQUALS        = 8
	ADJUST_BASE   = 9
	HALT          = 99
)

// Mode is an operand addressing mode, taken from the hundreds digit onward.
type Mode int

const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MaxOperands is the widest operand list of any instruction.
const MaxOperands = 3

// Decode splits an instruction word into its opcode and the modes of its
// three operand slots. Missing mode digits read as Position.
func Decode(word int64) (opcode int, modes [MaxOperands]Mode) {
	opcode = int(word % 100)
	rest := word / 100
	for i := range modes {
		modes[i] = Mode(rest % 10)
		rest /= 10
	}
	return opcode, modes
}

// Encode is the inverse of Decode for the first len(modes) operands.
func Encode(opcode int, modes ...Mode) int64 {
	word := int64(opcode)
	scale := int64(100)
	for _, m := range modes {
		word += int64(m) * scale
		scale *= 10
	}
	return word
}

// OpcodeToString returns the string representation of an opcode
func OpcodeToString(opcode int) string {
	name, exists := opcodeNames[opcode]
	if !exists {
		return "UNKNOWN"
	}
	return name
}

var opcodeNames = map[int]string{
	ADD:           "ADD",
	MUL:           "MUL",
	INPUT:         "INPUT",
	OUTPUT:        "OUTPUT",
	JUMP_IF_TRUE:  "JUMP_IF_TRUE",
	JUMP_IF_FALSE: "JUMP_IF_FALSE",
	LESS_THAN:     "LESS_THAN",
	EQUALS:        "EQUALS",
	ADJUST_BASE:   "ADJUST_BASE",
	HALT:          "HALT",
}

// IsKnown reports whether opcode belongs to the full instruction set.
func IsKnown(opcode int) bool {
	_, ok := opcodeNames[opcode]
	return ok
}

// OperandCount returns how many operands follow the instruction word.
func OperandCount(opcode int) int {
	switch opcode {
	case ADD, MUL, LESS_THAN, EQUALS:
		return 3
	case JUMP_IF_TRUE, JUMP_IF_FALSE:
		return 2
	case INPUT, OUTPUT, ADJUST_BASE:
		return 1
	default:
		return 0
	}
}

// Width is the instruction width in words, opcode word included.
func Width(opcode int) int {
	return 1 + OperandCount(opcode)
}

// WriteOperand returns the index of the operand the instruction writes to, or -1.
func WriteOperand(opcode int) int {
	switch opcode {
	case ADD, MUL, LESS_THAN, EQUALS:
		return 2
	case INPUT:
		return 0
	default:
		return -1
	}
}

// IsBasicBlockTerminator returns true if the opcode terminates a basic block
func IsBasicBlockTerminator(opcode int) bool {
	switch opcode {
	case JUMP_IF_TRUE, JUMP_IF_FALSE, HALT:
		return true
	}
	return false
}

// InstructionCategory represents the category of an instruction
type InstructionCategory int

const (
	CategoryUnknown InstructionCategory = iota
	CategoryArithmetic
	CategoryIO
	CategoryControlFlow
)

// GetInstructionCategory returns the category of an instruction
func GetInstructionCategory(opcode int) InstructionCategory {
	switch opcode {
	case ADD, MUL, LESS_THAN, EQUALS:
		return CategoryArithmetic
	case INPUT, OUTPUT:
		return CategoryIO
	case JUMP_IF_TRUE, JUMP_IF_FALSE, ADJUST_BASE, HALT:
		return CategoryControlFlow
	default:
		return CategoryUnknown
	}
}

// GetCategoryName returns the string name of an instruction category
func GetCategoryName(category InstructionCategory) string {
	switch category {
	case CategoryArithmetic:
		return "Arithmetic"
	case CategoryIO:
		return "IO"
	case CategoryControlFlow:
		return "ControlFlow"
	default:
		return "Unknown"
	}
}
