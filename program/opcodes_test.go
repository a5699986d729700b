package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		word   int64
		opcode int
		modes  [MaxOperands]Mode
	}{
		{1002, MUL, [MaxOperands]Mode{Position, Immediate, Position}},
		{99, HALT, [MaxOperands]Mode{}},
		{21107, LESS_THAN, [MaxOperands]Mode{Immediate, Immediate, Relative}},
		{204, OUTPUT, [MaxOperands]Mode{Relative, Position, Position}},
		{109, ADJUST_BASE, [MaxOperands]Mode{Immediate, Position, Position}},
	}
	for _, tt := range tests {
		opcode, modes := Decode(tt.word)
		assert.Equal(t, tt.opcode, opcode, "word %d", tt.word)
		assert.Equal(t, tt.modes, modes, "word %d", tt.word)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	assert.Equal(t, int64(1002), Encode(MUL, Position, Immediate))
	assert.Equal(t, int64(21107), Encode(LESS_THAN, Immediate, Immediate, Relative))
	assert.Equal(t, int64(99), Encode(HALT))
}

func TestOpcodeTable(t *testing.T) {
	assert.Equal(t, "JUMP_IF_FALSE", OpcodeToString(JUMP_IF_FALSE))
	assert.Equal(t, "UNKNOWN", OpcodeToString(42))
	assert.Equal(t, 4, Width(ADD))
	assert.Equal(t, 3, Width(JUMP_IF_TRUE))
	assert.Equal(t, 2, Width(ADJUST_BASE))
	assert.Equal(t, 1, Width(HALT))
	assert.Equal(t, 0, WriteOperand(INPUT))
	assert.Equal(t, 2, WriteOperand(EQUALS))
	assert.Equal(t, -1, WriteOperand(OUTPUT))

	assert.Equal(t, CategoryIO, GetInstructionCategory(INPUT))
	assert.Equal(t, CategoryArithmetic, GetInstructionCategory(LESS_THAN))
	assert.Equal(t, CategoryControlFlow, GetInstructionCategory(ADJUST_BASE))
	assert.Equal(t, "Unknown", GetCategoryName(GetInstructionCategory(12)))
	assert.Equal(t, "relative", Relative.String())
}
