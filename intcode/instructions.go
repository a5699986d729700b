package intcode

import (
	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/program"
	"github.com/colorfulnotion/intcode/vmerrors"
)

func init() {
	initDispatchTable()
}

// OpcodeHandler executes the instruction at pc and returns how far pc
// advances. Zero means the handler already placed pc (a taken jump) or the
// instruction stalled.
type OpcodeHandler func(m *Machine, modes *[program.MaxOperands]program.Mode) int64

var (
	dispatchTableA [100]OpcodeHandler
	dispatchTableB [100]OpcodeHandler
)

func initDispatchTable() {
	dispatchTableA[program.ADD] = handleADD
	dispatchTableA[program.MUL] = handleMUL
	dispatchTableA[program.HALT] = handleHALT

	dispatchTableB = dispatchTableA
	dispatchTableB[program.INPUT] = handleINPUT
	dispatchTableB[program.OUTPUT] = handleOUTPUT
	dispatchTableB[program.JUMP_IF_TRUE] = handleJUMP_IF_TRUE
	dispatchTableB[program.JUMP_IF_FALSE] = handleJUMP_IF_FALSE
	dispatchTableB[program.LESS_THAN] = handleLESS_THAN
	dispatchTableB[program.EQUALS] = handleEQUALS
	dispatchTableB[program.ADJUST_BASE] = handleADJUST_BASE
}

func tableFor(set InstructionSet) *[100]OpcodeHandler {
	if set == InstructionSetA {
		return &dispatchTableA
	}
	return &dispatchTableB
}

// Supports reports whether opcode is part of the instruction set.
func (s InstructionSet) Supports(opcode int) bool {
	return opcode >= 0 && opcode < 100 && tableFor(s)[opcode] != nil
}

// Step executes one instruction. It is a no-op on a halted machine. An input
// instruction with an empty queue marks the machine blocked and leaves pc
// where it is. Fatal errors panic with *Fault.
func (m *Machine) Step() {
	if m.halted {
		return
	}
	word := m.load(m.pc)
	opcode, modes := program.Decode(word)
	if opcode < 0 || opcode >= len(m.table) || m.table[opcode] == nil {
		m.fault(vmerrors.ErrMUnknownOpcode, m.pc)
	}
	for i := 0; i < program.OperandCount(opcode); i++ {
		if modes[i] < program.Position || modes[i] > program.Relative {
			m.fault(vmerrors.ErrMUnknownMode, m.pc)
		}
		if m.set == InstructionSetA && modes[i] != program.Position {
			m.fault(vmerrors.ErrMUnknownMode, m.pc)
		}
	}

	if m.tracer != nil {
		m.cur = &trace.Step{
			Step:      m.steps + 1,
			PC:        m.pc,
			Word:      word,
			Opcode:    opcode,
			OpcodeStr: program.OpcodeToString(opcode),
		}
	}

	pc := m.pc
	advance := m.table[opcode](m, &modes)
	m.pc += advance
	if !m.blocked {
		m.steps++
	}

	if m.cur != nil {
		m.cur.NextPC = m.pc
		m.cur.RelativeBase = m.base
		m.cur.Blocked = m.blocked
		m.cur.Halted = m.halted
		if err := m.tracer.WriteStep(m.cur); err != nil {
			log.Warn(log.IntcodeModule, "trace write failed", "name", m.name, "pc", pc, "err", err)
		}
		m.cur = nil
	}
}

func handleADD(m *Machine, modes *[program.MaxOperands]program.Mode) int64 {
	a := m.read(modes, 0)
	b := m.read(modes, 1)
	m.write(m.target(modes, 2), a+b)
	return 4
}

func handleMUL(m *Machine, modes *[program.MaxOperands]program.Mode) int64 {
	a := m.read(modes, 0)
	b := m.read(modes, 1)
	m.write(m.target(modes, 2), a*b)
	return 4
}

func handleINPUT(m *Machine, modes *[program.MaxOperands]program.Mode) int64 {
	addr := m.target(modes, 0)
	if len(m.input) == 0 {
		if !m.blocked {
			log.Trace(log.IntcodeModule, "blocked on input", "name", m.name, "pc", m.pc)
		}
		m.blocked = true
		return 0
	}
	v := m.input[0]
	m.input = m.input[1:]
	m.blocked = false
	m.write(addr, v)
	return 2
}

func handleOUTPUT(m *Machine, modes *[program.MaxOperands]program.Mode) int64 {
	v := m.read(modes, 0)
	m.output = append(m.output, v)
	if m.cur != nil {
		m.cur.SetOutput(v)
	}
	return 2
}

func handleJUMP_IF_TRUE(m *Machine, modes *[program.MaxOperands]program.Mode) int64 {
	cond := m.read(modes, 0)
	target := m.read(modes, 1)
	if cond != 0 {
		m.pc = target
		return 0
	}
	return 3
}

func handleJUMP_IF_FALSE(m *Machine, modes *[program.MaxOperands]program.Mode) int64 {
	cond := m.read(modes, 0)
	target := m.read(modes, 1)
	if cond == 0 {
		m.pc = target
		return 0
	}
	return 3
}

func handleLESS_THAN(m *Machine, modes *[program.MaxOperands]program.Mode) int64 {
	a := m.read(modes, 0)
	b := m.read(modes, 1)
	m.write(m.target(modes, 2), boolWord(a < b))
	return 4
}

func handleEQUALS(m *Machine, modes *[program.MaxOperands]program.Mode) int64 {
	a := m.read(modes, 0)
	b := m.read(modes, 1)
	m.write(m.target(modes, 2), boolWord(a == b))
	return 4
}

func handleADJUST_BASE(m *Machine, modes *[program.MaxOperands]program.Mode) int64 {
	m.base += m.read(modes, 0)
	return 2
}

func handleHALT(m *Machine, _ *[program.MaxOperands]program.Mode) int64 {
	m.halted = true
	log.Trace(log.IntcodeModule, "halted", "name", m.name, "pc", m.pc, "steps", m.steps+1)
	return 0
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
