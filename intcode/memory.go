package intcode

import (
	"github.com/colorfulnotion/intcode/program"
	"github.com/colorfulnotion/intcode/vmerrors"
)

func (m *Machine) checkAddr(addr int64) {
	if addr < 0 {
		m.fault(vmerrors.ErrMNegativeAddress, addr)
	}
	if addr >= int64(len(m.mem)) {
		m.fault(vmerrors.ErrMAddressOutOfRange, addr)
	}
}

func (m *Machine) load(addr int64) int64 {
	m.checkAddr(addr)
	return m.mem[addr]
}

func (m *Machine) store(addr, value int64) {
	m.checkAddr(addr)
	m.mem[addr] = value
}

// operand returns the raw word of operand slot i of the current instruction.
func (m *Machine) operand(i int) int64 {
	return m.load(m.pc + 1 + int64(i))
}

// read resolves operand slot i for reading.
func (m *Machine) read(modes *[program.MaxOperands]program.Mode, i int) int64 {
	raw := m.operand(i)
	if m.cur != nil {
		m.cur.Operands = append(m.cur.Operands, raw)
		m.cur.Modes = append(m.cur.Modes, int(modes[i]))
	}
	switch modes[i] {
	case program.Position:
		return m.load(raw)
	case program.Immediate:
		return raw
	case program.Relative:
		return m.load(m.base + raw)
	}
	m.fault(vmerrors.ErrMUnknownMode, 0)
	return 0
}

// target resolves operand slot i as a write address. The address is
// range checked here so the later store cannot fail after other effects.
func (m *Machine) target(modes *[program.MaxOperands]program.Mode, i int) int64 {
	raw := m.operand(i)
	if m.cur != nil {
		m.cur.Operands = append(m.cur.Operands, raw)
		m.cur.Modes = append(m.cur.Modes, int(modes[i]))
	}
	var addr int64
	switch modes[i] {
	case program.Position:
		addr = raw
	case program.Relative:
		addr = m.base + raw
	case program.Immediate:
		m.fault(vmerrors.ErrMImmediateWrite, raw)
	default:
		m.fault(vmerrors.ErrMUnknownMode, 0)
	}
	m.checkAddr(addr)
	return addr
}

func (m *Machine) write(addr, value int64) {
	m.store(addr, value)
	if m.cur != nil {
		m.cur.SetWrite(addr, value)
	}
}
