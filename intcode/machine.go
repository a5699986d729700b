package intcode

import (
	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/program"
)

// DefaultPadding is the number of zero cells appended after the program image.
const DefaultPadding = 10000

// InstructionSet selects which opcodes and addressing modes a machine accepts.
type InstructionSet int

const (
	// InstructionSetB is the full machine: ten opcodes, three modes, I/O queues.
	InstructionSetB InstructionSet = iota
	// InstructionSetA accepts only ADD, MUL and HALT in position mode.
	InstructionSetA
)

func (s InstructionSet) String() string {
	switch s {
	case InstructionSetA:
		return "A"
	case InstructionSetB:
		return "B"
	default:
		return "?"
	}
}

type Config struct {
	// Padding is the count of zero cells after the image. Zero selects
	// DefaultPadding; a negative value means no padding at all.
	Padding        int
	InstructionSet InstructionSet
	Tracer         trace.Tracer
	// Name tags log lines, e.g. the amplifier a machine runs.
	Name string
}

// Machine is an Intcode virtual machine. It is not safe for concurrent use;
// give each goroutine its own machine (see Clone).
type Machine struct {
	mem     []int64
	pc      int64
	base    int64
	halted  bool
	blocked bool
	input   []int64
	output  []int64
	steps   uint64

	set    InstructionSet
	table  *[100]OpcodeHandler
	tracer trace.Tracer
	name   string

	// per-step scratch for the tracer
	cur *trace.Step
}

// New builds a full instruction set machine with default padding.
func New(p program.Program) *Machine {
	return NewWithConfig(p, Config{})
}

// NewWithConfig copies p into fresh memory; the caller's slice is never aliased.
func NewWithConfig(p program.Program, cfg Config) *Machine {
	padding := cfg.Padding
	switch {
	case padding == 0:
		padding = DefaultPadding
	case padding < 0:
		padding = 0
	}
	mem := make([]int64, len(p)+padding)
	copy(mem, p)
	m := &Machine{
		mem:    mem,
		set:    cfg.InstructionSet,
		table:  tableFor(cfg.InstructionSet),
		tracer: cfg.Tracer,
		name:   cfg.Name,
	}
	log.Trace(log.IntcodeModule, "machine created", "name", m.name, "words", len(p), "capacity", len(mem), "set", m.set)
	return m
}

func (m *Machine) IsHalted() bool  { return m.halted }
func (m *Machine) IsBlocked() bool { return m.blocked }
func (m *Machine) PC() int64       { return m.pc }

func (m *Machine) RelativeBase() int64 { return m.base }

// Steps is the number of instructions executed. Stalled inputs do not count.
func (m *Machine) Steps() uint64 { return m.steps }

// Capacity is the fixed memory size.
func (m *Machine) Capacity() int { return len(m.mem) }

func (m *Machine) InstructionSet() InstructionSet { return m.set }

func (m *Machine) Name() string { return m.name }

// Memory returns a copy of the whole memory.
func (m *Machine) Memory() []int64 {
	return append([]int64(nil), m.mem...)
}

// Peek reads one cell, with the same fatal address checks as the machine.
func (m *Machine) Peek(addr int64) int64 {
	return m.load(addr)
}

// Poke writes one cell, e.g. to patch a program before running it.
func (m *Machine) Poke(addr, value int64) {
	m.store(addr, value)
}

// Run steps until the machine halts or blocks on input.
func (m *Machine) Run() {
	for !m.halted && !m.blocked {
		m.Step()
	}
}

// RunSteps executes at most n instructions, stopping early on halt or block,
// and returns how many ran.
func (m *Machine) RunSteps(n int) int {
	ran := 0
	for ran < n && !m.halted && !m.blocked {
		before := m.steps
		m.Step()
		ran += int(m.steps - before)
	}
	return ran
}

// Clone returns an independent deep copy, queues included. The tracer is shared.
func (m *Machine) Clone() *Machine {
	c := *m
	c.mem = append([]int64(nil), m.mem...)
	c.input = append([]int64(nil), m.input...)
	c.output = append([]int64(nil), m.output...)
	c.cur = nil
	return &c
}
