package intcode

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/colorfulnotion/intcode/log"
)

// Snapshot is the complete state of a machine. Slices are owned by the
// snapshot; Restore copies them again.
type Snapshot struct {
	Memory         []int64        `cbor:"1,keyasint"`
	PC             int64          `cbor:"2,keyasint"`
	RelativeBase   int64          `cbor:"3,keyasint"`
	Halted         bool           `cbor:"4,keyasint"`
	Blocked        bool           `cbor:"5,keyasint"`
	Input          []int64        `cbor:"6,keyasint,omitempty"`
	Output         []int64        `cbor:"7,keyasint,omitempty"`
	Steps          uint64         `cbor:"8,keyasint"`
	InstructionSet InstructionSet `cbor:"9,keyasint"`
}

func (m *Machine) Snapshot() *Snapshot {
	return &Snapshot{
		Memory:         append([]int64(nil), m.mem...),
		PC:             m.pc,
		RelativeBase:   m.base,
		Halted:         m.halted,
		Blocked:        m.blocked,
		Input:          append([]int64(nil), m.input...),
		Output:         append([]int64(nil), m.output...),
		Steps:          m.steps,
		InstructionSet: m.set,
	}
}

// Digest is the blake2b-256 hash of the executable state: memory, pc,
// relative base, halted flag and instruction set. Pending I/O is excluded.
func (s *Snapshot) Digest() [32]byte {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	word := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	word(int64(len(s.Memory)))
	for _, v := range s.Memory {
		word(v)
	}
	word(s.PC)
	word(s.RelativeBase)
	if s.Halted {
		word(1)
	} else {
		word(0)
	}
	word(int64(s.InstructionSet))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Restore replaces the machine state with s. The tracer and name are kept.
func (m *Machine) Restore(s *Snapshot) {
	m.mem = append([]int64(nil), s.Memory...)
	m.pc = s.PC
	m.base = s.RelativeBase
	m.halted = s.Halted
	m.blocked = s.Blocked
	m.input = append([]int64(nil), s.Input...)
	m.output = append([]int64(nil), s.Output...)
	m.steps = s.Steps
	m.set = s.InstructionSet
	m.table = tableFor(s.InstructionSet)
	log.Debug(log.IntcodeModule, "restored", "name", m.name, "pc", m.pc, "steps", m.steps, "capacity", len(m.mem))
}

// FromSnapshot builds a machine from saved state.
func FromSnapshot(s *Snapshot, cfg Config) *Machine {
	m := &Machine{tracer: cfg.Tracer, name: cfg.Name}
	m.Restore(s)
	return m
}
