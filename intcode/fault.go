package intcode

import (
	"errors"
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// Fault is the panic value of a machine that hit an unrecoverable error:
// an unknown opcode or mode, a write through an immediate operand, or an
// address outside memory. It unwraps to the vmerrors sentinel.
type Fault struct {
	Err  error
	PC   int64
	Word int64
	Addr int64 // offending address for memory faults
}

func (f *Fault) Error() string {
	switch {
	case errors.Is(f.Err, vmerrors.ErrMNegativeAddress), errors.Is(f.Err, vmerrors.ErrMAddressOutOfRange):
		return fmt.Sprintf("intcode fault at pc=%d word=%d addr=%d: %s", f.PC, f.Word, f.Addr, vmerrors.GetErrorName(f.Err))
	default:
		return fmt.Sprintf("intcode fault at pc=%d word=%d: %s", f.PC, f.Word, vmerrors.GetErrorName(f.Err))
	}
}

func (f *Fault) Unwrap() error { return f.Err }

func (m *Machine) fault(err error, addr int64) {
	f := &Fault{Err: err, PC: m.pc, Addr: addr}
	if m.pc >= 0 && m.pc < int64(len(m.mem)) {
		f.Word = m.mem[m.pc]
	}
	panic(f)
}

// AsFault converts a recovered panic value to a Fault. Other values report false.
func AsFault(r any) (*Fault, bool) {
	f, ok := r.(*Fault)
	return f, ok
}
