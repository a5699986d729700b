package intcode

import (
	"math"
	"testing"

	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/program"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const compare8 = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31," +
	"1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104," +
	"999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"

func runWith(t *testing.T, listing string, inputs ...int64) []int64 {
	t.Helper()
	m := New(program.MustParse(listing))
	m.SetInputs(inputs...)
	m.Run()
	require.True(t, m.IsHalted(), "machine should halt")
	return m.FlushOutput()
}

func TestTierAPrograms(t *testing.T) {
	tests := []struct {
		in, want program.Program
	}{
		{program.Program{1, 0, 0, 0, 99}, program.Program{2, 0, 0, 0, 99}},
		{program.Program{2, 3, 0, 3, 99}, program.Program{2, 3, 0, 6, 99}},
		{program.Program{2, 4, 4, 5, 99, 0}, program.Program{2, 4, 4, 5, 99, 9801}},
		{program.Program{1, 1, 1, 4, 99, 5, 6, 0, 99}, program.Program{30, 1, 1, 4, 2, 5, 6, 0, 99}},
		{program.Program{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}, program.Program{3500, 9, 10, 70, 2, 3, 11, 0, 99, 30, 40, 50}},
	}
	for _, set := range []InstructionSet{InstructionSetA, InstructionSetB} {
		for _, tt := range tests {
			m := NewWithConfig(tt.in, Config{InstructionSet: set})
			m.Run()
			require.True(t, m.IsHalted())
			assert.Equal(t, []int64(tt.want), m.Memory()[:len(tt.want)], "set %s program %v", set, tt.in)
		}
	}
}

func TestProgramImageNotAliased(t *testing.T) {
	p := program.Program{1, 0, 0, 0, 99}
	m := New(p)
	m.Run()
	assert.Equal(t, program.Program{1, 0, 0, 0, 99}, p)
	assert.Equal(t, len(p)+DefaultPadding, m.Capacity())
}

func TestModes(t *testing.T) {
	m := New(program.Program{1002, 4, 3, 4, 33})
	m.Run()
	assert.Equal(t, []int64{1002, 4, 3, 4, 99}, m.Memory()[:5])
}

func TestInputOutput(t *testing.T) {
	assert.Equal(t, []int64{42}, runWith(t, "3,0,4,0,99", 42))
}

func TestComparisons(t *testing.T) {
	programs := map[string]func(int64) int64{
		"3,9,8,9,10,9,4,9,99,-1,8": func(v int64) int64 { return boolWord(v == 8) },
		"3,9,7,9,10,9,4,9,99,-1,8": func(v int64) int64 { return boolWord(v < 8) },
		"3,3,1108,-1,8,3,4,3,99":   func(v int64) int64 { return boolWord(v == 8) },
		"3,3,1107,-1,8,3,4,3,99":   func(v int64) int64 { return boolWord(v < 8) },
	}
	for listing, want := range programs {
		for _, in := range []int64{-3, 7, 8, 9} {
			assert.Equal(t, []int64{want(in)}, runWith(t, listing, in), "%s input %d", listing, in)
		}
	}
}

func TestJumps(t *testing.T) {
	for _, listing := range []string{
		"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9",
		"3,3,1105,-1,9,1101,0,0,12,4,12,99,1",
	} {
		assert.Equal(t, []int64{0}, runWith(t, listing, 0), listing)
		assert.Equal(t, []int64{1}, runWith(t, listing, 5), listing)
		assert.Equal(t, []int64{1}, runWith(t, listing, -2), listing)
	}
}

func TestCompare8(t *testing.T) {
	assert.Equal(t, []int64{999}, runWith(t, compare8, 7))
	assert.Equal(t, []int64{1000}, runWith(t, compare8, 8))
	assert.Equal(t, []int64{1001}, runWith(t, compare8, 9))
}

func TestQuine(t *testing.T) {
	listing := "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"
	assert.Equal(t, []int64(program.MustParse(listing)), runWith(t, listing))
}

func TestLargeNumbers(t *testing.T) {
	out := runWith(t, "1102,34915192,34915192,7,4,7,99,0")
	require.Len(t, out, 1)
	assert.Equal(t, int64(1219070632396864), out[0])
	assert.Len(t, "1219070632396864", 16)

	assert.Equal(t, []int64{1125899906842624}, runWith(t, "104,1125899906842624,99"))
}

func TestArithmeticWraps(t *testing.T) {
	m := New(program.Program{1102, math.MaxInt64, 2, 7, 4, 7, 99, 0})
	m.Run()
	assert.Equal(t, []int64{-2}, m.FlushOutput())
}

func TestBlockingProtocol(t *testing.T) {
	m := New(program.Program{3, 0, 99})
	for i := 0; i < 3; i++ {
		m.Step()
		assert.True(t, m.IsBlocked())
		assert.False(t, m.IsHalted())
		assert.Equal(t, int64(0), m.PC())
	}
	assert.Equal(t, uint64(0), m.Steps(), "stalls are not counted")

	m.SetInput(17)
	assert.False(t, m.IsBlocked())
	m.Step()
	assert.Equal(t, int64(2), m.PC())
	assert.Equal(t, int64(17), m.Peek(0))

	m.Step()
	assert.True(t, m.IsHalted())
	m.Step()
	assert.Equal(t, uint64(2), m.Steps(), "halted machine does not step")
}

func TestRunStopsWhenBlocked(t *testing.T) {
	m := New(program.MustParse("3,0,4,0,3,0,4,0,99"))
	m.Run()
	assert.True(t, m.IsBlocked())
	m.SetInput(1)
	m.Run()
	assert.True(t, m.IsBlocked())
	v, ok := m.GetOutput()
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
	_, ok = m.GetOutput()
	assert.False(t, ok)

	m.SetInput(2)
	m.Run()
	assert.True(t, m.IsHalted())
	assert.Equal(t, []int64{2}, m.FlushOutput())
	assert.Empty(t, m.FlushOutput())
}

func TestRunSteps(t *testing.T) {
	m := New(program.MustParse("109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"))
	assert.Equal(t, 3, m.RunSteps(3))
	assert.Equal(t, uint64(3), m.Steps())
	assert.Equal(t, []int64{109}, m.FlushOutput())

	n := m.RunSteps(1 << 20)
	assert.True(t, m.IsHalted())
	assert.Equal(t, uint64(3+n), m.Steps())
	assert.Equal(t, 0, m.RunSteps(10))

	b := New(program.Program{3, 0, 99})
	assert.Equal(t, 0, b.RunSteps(5))
	assert.True(t, b.IsBlocked())
}

func TestJumpToSelfIsTaken(t *testing.T) {
	m := New(program.Program{1105, 1, 0})
	m.Step()
	m.Step()
	assert.Equal(t, int64(0), m.PC())
	assert.Equal(t, uint64(2), m.Steps())
}

func TestRelativeBase(t *testing.T) {
	// base += 2000, then write input through rb+19 and print it back
	m := New(program.MustParse("109,2000,203,19,204,19,99"))
	m.SetInput(55)
	m.Run()
	assert.Equal(t, int64(2000), m.RelativeBase())
	assert.Equal(t, int64(55), m.Peek(2019))
	assert.Equal(t, []int64{55}, m.FlushOutput())
}

func TestASCII(t *testing.T) {
	m := New(program.MustParse("104,72,104,105,104,10,104,1000,99"))
	m.Run()
	text, values := m.ReadASCII()
	assert.Equal(t, "Hi\n", text)
	assert.Equal(t, []int64{1000}, values)

	echo := New(program.MustParse("3,100,3,101,3,102,4,100,4,101,4,102,99"))
	echo.Run()
	require.True(t, echo.IsBlocked())
	echo.SendMessage("ab\n")
	assert.False(t, echo.IsBlocked())
	assert.Equal(t, 3, echo.PendingInput())
	echo.Run()
	assert.Equal(t, []int64{'a', 'b', '\n'}, echo.FlushOutput())
}

func TestCloneIsIndependent(t *testing.T) {
	m := New(program.MustParse("3,0,4,0,99"))
	m.Run()
	c := m.Clone()

	m.SetInput(1)
	m.Run()
	c.SetInput(2)
	c.Run()

	assert.Equal(t, []int64{1}, m.FlushOutput())
	assert.Equal(t, []int64{2}, c.FlushOutput())
	assert.Equal(t, int64(1), m.Peek(0))
	assert.Equal(t, int64(2), c.Peek(0))
}

func TestSnapshotRestore(t *testing.T) {
	m := New(program.MustParse("3,0,4,0,99"))
	m.Run()
	snap := m.Snapshot()
	assert.True(t, snap.Blocked)

	m.SetInput(1)
	m.Run()
	assert.Equal(t, []int64{1}, m.FlushOutput())

	m.Restore(snap)
	assert.True(t, m.IsBlocked())
	assert.False(t, m.IsHalted())
	m.SetInput(2)
	m.Run()
	assert.Equal(t, []int64{2}, m.FlushOutput())

	f := FromSnapshot(snap, Config{Name: "copy"})
	f.SetInput(3)
	f.Run()
	assert.Equal(t, []int64{3}, f.FlushOutput())
	assert.Equal(t, "copy", f.Name())
}

func TestSnapshotDigest(t *testing.T) {
	m := New(program.MustParse("3,0,4,0,99"))
	m.Run()
	a := m.Snapshot()
	b := m.Clone().Snapshot()
	assert.Equal(t, a.Digest(), b.Digest())

	// pending output does not change the digest
	b.Output = []int64{5}
	assert.Equal(t, a.Digest(), b.Digest())

	m.SetInput(9)
	m.Run()
	assert.NotEqual(t, a.Digest(), m.Snapshot().Digest())
}

func TestTracer(t *testing.T) {
	rec := &trace.Recorder{}
	m := NewWithConfig(program.Program{3, 7, 1002, 7, 3, 7, 99, 0}, Config{Tracer: rec, Padding: 4})
	m.Step()
	m.SetInput(33)
	m.Step()
	m.Step()

	require.Len(t, rec.Steps, 3)
	assert.True(t, rec.Steps[0].Blocked)
	assert.Equal(t, "INPUT", rec.Steps[1].OpcodeStr)
	require.NotNil(t, rec.Steps[1].WroteAddr)
	assert.Equal(t, int64(7), *rec.Steps[1].WroteAddr)

	mul := rec.Steps[2]
	assert.Equal(t, program.MUL, mul.Opcode)
	assert.Equal(t, []int{0, 1, 0}, mul.Modes)
	assert.Equal(t, []int64{7, 3, 7}, mul.Operands)
	assert.Equal(t, int64(99), *mul.WroteValue)
	assert.Equal(t, int64(6), mul.NextPC)
}

// requireFault runs fn, which must panic with a *Fault wrapping sentinel.
func requireFault(t *testing.T, sentinel error, fn func()) *Fault {
	t.Helper()
	var f *Fault
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a fault")
			var ok bool
			f, ok = AsFault(r)
			require.True(t, ok, "panic value %v", r)
		}()
		fn()
	}()
	require.ErrorIs(t, f, sentinel)
	return f
}

func TestFaults(t *testing.T) {
	f := requireFault(t, vmerrors.ErrMUnknownOpcode, New(program.Program{42}).Run)
	assert.Equal(t, int64(0), f.PC)
	assert.Equal(t, int64(42), f.Word)
	assert.Contains(t, f.Error(), "UnknownOpcode")

	requireFault(t, vmerrors.ErrMUnknownMode, New(program.Program{301, 0, 0, 0, 99}).Run)
	requireFault(t, vmerrors.ErrMImmediateWrite, New(program.Program{11101, 1, 1, 1, 99}).Run)

	f = requireFault(t, vmerrors.ErrMNegativeAddress, New(program.Program{1, -1, 0, 0, 99}).Run)
	assert.Equal(t, int64(-1), f.Addr)
	requireFault(t, vmerrors.ErrMNegativeAddress, New(program.Program{204, -1, 99}).Run)

	small := NewWithConfig(program.Program{1, 100, 0, 0, 99}, Config{Padding: -1})
	f = requireFault(t, vmerrors.ErrMAddressOutOfRange, small.Run)
	assert.Equal(t, int64(100), f.Addr)

	// running off the end of memory
	requireFault(t, vmerrors.ErrMAddressOutOfRange, NewWithConfig(program.Program{1, 0, 0, 0}, Config{Padding: -1}).Run)
}

func TestTierARejectsTierBFeatures(t *testing.T) {
	a := NewWithConfig(program.Program{3, 0, 99}, Config{InstructionSet: InstructionSetA})
	requireFault(t, vmerrors.ErrMUnknownOpcode, a.Run)

	a = NewWithConfig(program.Program{1002, 4, 3, 4, 33}, Config{InstructionSet: InstructionSetA})
	requireFault(t, vmerrors.ErrMUnknownMode, a.Run)

	assert.True(t, InstructionSetA.Supports(program.MUL))
	assert.False(t, InstructionSetA.Supports(program.OUTPUT))
	assert.True(t, InstructionSetB.Supports(program.ADJUST_BASE))
	assert.False(t, InstructionSetB.Supports(100))
}

func TestFaultKeepsInput(t *testing.T) {
	m := New(program.Program{3, -1, 99})
	m.SetInput(7)
	requireFault(t, vmerrors.ErrMNegativeAddress, m.Step)
	assert.Equal(t, 1, m.PendingInput())
	assert.Equal(t, int64(0), m.PC())
}
