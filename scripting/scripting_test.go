package scripting

import (
	"bytes"
	"testing"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engine(t *testing.T, listing string) (*Engine, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return New(intcode.New(program.MustParse(listing)), &out), &out
}

func TestEvalEcho(t *testing.T) {
	e, _ := engine(t, "3,0,4,0,99")
	v, err := e.Eval("vm.input(5); vm.run(); vm.output()")
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, v)

	v, err = e.Eval("vm.halted()")
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestEvalState(t *testing.T) {
	e, _ := engine(t, "1,0,0,0,99")
	v, err := e.Eval("vm.step(1); vm.pc()")
	require.NoError(t, err)
	assert.EqualValues(t, 4, v)

	v, err = e.Eval("vm.run(); [vm.steps(), vm.peek(0), vm.blocked()]")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(2), int64(2), false}, v)

	_, err = e.Eval("vm.poke(0, 77)")
	require.NoError(t, err)
	assert.Equal(t, int64(77), e.Machine().Peek(0))
}

func TestEvalText(t *testing.T) {
	e, out := engine(t, "104,72,104,105,104,10,104,500,99")
	v, err := e.Eval("vm.run(); var r = vm.text(); print(r.text.trim(), r.values[0]); r.text")
	require.NoError(t, err)
	assert.Equal(t, "Hi\n", v)
	assert.Equal(t, "Hi 500\n", out.String())
}

func TestEvalFault(t *testing.T) {
	e, _ := engine(t, "99")
	v, err := e.Eval(`var r = "missed"; try { vm.peek(-1) } catch (err) { r = "caught" }; r`)
	require.NoError(t, err)
	assert.Equal(t, "caught", v)

	_, err = e.Eval("vm.peek(-1)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NegativeAddress")

	_, err = e.Eval("vm.nosuch()")
	require.Error(t, err)
}

func TestSetMachine(t *testing.T) {
	e, _ := engine(t, "99")
	e.SetMachine(intcode.New(program.MustParse("104,9,99")))
	v, err := e.Eval("vm.run(); vm.output()")
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, v)

	v, err = e.Eval("vm.disasm(3)")
	require.NoError(t, err)
	assert.Contains(t, v, "OUTPUT")
}
