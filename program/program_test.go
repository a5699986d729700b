package program

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	p, err := Parse(" 1,9,10,3,\n2,3,11,0,99,30,40,50\n")
	require.NoError(t, err)
	assert.Equal(t, Program{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}, p)
	assert.Equal(t, "1,9,10,3,2,3,11,0,99,30,40,50", p.String())

	p, err = Parse("104,1125899906842624,99,")
	require.NoError(t, err)
	assert.Equal(t, Program{104, 1125899906842624, 99}, p)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("  \n")
	require.ErrorIs(t, err, vmerrors.ErrPEmptyProgram)

	_, err = Parse("1,2,x3,99")
	require.ErrorIs(t, err, vmerrors.ErrPInvalidWord)
	assert.Contains(t, err.Error(), "token 2")

	_, err = Parse("1,,2")
	require.ErrorIs(t, err, vmerrors.ErrPInvalidWord)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,0,0,0,99\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Program{1, 0, 0, 0, 99}, p)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestPatchCopies(t *testing.T) {
	p := MustParse("1,0,0,3,99")
	q, err := p.Patch(1, 12)
	require.NoError(t, err)
	q, err = q.Patch(2, 2)
	require.NoError(t, err)

	assert.Equal(t, Program{1, 12, 2, 3, 99}, q)
	assert.Equal(t, Program{1, 0, 0, 3, 99}, p)

	_, err = p.Patch(-1, 0)
	require.ErrorIs(t, err, vmerrors.ErrMNegativeAddress)
	_, err = p.Patch(5, 0)
	require.ErrorIs(t, err, vmerrors.ErrMAddressOutOfRange)
}

func TestCloneIsIndependent(t *testing.T) {
	p := MustParse("1,2,3")
	c := p.Clone()
	c[0] = 99
	assert.Equal(t, int64(1), p[0])
}
