package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intcode.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
modules = ["intcode", "scheduler"]

[machine]
tier = "A"

[scheduler]
quantum = 50
workers = 2

[storage]
path = "/var/lib/intcode"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "intcode,scheduler", cfg.LogModules())
	assert.Equal(t, 50, cfg.Scheduler.Quantum)
	assert.Equal(t, 2, cfg.Scheduler.Workers)
	assert.Equal(t, "/var/lib/intcode", cfg.Storage.Path)
	// untouched sections keep their defaults
	assert.Equal(t, intcode.DefaultPadding, cfg.Machine.Padding)
	assert.Equal(t, "> ", cfg.Console.Prompt)

	mc, err := cfg.MachineConfig()
	require.NoError(t, err)
	assert.Equal(t, intcode.InstructionSetA, mc.InstructionSet)
	assert.Equal(t, intcode.DefaultPadding, mc.Padding)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "[machine]\ntier = \"c\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown machine tier")

	_, err = Load(writeConfig(t, "[scheduler]\nquantum = -1\n"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "[log\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")

	_, err = Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestParseTier(t *testing.T) {
	set, err := ParseTier("")
	require.NoError(t, err)
	assert.Equal(t, intcode.InstructionSetB, set)

	set, err = ParseTier(" a ")
	require.NoError(t, err)
	assert.Equal(t, intcode.InstructionSetA, set)
}
