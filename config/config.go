// Package config handles intcode.toml settings for the command line tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/colorfulnotion/intcode/intcode"
)

// FileName is the config file looked up in the working directory.
const FileName = "intcode.toml"

type Config struct {
	Log       Log       `toml:"log"`
	Machine   Machine   `toml:"machine"`
	Scheduler Scheduler `toml:"scheduler"`
	Storage   Storage   `toml:"storage"`
	Console   Console   `toml:"console"`
}

type Log struct {
	Level   string   `toml:"level"`
	Modules []string `toml:"modules"`
}

type Machine struct {
	Padding int    `toml:"padding"`
	Tier    string `toml:"tier"` // "a" or "b"
}

type Scheduler struct {
	Quantum int `toml:"quantum"`
	Workers int `toml:"workers"`
}

type Storage struct {
	Path string `toml:"path"`
}

type Console struct {
	History string `toml:"history"`
	Prompt  string `toml:"prompt"`
}

func Default() *Config {
	return &Config{
		Log:     Log{Level: "info"},
		Machine: Machine{Padding: intcode.DefaultPadding, Tier: "b"},
		Storage: Storage{Path: filepath.Join(os.TempDir(), "intcode-snapshots")},
		Console: Console{
			History: filepath.Join(os.TempDir(), "intcode_history.txt"),
			Prompt:  "> ",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// path is the default FileName.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = FileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == FileName {
			return cfg, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := ParseTier(c.Machine.Tier); err != nil {
		return err
	}
	if c.Scheduler.Quantum < 0 {
		return fmt.Errorf("scheduler.quantum must not be negative, got %d", c.Scheduler.Quantum)
	}
	if c.Scheduler.Workers < 0 {
		return fmt.Errorf("scheduler.workers must not be negative, got %d", c.Scheduler.Workers)
	}
	return nil
}

// ParseTier maps "a"/"b" to an instruction set.
func ParseTier(tier string) (intcode.InstructionSet, error) {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "a":
		return intcode.InstructionSetA, nil
	case "b", "":
		return intcode.InstructionSetB, nil
	default:
		return 0, fmt.Errorf("unknown machine tier %q (want a or b)", tier)
	}
}

// MachineConfig converts the machine section for intcode.NewWithConfig.
func (c *Config) MachineConfig() (intcode.Config, error) {
	set, err := ParseTier(c.Machine.Tier)
	if err != nil {
		return intcode.Config{}, err
	}
	return intcode.Config{Padding: c.Machine.Padding, InstructionSet: set}, nil
}

// LogModules joins the enabled modules for log.EnableModules.
func (c *Config) LogModules() string {
	return strings.Join(c.Log.Modules, ",")
}
