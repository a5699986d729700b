// intcode runs, inspects and connects Intcode programs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/config"
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/trace"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/program"
	"github.com/colorfulnotion/intcode/scheduler"
	"github.com/colorfulnotion/intcode/scripting"
	"github.com/colorfulnotion/intcode/springscript"
	"github.com/colorfulnotion/intcode/storage"
)

var (
	configPath string
	logLevel   string
	debug      string

	cfg = config.Default()
)

func main() {
	var rootCmd = &cobra.Command{
		Use:           "intcode",
		Short:         "Intcode virtual machine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			log.InitLogger(cfg.Log.Level)
			log.EnableModules(cfg.LogModules())
			log.EnableModules(debug)
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "Config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&debug, "debug", "", "Debug modules to enable: intcode,scheduler,springscript,storage,cli or all")

	rootCmd.AddCommand(
		newRunCmd(),
		newDisasmCmd(),
		newStatsCmd(),
		newAmplifyCmd(),
		newConsoleCmd(),
		newSpringCmd(),
		newSnapshotsCmd(),
		newTraceDiffCmd(),
		newScriptCmd(),
		newVersionCmd(),
	)

	if err := execute(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs the command tree. A machine fault that escapes a command is
// reported once and ends the process.
func execute(root *cobra.Command) error {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := intcode.AsFault(r); ok {
				log.Crit(log.CLIModule, "machine fault", "pc", f.PC, "word", f.Word, "err", f.Err)
			}
			panic(r)
		}
	}()
	return root.Execute()
}

// guard runs f and returns a machine fault as an error.
func guard(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fault, ok := intcode.AsFault(r)
			if !ok {
				panic(r)
			}
			err = fault
		}
	}()
	f()
	return nil
}

type machineFlags struct {
	tier    string
	padding int
}

func (f *machineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tier, "tier", "", "Instruction set a or b (default from config)")
	cmd.Flags().IntVar(&f.padding, "padding", 0, "Zero cells after the program, -1 for none (default from config)")
}

func (f *machineFlags) machineConfig(cmd *cobra.Command) (intcode.Config, error) {
	c := *cfg
	if cmd.Flags().Changed("tier") {
		c.Machine.Tier = f.tier
	}
	if cmd.Flags().Changed("padding") {
		c.Machine.Padding = f.padding
	}
	return c.MachineConfig()
}

func (f *machineFlags) load(cmd *cobra.Command, path string) (*intcode.Machine, error) {
	p, err := program.Load(path)
	if err != nil {
		return nil, err
	}
	mcfg, err := f.machineConfig(cmd)
	if err != nil {
		return nil, err
	}
	return intcode.NewWithConfig(p, mcfg), nil
}

// parseAssignment reads "addr=value".
func parseAssignment(s string) (int, int64, error) {
	a, v, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("want addr=value, got %q", s)
	}
	addr, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("address in %q: %w", s, err)
	}
	value, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("value in %q: %w", s, err)
	}
	return addr, value, nil
}

// unescape expands \n and \t so ASCII input can be given on one line.
func unescape(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(s)
}

func formatWords(vs []int64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func openStore() (*storage.SnapshotStore, error) {
	return storage.NewSnapshotStore(cfg.Storage.Path)
}

func newRunCmd() *cobra.Command {
	var (
		mf         machineFlags
		inputs     []int64
		ascii      string
		text       bool
		sets       []string
		tracePath  string
		traceLimit uint64
		dump       int
		save       string
		note       string
	)
	var runCmd = &cobra.Command{
		Use:   "run FILE",
		Short: "Run a program until it halts or blocks on input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := program.Load(args[0])
			if err != nil {
				return err
			}
			for _, kv := range sets {
				addr, v, err := parseAssignment(kv)
				if err != nil {
					return err
				}
				if p, err = p.Patch(addr, v); err != nil {
					return err
				}
			}
			mcfg, err := mf.machineConfig(cmd)
			if err != nil {
				return err
			}
			if tracePath != "" {
				tw, err := trace.NewJSONLWriterFile(tracePath)
				if err != nil {
					return err
				}
				defer func() {
					written, dropped := tw.Counts()
					log.Info(log.CLIModule, "trace written", "path", tracePath, "steps", written, "dropped", dropped)
					tw.Close()
				}()
				tw.SetLimit(traceLimit)
				mcfg.Tracer = tw
			}

			m := intcode.NewWithConfig(p, mcfg)
			m.SetInputs(inputs...)
			if ascii != "" {
				m.SendMessage(unescape(ascii))
				text = true
			}
			start := time.Now()
			m.Run()
			log.Info(log.CLIModule, "run finished", "steps", m.Steps(), "halted", m.IsHalted(), "elapsed", time.Since(start))

			if text {
				out, values := m.ReadASCII()
				fmt.Print(out)
				if len(values) > 0 {
					fmt.Println(formatWords(values))
				}
			} else if out := m.FlushOutput(); len(out) > 0 {
				fmt.Println(formatWords(out))
			}
			if m.IsBlocked() {
				log.Warn(log.CLIModule, "machine blocked on input", "pc", m.PC())
			}
			if dump > 0 {
				mem := m.Memory()
				fmt.Println(formatWords(mem[:min(dump, len(mem))]))
			}
			if save != "" {
				store, err := openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Put(save, m.Snapshot(), note); err != nil {
					return err
				}
				fmt.Printf("saved snapshot %q\n", save)
			}
			return nil
		},
	}
	mf.register(runCmd)
	runCmd.Flags().Int64SliceVarP(&inputs, "input", "i", nil, "Input values, comma separated")
	runCmd.Flags().StringVar(&ascii, "ascii", "", `ASCII input, \n for newline (implies --text)`)
	runCmd.Flags().BoolVar(&text, "text", false, "Print output values 0..127 as text")
	runCmd.Flags().StringArrayVar(&sets, "set", nil, "Patch memory before running, addr=value (repeatable)")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write a JSONL step trace to this file")
	runCmd.Flags().Uint64Var(&traceLimit, "trace-limit", 0, "Stop tracing after N steps (0 for no limit)")
	runCmd.Flags().IntVar(&dump, "dump", 0, "Print the first N memory cells after the run")
	runCmd.Flags().StringVar(&save, "save", "", "Save the final machine state under this name")
	runCmd.Flags().StringVar(&note, "note", "", "Note stored with --save")
	return runCmd
}

func newDisasmCmd() *cobra.Command {
	var blocks bool
	var disasmCmd = &cobra.Command{
		Use:   "disasm FILE",
		Short: "Disassemble a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := program.Load(args[0])
			if err != nil {
				return err
			}
			if blocks {
				fmt.Print(p.Tree().String())
				return nil
			}
			fmt.Print(p.Disassemble())
			return nil
		},
	}
	disasmCmd.Flags().BoolVar(&blocks, "blocks", false, "Show basic blocks as a tree")
	return disasmCmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Static statistics of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := program.Load(args[0])
			if err != nil {
				return err
			}
			s := p.Analyze()
			fmt.Printf("words:        %d\n", s.Words)
			fmt.Printf("instructions: %d\n", s.InstructionCount)
			fmt.Printf("data words:   %d\n", s.DataWords)
			fmt.Printf("basic blocks: %d\n", s.BasicBlockCount)
			fmt.Printf("jump targets: %v\n", s.JumpTargets)
			opcodes := make([]int, 0, len(s.OpcodeDistribution))
			for op := range s.OpcodeDistribution {
				opcodes = append(opcodes, op)
			}
			sort.Ints(opcodes)
			for _, op := range opcodes {
				fmt.Printf("  %-13s %-12s %d\n", program.OpcodeToString(op),
					program.GetCategoryName(program.GetInstructionCategory(op)), s.OpcodeDistribution[op])
			}
			return nil
		},
	}
}

func newAmplifyCmd() *cobra.Command {
	var (
		phases   []int64
		feedback bool
		workers  int
		quantum  int
	)
	var amplifyCmd = &cobra.Command{
		Use:   "amplify FILE",
		Short: "Search phase orderings of an amplifier chain for the highest signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := program.Load(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("phases") {
				phases = []int64{0, 1, 2, 3, 4}
				if feedback {
					phases = []int64{5, 6, 7, 8, 9}
				}
			}
			opts := scheduler.Options{Feedback: feedback, Quantum: cfg.Scheduler.Quantum, Workers: cfg.Scheduler.Workers}
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if cmd.Flags().Changed("quantum") {
				opts.Quantum = quantum
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			start := time.Now()
			res, err := scheduler.MaxSignal(ctx, p, phases, opts)
			if err != nil {
				return err
			}
			log.Info(log.CLIModule, "search finished", "elapsed", time.Since(start))
			fmt.Printf("max signal %d from phases %s\n", res.Signal, formatWords(res.Phases))
			return nil
		},
	}
	amplifyCmd.Flags().Int64SliceVar(&phases, "phases", nil, "Phase settings to permute (default 0-4, or 5-9 with --feedback)")
	amplifyCmd.Flags().BoolVar(&feedback, "feedback", false, "Connect the last amplifier back to the first")
	amplifyCmd.Flags().IntVar(&workers, "workers", 0, "Parallel searches (default from config, 0 for GOMAXPROCS)")
	amplifyCmd.Flags().IntVar(&quantum, "quantum", 0, "Scheduler steps per turn (default from config, 0 to run to block)")
	return amplifyCmd
}

func newSpringCmd() *cobra.Command {
	var mf machineFlags
	var springCmd = &cobra.Command{
		Use:   "spring FILE SCRIPT",
		Short: "Run a springscript program on a droid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mf.load(cmd, args[0])
			if err != nil {
				return err
			}
			src, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			script, err := springscript.Parse(string(src))
			if err != nil {
				return err
			}
			res, err := springscript.Run(m, script)
			if err != nil {
				fmt.Fprint(os.Stderr, res.Transcript)
				return err
			}
			fmt.Printf("hull damage %d\n", res.Damage)
			return nil
		},
	}
	mf.register(springCmd)
	return springCmd
}

func newSnapshotsCmd() *cobra.Command {
	var del string
	var snapshotsCmd = &cobra.Command{
		Use:   "snapshots",
		Short: "List or delete saved machine snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if del != "" {
				if err := store.Delete(del); err != nil {
					return err
				}
				fmt.Printf("deleted snapshot %q\n", del)
				return nil
			}
			entries, err := store.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("no snapshots in %s\n", cfg.Storage.Path)
				return nil
			}
			for _, e := range entries {
				state := "running"
				switch {
				case e.Halted:
					state = "halted"
				case e.Blocked:
					state = "blocked"
				}
				fmt.Printf("%-20s %s  pc=%-6d steps=%-10d %-8s %s  %s\n",
					e.Name, e.SavedAt.Format(time.DateTime), e.PC, e.Steps, state, e.Digest[:min(8, len(e.Digest))], e.Note)
			}
			return nil
		},
	}
	snapshotsCmd.Flags().StringVar(&del, "delete", "", "Delete the named snapshot")
	return snapshotsCmd
}

func newTraceDiffCmd() *cobra.Command {
	var color bool
	var traceDiffCmd = &cobra.Command{
		Use:   "tracediff A.jsonl B.jsonl",
		Short: "Show the first step where two traces disagree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := trace.ReadJSONLFile(args[0])
			if err != nil {
				return err
			}
			right, err := trace.ReadJSONLFile(args[1])
			if err != nil {
				return err
			}
			d, err := trace.Diff(left, right, color)
			if err != nil {
				return err
			}
			if d == nil {
				fmt.Printf("traces match (%d steps)\n", len(left))
				return nil
			}
			fmt.Println(d)
			return fmt.Errorf("traces diverge at step %d", d.Index)
		},
	}
	traceDiffCmd.Flags().BoolVar(&color, "color", true, "Colour the diff")
	return traceDiffCmd
}

func newScriptCmd() *cobra.Command {
	var mf machineFlags
	var scriptCmd = &cobra.Command{
		Use:   "script FILE SCRIPT.js",
		Short: "Drive a program from JavaScript",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mf.load(cmd, args[0])
			if err != nil {
				return err
			}
			src, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			v, err := scripting.New(m, os.Stdout).Eval(string(src))
			if err != nil {
				return err
			}
			if v != nil {
				fmt.Println(v)
			}
			return nil
		},
	}
	mf.register(scriptCmd)
	return scriptCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(common.GetBuildInfo())
		},
	}
}
