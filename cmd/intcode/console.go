package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/colorfulnotion/intcode/intcode"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/scripting"
	"github.com/colorfulnotion/intcode/storage"
)

const consoleHelp = `lines without a leading colon are sent as ASCII input
:save NAME [NOTE]   save the machine
:load NAME          replace the machine with a saved one
:mem ADDR [N]       print N cells from ADDR
:state              pc, relative base, steps and status
:js EXPR            evaluate JavaScript with vm bound to the machine
:quit               leave`

// console is one interactive session around a single machine.
type console struct {
	m      *intcode.Machine
	out    io.Writer
	engine *scripting.Engine
	open   func() (*storage.SnapshotStore, error)
	store  *storage.SnapshotStore
}

func newConsole(m *intcode.Machine, out io.Writer, open func() (*storage.SnapshotStore, error)) *console {
	return &console{m: m, out: out, engine: scripting.New(m, out), open: open}
}

func (c *console) snapshots() (*storage.SnapshotStore, error) {
	if c.store == nil {
		s, err := c.open()
		if err != nil {
			return nil, err
		}
		c.store = s
	}
	return c.store, nil
}

func (c *console) close() {
	if c.store != nil {
		c.store.Close()
	}
}

// advance runs the machine to its next stop and prints what it said.
func (c *console) advance() {
	err := guard(c.m.Run)
	text, values := c.m.ReadASCII()
	fmt.Fprint(c.out, text)
	for _, v := range values {
		fmt.Fprintln(c.out, v)
	}
	switch {
	case err != nil:
		fmt.Fprintf(c.out, "fault: %v\n", err)
	case c.m.IsHalted():
		fmt.Fprintln(c.out, "[halted]")
	}
}

// handle processes one line and reports whether the session should end.
func (c *console) handle(line string) (quit bool) {
	if !strings.HasPrefix(line, ":") {
		if c.m.IsHalted() {
			fmt.Fprintln(c.out, "machine has halted; :load a snapshot or :quit")
			return false
		}
		c.m.SendMessage(line + "\n")
		c.advance()
		return false
	}
	cmd, rest, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	rest = strings.TrimSpace(rest)
	if err := c.command(cmd, rest); err != nil {
		if errors.Is(err, errQuit) {
			return true
		}
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	return false
}

var errQuit = errors.New("quit")

func (c *console) command(cmd, rest string) error {
	switch cmd {
	case "q", "quit", "exit":
		return errQuit
	case "help", "h":
		fmt.Fprintln(c.out, consoleHelp)
	case "save":
		name, note, _ := strings.Cut(rest, " ")
		if name == "" {
			return fmt.Errorf("usage: :save NAME [NOTE]")
		}
		store, err := c.snapshots()
		if err != nil {
			return err
		}
		if err := store.Put(name, c.m.Snapshot(), strings.TrimSpace(note)); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "saved %q at pc %d\n", name, c.m.PC())
	case "load":
		if rest == "" {
			return fmt.Errorf("usage: :load NAME")
		}
		store, err := c.snapshots()
		if err != nil {
			return err
		}
		snap, err := store.Get(rest)
		if err != nil {
			return err
		}
		c.m.Restore(snap)
		fmt.Fprintf(c.out, "loaded %q at pc %d\n", rest, c.m.PC())
		c.advance()
	case "mem":
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return fmt.Errorf("usage: :mem ADDR [N]")
		}
		addr, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return err
		}
		n := int64(1)
		if len(fields) > 1 {
			if n, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
				return err
			}
		}
		if n < 1 {
			return fmt.Errorf("count must be positive, got %d", n)
		}
		words := make([]int64, 0, n)
		if err := guard(func() {
			for i := int64(0); i < n; i++ {
				words = append(words, c.m.Peek(addr+i))
			}
		}); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d: %s\n", addr, formatWords(words))
	case "state":
		status := "running"
		switch {
		case c.m.IsHalted():
			status = "halted"
		case c.m.IsBlocked():
			status = "blocked"
		}
		fmt.Fprintf(c.out, "pc=%d base=%d steps=%d %s\n", c.m.PC(), c.m.RelativeBase(), c.m.Steps(), status)
	case "js":
		v, err := c.engine.Eval(rest)
		if err != nil {
			return err
		}
		if v != nil {
			fmt.Fprintln(c.out, v)
		}
	default:
		return fmt.Errorf("unknown command :%s, try :help", cmd)
	}
	return nil
}

func newConsoleCmd() *cobra.Command {
	var mf machineFlags
	var consoleCmd = &cobra.Command{
		Use:   "console FILE",
		Short: "Interactive ASCII session with a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mf.load(cmd, args[0])
			if err != nil {
				return err
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:      cfg.Console.Prompt,
				HistoryFile: cfg.Console.History,
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer rl.Close()

			c := newConsole(m, rl.Stdout(), openStore)
			defer c.close()
			log.Debug(log.CLIModule, "console started", "program", args[0], "history", cfg.Console.History)

			c.advance()
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if len(line) == 0 {
						return nil
					}
					continue
				}
				if err != nil {
					return nil
				}
				if c.handle(line) {
					return nil
				}
			}
		},
	}
	mf.register(consoleCmd)
	return consoleCmd
}
