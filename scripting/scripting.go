// Package scripting drives a machine from JavaScript. A script sees one
// global object, vm, with the machine's operations, plus print.
//
//	vm.ascii("NOT A J\nWALK\n"); vm.run(); print(vm.text().text)
package scripting

import (
	"fmt"
	"io"
	"strings"

	"github.com/dop251/goja"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/program"
)

type Engine struct {
	rt  *goja.Runtime
	m   *intcode.Machine
	out io.Writer
}

// New binds m into a fresh JavaScript runtime. print writes to out.
func New(m *intcode.Machine, out io.Writer) *Engine {
	e := &Engine{rt: goja.New(), m: m, out: out}
	e.bind()
	return e
}

func (e *Engine) Machine() *intcode.Machine { return e.m }

// SetMachine rebinds vm to another machine, e.g. after a snapshot load.
func (e *Engine) SetMachine(m *intcode.Machine) { e.m = m }

// guard turns a machine fault into a JavaScript exception so scripts can
// catch it with try/catch.
func (e *Engine) guard(f func()) {
	defer func() {
		if r := recover(); r != nil {
			if fault, ok := intcode.AsFault(r); ok {
				panic(e.rt.NewGoError(fault))
			}
			panic(r)
		}
	}()
	f()
}

func (e *Engine) bind() {
	obj := e.rt.NewObject()
	set := func(name string, fn interface{}) {
		if err := obj.Set(name, fn); err != nil {
			panic(err)
		}
	}

	set("run", func() {
		e.guard(e.m.Run)
	})
	set("step", func(n int) int {
		if n <= 0 {
			n = 1
		}
		ran := 0
		e.guard(func() { ran = e.m.RunSteps(n) })
		return ran
	})
	set("input", func(vs ...int64) {
		e.m.SetInputs(vs...)
	})
	set("ascii", func(msg string) {
		e.m.SendMessage(msg)
	})
	set("output", func() []int64 {
		return e.m.FlushOutput()
	})
	set("text", func() map[string]interface{} {
		text, rest := e.m.ReadASCII()
		if rest == nil {
			rest = []int64{}
		}
		return map[string]interface{}{"text": text, "values": rest}
	})
	set("peek", func(addr int64) int64 {
		var v int64
		e.guard(func() { v = e.m.Peek(addr) })
		return v
	})
	set("poke", func(addr, v int64) {
		e.guard(func() { e.m.Poke(addr, v) })
	})
	set("pc", func() int64 { return e.m.PC() })
	set("base", func() int64 { return e.m.RelativeBase() })
	set("steps", func() uint64 { return e.m.Steps() })
	set("halted", func() bool { return e.m.IsHalted() })
	set("blocked", func() bool { return e.m.IsBlocked() })
	set("disasm", func(words int) string {
		mem := e.m.Memory()
		if words <= 0 || words > len(mem) {
			words = len(mem)
		}
		return program.Program(mem[:words]).Disassemble()
	})

	if err := e.rt.Set("vm", obj); err != nil {
		panic(err)
	}
	e.rt.Set("print", func(args ...goja.Value) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Fprintln(e.out, strings.Join(parts, " "))
	})
}

// Eval runs src and returns the exported value of its last expression.
func (e *Engine) Eval(src string) (interface{}, error) {
	v, err := e.rt.RunString(src)
	if err != nil {
		log.Debug(log.CLIModule, "script failed", "err", err)
		return nil, err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}
