package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

type task struct {
	name    string
	m       *intcode.Machine
	targets []*task
	sink    []int64
	last    int64
	emitted int
}

// Scheduler interleaves machines on one goroutine. Each round gives every
// live task one turn, then moves its output along its links. Output of a task
// without links collects in its sink.
type Scheduler struct {
	// Quantum is the instruction budget per turn. Zero runs each task until it
	// blocks or halts.
	Quantum int

	tasks  []*task
	byName map[string]*task
	rounds int
}

func New(quantum int) *Scheduler {
	return &Scheduler{
		Quantum: quantum,
		byName:  make(map[string]*task),
	}
}

// Add registers m under name. Tasks take turns in the order they were added.
func (s *Scheduler) Add(name string, m *intcode.Machine) error {
	if _, ok := s.byName[name]; ok {
		return fmt.Errorf("task %q already registered", name)
	}
	t := &task{name: name, m: m}
	s.tasks = append(s.tasks, t)
	s.byName[name] = t
	return nil
}

// Link routes every output value of from into the input queue of to. A task
// with several links copies each value to all of them.
func (s *Scheduler) Link(from, to string) error {
	src, ok := s.byName[from]
	if !ok {
		return fmt.Errorf("link from %q: %w", from, vmerrors.ErrSUnknownTask)
	}
	dst, ok := s.byName[to]
	if !ok {
		return fmt.Errorf("link to %q: %w", to, vmerrors.ErrSUnknownTask)
	}
	src.targets = append(src.targets, dst)
	return nil
}

func (s *Scheduler) lookup(name string) (*task, error) {
	t, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", name, vmerrors.ErrSUnknownTask)
	}
	return t, nil
}

// Machine returns the machine registered under name.
func (s *Scheduler) Machine(name string) (*intcode.Machine, error) {
	t, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return t.m, nil
}

// Sink returns the values a link-less task has emitted so far.
func (s *Scheduler) Sink(name string) ([]int64, error) {
	t, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return append([]int64(nil), t.sink...), nil
}

// LastOutput returns the most recent value the task emitted, linked or not.
func (s *Scheduler) LastOutput(name string) (int64, bool, error) {
	t, err := s.lookup(name)
	if err != nil {
		return 0, false, err
	}
	return t.last, t.emitted > 0, nil
}

// Rounds is the number of rounds the last Run took.
func (s *Scheduler) Rounds() int { return s.rounds }

func (s *Scheduler) turn(t *task) (progress bool) {
	before := t.m.Steps()
	if s.Quantum <= 0 {
		t.m.Run()
	} else {
		t.m.RunSteps(s.Quantum)
	}
	progress = t.m.Steps() != before

	out := t.m.FlushOutput()
	if len(out) == 0 {
		return progress
	}
	t.last = out[len(out)-1]
	t.emitted += len(out)
	if len(t.targets) == 0 {
		t.sink = append(t.sink, out...)
		return true
	}
	for _, dst := range t.targets {
		dst.m.SetInputs(out...)
	}
	return true
}

// Run takes rounds until every task has halted. It returns an error wrapping
// vmerrors.ErrSDeadlock when a full round executes nothing and moves no data,
// which happens only when every live task waits on input nobody will send.
func (s *Scheduler) Run(ctx context.Context) error {
	s.rounds = 0
	for {
		live := 0
		for _, t := range s.tasks {
			if !t.m.IsHalted() {
				live++
			}
		}
		if live == 0 {
			log.Debug(log.SchedulerModule, "all tasks halted", "tasks", len(s.tasks), "rounds", s.rounds)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s.rounds++
		progress := false
		for _, t := range s.tasks {
			if t.m.IsHalted() {
				continue
			}
			if s.turn(t) {
				progress = true
			}
		}
		log.Trace(log.SchedulerModule, "round", "n", s.rounds, "live", live, "progress", progress)

		if !progress {
			var blocked []string
			for _, t := range s.tasks {
				if t.m.IsBlocked() {
					blocked = append(blocked, t.name)
				}
			}
			log.Warn(log.SchedulerModule, "deadlock", "round", s.rounds, "blocked", strings.Join(blocked, ","))
			return fmt.Errorf("round %d, blocked tasks [%s]: %w", s.rounds, strings.Join(blocked, " "), vmerrors.ErrSDeadlock)
		}
	}
}
