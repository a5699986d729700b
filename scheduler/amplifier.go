package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/program"
	"github.com/colorfulnotion/intcode/vmerrors"
)

func ampName(i int) string {
	return fmt.Sprintf("amp%c", 'A'+i)
}

// pipeline wires one machine per phase in series. Each machine first reads its
// phase; the first one then reads the starting signal 0. With feedback the
// last machine also feeds the first.
func pipeline(ctx context.Context, p program.Program, phases []int64, quantum int, feedback bool) (int64, error) {
	if len(phases) == 0 {
		return 0, vmerrors.ErrSNoSignal
	}
	s := New(quantum)
	for i, phase := range phases {
		m := intcode.NewWithConfig(p, intcode.Config{Name: ampName(i)})
		m.SetInput(phase)
		if err := s.Add(ampName(i), m); err != nil {
			return 0, err
		}
	}
	for i := 0; i+1 < len(phases); i++ {
		if err := s.Link(ampName(i), ampName(i+1)); err != nil {
			return 0, err
		}
	}
	last := ampName(len(phases) - 1)
	if feedback {
		if err := s.Link(last, ampName(0)); err != nil {
			return 0, err
		}
	}
	first, _ := s.Machine(ampName(0))
	first.SetInput(0)

	if err := s.Run(ctx); err != nil {
		return 0, fmt.Errorf("phases %v: %w", phases, err)
	}
	signal, ok, _ := s.LastOutput(last)
	if !ok {
		return 0, fmt.Errorf("phases %v: %w", phases, vmerrors.ErrSNoSignal)
	}
	log.Debug(log.SchedulerModule, "pipeline done", "phases", phases, "feedback", feedback, "signal", signal, "rounds", s.Rounds())
	return signal, nil
}

// Chain runs the amplifiers in series and returns the last one's output.
func Chain(ctx context.Context, p program.Program, phases []int64) (int64, error) {
	return pipeline(ctx, p, phases, 0, false)
}

// Feedback runs the amplifiers in a ring until all halt and returns the last
// signal the final amplifier emitted. quantum is passed to the scheduler.
func Feedback(ctx context.Context, p program.Program, phases []int64, quantum int) (int64, error) {
	return pipeline(ctx, p, phases, quantum, true)
}

type Options struct {
	Feedback bool
	Quantum  int
	// Workers bounds the goroutines evaluating permutations. Zero means GOMAXPROCS.
	Workers int
}

type Result struct {
	Signal int64
	Phases []int64
}

// MaxSignal tries every ordering of phaseSet and returns the one with the
// highest signal. Ties go to the lexicographically first ordering. Workers
// share p read-only; each builds its own machines.
func MaxSignal(ctx context.Context, p program.Program, phaseSet []int64, opts Options) (Result, error) {
	perms := Permutations(phaseSet)
	if len(perms) == 0 {
		return Result{}, vmerrors.ErrSNoSignal
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	signals := make([]int64, len(perms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, phases := range perms {
		i, phases := i, phases
		g.Go(func() (err error) {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if r := recover(); r != nil {
					f, ok := intcode.AsFault(r)
					if !ok {
						panic(r)
					}
					err = fmt.Errorf("phases %v: %w", phases, f)
				}
			}()
			signals[i], err = pipeline(gctx, p, phases, opts.Quantum, opts.Feedback)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	best := 0
	for i := range signals {
		if signals[i] > signals[best] {
			best = i
		}
	}
	log.Info(log.SchedulerModule, "max signal", "signal", signals[best], "phases", perms[best], "tried", len(perms), "workers", workers)
	return Result{Signal: signals[best], Phases: slices.Clone(perms[best])}, nil
}
