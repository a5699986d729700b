package springscript

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// MaxInstructions is the most the droid's memory accepts.
const MaxInstructions = 15

// Register names a one bit springscript register.
type Register byte

const (
	T Register = 'T' // temporary
	J Register = 'J' // jump
)

// Writable reports whether the register may be the second operand.
func (r Register) Writable() bool { return r == T || r == J }

// Sensor reports whether the register is a ground sensor (A is one tile ahead).
func (r Register) Sensor() bool { return r >= 'A' && r <= 'I' }

func (r Register) String() string { return string(rune(r)) }

func parseRegister(tok string) (Register, error) {
	if len(tok) == 1 {
		r := Register(tok[0])
		if r.Writable() || r.Sensor() {
			return r, nil
		}
	}
	return 0, fmt.Errorf("register %q: %w", tok, vmerrors.ErrXBadRegister)
}

// Mode is the terminating command. It decides how far the droid sees.
type Mode int

const (
	ModeWalk Mode = iota // sensors A-D
	ModeRun              // sensors A-I
)

func (m Mode) String() string {
	if m == ModeRun {
		return "RUN"
	}
	return "WALK"
}

// lastSensor is the farthest readable sensor in the mode.
func (m Mode) lastSensor() Register {
	if m == ModeRun {
		return 'I'
	}
	return 'D'
}

type Op int

const (
	AND Op = iota // Y = X and Y
	OR            // Y = X or Y
	NOT           // Y = not X
)

var opNames = map[Op]string{AND: "AND", OR: "OR", NOT: "NOT"}

func (o Op) String() string { return opNames[o] }

type Instruction struct {
	Op   Op
	X, Y Register
}

func (in Instruction) String() string {
	return fmt.Sprintf("%s %s %s", in.Op, in.X, in.Y)
}

type Script struct {
	Mode         Mode
	Instructions []Instruction
}

// Parse reads one instruction per line. '#' starts a comment, blank lines are
// skipped and keywords are case-insensitive. A final WALK or RUN line picks the
// mode; without one the script walks.
func Parse(text string) (*Script, error) {
	s := &Script{}
	terminated := false
	for n, line := range strings.Split(text, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(strings.ToUpper(line))
		if len(fields) == 0 {
			continue
		}
		if terminated {
			return nil, fmt.Errorf("line %d: %q after %s: %w", n+1, line, s.Mode, vmerrors.ErrXUnknownInstruction)
		}
		switch {
		case len(fields) == 1 && fields[0] == "WALK":
			s.Mode, terminated = ModeWalk, true
			continue
		case len(fields) == 1 && fields[0] == "RUN":
			s.Mode, terminated = ModeRun, true
			continue
		}
		in, err := parseInstruction(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		s.Instructions = append(s.Instructions, in)
	}
	return s, nil
}

func parseInstruction(fields []string) (Instruction, error) {
	var in Instruction
	switch fields[0] {
	case "AND":
		in.Op = AND
	case "OR":
		in.Op = OR
	case "NOT":
		in.Op = NOT
	default:
		return in, fmt.Errorf("%q: %w", strings.Join(fields, " "), vmerrors.ErrXUnknownInstruction)
	}
	if len(fields) != 3 {
		return in, fmt.Errorf("%q takes two registers: %w", strings.Join(fields, " "), vmerrors.ErrXUnknownInstruction)
	}
	var err error
	if in.X, err = parseRegister(fields[1]); err != nil {
		return in, err
	}
	if in.Y, err = parseRegister(fields[2]); err != nil {
		return in, err
	}
	return in, nil
}

// Validate checks the instruction limit, that every sensor read is in range
// for the mode and that results only go to T or J.
func (s *Script) Validate() error {
	if len(s.Instructions) > MaxInstructions {
		return fmt.Errorf("%d instructions: %w", len(s.Instructions), vmerrors.ErrXTooManyInstructions)
	}
	last := s.Mode.lastSensor()
	for i, in := range s.Instructions {
		if in.X.Sensor() && in.X > last {
			return fmt.Errorf("instruction %d %q in %s mode: %w", i+1, in, s.Mode, vmerrors.ErrXBadRegister)
		}
		if !in.Y.Writable() {
			return fmt.Errorf("instruction %d %q: %w", i+1, in, vmerrors.ErrXReadOnlyTarget)
		}
	}
	return nil
}

// Encode renders the script as the droid expects it: one instruction per
// line, then the mode, each line ending in a newline.
func (s *Script) Encode() string {
	var b strings.Builder
	for _, in := range s.Instructions {
		b.WriteString(in.String())
		b.WriteByte('\n')
	}
	b.WriteString(s.Mode.String())
	b.WriteByte('\n')
	return b.String()
}

func (s *Script) String() string { return s.Encode() }
