package trace

// Step is one executed (or stalled) instruction as seen after it ran.
type Step struct {
	Step         uint64  `json:"step"`
	PC           int64   `json:"pc"`
	Word         int64   `json:"word"`
	Opcode       int     `json:"opcode"`
	OpcodeStr    string  `json:"opcodeStr,omitempty"`
	Modes        []int   `json:"modes,omitempty"`
	Operands     []int64 `json:"operands,omitempty"`
	NextPC       int64   `json:"nextPc"`
	RelativeBase int64   `json:"relativeBase"`
	Blocked      bool    `json:"blocked,omitempty"`
	Halted       bool    `json:"halted,omitempty"`

	WroteAddr  *int64 `json:"wroteAddr,omitempty"`
	WroteValue *int64 `json:"wroteValue,omitempty"`
	Output     *int64 `json:"output,omitempty"`
}

// Tracer receives every step a machine takes.
type Tracer interface {
	WriteStep(step *Step) error
}

func (s *Step) SetWrite(addr, value int64) {
	s.WroteAddr = &addr
	s.WroteValue = &value
}

func (s *Step) SetOutput(v int64) {
	s.Output = &v
}

// Recorder keeps steps in memory.
type Recorder struct {
	Steps []Step
}

func (r *Recorder) WriteStep(step *Step) error {
	r.Steps = append(r.Steps, *step)
	return nil
}
