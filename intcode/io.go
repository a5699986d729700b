package intcode

import "strings"

// SetInput queues v for the next input instruction and clears blocked.
func (m *Machine) SetInput(v int64) {
	m.input = append(m.input, v)
	m.blocked = false
}

// SetInputs queues several values in order.
func (m *Machine) SetInputs(vs ...int64) {
	for _, v := range vs {
		m.SetInput(v)
	}
}

// SendMessage queues each byte of msg as one input value.
func (m *Machine) SendMessage(msg string) {
	for i := 0; i < len(msg); i++ {
		m.input = append(m.input, int64(msg[i]))
	}
	m.blocked = false
}

// PendingInput is the number of queued values not yet consumed.
func (m *Machine) PendingInput() int { return len(m.input) }

// GetOutput pops the oldest output value. The boolean is false when the
// output queue is empty.
func (m *Machine) GetOutput() (int64, bool) {
	if len(m.output) == 0 {
		return 0, false
	}
	v := m.output[0]
	m.output = m.output[1:]
	return v, true
}

// FlushOutput drains and returns the whole output queue.
func (m *Machine) FlushOutput() []int64 {
	out := m.output
	m.output = nil
	return out
}

// PendingOutput is the number of output values not yet retrieved.
func (m *Machine) PendingOutput() int { return len(m.output) }

// ReadASCII drains the output queue. Values in 0..127 are returned as text;
// everything else (answers such as hull damage) comes back in order as values.
func (m *Machine) ReadASCII() (string, []int64) {
	var b strings.Builder
	var values []int64
	for _, v := range m.FlushOutput() {
		if v >= 0 && v <= 127 {
			b.WriteByte(byte(v))
			continue
		}
		values = append(values, v)
	}
	return b.String(), values
}
