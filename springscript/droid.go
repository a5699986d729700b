package springscript

import (
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

type Result struct {
	Damage     int64
	Prompt     string
	Transcript string
}

// Run validates s, drains the droid's prompt, sends the script and runs the
// machine to completion. A droid that reports a non-ASCII value has made it
// across and the value is the hull damage. Otherwise the error wraps
// vmerrors.ErrXFellIntoSpace and the Result holds the droid's transcript.
func Run(m *intcode.Machine, s *Script) (Result, error) {
	var res Result
	if err := s.Validate(); err != nil {
		return res, err
	}
	m.Run()
	res.Prompt, _ = m.ReadASCII()

	m.SendMessage(s.Encode())
	m.Run()
	text, values := m.ReadASCII()
	res.Transcript = text
	if len(values) == 0 {
		log.Debug(log.SpringscriptModule, "droid fell", "mode", s.Mode, "instructions", len(s.Instructions), "halted", m.IsHalted())
		return res, fmt.Errorf("%s with %d instructions: %w", s.Mode, len(s.Instructions), vmerrors.ErrXFellIntoSpace)
	}
	res.Damage = values[len(values)-1]
	log.Info(log.SpringscriptModule, "hull damage", "mode", s.Mode, "damage", res.Damage, "steps", m.Steps())
	return res, nil
}
