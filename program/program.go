package program

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// Program is an Intcode image: the words loaded into low memory at address 0.
type Program []int64

// Parse reads a comma separated listing. Whitespace around tokens and a
// trailing newline are ignored; an empty trailing token after a final comma is
// tolerated.
func Parse(text string) (Program, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, vmerrors.ErrPEmptyProgram
	}
	tokens := strings.Split(text, ",")
	if strings.TrimSpace(tokens[len(tokens)-1]) == "" && len(tokens) > 1 {
		tokens = tokens[:len(tokens)-1]
	}
	p := make(Program, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("token %d %q: %w", i, tok, vmerrors.ErrPInvalidWord)
		}
		p = append(p, v)
	}
	return p, nil
}

// Load reads and parses a listing from disk.
func Load(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	p, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// MustParse is Parse for literals in tests and tools; it panics on error.
func MustParse(text string) Program {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Program) String() string {
	var b strings.Builder
	for i, w := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(w, 10))
	}
	return b.String()
}

func (p Program) Clone() Program {
	return append(Program(nil), p...)
}

// Patch returns a copy with the word at addr replaced. The receiver is not modified.
func (p Program) Patch(addr int, value int64) (Program, error) {
	if addr < 0 {
		return nil, fmt.Errorf("patch %d: %w", addr, vmerrors.ErrMNegativeAddress)
	}
	if addr >= len(p) {
		return nil, fmt.Errorf("patch %d of %d words: %w", addr, len(p), vmerrors.ErrMAddressOutOfRange)
	}
	q := p.Clone()
	q[addr] = value
	return q, nil
}
