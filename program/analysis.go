package program

import "sort"

// Instruction is one decoded instruction found by the linear sweep.
type Instruction struct {
	Addr              int     // address of the instruction word
	Word              int64   // raw instruction word
	Opcode            int     // Instruction opcode
	Modes             []Mode  // one mode per operand
	Operands          []int64 // raw operand words
	IsBasicBlockStart bool    // Whether this instruction starts a basic block
}

// Width returns the number of words the instruction occupies.
func (in Instruction) Width() int {
	return 1 + len(in.Operands)
}

// BasicBlock is a run of instructions entered only at Start.
type BasicBlock struct {
	Start        int // address of the first instruction
	End          int // address just past the last instruction
	Instructions []Instruction
}

// Stats contains statistics about an Intcode program
type Stats struct {
	Words              int         // Total words in the image
	InstructionCount   int         // Words decoded as instructions
	DataWords          int         // Words the sweep could not decode
	BasicBlockCount    int         // Total number of basic blocks
	OpcodeDistribution map[int]int // Distribution of opcodes
	JumpTargets        []int       // Sorted immediate-mode jump targets
}

// decodeAt returns the instruction at addr, or false when the word there does
// not decode to a complete instruction with legal modes.
func (p Program) decodeAt(addr int) (Instruction, bool) {
	word := p[addr]
	opcode, modes := Decode(word)
	if !IsKnown(opcode) {
		return Instruction{}, false
	}
	n := OperandCount(opcode)
	if addr+n >= len(p) {
		return Instruction{}, false
	}
	in := Instruction{Addr: addr, Word: word, Opcode: opcode}
	for i := 0; i < n; i++ {
		if modes[i] > Relative || modes[i] < Position {
			return Instruction{}, false
		}
		if i == WriteOperand(opcode) && modes[i] == Immediate {
			return Instruction{}, false
		}
		in.Modes = append(in.Modes, modes[i])
		in.Operands = append(in.Operands, p[addr+1+i])
	}
	return in, true
}

// jumpTarget returns the static target of a jump whose target operand is immediate.
func (in Instruction) jumpTarget() (int, bool) {
	if in.Opcode != JUMP_IF_TRUE && in.Opcode != JUMP_IF_FALSE {
		return 0, false
	}
	if in.Modes[1] != Immediate || in.Operands[1] < 0 {
		return 0, false
	}
	return int(in.Operands[1]), true
}

func (p Program) sweep() (instructions []Instruction, data int) {
	for addr := 0; addr < len(p); {
		in, ok := p.decodeAt(addr)
		if !ok {
			data++
			addr++
			continue
		}
		instructions = append(instructions, in)
		addr += in.Width()
	}
	return instructions, data
}

// GetInstructions returns every instruction found by a linear sweep from
// address 0, with basic block starts marked. Words that do not decode are
// treated as data and skipped one at a time.
func (p Program) GetInstructions() []Instruction {
	instructions, _ := p.sweep()
	markLeaders(instructions)
	return instructions
}

func markLeaders(instructions []Instruction) {
	starts := make(map[int]int, len(instructions))
	for i, in := range instructions {
		starts[in.Addr] = i
	}
	for i, in := range instructions {
		switch {
		case i == 0:
			instructions[i].IsBasicBlockStart = true
		case instructions[i-1].Addr+instructions[i-1].Width() != in.Addr:
			// follows a data gap
			instructions[i].IsBasicBlockStart = true
		case IsBasicBlockTerminator(instructions[i-1].Opcode):
			instructions[i].IsBasicBlockStart = true
		}
		if target, ok := in.jumpTarget(); ok {
			if j, ok := starts[target]; ok {
				instructions[j].IsBasicBlockStart = true
			}
		}
	}
}

// GetBasicBlocks groups the swept instructions into basic blocks.
func (p Program) GetBasicBlocks() []BasicBlock {
	var blocks []BasicBlock
	for _, in := range p.GetInstructions() {
		if in.IsBasicBlockStart || len(blocks) == 0 {
			blocks = append(blocks, BasicBlock{Start: in.Addr})
		}
		b := &blocks[len(blocks)-1]
		b.Instructions = append(b.Instructions, in)
		b.End = in.Addr + in.Width()
	}
	return blocks
}

// GetBasicBlockBoundaries returns the addresses where each basic block starts
func (p Program) GetBasicBlockBoundaries() []int {
	var boundaries []int
	for _, in := range p.GetInstructions() {
		if in.IsBasicBlockStart {
			boundaries = append(boundaries, in.Addr)
		}
	}
	return boundaries
}

// Analyze analyzes the program and returns statistics including
// instruction count and basic block count
func (p Program) Analyze() *Stats {
	stats := &Stats{
		Words:              len(p),
		OpcodeDistribution: make(map[int]int),
	}
	instructions, data := p.sweep()
	markLeaders(instructions)
	stats.DataWords = data
	seen := make(map[int]bool)
	for _, in := range instructions {
		stats.InstructionCount++
		stats.OpcodeDistribution[in.Opcode]++
		if in.IsBasicBlockStart {
			stats.BasicBlockCount++
		}
		if target, ok := in.jumpTarget(); ok && !seen[target] {
			seen[target] = true
			stats.JumpTargets = append(stats.JumpTargets, target)
		}
	}
	sort.Ints(stats.JumpTargets)
	return stats
}
