package program

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

func formatOperand(mode Mode, v int64) string {
	switch mode {
	case Position:
		return fmt.Sprintf("[%d]", v)
	case Immediate:
		return fmt.Sprintf("%d", v)
	case Relative:
		if v < 0 {
			return fmt.Sprintf("[rb%d]", v)
		}
		return fmt.Sprintf("[rb+%d]", v)
	default:
		return fmt.Sprintf("?%d", v)
	}
}

// String renders the instruction as NAME op, op, op.
func (in Instruction) String() string {
	ops := make([]string, len(in.Operands))
	for i, v := range in.Operands {
		ops[i] = formatOperand(in.Modes[i], v)
	}
	if len(ops) == 0 {
		return OpcodeToString(in.Opcode)
	}
	return fmt.Sprintf("%-13s %s", OpcodeToString(in.Opcode), strings.Join(ops, ", "))
}

// Disassemble returns one line per instruction or data word, prefixed by its
// address. Position operands print as [a], relative as [rb+a], immediates bare.
func (p Program) Disassemble() string {
	var b strings.Builder
	for addr := 0; addr < len(p); {
		in, ok := p.decodeAt(addr)
		if !ok {
			fmt.Fprintf(&b, "%5d: %-13s %d\n", addr, ".word", p[addr])
			addr++
			continue
		}
		fmt.Fprintf(&b, "%5d: %s\n", addr, in)
		addr += in.Width()
	}
	return b.String()
}

// Tree renders the basic block structure.
func (p Program) Tree() treeprint.Tree {
	blocks := p.GetBasicBlocks()
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("program: %d words, %d blocks", len(p), len(blocks)))
	for _, blk := range blocks {
		branch := tree.AddBranch(fmt.Sprintf("block %d..%d", blk.Start, blk.End-1))
		for _, in := range blk.Instructions {
			branch.AddNode(fmt.Sprintf("%d: %s", in.Addr, in))
		}
	}
	return tree
}
