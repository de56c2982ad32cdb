package df

import (
	"github.com/nettee/compiler-lab/compiler/ir"
	"github.com/nettee/compiler-lab/compiler/set"
)

type (
	// Block is a basic block: a run of nodes entered only at the first one.
	Block struct {
		Nodes []ir.Node
	}

	// Reads counts every operand read anywhere in a list.
	// Operands wrapped by & and * are counted as read too.
	Reads map[ir.Operand]int
)

// Leaders marks block leaders: the first instruction,
// a function entry, and a label not preceded by another label.
func Leaders(l *ir.List) (b set.Bits[ir.Node]) {
	prevLabel := false

	for n := l.Front(); n != 0; n = l.Next(n) {
		in := l.Get(n)

		_, isLabel := in.(ir.DefLabel)
		_, isFunc := in.(ir.FuncEntry)

		if n == l.Front() || isFunc || isLabel && !prevLabel {
			b.Set(n)
		}

		prevLabel = isLabel
	}

	return b
}

// Blocks partitions l into maximal runs between consecutive leaders.
func Blocks(l *ir.List) (bs []Block) {
	leaders := Leaders(l)

	for n := l.Front(); n != 0; n = l.Next(n) {
		if leaders.IsSet(n) || len(bs) == 0 {
			bs = append(bs, Block{})
		}

		last := &bs[len(bs)-1]
		last.Nodes = append(last.Nodes, n)
	}

	return bs
}

func CollectReads(l *ir.List) Reads {
	r := make(Reads)

	for n := l.Front(); n != 0; n = l.Next(n) {
		for _, u := range ir.Uses(l.Get(n)) {
			r.add(u)
		}
	}

	return r
}

// Has reports whether x is read directly or through & or *.
func (r Reads) Has(x ir.Operand) bool {
	return r[x] != 0
}

func (r Reads) add(x ir.Operand) {
	for x != nil {
		r[x]++

		switch q := x.(type) {
		case ir.Addr:
			x = q.X
		case ir.Deref:
			x = q.X
		default:
			return
		}
	}
}
