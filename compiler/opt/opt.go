package opt

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nettee/compiler-lab/compiler/df"
	"github.com/nettee/compiler-lab/compiler/ir"
)

type (
	Config struct {
		// Rounds of propagation and folding applied to each block.
		Rounds int

		// Fixpoint ignores Rounds and repeats simplification
		// and dead code elimination until nothing changes.
		Fixpoint bool
	}

	Stats struct {
		Blocks     int
		Propagated int
		Folded     int
		Removed    int
	}
)

var DefaultConfig = Config{
	Rounds: 5,
}

// Run optimizes p in place.
func Run(ctx context.Context, p *ir.Program, cfg Config) (st Stats, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "optimize", "rounds", cfg.Rounds, "fixpoint", cfg.Fixpoint)
	defer tr.Finish("err", &err)

	for iter := 0; ; iter++ {
		bs := df.Blocks(&p.List)
		st.Blocks = len(bs)

		if tr.If("dump_blocks") {
			tr.Printw("leaders", "iter", iter, "nodes", df.Leaders(&p.List))

			for i, b := range bs {
				tr.Printw("block", "iter", iter, "block", i, "nodes", b.Nodes)
			}
		}

		for _, b := range bs {
			prop, fold := Simplify(&p.List, b, cfg)

			st.Propagated += prop
			st.Folded += fold
		}

		removed, err := EliminateDead(&p.List)
		if err != nil {
			return st, errors.Wrap(err, "dead code")
		}

		st.Removed += removed

		if !cfg.Fixpoint || removed == 0 {
			break
		}
	}

	tr.Printw("optimized", "blocks", st.Blocks, "propagated", st.Propagated, "folded", st.Folded, "removed", st.Removed, "instrs", p.Len())

	return st, nil
}

// Simplify alternates constant propagation and folding over one block.
func Simplify(l *ir.List, b df.Block, cfg Config) (prop, fold int) {
	for round := 0; cfg.Fixpoint || round < cfg.Rounds; round++ {
		p := Propagate(l, b)
		f := Fold(l, b)

		prop += p
		fold += f

		if p == 0 && f == 0 {
			break
		}
	}

	return
}

// Propagate substitutes temporaries assigned a literal
// into the reads that follow the assignment within b.
// A temporary stops being known once it's redefined.
func Propagate(l *ir.List, b df.Block) (changed int) {
	known := map[ir.Temp]ir.Operand{}

	sub := func(x ir.Operand) ir.Operand {
		t, ok := x.(ir.Temp)
		if !ok {
			return x
		}

		v, ok := known[t]
		if !ok {
			return x
		}

		changed++

		return v
	}

	for _, n := range b.Nodes {
		in := ir.MapUses(l.Get(n), sub)
		l.Set(n, in)

		d, ok := ir.Def(in).(ir.Temp)
		if !ok {
			continue
		}

		if a, ok := in.(ir.Assign); ok && ir.IsLiteral(a.Src) {
			known[d] = a.Src
		} else {
			delete(known, d)
		}
	}

	return changed
}

// Fold rewrites binary operations on literals and trivial identities into assignments.
func Fold(l *ir.List, b df.Block) (changed int) {
	for _, n := range b.Nodes {
		x, ok := l.Get(n).(ir.BinOp)
		if !ok {
			continue
		}

		src, ok := FoldBinOp(x)
		if !ok {
			continue
		}

		l.Set(n, ir.Assign{Dst: x.Dst, Src: src})
		changed++
	}

	return changed
}

// FoldBinOp returns a single operand equal to x's value if it can be found statically.
func FoldBinOp(x ir.BinOp) (ir.Operand, bool) {
	if v, ok := foldLiterals(x.Op, x.L, x.R); ok {
		return v, true
	}

	switch x.Op {
	case ir.Add:
		if ir.IsZero(x.R) {
			return x.L, true
		}

		if ir.IsZero(x.L) {
			return x.R, true
		}
	case ir.Sub:
		if ir.IsZero(x.R) {
			return x.L, true
		}
	case ir.Mul:
		if ir.IsZero(x.R) {
			return x.R, true
		}

		if ir.IsZero(x.L) {
			return x.L, true
		}

		if ir.IsOne(x.R) {
			return x.L, true
		}

		if ir.IsOne(x.L) {
			return x.R, true
		}
	case ir.Div:
		if ir.IsOne(x.R) {
			return x.L, true
		}
	}

	return nil, false
}

func foldLiterals(op ir.Arith, l, r ir.Operand) (ir.Operand, bool) {
	switch l := l.(type) {
	case ir.Int:
		r, ok := r.(ir.Int)
		if !ok {
			return nil, false
		}

		v, ok := EvalInt(op, int32(l), int32(r))

		return ir.Int(v), ok
	case ir.Float:
		r, ok := r.(ir.Float)
		if !ok {
			return nil, false
		}

		v, ok := EvalFloat(op, float32(l), float32(r))

		return ir.Float(v), ok
	}

	return nil, false
}

// EvalInt computes x op y with 32-bit wrap-around and truncating division.
// Division by zero is not evaluated.
func EvalInt(op ir.Arith, x, y int32) (int32, bool) {
	switch op {
	case ir.Add:
		return x + y, true
	case ir.Sub:
		return x - y, true
	case ir.Mul:
		return x * y, true
	case ir.Div:
		if y == 0 {
			return 0, false
		}

		return x / y, true
	}

	return 0, false
}

func EvalFloat(op ir.Arith, x, y float32) (float32, bool) {
	switch op {
	case ir.Add:
		return x + y, true
	case ir.Sub:
		return x - y, true
	case ir.Mul:
		return x * y, true
	case ir.Div:
		if y == 0 {
			return 0, false
		}

		return x / y, true
	}

	return 0, false
}

// EliminateDead removes assignments whose destination is never read
// anywhere in l. Stores through a pointer are kept.
func EliminateDead(l *ir.List) (removed int, err error) {
	reads := df.CollectReads(l)

	for n := l.Front(); n != 0; {
		next := l.Next(n)

		a, ok := l.Get(n).(ir.Assign)
		d := ir.Def(a)

		if ok && d != nil && !reads.Has(d) {
			err = l.Remove(n)
			if err != nil {
				return removed, errors.Wrap(err, "remove %v", a)
			}

			removed++
		}

		n = next
	}

	return removed, nil
}
