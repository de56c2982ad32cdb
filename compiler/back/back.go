package back

import (
	"context"
	"fmt"
	"math"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nettee/compiler-lab/compiler/asm"
	"github.com/nettee/compiler-lab/compiler/ir"
)

type (
	// Compiler generates SPIM flavoured MIPS32 assembly.
	// Every operand lives in a static slot and values never stay
	// in registers across instructions.
	Compiler struct {
		args   int // pushed and not yet popped
		params int // read in the current function
	}
)

var conds = [...]asm.Cond{
	ir.LT: asm.LT,
	ir.LE: asm.LE,
	ir.GT: asm.GT,
	ir.GE: asm.GE,
	ir.EQ: asm.EQ,
	ir.NE: asm.NE,
}

func New() *Compiler { return &Compiler{} }

func (c *Compiler) Compile(ctx context.Context, b []byte, p *ir.Program) (_ []byte, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "codegen", "instrs", p.Len())
	defer tr.Finish("err", &err)

	*c = Compiler{}

	st := len(b)

	b, err = c.data(b, p)
	if err != nil {
		return nil, errors.Wrap(err, "data")
	}

	b = c.runtime(b)

	for n := p.Front(); n != 0; n = p.Next(n) {
		in := p.Get(n)

		b, err = c.instr(b, in)
		if err != nil {
			return nil, errors.Wrap(err, "%v", in)
		}
	}

	b = op(b, "move $v0, $0")
	b = op(b, "jr $ra")

	tr.Printw("generated", "size", len(b)-st)

	if tr.If("dump_asm") {
		tr.Printw("asm", "text", b[st:])
	}

	return b, nil
}

func (c *Compiler) data(b []byte, p *ir.Program) (_ []byte, err error) {
	var vars []ir.Var
	varSize := map[ir.Var]int{}
	var tmpSize []int

	var visit func(x ir.Operand)
	visit = func(x ir.Operand) {
		switch x := x.(type) {
		case ir.Var:
			if _, ok := varSize[x]; !ok {
				vars = append(vars, x)
				varSize[x] = asmWord
			}
		case ir.Addr:
			visit(x.X)
		case ir.Deref:
			visit(x.X)
		}
	}

	for n := p.Front(); n != 0; n = p.Next(n) {
		in := p.Get(n)

		for _, x := range operands(in) {
			visit(x)
		}

		a, ok := in.(ir.Alloc)
		if !ok {
			continue
		}

		switch x := a.X.(type) {
		case ir.Var:
			varSize[x] = max(varSize[x], a.Size)
		case ir.Temp:
			tmpSize = sliceSet(tmpSize, x, a.Size)
		default:
			return nil, ir.Internal("allocation of %v", a.X)
		}
	}

	b = append(b, ".data\n"...)

	for _, v := range vars {
		b = fmt.Appendf(b, "%s: .space %d\n", slotName(v), varSize[v])
	}

	for t := 1; t <= p.Temps(); t++ {
		size := sliceGet(tmpSize, t)
		if size == 0 {
			size = asmWord
		}

		b = fmt.Appendf(b, "%s: .space %d\n", slotName(ir.Temp(t)), size)
	}

	b = append(b, `_newline: .asciiz "\n"
_prompt: .asciiz "Enter an integer: "

.globl main
`...)

	return b, nil
}

func (c *Compiler) runtime(b []byte) []byte {
	b = append(b, ".text\n\nread:\n"...)
	b = op(b, "li $v0, 4")
	b = op(b, "la $a0, _prompt")
	b = op(b, "syscall")
	b = op(b, "li $v0, 5")
	b = op(b, "syscall")
	b = op(b, "jr $ra")

	b = append(b, "\nwrite:\n"...)
	b = op(b, "li $v0, 1")
	b = op(b, "syscall")
	b = op(b, "li $v0, 4")
	b = op(b, "la $a0, _newline")
	b = op(b, "syscall")
	b = op(b, "move $v0, $0")
	b = op(b, "jr $ra")

	return b
}

func (c *Compiler) instr(b []byte, in ir.Instr) (_ []byte, err error) {
	switch in := in.(type) {
	case ir.DefLabel:
		b = fmt.Appendf(b, "%v:\n", in.L)
	case ir.FuncEntry:
		b = op(b, "jr $ra")
		b = fmt.Appendf(b, "\n%s:\n", FuncLabel(in.Name))

		c.params = 0
	case ir.Assign:
		b, err = c.load(b, asm.T0, in.Src)
		if err != nil {
			return
		}

		return c.store(b, asm.T0, in.Dst)
	case ir.BinOp:
		b, err = c.load(b, asm.T1, in.L)
		if err != nil {
			return
		}

		b, err = c.load(b, asm.T2, in.R)
		if err != nil {
			return
		}

		switch in.Op {
		case ir.Add:
			b = op(b, "add %v, %v, %v", asm.T0, asm.T1, asm.T2)
		case ir.Sub:
			b = op(b, "sub %v, %v, %v", asm.T0, asm.T1, asm.T2)
		case ir.Mul:
			b = op(b, "mul %v, %v, %v", asm.T0, asm.T1, asm.T2)
		case ir.Div:
			b = op(b, "div %v, %v", asm.T1, asm.T2)
			b = op(b, "mflo %v", asm.T0)
		default:
			return nil, ir.Internal("unknown arithmetic operator: %v", in.Op)
		}

		return c.store(b, asm.T0, in.Dst)
	case ir.Goto:
		b = op(b, "j %v", in.L)
	case ir.If:
		if in.Rel < 0 || int(in.Rel) >= len(conds) {
			return nil, ir.Internal("unknown relational operator: %v", in.Rel)
		}

		b, err = c.load(b, asm.T1, in.L)
		if err != nil {
			return
		}

		b, err = c.load(b, asm.T2, in.R)
		if err != nil {
			return
		}

		b = op(b, "%s %v, %v, %v", conds[in.Rel].Branch(), asm.T1, asm.T2, in.Target)
	case ir.Return:
		b, err = c.load(b, asm.V0, in.X)
		if err != nil {
			return
		}

		b = op(b, "jr $ra")
	case ir.Alloc:
		// storage is reserved in the data section
	case ir.Arg:
		b, err = c.load(b, asm.T0, in.X)
		if err != nil {
			return
		}

		b = push(b, asm.T0)
		c.args++
	case ir.Call:
		b = push(b, asm.RA)
		b = op(b, "jal %s", FuncLabel(string(in.Func)))
		b = pop(b, asm.RA)

		b, err = c.store(b, asm.V0, in.Dst)
		if err != nil {
			return
		}

		b = op(b, "addi $sp, $sp, %d", asmWord*c.args)
		c.args = 0
	case ir.Param:
		c.params++

		b = op(b, "lw %v, %d($sp)", asm.T0, asmWord*c.params)

		return c.store(b, asm.T0, in.X)
	case ir.Read:
		b = push(b, asm.RA)
		b = op(b, "jal read")
		b = pop(b, asm.RA)

		return c.store(b, asm.V0, in.Dst)
	case ir.Write:
		b, err = c.load(b, asm.A0, in.X)
		if err != nil {
			return
		}

		b = push(b, asm.RA)
		b = op(b, "jal write")
		b = pop(b, asm.RA)
	default:
		return nil, ir.Internal("unknown instruction: %T", in)
	}

	return b, nil
}

func (c *Compiler) load(b []byte, r asm.Reg, x ir.Operand) (_ []byte, err error) {
	switch x := x.(type) {
	case ir.Int:
		return op(b, "li %v, %d", r, int32(x)), nil
	case ir.Float:
		return op(b, "li %v, %d", r, int32(math.Float32bits(float32(x)))), nil
	case ir.Addr:
		s, err := slot(x.X)
		if err != nil {
			return nil, err
		}

		return op(b, "la %v, %s", r, s), nil
	case ir.Deref:
		s, err := slot(x.X)
		if err != nil {
			return nil, err
		}

		b = op(b, "lw %v, %s", asm.T3, s)

		return op(b, "lw %v, 0(%v)", r, asm.T3), nil
	}

	s, err := slot(x)
	if err != nil {
		return nil, err
	}

	return op(b, "lw %v, %s", r, s), nil
}

func (c *Compiler) store(b []byte, r asm.Reg, x ir.Operand) (_ []byte, err error) {
	if d, ok := x.(ir.Deref); ok {
		s, err := slot(d.X)
		if err != nil {
			return nil, err
		}

		b = op(b, "lw %v, %s", asm.T3, s)

		return op(b, "sw %v, 0(%v)", r, asm.T3), nil
	}

	s, err := slot(x)
	if err != nil {
		return nil, err
	}

	return op(b, "sw %v, %s", r, s), nil
}

// FuncLabel is the assembly label of function name.
func FuncLabel(name string) string {
	if name == "main" {
		return name
	}

	return "func_" + name
}

const asmWord = 4

func slot(x ir.Operand) (string, error) {
	switch x.(type) {
	case ir.Var, ir.Temp:
		return slotName(x), nil
	}

	return "", ir.Internal("operand has no storage: %v", x)
}

func slotName(x ir.Operand) string {
	switch x := x.(type) {
	case ir.Var:
		return "var_" + string(x)
	case ir.Temp:
		return fmt.Sprintf("tmp_%d", int(x))
	}

	return ""
}

// operands returns every operand in, including destinations.
func operands(in ir.Instr) []ir.Operand {
	switch in := in.(type) {
	case ir.Assign:
		return []ir.Operand{in.Dst, in.Src}
	case ir.BinOp:
		return []ir.Operand{in.Dst, in.L, in.R}
	case ir.If:
		return []ir.Operand{in.L, in.R}
	case ir.Return:
		return []ir.Operand{in.X}
	case ir.Alloc:
		return []ir.Operand{in.X}
	case ir.Arg:
		return []ir.Operand{in.X}
	case ir.Call:
		return []ir.Operand{in.Dst}
	case ir.Param:
		return []ir.Operand{in.X}
	case ir.Read:
		return []ir.Operand{in.Dst}
	case ir.Write:
		return []ir.Operand{in.X}
	}

	return nil
}

func op(b []byte, format string, args ...any) []byte {
	b = append(b, "  "...)
	b = fmt.Appendf(b, format, args...)

	return append(b, '\n')
}

func push(b []byte, r asm.Reg) []byte {
	b = op(b, "addi $sp, $sp, -4")
	return op(b, "sw %v, 0($sp)", r)
}

func pop(b []byte, r asm.Reg) []byte {
	b = op(b, "lw %v, 0($sp)", r)
	return op(b, "addi $sp, $sp, 4")
}
