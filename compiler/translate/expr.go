package translate

import (
	"github.com/nettee/compiler-lab/compiler/ast"
	"github.com/nettee/compiler-lab/compiler/ir"
	"github.com/nettee/compiler-lab/compiler/tp"
)

var (
	arith = map[ast.Op]ir.Arith{
		ast.Add: ir.Add,
		ast.Sub: ir.Sub,
		ast.Mul: ir.Mul,
		ast.Div: ir.Div,
	}

	rel = map[ast.Op]ir.Rel{
		ast.LT: ir.LT,
		ast.LE: ir.LE,
		ast.GT: ir.GT,
		ast.GE: ir.GE,
		ast.EQ: ir.EQ,
		ast.NE: ir.NE,
	}
)

// Expr translates x storing its value into place.
func (t *Translator) Expr(x ast.Expr, place ir.Operand) (err error) {
	switch x := x.(type) {
	case *ast.Paren:
		return t.Expr(x.X, place)
	case *ast.IntLit:
		t.emit(ir.Assign{Dst: place, Src: ir.Int(x.Value)})
	case *ast.FloatLit:
		t.emit(ir.Assign{Dst: place, Src: ir.Float(x.Value)})
	case *ast.Ident:
		switch {
		case tp.IsArray(x.Type):
			base, err := t.base(x)
			if err != nil {
				return err
			}

			t.emit(ir.Assign{Dst: place, Src: base})
		case tp.IsStruct(x.Type):
			return unsupported(x.Span(), "struct value %v", x.Name)
		default:
			t.emit(ir.Assign{Dst: place, Src: ir.Var(x.Name)})
		}
	case *ast.Binary:
		if x.Op.IsRel() || x.Op.IsLogic() {
			return t.boolean(x, place)
		}

		op, ok := arith[x.Op]
		if !ok {
			return ir.Internal("unknown operator: %v", x.Op)
		}

		t1, t2 := t.p.NewTemp(), t.p.NewTemp()

		err = t.Expr(x.L, t1)
		if err != nil {
			return err
		}

		err = t.Expr(x.R, t2)
		if err != nil {
			return err
		}

		t.emit(ir.BinOp{Op: op, Dst: place, L: t1, R: t2})
	case *ast.Unary:
		switch x.Op {
		case ast.Not:
			return t.boolean(x, place)
		case ast.Neg:
			tmp := t.p.NewTemp()

			err = t.Expr(x.X, tmp)
			if err != nil {
				return err
			}

			var zero ir.Operand = ir.Int(0)
			if tp.IsFloat(x.Type) {
				zero = ir.Float(0)
			}

			t.emit(ir.BinOp{Op: ir.Sub, Dst: place, L: zero, R: tmp})
		default:
			return ir.Internal("unknown unary operator: %v", x.Op)
		}
	case *ast.Assign:
		if !tp.IsBasic(x.Type) {
			return unsupported(x.Span(), "assignment of %v", x.Type)
		}

		tmp := t.p.NewTemp()

		err = t.Expr(x.R, tmp)
		if err != nil {
			return err
		}

		dst, err := t.lvalue(x.L)
		if err != nil {
			return err
		}

		t.emit(ir.Assign{Dst: dst, Src: tmp})
		t.emit(ir.Assign{Dst: place, Src: tmp})
	case *ast.Call:
		return t.call(x, place)
	case *ast.Index:
		addr, err := t.address(x)
		if err != nil {
			return err
		}

		if tp.IsArray(x.Type) {
			t.emit(ir.Assign{Dst: place, Src: addr})
		} else {
			t.emit(ir.Assign{Dst: place, Src: ir.Deref{X: addr}})
		}
	case *ast.Field:
		return unsupported(x.Span(), "field access .%v", x.Name)
	default:
		return ir.Internal("unknown expression: %T", x)
	}

	return nil
}

// boolean materializes a condition as 0 or 1.
func (t *Translator) boolean(x ast.Expr, place ir.Operand) error {
	lt, lf := t.p.NewLabel(), t.p.NewLabel()

	t.emit(ir.Assign{Dst: place, Src: ir.Int(0)})

	err := t.Cond(x, lt, lf)
	if err != nil {
		return err
	}

	t.emit(ir.DefLabel{L: lt})
	t.emit(ir.Assign{Dst: place, Src: ir.Int(1)})
	t.emit(ir.DefLabel{L: lf})

	return nil
}

// Cond translates x into a branch to lt when it holds and to lf otherwise.
func (t *Translator) Cond(x ast.Expr, lt, lf ir.Label) (err error) {
	switch x := x.(type) {
	case *ast.Paren:
		return t.Cond(x.X, lt, lf)
	case *ast.Unary:
		if x.Op == ast.Not {
			return t.Cond(x.X, lf, lt)
		}
	case *ast.Binary:
		switch {
		case x.Op.IsRel():
			t1, t2 := t.p.NewTemp(), t.p.NewTemp()

			err = t.Expr(x.L, t1)
			if err != nil {
				return err
			}

			err = t.Expr(x.R, t2)
			if err != nil {
				return err
			}

			t.emit(ir.If{L: t1, Rel: rel[x.Op], R: t2, Target: lt})
			t.emit(ir.Goto{L: lf})

			return nil
		case x.Op == ast.And:
			l := t.p.NewLabel()

			err = t.Cond(x.L, l, lf)
			if err != nil {
				return err
			}

			t.emit(ir.DefLabel{L: l})

			return t.Cond(x.R, lt, lf)
		case x.Op == ast.Or:
			l := t.p.NewLabel()

			err = t.Cond(x.L, lt, l)
			if err != nil {
				return err
			}

			t.emit(ir.DefLabel{L: l})

			return t.Cond(x.R, lt, lf)
		}
	}

	tmp := t.p.NewTemp()

	err = t.Expr(x, tmp)
	if err != nil {
		return err
	}

	t.emit(ir.If{L: tmp, Rel: ir.NE, R: ir.Int(0), Target: lt})
	t.emit(ir.Goto{L: lf})

	return nil
}

func (t *Translator) call(x *ast.Call, place ir.Operand) (err error) {
	switch x.Name {
	case "read":
		t.emit(ir.Read{Dst: place})

		return nil
	case "write":
		if len(x.Args) == 0 {
			return unsupported(x.Span(), "write without argument")
		}

		tmp := t.p.NewTemp()

		err = t.Expr(x.Args[0], tmp)
		if err != nil {
			return err
		}

		t.emit(ir.Write{X: tmp})

		return nil
	}

	if _, ok := t.syms.Func(x.Name); !ok {
		return ir.Internal("call of undefined function %v", x.Name)
	}

	// arguments are evaluated last to first and pushed contiguously
	// so nested calls never see our pending ARGs
	args := make([]ir.Operand, len(x.Args))

	for i := len(x.Args) - 1; i >= 0; i-- {
		tmp := t.p.NewTemp()

		err = t.Expr(x.Args[i], tmp)
		if err != nil {
			return err
		}

		args[i] = tmp
	}

	for i := len(args) - 1; i >= 0; i-- {
		t.emit(ir.Arg{X: args[i]})
	}

	t.emit(ir.Call{Dst: place, Func: ir.Sym(x.Name)})

	return nil
}

// lvalue returns the storage operand x denotes.
func (t *Translator) lvalue(x ast.Expr) (ir.Operand, error) {
	switch x := ast.Unparen(x).(type) {
	case *ast.Ident:
		if !tp.IsBasic(x.Type) {
			return nil, unsupported(x.Span(), "assignment to %v", x.Name)
		}

		return ir.Var(x.Name), nil
	case *ast.Index:
		addr, err := t.address(x)
		if err != nil {
			return nil, err
		}

		return ir.Deref{X: addr}, nil
	case *ast.Field:
		return nil, unsupported(x.Span(), "field access .%v", x.Name)
	default:
		return nil, ir.Internal("not an lvalue: %T", x)
	}
}

// address computes the address of an array element into a fresh temporary.
func (t *Translator) address(x *ast.Index) (ir.Temp, error) {
	id, ok := ast.Root(x).(*ast.Ident)
	if !ok {
		return 0, unsupported(x.Span(), "array base %T", ast.Root(x))
	}

	base, err := t.base(id)
	if err != nil {
		return 0, err
	}

	off := t.p.NewTemp()

	err = t.Subscript(x, off)
	if err != nil {
		return 0, err
	}

	addr := t.p.NewTemp()

	t.emit(ir.BinOp{Op: ir.Add, Dst: addr, L: base, R: off})

	return addr, nil
}

// Subscript computes the byte offset of x relative to its array base.
func (t *Translator) Subscript(x ast.Expr, off ir.Operand) (err error) {
	ix, ok := ast.Unparen(x).(*ast.Index)
	if !ok {
		t.emit(ir.Assign{Dst: off, Src: ir.Int(0)})
		return nil
	}

	inner := t.p.NewTemp()

	err = t.Subscript(ix.X, inner)
	if err != nil {
		return err
	}

	idx := t.p.NewTemp()

	err = t.Expr(ix.Index, idx)
	if err != nil {
		return err
	}

	scaled := t.p.NewTemp()

	t.emit(ir.BinOp{Op: ir.Mul, Dst: scaled, L: idx, R: ir.Int(t.syms.Width(ix.Type))})
	t.emit(ir.BinOp{Op: ir.Add, Dst: off, L: inner, R: scaled})

	return nil
}

// base returns the address an array identifier starts at.
// Array parameters already hold the caller's address.
func (t *Translator) base(x *ast.Ident) (ir.Operand, error) {
	if _, ok := t.syms.Var(x.Name); !ok {
		return nil, ir.Internal("undefined variable %v", x.Name)
	}

	if t.params[x.Name] {
		return ir.Var(x.Name), nil
	}

	return ir.Addr{X: ir.Var(x.Name)}, nil
}
