package translate

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nettee/compiler-lab/compiler/ast"
	"github.com/nettee/compiler-lab/compiler/ir"
	"github.com/nettee/compiler-lab/compiler/tp"
)

//go:generate mockgen -write_package_comment=false -package=$GOPACKAGE -destination=mock_symbols_test.go github.com/nettee/compiler-lab/compiler/translate Symbols

type (
	// Symbols is the query side of the semantic analyzer.
	Symbols interface {
		Var(name string) (tp.Type, bool)
		Func(name string) (*tp.Func, bool)
		Width(t tp.Type) int
	}

	Translator struct {
		p    *ir.Program
		syms Symbols

		params map[string]bool // array parameters of the current function
	}

	// UnsupportedError is a construct the back end can't lower.
	// It aborts translation of the whole unit.
	UnsupportedError struct {
		What string
		Pos  int
	}
)

var ErrUnsupported = errors.New("cannot translate")

func New(p *ir.Program, syms Symbols) *Translator {
	return &Translator{
		p:    p,
		syms: syms,
	}
}

// Translate lowers a type-annotated program into a fresh IR program.
func Translate(ctx context.Context, x *ast.Program, syms Symbols) (p *ir.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "translate")
	defer tr.Finish("err", &err)

	p = ir.New()
	t := New(p, syms)

	err = t.Program(ctx, x)
	if err != nil {
		return nil, err
	}

	tr.Printw("translated", "instrs", p.Len(), "temps", p.Temps(), "labels", p.Labels())

	if tr.If("dump_ir") {
		for _, in := range p.Instrs() {
			tr.Printw("ir", "in", in)
		}
	}

	return p, nil
}

func (t *Translator) Program(ctx context.Context, x *ast.Program) (err error) {
	// global arrays first, functions may refer to them in any order
	for _, d := range x.Defs {
		d, ok := d.(*ast.VarDef)
		if !ok {
			continue
		}

		err = t.varDef(d, true)
		if err != nil {
			return err
		}
	}

	for _, d := range x.Defs {
		f, ok := d.(*ast.FuncDef)
		if !ok || f.Body == nil {
			continue
		}

		err = t.Func(ctx, f)
		if err != nil {
			return errors.Wrap(err, "func %v", f.Name)
		}
	}

	return nil
}

func (t *Translator) Func(ctx context.Context, f *ast.FuncDef) error {
	tlog.SpanFromContext(ctx).Printw("translate func", "name", f.Name, "params", len(f.Params))

	t.params = make(map[string]bool)

	t.emit(ir.FuncEntry{Name: f.Name})

	for _, p := range f.Params {
		if tp.IsArray(p.Dec.Type) {
			t.params[p.Dec.Name] = true
		}

		t.emit(ir.Param{X: ir.Var(p.Dec.Name)})
	}

	return t.Stmt(f.Body)
}

func (t *Translator) varDef(d *ast.VarDef, global bool) (err error) {
	for _, v := range d.Vars {
		if tp.IsArray(v.Type) {
			t.emit(ir.Alloc{X: ir.Var(v.Name), Size: t.syms.Width(v.Type)})
		}

		if v.Init == nil {
			continue
		}

		if global || !tp.IsBasic(v.Type) {
			return unsupported(v.Span(), "initializer of %v", v.Name)
		}

		tmp := t.p.NewTemp()

		err = t.Expr(v.Init, tmp)
		if err != nil {
			return err
		}

		t.emit(ir.Assign{Dst: ir.Var(v.Name), Src: tmp})
	}

	return nil
}

func (t *Translator) Stmt(s ast.Stmt) (err error) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		return t.Expr(s.X, t.p.NewTemp())
	case *ast.Compound:
		for _, d := range s.Defs {
			err = t.varDef(d, false)
			if err != nil {
				return err
			}
		}

		for _, s := range s.Stmts {
			err = t.Stmt(s)
			if err != nil {
				return err
			}
		}
	case *ast.Return:
		tmp := t.p.NewTemp()

		err = t.Expr(s.X, tmp)
		if err != nil {
			return err
		}

		t.emit(ir.Return{X: tmp})
	case *ast.If:
		if s.Else == nil {
			lthen, lend := t.p.NewLabel(), t.p.NewLabel()

			err = t.Cond(s.Cond, lthen, lend)
			if err != nil {
				return err
			}

			t.emit(ir.DefLabel{L: lthen})

			err = t.Stmt(s.Then)
			if err != nil {
				return err
			}

			t.emit(ir.DefLabel{L: lend})

			return nil
		}

		lthen, lelse, lend := t.p.NewLabel(), t.p.NewLabel(), t.p.NewLabel()

		err = t.Cond(s.Cond, lthen, lelse)
		if err != nil {
			return err
		}

		t.emit(ir.DefLabel{L: lthen})

		err = t.Stmt(s.Then)
		if err != nil {
			return err
		}

		t.emit(ir.Goto{L: lend})
		t.emit(ir.DefLabel{L: lelse})

		err = t.Stmt(s.Else)
		if err != nil {
			return err
		}

		t.emit(ir.DefLabel{L: lend})
	case *ast.While:
		lhead, lbody, lend := t.p.NewLabel(), t.p.NewLabel(), t.p.NewLabel()

		t.emit(ir.DefLabel{L: lhead})

		err = t.Cond(s.Cond, lbody, lend)
		if err != nil {
			return err
		}

		t.emit(ir.DefLabel{L: lbody})

		err = t.Stmt(s.Body)
		if err != nil {
			return err
		}

		t.emit(ir.Goto{L: lhead})
		t.emit(ir.DefLabel{L: lend})
	default:
		return ir.Internal("unknown statement: %T", s)
	}

	return nil
}

func (t *Translator) emit(in ir.Instr) {
	t.p.Emit(in)
}

func unsupported(b ast.Base, format string, args ...any) error {
	return UnsupportedError{
		What: fmt.Sprintf(format, args...),
		Pos:  b.Pos,
	}
}

func (e UnsupportedError) Error() string {
	return "cannot translate " + e.What
}

func (e UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}
