package front

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tlog.app/go/tlog"

	"github.com/nettee/compiler-lab/compiler/ast"
	"github.com/nettee/compiler-lab/compiler/tp"
)

type (
	// Table is the symbol table built by Analyze.
	// All variables share one program-wide namespace.
	Table struct {
		vars    map[string]tp.Type
		funcs   map[string]*funcSym
		structs map[string]*tp.Struct
	}

	funcSym struct {
		Type    *tp.Func
		Defined bool
		Pos     int
	}

	Diag struct {
		Type int
		Line int
		Msg  string
	}

	// SemanticError lists every semantic diagnostic found in a unit.
	SemanticError struct {
		Name string
		Errs []Diag
	}

	analyzer struct {
		src *Source
		t   *Table

		fn *tp.Func

		errs []Diag
	}
)

// Diagnostic kinds.
const (
	ErrUndefinedVar = 1 + iota
	ErrUndefinedFunc
	ErrRedefinedVar
	ErrRedefinedFunc
	ErrAssignMismatch
	ErrNotLvalue
	ErrOperandMismatch
	ErrReturnMismatch
	ErrArgsMismatch
	ErrNotArray
	ErrNotFunc
	ErrNotIntIndex
	ErrNotStruct
	ErrUndefinedField
	ErrRedefinedField
	ErrRedefinedStruct
	ErrUndefinedStruct
	ErrUndefinedDecl
	ErrDeclMismatch
)

func NewTable() *Table {
	t := &Table{
		vars:    make(map[string]tp.Type),
		funcs:   make(map[string]*funcSym),
		structs: make(map[string]*tp.Struct),
	}

	t.funcs["read"] = &funcSym{Type: &tp.Func{Name: "read", Ret: tp.Int}, Defined: true, Pos: -1}
	t.funcs["write"] = &funcSym{Type: &tp.Func{Name: "write", Ret: tp.Int, Params: []tp.Type{tp.Int}}, Defined: true, Pos: -1}

	return t
}

func (t *Table) Var(name string) (tp.Type, bool) {
	x, ok := t.vars[name]
	return x, ok
}

func (t *Table) Func(name string) (*tp.Func, bool) {
	f, ok := t.funcs[name]
	if !ok {
		return nil, false
	}

	return f.Type, true
}

func (t *Table) Struct(name string) (*tp.Struct, bool) {
	s, ok := t.structs[name]
	return s, ok
}

func (t *Table) Width(x tp.Type) int { return tp.Width(x) }

// Analyze resolves names and checks types annotating prog in place.
// It reports all found problems at once as SemanticError.
func Analyze(ctx context.Context, src *Source, prog *ast.Program) (t *Table, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "analyze", "name", src.Name)
	defer tr.Finish("err", &err)

	a := &analyzer{
		src: src,
		t:   NewTable(),
	}

	for _, d := range prog.Defs {
		a.def(d)
	}

	names := make([]string, 0, len(a.t.funcs))

	for name, f := range a.t.funcs {
		if !f.Defined {
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool { return a.t.funcs[names[i]].Pos < a.t.funcs[names[j]].Pos })

	for _, name := range names {
		a.errorf(ErrUndefinedDecl, a.t.funcs[name].Pos, "function %q declared but not defined", name)
	}

	tr.Printw("analyzed", "vars", len(a.t.vars), "funcs", len(a.t.funcs), "structs", len(a.t.structs), "errors", len(a.errs))

	if len(a.errs) != 0 {
		sort.SliceStable(a.errs, func(i, j int) bool { return a.errs[i].Line < a.errs[j].Line })

		return nil, SemanticError{Name: src.Name, Errs: a.errs}
	}

	return a.t, nil
}

func (a *analyzer) def(d ast.Def) {
	switch d := d.(type) {
	case *ast.StructDef:
		a.spec(d.Spec)
	case *ast.VarDef:
		base := a.spec(d.Spec)

		for _, v := range d.Vars {
			a.declare(v, base)
		}
	case *ast.FuncDef:
		a.funcDef(d)
	}
}

func (a *analyzer) funcDef(d *ast.FuncDef) {
	ret := a.spec(d.Spec)

	f := &tp.Func{Name: d.Name, Ret: ret}

	for _, p := range d.Params {
		base := a.spec(p.Spec)
		p.Dec.Type = arrayOf(base, p.Dec.Dims)
		f.Params = append(f.Params, p.Dec.Type)
	}

	d.Type = f

	prev, ok := a.t.funcs[d.Name]

	switch {
	case ok && prev.Defined && d.Body != nil:
		a.errorf(ErrRedefinedFunc, d.Pos, "redefined function %q", d.Name)
		return
	case ok && !funcEqual(prev.Type, f):
		a.errorf(ErrDeclMismatch, d.Pos, "inconsistent declaration of function %q", d.Name)
	case !ok:
		prev = &funcSym{Type: f, Pos: d.Pos}
		a.t.funcs[d.Name] = prev
	}

	if d.Body == nil {
		return
	}

	prev.Defined = true

	for _, p := range d.Params {
		a.declareType(p.Dec, p.Dec.Type)
	}

	a.fn = f
	a.compound(d.Body)
	a.fn = nil
}

func (a *analyzer) spec(s ast.Spec) tp.Type {
	switch s := s.(type) {
	case *ast.BasicSpec:
		return s.Type
	case *ast.StructSpec:
		if !s.Body {
			st, ok := a.t.structs[s.Tag]
			if !ok {
				a.errorf(ErrUndefinedStruct, s.Pos, "undefined struct %q", s.Tag)
				return nil
			}

			return st
		}

		st := &tp.Struct{Name: s.Tag}

		for _, d := range s.Fields {
			base := a.spec(d.Spec)

			for _, v := range d.Vars {
				v.Type = arrayOf(base, v.Dims)

				if _, dup := st.Field(v.Name); dup {
					a.errorf(ErrRedefinedField, v.Pos, "redefined field %q", v.Name)
					continue
				}

				if v.Init != nil {
					a.errorf(ErrRedefinedField, v.Pos, "initialized field %q", v.Name)
				}

				st.Fields = append(st.Fields, tp.Field{Name: v.Name, Type: v.Type})
			}
		}

		if s.Tag == "" {
			return st
		}

		_, isVar := a.t.vars[s.Tag]
		if _, ok := a.t.structs[s.Tag]; ok || isVar {
			a.errorf(ErrRedefinedStruct, s.Pos, "duplicated name %q", s.Tag)
			return st
		}

		a.t.structs[s.Tag] = st

		return st
	}

	return nil
}

func (a *analyzer) declare(v *ast.VarDec, base tp.Type) {
	a.declareType(v, arrayOf(base, v.Dims))
}

func (a *analyzer) declareType(v *ast.VarDec, t tp.Type) {
	v.Type = t

	_, isStruct := a.t.structs[v.Name]
	if _, ok := a.t.vars[v.Name]; ok || isStruct {
		a.errorf(ErrRedefinedVar, v.Pos, "redefined variable %q", v.Name)
		return
	}

	a.t.vars[v.Name] = t
}

func (a *analyzer) compound(c *ast.Compound) {
	for _, d := range c.Defs {
		base := a.spec(d.Spec)

		for _, v := range d.Vars {
			a.declare(v, base)

			if v.Init == nil {
				continue
			}

			it := a.expr(v.Init)
			if it != nil && v.Type != nil && !tp.Equal(it, v.Type) {
				a.errorf(ErrAssignMismatch, v.Pos, "type mismatched for assignment: %v = %v", v.Type, it)
			}
		}
	}

	for _, s := range c.Stmts {
		a.stmt(s)
	}
}

func (a *analyzer) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		a.expr(s.X)
	case *ast.Compound:
		a.compound(s)
	case *ast.Return:
		t := a.expr(s.X)
		if t != nil && a.fn != nil && a.fn.Ret != nil && !tp.Equal(t, a.fn.Ret) {
			a.errorf(ErrReturnMismatch, s.Pos, "type mismatched for return: %v, expected %v", t, a.fn.Ret)
		}
	case *ast.If:
		a.cond(s.Cond)
		a.stmt(s.Then)

		if s.Else != nil {
			a.stmt(s.Else)
		}
	case *ast.While:
		a.cond(s.Cond)
		a.stmt(s.Body)
	}
}

func (a *analyzer) cond(x ast.Expr) {
	t := a.expr(x)
	if t != nil && !tp.IsInt(t) {
		a.errorf(ErrOperandMismatch, x.Span().Pos, "condition of type %v", t)
	}
}

// expr annotates x and returns its type, nil if it's erroneous.
func (a *analyzer) expr(x ast.Expr) (t tp.Type) {
	ann := x.Annotation()

	defer func() {
		ann.Type = t
	}()

	switch x := x.(type) {
	case *ast.IntLit:
		return tp.Int
	case *ast.FloatLit:
		return tp.Float
	case *ast.Ident:
		t, ok := a.t.vars[x.Name]
		if !ok {
			a.errorf(ErrUndefinedVar, x.Pos, "undefined variable %q", x.Name)
			return nil
		}

		ann.Lvalue = true

		return t
	case *ast.Paren:
		t = a.expr(x.X)
		ann.Lvalue = x.X.Annotation().Lvalue

		return t
	case *ast.Assign:
		lt := a.expr(x.L)
		rt := a.expr(x.R)

		if lt == nil || rt == nil {
			return nil
		}

		if !x.L.Annotation().Lvalue {
			a.errorf(ErrNotLvalue, x.Pos, "the left-hand side of an assignment must be a variable")
			return nil
		}

		if !tp.Equal(lt, rt) {
			a.errorf(ErrAssignMismatch, x.Pos, "type mismatched for assignment: %v = %v", lt, rt)
			return nil
		}

		return lt
	case *ast.Binary:
		lt := a.expr(x.L)
		rt := a.expr(x.R)

		if lt == nil || rt == nil {
			return nil
		}

		switch {
		case x.Op.IsLogic():
			if !tp.IsInt(lt) || !tp.IsInt(rt) {
				a.errorf(ErrOperandMismatch, x.Pos, "type mismatched for operands: %v %v %v", lt, x.Op, rt)
				return nil
			}

			return tp.Int
		case !tp.IsBasic(lt) || !tp.Equal(lt, rt):
			a.errorf(ErrOperandMismatch, x.Pos, "type mismatched for operands: %v %v %v", lt, x.Op, rt)
			return nil
		case x.Op.IsRel():
			return tp.Int
		}

		return lt
	case *ast.Unary:
		st := a.expr(x.X)
		if st == nil {
			return nil
		}

		if x.Op == ast.Not && !tp.IsInt(st) || !tp.IsBasic(st) {
			a.errorf(ErrOperandMismatch, x.Pos, "type mismatched for operand: %v%v", x.Op, st)
			return nil
		}

		return st
	case *ast.Call:
		return a.call(x)
	case *ast.Index:
		xt := a.expr(x.X)
		it := a.expr(x.Index)

		if xt == nil {
			return nil
		}

		arr, ok := xt.(*tp.Array)
		if !ok {
			a.errorf(ErrNotArray, x.Pos, "%v is not an array", describeExpr(x.X))
			return nil
		}

		if it != nil && !tp.IsInt(it) {
			a.errorf(ErrNotIntIndex, x.Index.Span().Pos, "array index of type %v", it)
			return nil
		}

		ann.Lvalue = true

		return arr.Elem
	case *ast.Field:
		xt := a.expr(x.X)
		if xt == nil {
			return nil
		}

		st, ok := xt.(*tp.Struct)
		if !ok {
			a.errorf(ErrNotStruct, x.Pos, "illegal use of \".\"")
			return nil
		}

		f, ok := st.Field(x.Name)
		if !ok {
			a.errorf(ErrUndefinedField, x.Pos, "non-existent field %q", x.Name)
			return nil
		}

		ann.Lvalue = true

		return f.Type
	}

	return nil
}

func (a *analyzer) call(x *ast.Call) tp.Type {
	args := make([]tp.Type, len(x.Args))
	bad := false

	for i, arg := range x.Args {
		args[i] = a.expr(arg)
		bad = bad || args[i] == nil
	}

	f, ok := a.t.funcs[x.Name]
	if !ok {
		if _, ok := a.t.vars[x.Name]; ok {
			a.errorf(ErrNotFunc, x.Pos, "%q is not a function", x.Name)
		} else {
			a.errorf(ErrUndefinedFunc, x.Pos, "undefined function %q", x.Name)
		}

		return nil
	}

	if !bad && !tp.EqualList(f.Type.Params, args) {
		a.errorf(ErrArgsMismatch, x.Pos, "function %q is not applicable for arguments %v", x.Name, typeList(args))
	}

	return f.Type.Ret
}

func (a *analyzer) errorf(typ, pos int, format string, args ...any) {
	line := 0
	if pos >= 0 {
		line = a.src.Line(pos)
	}

	a.errs = append(a.errs, Diag{
		Type: typ,
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
	})
}

func arrayOf(base tp.Type, dims []int) tp.Type {
	if base == nil {
		return nil
	}

	t := base

	for i := len(dims) - 1; i >= 0; i-- {
		t = &tp.Array{Elem: t, Len: dims[i]}
	}

	return t
}

func funcEqual(x, y *tp.Func) bool {
	return x.Ret != nil && y.Ret != nil && tp.Equal(x.Ret, y.Ret) && tp.EqualList(x.Params, y.Params)
}

func typeList(l []tp.Type) string {
	var b strings.Builder

	b.WriteByte('(')

	for i, t := range l {
		if i != 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "%v", t)
	}

	b.WriteByte(')')

	return b.String()
}

func describeExpr(x ast.Expr) string {
	if id, ok := ast.Unparen(x).(*ast.Ident); ok {
		return fmt.Sprintf("%q", id.Name)
	}

	return "expression"
}

func (d Diag) String() string {
	return fmt.Sprintf("Error type %d at Line %d: %s.", d.Type, d.Line, d.Msg)
}

func (e SemanticError) Error() string {
	var b strings.Builder

	for i, d := range e.Errs {
		if i != 0 {
			b.WriteByte('\n')
		}

		b.WriteString(d.String())
	}

	return b.String()
}
