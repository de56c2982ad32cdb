package front

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nettee/compiler-lab/compiler/ast"
	"github.com/nettee/compiler-lab/compiler/tp"
)

type (
	parser struct {
		src *Source
	}
)

var binPrec = map[punct]struct {
	op   ast.Op
	prec int
}{
	"||": {ast.Or, 1},
	"&&": {ast.And, 2},
	"<":  {ast.LT, 3},
	"<=": {ast.LE, 3},
	">":  {ast.GT, 3},
	">=": {ast.GE, 3},
	"==": {ast.EQ, 3},
	"!=": {ast.NE, 3},
	"+":  {ast.Add, 4},
	"-":  {ast.Sub, 4},
	"*":  {ast.Mul, 5},
	"/":  {ast.Div, 5},
}

func Parse(ctx context.Context, src *Source) (x *ast.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "name", src.Name, "size", len(src.Text))
	defer tr.Finish("err", &err)

	p := &parser{src: src}

	x = &ast.Program{}

	for i := 0; ; {
		tk, _, _, err := p.next(ctx, i)
		if err != nil {
			return nil, err
		}

		if tk == (eof{}) {
			x.End = i
			break
		}

		var d ast.Def

		d, i, err = p.parseExtDef(ctx, i)
		if err != nil {
			return nil, err
		}

		x.Defs = append(x.Defs, d)
	}

	tr.Printw("parsed", "defs", len(x.Defs))

	return x, nil
}

func (p *parser) parseExtDef(ctx context.Context, st int) (d ast.Def, i int, err error) {
	spec, i, err := p.parseSpec(ctx, st)
	if err != nil {
		return
	}

	st = spec.Span().Pos

	if ok, e := p.accept(ctx, i, ";"); ok {
		ss, ok := spec.(*ast.StructSpec)
		if !ok {
			return nil, i, p.unexpected(ctx, i, "declarator")
		}

		return &ast.StructDef{Base: ast.Base{Pos: st, End: e}, Spec: ss}, e, nil
	}

	tk, tst, e, err := p.next(ctx, i)
	if err != nil {
		return nil, i, err
	}

	name, ok := tk.(ident)
	if !ok {
		return nil, tst, p.unexpected(ctx, i, "identifier")
	}

	if ok, _ := p.accept(ctx, e, "("); ok {
		return p.parseFunc(ctx, st, spec, string(name), e)
	}

	vd := &ast.VarDef{Spec: spec}

	for {
		var v *ast.VarDec

		v, i, err = p.parseVarDec(ctx, i)
		if err != nil {
			return
		}

		vd.Vars = append(vd.Vars, v)

		if ok, e := p.accept(ctx, i, ","); ok {
			i = e
			continue
		}

		i, err = p.expect(ctx, i, ";")
		if err != nil {
			return
		}

		break
	}

	vd.Base = ast.Base{Pos: st, End: i}

	return vd, i, nil
}

func (p *parser) parseFunc(ctx context.Context, st int, spec ast.Spec, name string, i int) (d ast.Def, _ int, err error) {
	f := &ast.FuncDef{
		Spec: spec,
		Name: name,
	}

	i, err = p.expect(ctx, i, "(")
	if err != nil {
		return
	}

	if ok, e := p.accept(ctx, i, ")"); ok {
		i = e
	} else {
		for {
			var ps ast.Spec
			var v *ast.VarDec

			ps, i, err = p.parseSpec(ctx, i)
			if err != nil {
				return
			}

			v, i, err = p.parseVarDec(ctx, i)
			if err != nil {
				return
			}

			f.Params = append(f.Params, &ast.Param{Base: ast.Base{Pos: ps.Span().Pos, End: i}, Spec: ps, Dec: v})

			if ok, e := p.accept(ctx, i, ","); ok {
				i = e
				continue
			}

			i, err = p.expect(ctx, i, ")")
			if err != nil {
				return
			}

			break
		}
	}

	if ok, e := p.accept(ctx, i, ";"); ok {
		f.Base = ast.Base{Pos: st, End: e}
		return f, e, nil
	}

	f.Body, i, err = p.parseCompound(ctx, i)
	if err != nil {
		return
	}

	f.Base = ast.Base{Pos: st, End: i}

	return f, i, nil
}

func (p *parser) parseSpec(ctx context.Context, st int) (s ast.Spec, i int, err error) {
	tk, tst, i, err := p.next(ctx, st)
	if err != nil {
		return
	}

	switch tk {
	case keyword("int"):
		return &ast.BasicSpec{Base: ast.Base{Pos: tst, End: i}, Type: tp.Int}, i, nil
	case keyword("float"):
		return &ast.BasicSpec{Base: ast.Base{Pos: tst, End: i}, Type: tp.Float}, i, nil
	case keyword("struct"):
	default:
		return nil, tst, p.unexpected(ctx, st, "type specifier")
	}

	ss := &ast.StructSpec{}

	tk, _, e, err := p.next(ctx, i)
	if err != nil {
		return
	}

	if name, ok := tk.(ident); ok {
		ss.Tag = string(name)
		i = e
	}

	if ok, e := p.accept(ctx, i, "{"); ok {
		i = e
		ss.Body = true
		ss.Fields = []*ast.VarDef{}

		for {
			if ok, e := p.accept(ctx, i, "}"); ok {
				i = e
				break
			}

			var d *ast.VarDef

			d, i, err = p.parseDef(ctx, i)
			if err != nil {
				return
			}

			ss.Fields = append(ss.Fields, d)
		}
	} else if ss.Tag == "" {
		return nil, i, p.unexpected(ctx, i, "struct tag or body")
	}

	ss.Base = ast.Base{Pos: tst, End: i}

	return ss, i, nil
}

// parseDef parses a local definition: Spec Dec {, Dec} ;
func (p *parser) parseDef(ctx context.Context, st int) (d *ast.VarDef, i int, err error) {
	spec, i, err := p.parseSpec(ctx, st)
	if err != nil {
		return
	}

	st = spec.Span().Pos
	d = &ast.VarDef{Spec: spec}

	for {
		var v *ast.VarDec

		v, i, err = p.parseVarDec(ctx, i)
		if err != nil {
			return
		}

		if ok, e := p.accept(ctx, i, "="); ok {
			v.Init, i, err = p.parseExpr(ctx, e)
			if err != nil {
				return
			}

			v.End = i
		}

		d.Vars = append(d.Vars, v)

		if ok, e := p.accept(ctx, i, ","); ok {
			i = e
			continue
		}

		i, err = p.expect(ctx, i, ";")
		if err != nil {
			return
		}

		break
	}

	d.Base = ast.Base{Pos: st, End: i}

	return d, i, nil
}

func (p *parser) parseVarDec(ctx context.Context, st int) (v *ast.VarDec, i int, err error) {
	tk, tst, i, err := p.next(ctx, st)
	if err != nil {
		return
	}

	name, ok := tk.(ident)
	if !ok {
		return nil, tst, p.unexpected(ctx, st, "identifier")
	}

	v = &ast.VarDec{Name: string(name)}

	for {
		ok, e := p.accept(ctx, i, "[")
		if !ok {
			break
		}

		tk, dst, e, err := p.next(ctx, e)
		if err != nil {
			return nil, dst, err
		}

		n, ok := tk.(intLit)
		if !ok || n.Value <= 0 {
			return nil, dst, p.unexpected(ctx, dst, "positive array size")
		}

		i, err = p.expect(ctx, e, "]")
		if err != nil {
			return nil, i, err
		}

		v.Dims = append(v.Dims, int(n.Value))
	}

	v.Base = ast.Base{Pos: tst, End: i}

	return v, i, nil
}

func (p *parser) parseCompound(ctx context.Context, st int) (c *ast.Compound, i int, err error) {
	i, err = p.expect(ctx, st, "{")
	if err != nil {
		return
	}

	c = &ast.Compound{}

	for {
		tk, _, _, err := p.next(ctx, i)
		if err != nil {
			return nil, i, err
		}

		if tk != keyword("int") && tk != keyword("float") && tk != keyword("struct") {
			break
		}

		var d *ast.VarDef

		d, i, err = p.parseDef(ctx, i)
		if err != nil {
			return nil, i, err
		}

		c.Defs = append(c.Defs, d)
	}

	for {
		if ok, e := p.accept(ctx, i, "}"); ok {
			i = e
			break
		}

		var s ast.Stmt

		s, i, err = p.parseStmt(ctx, i)
		if err != nil {
			return
		}

		c.Stmts = append(c.Stmts, s)
	}

	c.Base = ast.Base{Pos: st, End: i}

	return c, i, nil
}

func (p *parser) parseStmt(ctx context.Context, st int) (s ast.Stmt, i int, err error) {
	tk, tst, i, err := p.next(ctx, st)
	if err != nil {
		return
	}

	switch tk {
	case punct("{"):
		return p.parseCompound(ctx, st)
	case keyword("return"):
		var x ast.Expr

		x, i, err = p.parseExpr(ctx, i)
		if err != nil {
			return
		}

		i, err = p.expect(ctx, i, ";")
		if err != nil {
			return
		}

		return &ast.Return{Base: ast.Base{Pos: tst, End: i}, X: x}, i, nil
	case keyword("if"):
		r := &ast.If{}

		r.Cond, i, err = p.parseParenCond(ctx, i)
		if err != nil {
			return
		}

		r.Then, i, err = p.parseStmt(ctx, i)
		if err != nil {
			return
		}

		if ok, e := p.accept(ctx, i, keyword("else")); ok {
			r.Else, i, err = p.parseStmt(ctx, e)
			if err != nil {
				return
			}
		}

		r.Base = ast.Base{Pos: tst, End: i}

		return r, i, nil
	case keyword("while"):
		r := &ast.While{}

		r.Cond, i, err = p.parseParenCond(ctx, i)
		if err != nil {
			return
		}

		r.Body, i, err = p.parseStmt(ctx, i)
		if err != nil {
			return
		}

		r.Base = ast.Base{Pos: tst, End: i}

		return r, i, nil
	case keyword("int"), keyword("float"), keyword("struct"):
		return nil, tst, p.src.syntaxError(tst, false, "definition after statement")
	}

	x, i, err := p.parseExpr(ctx, st)
	if err != nil {
		return
	}

	i, err = p.expect(ctx, i, ";")
	if err != nil {
		return
	}

	return &ast.ExprStmt{Base: ast.Base{Pos: tst, End: i}, X: x}, i, nil
}

func (p *parser) parseParenCond(ctx context.Context, st int) (x ast.Expr, i int, err error) {
	i, err = p.expect(ctx, st, "(")
	if err != nil {
		return
	}

	x, i, err = p.parseExpr(ctx, i)
	if err != nil {
		return
	}

	i, err = p.expect(ctx, i, ")")

	return
}

func (p *parser) parseExpr(ctx context.Context, st int) (x ast.Expr, i int, err error) {
	l, i, err := p.parseBinary(ctx, st, 1)
	if err != nil {
		return
	}

	ok, e := p.accept(ctx, i, "=")
	if !ok {
		return l, i, nil
	}

	r, i, err := p.parseExpr(ctx, e)
	if err != nil {
		return
	}

	return &ast.Assign{Base: ast.Base{Pos: l.Span().Pos, End: i}, L: l, R: r}, i, nil
}

// parseBinary is precedence climbing over binPrec, all levels left-associative.
func (p *parser) parseBinary(ctx context.Context, st int, minPrec int) (x ast.Expr, i int, err error) {
	x, i, err = p.parseUnary(ctx, st)
	if err != nil {
		return
	}

	for {
		tk, _, e, err := p.next(ctx, i)
		if err != nil {
			return nil, i, err
		}

		pt, ok := tk.(punct)
		if !ok {
			break
		}

		bp, ok := binPrec[pt]
		if !ok || bp.prec < minPrec {
			break
		}

		var r ast.Expr

		r, i, err = p.parseBinary(ctx, e, bp.prec+1)
		if err != nil {
			return nil, i, err
		}

		x = &ast.Binary{Base: ast.Base{Pos: x.Span().Pos, End: i}, Op: bp.op, L: x, R: r}
	}

	return x, i, nil
}

func (p *parser) parseUnary(ctx context.Context, st int) (x ast.Expr, i int, err error) {
	tk, tst, i, err := p.next(ctx, st)
	if err != nil {
		return
	}

	var op ast.Op

	switch tk {
	case punct("-"):
		op = ast.Neg
	case punct("!"):
		op = ast.Not
	default:
		return p.parsePostfix(ctx, st)
	}

	sub, i, err := p.parseUnary(ctx, i)
	if err != nil {
		return
	}

	return &ast.Unary{Base: ast.Base{Pos: tst, End: i}, Op: op, X: sub}, i, nil
}

func (p *parser) parsePostfix(ctx context.Context, st int) (x ast.Expr, i int, err error) {
	x, i, err = p.parsePrimary(ctx, st)
	if err != nil {
		return
	}

	for {
		if ok, e := p.accept(ctx, i, "["); ok {
			var idx ast.Expr

			idx, i, err = p.parseExpr(ctx, e)
			if err != nil {
				return
			}

			i, err = p.expect(ctx, i, "]")
			if err != nil {
				return
			}

			x = &ast.Index{Base: ast.Base{Pos: x.Span().Pos, End: i}, X: x, Index: idx}

			continue
		}

		if ok, e := p.accept(ctx, i, "."); ok {
			tk, tst, e, err := p.next(ctx, e)
			if err != nil {
				return nil, e, err
			}

			name, ok := tk.(ident)
			if !ok {
				return nil, tst, p.unexpected(ctx, tst, "field name")
			}

			i = e
			x = &ast.Field{Base: ast.Base{Pos: x.Span().Pos, End: i}, X: x, Name: string(name)}

			continue
		}

		return x, i, nil
	}
}

func (p *parser) parsePrimary(ctx context.Context, st int) (x ast.Expr, i int, err error) {
	tk, tst, i, err := p.next(ctx, st)
	if err != nil {
		return
	}

	b := ast.Base{Pos: tst, End: i}

	switch tk := tk.(type) {
	case intLit:
		return &ast.IntLit{Base: b, Value: tk.Value}, i, nil
	case floatLit:
		return &ast.FloatLit{Base: b, Value: tk.Value}, i, nil
	case ident:
		ok, e := p.accept(ctx, i, "(")
		if !ok {
			return &ast.Ident{Base: b, Name: string(tk)}, i, nil
		}

		c := &ast.Call{Name: string(tk)}

		i = e

		if ok, e := p.accept(ctx, i, ")"); ok {
			i = e
		} else {
			for {
				var a ast.Expr

				a, i, err = p.parseExpr(ctx, i)
				if err != nil {
					return
				}

				c.Args = append(c.Args, a)

				if ok, e := p.accept(ctx, i, ","); ok {
					i = e
					continue
				}

				i, err = p.expect(ctx, i, ")")
				if err != nil {
					return
				}

				break
			}
		}

		c.Base = ast.Base{Pos: tst, End: i}

		return c, i, nil
	case punct:
		if tk != "(" {
			break
		}

		var sub ast.Expr

		sub, i, err = p.parseExpr(ctx, i)
		if err != nil {
			return
		}

		i, err = p.expect(ctx, i, ")")
		if err != nil {
			return
		}

		return &ast.Paren{Base: ast.Base{Pos: tst, End: i}, X: sub}, i, nil
	}

	return nil, tst, p.unexpected(ctx, st, "expression")
}

// accept reports whether the next token is want and the position after it.
func (p *parser) accept(ctx context.Context, st int, want token) (bool, int) {
	if s, ok := want.(string); ok {
		want = punct(s)
	}

	tk, _, i, err := p.next(ctx, st)
	if err != nil || tk != want {
		return false, st
	}

	return true, i
}

func (p *parser) expect(ctx context.Context, st int, want string) (int, error) {
	ok, i := p.accept(ctx, st, want)
	if !ok {
		return st, p.unexpected(ctx, st, fmt.Sprintf("%q", want))
	}

	return i, nil
}

func (p *parser) unexpected(ctx context.Context, st int, want string) error {
	tk, tst, _, err := p.next(ctx, st)
	if err != nil {
		return err
	}

	return errors.Wrap(p.src.syntaxError(tst, false, "unexpected %v, expected %s", describe(tk), want), "parse")
}

func describe(tk token) string {
	switch tk := tk.(type) {
	case eof:
		return "end of file"
	case punct:
		return fmt.Sprintf("%q", string(tk))
	case keyword:
		return fmt.Sprintf("keyword %s", string(tk))
	case ident:
		return fmt.Sprintf("identifier %s", string(tk))
	case intLit:
		return fmt.Sprintf("integer %d", tk.Value)
	case floatLit:
		return fmt.Sprintf("float %g", tk.Value)
	}

	return fmt.Sprintf("%v", tk)
}
