package format

import (
	"context"
	"strconv"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/nettee/compiler-lab/compiler/ast"
)

func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x any, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.Program:
		return formatProgram(ctx, b, x, d)
	case ast.Stmt:
		return formatStmt(ctx, b, x, d)
	case ast.Expr:
		return formatExpr(ctx, b, x)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatProgram(ctx context.Context, b []byte, x *ast.Program, d int) (_ []byte, err error) {
	for i, def := range x.Defs {
		_, isFunc := def.(*ast.FuncDef)

		if i != 0 && isFunc {
			b = append(b, '\n')
		}

		switch def := def.(type) {
		case *ast.VarDef:
			b, err = formatVarDef(ctx, b, def, d)
		case *ast.StructDef:
			b = app(b, d, "")

			b, err = formatSpec(ctx, b, def.Spec, d)
			b = append(b, ";\n"...)
		case *ast.FuncDef:
			b, err = formatFunc(ctx, b, def, d)
		default:
			err = errors.New("unsupported def: %T", def)
		}

		if err != nil {
			return nil, errors.Wrap(err, "def %d", i)
		}
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, x *ast.FuncDef, d int) (_ []byte, err error) {
	b = app(b, d, "")

	b, err = formatSpec(ctx, b, x.Spec, d)
	if err != nil {
		return nil, errors.Wrap(err, "func %v", x.Name)
	}

	b = app(b, 0, " %s(", x.Name)

	for i, p := range x.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b, err = formatSpec(ctx, b, p.Spec, d)
		if err != nil {
			return nil, errors.Wrap(err, "param %v", p.Dec.Name)
		}

		b = append(b, ' ')
		b = formatVarDec(b, p.Dec)
	}

	b = append(b, ')')

	if x.Body == nil {
		b = append(b, ";\n"...)
		return b, nil
	}

	b = append(b, ' ')

	b, err = formatCompound(ctx, b, x.Body, d)
	if err != nil {
		return nil, errors.Wrap(err, "func %v", x.Name)
	}

	b = append(b, '\n')

	return b, nil
}

func formatSpec(ctx context.Context, b []byte, x ast.Spec, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.BasicSpec:
		b = app(b, 0, "%v", x.Type)
	case *ast.StructSpec:
		b = append(b, "struct"...)

		if x.Tag != "" {
			b = app(b, 0, " %s", x.Tag)
		}

		if !x.Body {
			return b, nil
		}

		b = append(b, " {\n"...)

		for _, f := range x.Fields {
			b, err = formatVarDef(ctx, b, f, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "struct %v", x.Tag)
			}
		}

		b = app(b, d, "}")
	default:
		return nil, errors.New("unsupported spec: %T", x)
	}

	return b, nil
}

func formatVarDef(ctx context.Context, b []byte, x *ast.VarDef, d int) (_ []byte, err error) {
	b = app(b, d, "")

	b, err = formatSpec(ctx, b, x.Spec, d)
	if err != nil {
		return nil, err
	}

	for i, v := range x.Vars {
		if i == 0 {
			b = append(b, ' ')
		} else {
			b = append(b, ", "...)
		}

		b = formatVarDec(b, v)

		if v.Init == nil {
			continue
		}

		b = append(b, " = "...)

		b, err = formatExpr(ctx, b, v.Init)
		if err != nil {
			return nil, errors.Wrap(err, "init %v", v.Name)
		}
	}

	b = append(b, ";\n"...)

	return b, nil
}

func formatVarDec(b []byte, x *ast.VarDec) []byte {
	b = append(b, x.Name...)

	for _, n := range x.Dims {
		b = app(b, 0, "[%d]", n)
	}

	return b
}

func formatCompound(ctx context.Context, b []byte, x *ast.Compound, d int) (_ []byte, err error) {
	b = append(b, "{\n"...)

	for _, def := range x.Defs {
		b, err = formatVarDef(ctx, b, def, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "def")
		}
	}

	for _, s := range x.Stmts {
		b, err = formatStmt(ctx, b, s, d+1)
		if err != nil {
			return nil, err
		}
	}

	b = app(b, d, "}")

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, s ast.Stmt, d int) (_ []byte, err error) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		b = app(b, d, "")

		b, err = formatExpr(ctx, b, s.X)
		if err != nil {
			return nil, errors.Wrap(err, "expr")
		}

		b = append(b, ";\n"...)
	case *ast.Return:
		b = app(b, d, "return ")

		b, err = formatExpr(ctx, b, s.X)
		if err != nil {
			return nil, errors.Wrap(err, "return")
		}

		b = append(b, ";\n"...)
	case *ast.Compound:
		b = app(b, d, "")

		b, err = formatCompound(ctx, b, s, d)
		if err != nil {
			return nil, err
		}

		b = append(b, '\n')
	case *ast.If:
		b = app(b, d, "if (")

		b, err = formatExpr(ctx, b, s.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, ")\n"...)

		b, err = formatStmt(ctx, b, s.Then, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}

		if s.Else != nil {
			b = app(b, d, "else\n")

			b, err = formatStmt(ctx, b, s.Else, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "else")
			}
		}
	case *ast.While:
		b = app(b, d, "while (")

		b, err = formatExpr(ctx, b, s.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, ")\n"...)

		b, err = formatStmt(ctx, b, s.Body, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}
	default:
		return nil, errors.New("unsupported stmt: %T", s)
	}

	return b, nil
}

func formatExpr(ctx context.Context, b []byte, x ast.Expr) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Ident:
		b = append(b, x.Name...)
	case *ast.IntLit:
		b = app(b, 0, "%d", x.Value)
	case *ast.FloatLit:
		f := strconv.FormatFloat(float64(x.Value), 'f', -1, 32)
		if !strings.ContainsAny(f, ".") {
			f += ".0"
		}

		b = append(b, f...)
	case *ast.Paren:
		b = append(b, '(')

		b, err = formatExpr(ctx, b, x.X)
		if err != nil {
			return nil, err
		}

		b = append(b, ')')
	case *ast.Assign:
		b, err = formatExpr(ctx, b, x.L)
		if err != nil {
			return nil, errors.Wrap(err, "lhs")
		}

		b = append(b, " = "...)

		b, err = formatExpr(ctx, b, x.R)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}
	case *ast.Binary:
		b, err = formatExpr(ctx, b, x.L)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = app(b, 0, " %v ", x.Op)

		b, err = formatExpr(ctx, b, x.R)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}
	case *ast.Unary:
		b = app(b, 0, "%v", x.Op)

		b, err = formatExpr(ctx, b, x.X)
		if err != nil {
			return nil, err
		}
	case *ast.Call:
		b = app(b, 0, "%s(", x.Name)

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = formatExpr(ctx, b, a)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		b = append(b, ')')
	case *ast.Index:
		b, err = formatExpr(ctx, b, x.X)
		if err != nil {
			return nil, err
		}

		b = append(b, '[')

		b, err = formatExpr(ctx, b, x.Index)
		if err != nil {
			return nil, errors.Wrap(err, "index")
		}

		b = append(b, ']')
	case *ast.Field:
		b, err = formatExpr(ctx, b, x.X)
		if err != nil {
			return nil, err
		}

		b = app(b, 0, ".%s", x.Name)
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:min(d, len(tabs))]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
