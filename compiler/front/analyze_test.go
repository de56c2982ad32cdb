package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/nettee/compiler-lab/compiler/ast"
	"github.com/nettee/compiler-lab/compiler/tp"
)

func analyze(t *testing.T, text string) (*ast.Program, *Table, error) {
	t.Helper()

	ctx := context.Background()
	src := NewSource("a.cmm", []byte(text))

	prog, err := Parse(ctx, src)
	require.NoError(t, err)

	tab, err := Analyze(ctx, src, prog)

	return prog, tab, err
}

func TestAnalyzeAnnotates(t *testing.T) {
	prog, tab, err := analyze(t, `
struct P { int x; float y[3]; };
int g[4][5];

int f(int a[5], int n) {
	return a[n];
}

int main() {
	struct P p;
	int i = read();
	p.y[i] = 1.0;
	write(f(g[i], i));
	return 0;
}
`)
	require.NoError(t, err)

	typ, ok := tab.Var("g")
	require.True(t, ok)
	assert.Equal(t, "int[4][5]", typ.String())
	assert.Equal(t, 80, tab.Width(typ))

	ft, ok := tab.Func("f")
	require.True(t, ok)
	assert.Equal(t, tp.Int, ft.Ret)
	require.Len(t, ft.Params, 2)
	assert.True(t, tp.IsArray(ft.Params[0]))

	_, ok = tab.Func("write")
	assert.True(t, ok)

	st, ok := tab.Struct("P")
	require.True(t, ok)
	assert.Equal(t, 16, st.Width())

	m := prog.Defs[3].(*ast.FuncDef)

	asg := m.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.Assign)
	assert.Equal(t, tp.Float, asg.Type)
	assert.True(t, asg.L.Annotation().Lvalue)

	call := m.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.Call).Args[0].(*ast.Call)
	arg := call.Args[0].(*ast.Index)
	assert.Equal(t, "int[5]", arg.Type.String())
}

func TestAnalyzeErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		typ  int
		line int
	}{
		{"undefined_var", "int main() {\n\treturn x;\n}", ErrUndefinedVar, 2},
		{"undefined_func", "int main() {\n\treturn f();\n}", ErrUndefinedFunc, 2},
		{"redefined_var", "int a;\nint main() {\n\tfloat a;\n\treturn 0;\n}", ErrRedefinedVar, 3},
		{"redefined_func", "int f() { return 0; }\nint f() { return 1; }", ErrRedefinedFunc, 2},
		{"assign_mismatch", "int main() {\n\tint a;\n\ta = 1.5;\n\treturn 0;\n}", ErrAssignMismatch, 3},
		{"init_mismatch", "int main() {\n\tint a = 1.5;\n\treturn 0;\n}", ErrAssignMismatch, 2},
		{"not_lvalue", "int main() {\n\tint a;\n\ta + 1 = 2;\n\treturn 0;\n}", ErrNotLvalue, 3},
		{"operand_mismatch", "int main() {\n\treturn 1 + 1.0;\n}", ErrOperandMismatch, 2},
		{"float_condition", "int main() {\n\tif (1.0) return 1;\n\treturn 0;\n}", ErrOperandMismatch, 2},
		{"return_mismatch", "int main() {\n\treturn 1.0;\n}", ErrReturnMismatch, 2},
		{"args_mismatch", "int f(int a) { return a; }\nint main() {\n\treturn f(1, 2);\n}", ErrArgsMismatch, 3},
		{"not_array", "int main() {\n\tint a;\n\treturn a[0];\n}", ErrNotArray, 3},
		{"not_func", "int main() {\n\tint a;\n\treturn a();\n}", ErrNotFunc, 3},
		{"float_index", "int main() {\n\tint a[3];\n\treturn a[1.0];\n}", ErrNotIntIndex, 3},
		{"not_struct", "int main() {\n\tint a;\n\treturn a.x;\n}", ErrNotStruct, 3},
		{"undefined_field", "struct S { int x; };\nint main() {\n\tstruct S s;\n\treturn s.y;\n}", ErrUndefinedField, 4},
		{"redefined_field", "struct S {\n\tint x;\n\tfloat x;\n};", ErrRedefinedField, 3},
		{"redefined_struct", "struct S { int x; };\nstruct S { int y; };", ErrRedefinedStruct, 2},
		{"undefined_struct", "int main() {\n\tstruct T t;\n\treturn 0;\n}", ErrUndefinedStruct, 2},
		{"declared_not_defined", "int f(int a);\nint main() {\n\treturn f(1);\n}", ErrUndefinedDecl, 1},
		{"decl_mismatch", "int f(int a);\nint f(float a) { return 0; }", ErrDeclMismatch, 2},
	} {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			_, _, err := analyze(t, tc.src)
			require.Error(t, err)

			var se SemanticError
			require.True(t, errors.As(err, &se))
			require.NotEmpty(t, se.Errs)

			assert.Equal(t, tc.typ, se.Errs[0].Type, "%v", err)
			assert.Equal(t, tc.line, se.Errs[0].Line, "%v", err)
		})
	}
}

func TestAnalyzeStructEquivalence(t *testing.T) {
	_, _, err := analyze(t, `
struct A { int x; float y; };
struct B { int p; float q; };

int main() {
	struct A a;
	struct B b;
	a = b;
	return 0;
}
`)
	assert.NoError(t, err)
}

func TestSemanticErrorText(t *testing.T) {
	_, _, err := analyze(t, "int main() {\n\treturn x + y;\n}")
	require.Error(t, err)

	assert.Equal(t, `Error type 1 at Line 2: undefined variable "x".
Error type 1 at Line 2: undefined variable "y".`, err.Error())
}

func TestAnalyzeFuncRedefinitionLine(t *testing.T) {
	_, _, err := analyze(t, "int f() { return 0; }\nint f() { return 1; }")
	require.Error(t, err)

	assert.EqualError(t, err, `Error type 4 at Line 2: redefined function "f".`)
}
