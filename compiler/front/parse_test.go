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

func TestParse(t *testing.T) {
	ctx := context.Background()

	src := NewSource("a.cmm", []byte(`struct P { int x, y; };
int g[10][2];

int add(int a, int b) {
	return a + b * 2;
}

int main() {
	int i = 0x10;
	float f = 1.5e1;
	// comment
	while (i > 0 && !(i == 3)) {
		i = i - 1;
	}
	/* block
	   comment */
	if (i) write(add(i, g[1][0])); else i = -i;
	return 0;
}
`))

	prog, err := Parse(ctx, src)
	require.NoError(t, err)
	require.Len(t, prog.Defs, 4)

	sd := prog.Defs[0].(*ast.StructDef)
	assert.Equal(t, "P", sd.Spec.Tag)
	require.Len(t, sd.Spec.Fields, 1)
	assert.Len(t, sd.Spec.Fields[0].Vars, 2)

	vd := prog.Defs[1].(*ast.VarDef)
	assert.Equal(t, []int{10, 2}, vd.Vars[0].Dims)

	add := prog.Defs[2].(*ast.FuncDef)
	assert.Equal(t, "add", add.Name)
	require.Len(t, add.Params, 2)

	ret := add.Body.Stmts[0].(*ast.Return)
	sum := ret.X.(*ast.Binary)
	assert.Equal(t, ast.Add, sum.Op)
	assert.Equal(t, ast.Mul, sum.R.(*ast.Binary).Op)

	m := prog.Defs[3].(*ast.FuncDef)
	require.Len(t, m.Body.Defs, 2)
	assert.Equal(t, int32(16), m.Body.Defs[0].Vars[0].Init.(*ast.IntLit).Value)
	assert.Equal(t, float32(15), m.Body.Defs[1].Vars[0].Init.(*ast.FloatLit).Value)

	require.Len(t, m.Body.Stmts, 3)

	w := m.Body.Stmts[0].(*ast.While)
	and := w.Cond.(*ast.Binary)
	assert.Equal(t, ast.And, and.Op)
	assert.Equal(t, ast.Not, and.R.(*ast.Unary).Op)

	ifs := m.Body.Stmts[1].(*ast.If)
	assert.NotNil(t, ifs.Else)

	call := ifs.Then.(*ast.ExprStmt).X.(*ast.Call)
	assert.Equal(t, "write", call.Name)

	inner := call.Args[0].(*ast.Call)
	require.Len(t, inner.Args, 2)

	idx := inner.Args[1].(*ast.Index)
	assert.Equal(t, "g", ast.Root(idx).(*ast.Ident).Name)
}

func TestParseAssignRightAssoc(t *testing.T) {
	prog, err := Parse(context.Background(), NewSource("a.cmm", []byte("int main() { int a, b; a = b = 3; }")))
	require.NoError(t, err)

	x := prog.Defs[0].(*ast.FuncDef).Body.Stmts[0].(*ast.ExprStmt).X.(*ast.Assign)
	assert.Equal(t, "a", x.L.(*ast.Ident).Name)

	r := x.R.(*ast.Assign)
	assert.Equal(t, "b", r.L.(*ast.Ident).Name)
}

func TestParseSpecs(t *testing.T) {
	prog, err := Parse(context.Background(), NewSource("a.cmm", []byte("float f(struct S s);\nstruct { int a; } v;")))
	require.NoError(t, err)

	f := prog.Defs[0].(*ast.FuncDef)
	assert.Nil(t, f.Body)
	assert.Equal(t, tp.Float, f.Spec.(*ast.BasicSpec).Type)
	assert.Equal(t, "S", f.Params[0].Spec.(*ast.StructSpec).Tag)

	v := prog.Defs[1].(*ast.VarDef)
	ss := v.Spec.(*ast.StructSpec)
	assert.True(t, ss.Body)
	assert.Equal(t, "", ss.Tag)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		src     string
		line    int
		lexical bool
	}{
		{name: "missing_semicolon", src: "int main() {\n\tint a\n\ta = 1;\n}", line: 3},
		{name: "bad_char", src: "int main() {\n\treturn 1 @ 2;\n}", line: 2, lexical: true},
		{name: "bad_octal", src: "int main() {\n\n\treturn 09;\n}", line: 3, lexical: true},
		{name: "bad_float", src: "int main() { return 1.0e; }", line: 1, lexical: true},
		{name: "def_after_stmt", src: "int main() {\n\tint a;\n\ta = 1;\n\tint b;\n}", line: 4},
		{name: "unterminated_comment", src: "int main() { /* }", line: 1, lexical: true},
		{name: "eof", src: "int main() {", line: 1},
		{name: "zero_array", src: "int a[0];", line: 1},
	} {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(context.Background(), NewSource("a.cmm", []byte(tc.src)))
			require.Error(t, err)

			var se SyntaxError
			require.True(t, errors.As(err, &se), "%v", err)

			assert.Equal(t, tc.line, se.Line, "%v", err)
			assert.Equal(t, tc.lexical, se.Lexical, "%v", err)
		})
	}
}

func TestPosition(t *testing.T) {
	s := NewSource("a", []byte("ab\ncd\n\nef"))

	l, c := s.Position(0)
	assert.Equal(t, [2]int{1, 1}, [2]int{l, c})

	l, c = s.Position(4)
	assert.Equal(t, [2]int{2, 2}, [2]int{l, c})

	l, c = s.Position(7)
	assert.Equal(t, [2]int{4, 1}, [2]int{l, c})
}

func TestDefPosition(t *testing.T) {
	ctx := context.Background()

	src := NewSource("a.cmm", []byte("int f() { return 0; }\n\n  int f(int a,\n\tfloat b) {\n\tint c;\n\treturn 1;\n}\nstruct S { int x; };\nint g;\n"))

	prog, err := Parse(ctx, src)
	require.NoError(t, err)
	require.Len(t, prog.Defs, 4)

	line := func(n ast.Node) int {
		l, _ := src.Position(n.Span().Pos)
		return l
	}

	f := prog.Defs[1].(*ast.FuncDef)
	assert.Equal(t, 3, line(f))

	l, c := src.Position(f.Pos)
	assert.Equal(t, [2]int{3, 3}, [2]int{l, c})

	assert.Equal(t, 3, line(f.Params[0]))
	assert.Equal(t, 4, line(f.Params[1]))
	assert.Equal(t, 5, line(f.Body.Defs[0]))
	assert.Equal(t, 8, line(prog.Defs[2]))
	assert.Equal(t, 9, line(prog.Defs[3]))
}
