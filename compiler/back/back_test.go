package back

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/nettee/compiler-lab/compiler/ir"
)

func compile(t *testing.T, text string) string {
	t.Helper()

	p, err := ir.Parse([]byte(text))
	require.NoError(t, err)

	obj, err := New().Compile(context.Background(), nil, p)
	require.NoError(t, err)

	return string(obj)
}

func TestSmoke(t *testing.T) {
	obj := compile(t, `FUNCTION main :
RETURN #0
`)

	assert.True(t, strings.HasPrefix(obj, ".data\n"))
	assert.Contains(t, obj, ".globl main\n.text\n")
	assert.Contains(t, obj, "\nread:\n")
	assert.Contains(t, obj, "\nwrite:\n")
	assert.Contains(t, obj, "\nmain:\n  li $v0, 0\n  jr $ra\n")
	assert.True(t, strings.HasSuffix(obj, "  move $v0, $0\n  jr $ra\n"))

	t.Logf("result:\n%s", obj)
}

func TestCall(t *testing.T) {
	obj := compile(t, `FUNCTION foo :
PARAM a
PARAM b
t1 := a - b
RETURN t1
FUNCTION main :
t2 := #1
t3 := #2
ARG t3
ARG t2
t4 := CALL foo
WRITE t4
RETURN #0
`)

	assert.Contains(t, obj, `
func_foo:
  lw $t0, 4($sp)
  sw $t0, var_a
  lw $t0, 8($sp)
  sw $t0, var_b
  lw $t1, var_a
  lw $t2, var_b
  sub $t0, $t1, $t2
  sw $t0, tmp_1
`)

	assert.Contains(t, obj, `
  lw $t0, tmp_3
  addi $sp, $sp, -4
  sw $t0, 0($sp)
  lw $t0, tmp_2
  addi $sp, $sp, -4
  sw $t0, 0($sp)
  addi $sp, $sp, -4
  sw $ra, 0($sp)
  jal func_foo
  lw $ra, 0($sp)
  addi $sp, $sp, 4
  sw $v0, tmp_4
  addi $sp, $sp, 8
`)

	assert.Contains(t, obj, `
  lw $a0, tmp_4
  addi $sp, $sp, -4
  sw $ra, 0($sp)
  jal write
`)
}

func TestBalancedCalls(t *testing.T) {
	text := `FUNCTION f :
PARAM x
RETURN x
FUNCTION g :
PARAM p
PARAM q
PARAM r
RETURN p
FUNCTION main :
t1 := CALL f
ARG #1
t2 := CALL f
ARG t2
ARG #2
ARG #3
t3 := CALL g
ARG t3
t4 := CALL f
RETURN t4
`

	p, err := ir.Parse([]byte(text))
	require.NoError(t, err)

	var exp []int
	args := 0

	for _, in := range p.Instrs() {
		switch in.(type) {
		case ir.Arg:
			args++
		case ir.Call:
			exp = append(exp, 4*args)
			args = 0
		default:
			args = 0
		}
	}

	obj := compile(t, text)
	lines := strings.Split(obj, "\n")

	var got []int

	for i, l := range lines {
		if !strings.HasPrefix(l, "  jal func_") {
			continue
		}

		adj := strings.TrimPrefix(lines[i+4], "  addi $sp, $sp, ")
		n, err := strconv.Atoi(adj)
		require.NoError(t, err, "line %d: %q", i+4, lines[i+4])

		got = append(got, n)
	}

	assert.Equal(t, []int{0, 4, 12, 4}, exp)
	assert.Equal(t, exp, got)
}

func TestBranches(t *testing.T) {
	obj := compile(t, `FUNCTION main :
LABEL L1 :
IF x < #1 GOTO L1
IF x <= #1 GOTO L1
IF x > #1 GOTO L1
IF x >= #1 GOTO L1
IF x == #1 GOTO L1
IF x != #1 GOTO L1
GOTO L1
`)

	for _, m := range []string{"blt", "ble", "bgt", "bge", "beq", "bne"} {
		assert.Contains(t, obj, "  "+m+" $t1, $t2, L1\n")
	}

	assert.Contains(t, obj, "\nL1:\n")
	assert.Contains(t, obj, "  j L1\n")
}

func TestData(t *testing.T) {
	obj := compile(t, `FUNCTION main :
DEC a 16
DEC t2 8
t1 := &a + #4
*t1 := #5
t3 := *t1
t3 := #1.50
READ y
RETURN y
`)

	assert.Contains(t, obj, ".data\nvar_a: .space 16\nvar_y: .space 4\ntmp_1: .space 4\ntmp_2: .space 8\ntmp_3: .space 4\n_newline:")

	assert.Contains(t, obj, `
  la $t1, var_a
  li $t2, 4
  add $t0, $t1, $t2
  sw $t0, tmp_1
  li $t0, 5
  lw $t3, tmp_1
  sw $t0, 0($t3)
  lw $t3, tmp_1
  lw $t0, 0($t3)
  sw $t0, tmp_3
  li $t0, 1069547520
  sw $t0, tmp_3
`)
}

func TestInternalErrors(t *testing.T) {
	for _, in := range []ir.Instr{
		ir.If{L: ir.Int(1), Rel: ir.Rel(42), R: ir.Int(2), Target: 1},
		ir.Assign{Dst: ir.Int(1), Src: ir.Int(2)},
		ir.Write{X: ir.Sym("f")},
		ir.Alloc{X: ir.Int(3), Size: 4},
	} {
		p := ir.New()
		p.Emit(ir.FuncEntry{Name: "main"})
		p.Emit(in)

		_, err := New().Compile(context.Background(), nil, p)

		var ie ir.InternalError
		assert.True(t, errors.As(err, &ie), "%v: %v", in, err)
	}
}
