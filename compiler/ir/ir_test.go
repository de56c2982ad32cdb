package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	p := New()

	t1, t2, t3 := p.NewTemp(), p.NewTemp(), p.NewTemp()
	l1, l2 := p.NewLabel(), p.NewLabel()

	p.Emit(FuncEntry{Name: "main"})
	p.Emit(Alloc{X: Var("a"), Size: 16})
	p.Emit(Param{X: "n"})
	p.Emit(Read{Dst: t1})
	p.Emit(Assign{Dst: t2, Src: Int(-3)})
	p.Emit(Assign{Dst: t2, Src: Float(1.5)})
	p.Emit(BinOp{Op: Add, Dst: t3, L: Addr{X: Var("a")}, R: t2})
	p.Emit(Assign{Dst: Deref{X: t3}, Src: t1})
	p.Emit(BinOp{Op: Div, Dst: t1, L: Deref{X: t3}, R: Var("n")})
	p.Emit(If{L: t1, Rel: GE, R: Int(0), Target: l1})
	p.Emit(Goto{L: l2})
	p.Emit(DefLabel{L: l1})
	p.Emit(Arg{X: t1})
	p.Emit(Call{Dst: t2, Func: "fact"})
	p.Emit(Write{X: t2})
	p.Emit(DefLabel{L: l2})
	p.Emit(Return{X: Int(0)})

	exp := `FUNCTION main :
DEC a 16
PARAM n
READ t1
t2 := #-3
t2 := #1.50
t3 := &a + t2
*t3 := t1
t1 := *t3 / n
IF t1 >= #0 GOTO L1
GOTO L2
LABEL L1 :
ARG t1
t2 := CALL fact
WRITE t2
LABEL L2 :
RETURN #0
`

	assert.Equal(t, exp, p.String())

	q, err := Parse([]byte(exp))
	require.NoError(t, err)

	assert.Equal(t, p.Instrs(), q.Instrs())
	assert.Equal(t, 3, q.Temps())
	assert.Equal(t, 2, q.Labels())
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"IF a ~ b GOTO L1",
		"GOTO X1",
		"DEC a lots",
		"t1 := a % b",
		"NOP",
	} {
		_, err := Parse([]byte(src))
		assert.Error(t, err, "%q", src)
	}
}

func TestOperandEquality(t *testing.T) {
	assert.True(t, Equal(Temp(3), Temp(3)))
	assert.False(t, Equal(Temp(3), Temp(4)))
	assert.False(t, Equal(Var("t3"), Temp(3)))
	assert.True(t, Equal(Addr{X: Var("a")}, Addr{X: Var("a")}))
	assert.False(t, Equal(Addr{X: Var("a")}, Deref{X: Var("a")}))
	assert.True(t, Equal(Deref{X: Temp(1)}, Deref{X: Temp(1)}))

	assert.True(t, Contains(Deref{X: Temp(1)}, Temp(1)))
	assert.True(t, Contains(Addr{X: Var("a")}, Var("a")))
	assert.False(t, Contains(Temp(1), Deref{X: Temp(1)}))
	assert.False(t, Contains(Var("a"), Var("b")))
}

func TestDefUses(t *testing.T) {
	store := Assign{Dst: Deref{X: Temp(1)}, Src: Temp(2)}

	assert.Nil(t, Def(store))
	assert.Equal(t, []Operand{Temp(2), Temp(1)}, Uses(store))
	assert.True(t, Reads(store, Temp(1)))

	assert.Equal(t, Var("x"), Def(Param{X: "x"}))
	assert.Equal(t, Temp(5), Def(Call{Dst: Temp(5), Func: "f"}))
	assert.Nil(t, Def(Goto{L: 1}))

	assert.True(t, Reads(BinOp{Op: Add, Dst: Temp(3), L: Addr{X: Var("a")}, R: Temp(2)}, Var("a")))
	assert.False(t, Reads(Call{Dst: Temp(3), Func: "a"}, Var("a")))

	in := MapUses(If{L: Temp(1), Rel: LT, R: Temp(2), Target: 1}, func(x Operand) Operand {
		if x == Temp(2) {
			return Int(3)
		}

		return x
	})

	assert.Equal(t, If{L: Temp(1), Rel: LT, R: Int(3), Target: 1}, in)
}

func TestCounters(t *testing.T) {
	p := New()

	seen := map[Temp]bool{}

	for i := 0; i < 100; i++ {
		tmp := p.NewTemp()
		assert.False(t, seen[tmp])
		seen[tmp] = true
	}

	assert.Equal(t, Label(1), p.NewLabel())
	assert.Equal(t, Label(2), p.NewLabel())
	assert.Equal(t, 100, p.Temps())
}
