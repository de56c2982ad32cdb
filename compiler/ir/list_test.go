package ir

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRemoveCases(t *testing.T) {
	var l List

	a := l.Append(Goto{L: 1})
	b := l.Append(Goto{L: 2})
	c := l.Append(Goto{L: 3})
	d := l.Append(Goto{L: 4})

	require.NoError(t, l.Remove(b)) // interior
	assert.Equal(t, []Instr{Goto{L: 1}, Goto{L: 3}, Goto{L: 4}}, l.Instrs())

	require.NoError(t, l.Remove(a)) // head
	assert.Equal(t, c, l.Front())
	assert.Equal(t, Node(0), l.Prev(c))

	require.NoError(t, l.Remove(d)) // tail
	assert.Equal(t, c, l.Back())
	assert.Equal(t, Node(0), l.Next(c))

	require.NoError(t, l.Remove(c)) // head and tail
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, Node(0), l.Front())
	assert.Equal(t, Node(0), l.Back())

	err := l.Remove(c)
	var ie InternalError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Msg, "empty list")
}

func TestListRemoveDeadNode(t *testing.T) {
	var l List

	a := l.Append(Goto{L: 1})
	l.Append(Goto{L: 2})

	require.NoError(t, l.Remove(a))

	err := l.Remove(a)
	var ie InternalError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Msg, "dead node")
	assert.Equal(t, 1, l.Len())
}

func TestListSet(t *testing.T) {
	var l List

	l.Append(Goto{L: 1})
	n := l.Append(BinOp{Op: Add, Dst: Temp(1), L: Int(1), R: Int(2)})
	l.Append(Goto{L: 2})

	l.Set(n, Assign{Dst: Temp(1), Src: Int(3)})

	assert.Equal(t, []Instr{Goto{L: 1}, Assign{Dst: Temp(1), Src: Int(3)}, Goto{L: 2}}, l.Instrs())
}

func TestListInvariantRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for iter := 0; iter < 200; iter++ {
		var l List

		live := []Node{}

		for step := 0; step < 50; step++ {
			if len(live) == 0 || r.Intn(3) != 0 {
				live = append(live, l.Append(Goto{L: Label(step)}))
				continue
			}

			k := r.Intn(len(live))

			require.NoError(t, l.Remove(live[k]))

			live = append(live[:k], live[k+1:]...)
		}

		checkList(t, &l, live)
	}
}

func checkList(t *testing.T, l *List, want []Node) {
	t.Helper()

	fwd := []Node{}
	for n := l.Front(); n != 0; n = l.Next(n) {
		fwd = append(fwd, n)
	}

	bwd := []Node{}
	for n := l.Back(); n != 0; n = l.Prev(n) {
		bwd = append(bwd, n)
	}

	require.Len(t, bwd, len(fwd))

	for i := range fwd {
		assert.Equal(t, fwd[i], bwd[len(bwd)-1-i])
	}

	assert.Equal(t, want, fwd)
	assert.Equal(t, l.Len(), len(fwd))
}
