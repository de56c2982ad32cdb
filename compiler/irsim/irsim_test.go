package irsim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/nettee/compiler-lab/compiler/ir"
)

func run(t *testing.T, text string, input ...int32) ([]int32, int32, error) {
	t.Helper()

	p, err := ir.Parse([]byte(text))
	require.NoError(t, err)

	return Run(context.Background(), p, input)
}

func TestCallAndParams(t *testing.T) {
	out, exit, err := run(t, `FUNCTION sub :
PARAM a
PARAM b
t1 := a - b
RETURN t1
FUNCTION main :
READ x
READ y
ARG y
ARG x
t2 := CALL sub
WRITE t2
RETURN #7
`, 10, 3)
	require.NoError(t, err)

	assert.Equal(t, []int32{7}, out)
	assert.Equal(t, int32(7), exit)
}

func TestLoopAndArray(t *testing.T) {
	// a[i] = i*i for i in 0..3, then write them back
	out, _, err := run(t, `FUNCTION main :
DEC a 16
i := #0
LABEL L1 :
IF i >= #4 GOTO L3
t1 := i * #4
t2 := &a + t1
t3 := i * i
*t2 := t3
i := i + #1
GOTO L1
LABEL L3 :
i := #0
LABEL L4 :
IF i >= #4 GOTO L5
t1 := i * #4
t2 := &a + t1
WRITE *t2
i := i + #1
GOTO L4
LABEL L5 :
RETURN #0
`)
	require.NoError(t, err)

	assert.Equal(t, []int32{0, 1, 4, 9}, out)
}

func TestArrayParam(t *testing.T) {
	out, _, err := run(t, `FUNCTION first :
PARAM p
t1 := *p
RETURN t1
FUNCTION main :
DEC a 8
t2 := &a + #0
*t2 := #42
ARG &a
t3 := CALL first
WRITE t3
RETURN #0
`)
	require.NoError(t, err)

	assert.Equal(t, []int32{42}, out)
}

func TestWrapAround(t *testing.T) {
	out, _, err := run(t, `FUNCTION main :
t1 := #2147483647 + #1
WRITE t1
t2 := #-7 / #2
WRITE t2
RETURN #0
`)
	require.NoError(t, err)

	assert.Equal(t, []int32{-2147483648, -3}, out)
}

func TestFallOff(t *testing.T) {
	out, exit, err := run(t, `FUNCTION f :
WRITE #1
FUNCTION main :
t1 := CALL f
WRITE #2
`)
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 2}, out)
	assert.Equal(t, int32(0), exit)
}

func TestErrors(t *testing.T) {
	_, _, err := run(t, "FUNCTION main :\nREAD x\nRETURN x\n")
	assert.True(t, errors.Is(err, ErrInputEOF), "%v", err)

	_, _, err = run(t, "FUNCTION main :\nt1 := #1 / #0\nRETURN t1\n")
	assert.True(t, errors.Is(err, ErrDivZero), "%v", err)

	_, _, err = run(t, "FUNCTION f :\nRETURN #0\n")
	assert.True(t, errors.Is(err, ErrNoMain), "%v", err)

	_, _, err = run(t, "FUNCTION main :\nt1 := *x\nRETURN t1\n")
	assert.True(t, errors.Is(err, ErrBadAddress), "%v", err)

	defer func(old int) { MaxSteps = old }(MaxSteps)
	MaxSteps = 1000

	_, _, err = run(t, "FUNCTION main :\nLABEL L1 :\nGOTO L1\n")
	assert.True(t, errors.Is(err, ErrStepLimit), "%v", err)
}
