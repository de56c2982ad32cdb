package irsim

import (
	"context"
	"math"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/nettee/compiler-lab/compiler/ir"
)

type (
	// Machine executes IR the way the generated assembly does:
	// every variable and temporary has one static slot,
	// arguments are pushed by the caller and read by PARAM.
	Machine struct {
		p *ir.Program

		labels map[ir.Label]ir.Node
		funcs  map[string]ir.Node

		slots map[ir.Operand]int32 // byte addresses
		mem   []int32

		stack  []int32
		frames []frame
		params int

		input  []int32
		output []int32

		Steps int
	}

	frame struct {
		ret    ir.Node
		dst    ir.Operand
		sp     int
		params int
	}
)

var (
	ErrStepLimit   = errors.New("step limit exceeded")
	ErrInputEOF    = errors.New("input exhausted")
	ErrDivZero     = errors.New("division by zero")
	ErrBadAddress  = errors.New("bad address")
	ErrNoMain      = errors.New("no main function")
	ErrUnknownFunc = errors.New("unknown function")
)

// MaxSteps bounds the number of executed instructions.
var MaxSteps = 10_000_000

// Run executes p from main feeding it input. It returns values written
// and the value main returned.
func Run(ctx context.Context, p *ir.Program, input []int32) (output []int32, exit int32, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "irsim", "instrs", p.Len(), "input", len(input))
	defer tr.Finish("err", &err)

	m, err := New(p)
	if err != nil {
		return nil, 0, err
	}

	m.input = input

	exit, err = m.Run()

	tr.Printw("finished", "steps", m.Steps, "output", len(m.output), "exit", exit)

	return m.output, exit, err
}

func New(p *ir.Program) (*Machine, error) {
	m := &Machine{
		p:      p,
		labels: map[ir.Label]ir.Node{},
		funcs:  map[string]ir.Node{},
		slots:  map[ir.Operand]int32{},
		mem:    make([]int32, 1), // address 0 is never valid
	}

	sizes := map[ir.Operand]int{}
	var order []ir.Operand

	var visit func(x ir.Operand)
	visit = func(x ir.Operand) {
		switch q := x.(type) {
		case ir.Var, ir.Temp:
			if _, ok := sizes[x]; !ok {
				sizes[x] = 4
				order = append(order, x)
			}
		case ir.Addr:
			visit(q.X)
		case ir.Deref:
			visit(q.X)
		}
	}

	for n := p.Front(); n != 0; n = p.Next(n) {
		in := p.Get(n)

		switch in := in.(type) {
		case ir.DefLabel:
			m.labels[in.L] = n
		case ir.FuncEntry:
			m.funcs[in.Name] = n
		case ir.Alloc:
			visit(in.X)
			sizes[in.X] = max(sizes[in.X], in.Size)
		}

		if d := ir.Def(in); d != nil {
			visit(d)
		}

		for _, u := range ir.Uses(in) {
			visit(u)
		}

		if d := dst(in); d != nil {
			visit(d)
		}
	}

	for _, x := range order {
		m.slots[x] = int32(4 * len(m.mem))
		m.mem = append(m.mem, make([]int32, (sizes[x]+3)/4)...)
	}

	return m, nil
}

// Run executes from main until it returns.
func (m *Machine) Run() (exit int32, err error) {
	pc, ok := m.funcs["main"]
	if !ok {
		return 0, ErrNoMain
	}

	pc = m.p.Next(pc)

	for {
		if m.Steps >= MaxSteps {
			return 0, ErrStepLimit
		}

		m.Steps++

		var in ir.Instr
		if pc != 0 {
			in = m.p.Get(pc)
		}

		if _, ok := in.(ir.FuncEntry); ok || pc == 0 {
			// fell off the function: return garbage like the asm guard
			in = ir.Return{X: ir.Int(0)}
		}

		next, done, v, err := m.step(pc, in)
		if err != nil {
			return 0, errors.Wrap(err, "%v", in)
		}

		if done {
			return v, nil
		}

		pc = next
	}
}

func (m *Machine) step(pc ir.Node, in ir.Instr) (next ir.Node, done bool, ret int32, err error) {
	if pc != 0 {
		next = m.p.Next(pc)
	}

	switch in := in.(type) {
	case ir.DefLabel, ir.Alloc:
	case ir.Assign:
		v, err := m.load(in.Src)
		if err != nil {
			return 0, false, 0, err
		}

		err = m.store(in.Dst, v)
		if err != nil {
			return 0, false, 0, err
		}
	case ir.BinOp:
		l, err := m.load(in.L)
		if err != nil {
			return 0, false, 0, err
		}

		r, err := m.load(in.R)
		if err != nil {
			return 0, false, 0, err
		}

		var v int32

		switch in.Op {
		case ir.Add:
			v = l + r
		case ir.Sub:
			v = l - r
		case ir.Mul:
			v = l * r
		case ir.Div:
			if r == 0 {
				return 0, false, 0, ErrDivZero
			}

			v = l / r
		default:
			return 0, false, 0, ir.Internal("unknown arithmetic operator: %v", in.Op)
		}

		err = m.store(in.Dst, v)
		if err != nil {
			return 0, false, 0, err
		}
	case ir.Goto:
		return m.jump(in.L)
	case ir.If:
		l, err := m.load(in.L)
		if err != nil {
			return 0, false, 0, err
		}

		r, err := m.load(in.R)
		if err != nil {
			return 0, false, 0, err
		}

		var c bool

		switch in.Rel {
		case ir.LT:
			c = l < r
		case ir.LE:
			c = l <= r
		case ir.GT:
			c = l > r
		case ir.GE:
			c = l >= r
		case ir.EQ:
			c = l == r
		case ir.NE:
			c = l != r
		default:
			return 0, false, 0, ir.Internal("unknown relational operator: %v", in.Rel)
		}

		if c {
			return m.jump(in.Target)
		}
	case ir.Return:
		v, err := m.load(in.X)
		if err != nil {
			return 0, false, 0, err
		}

		if len(m.frames) == 0 {
			return 0, true, v, nil
		}

		f := m.frames[len(m.frames)-1]
		m.frames = m.frames[:len(m.frames)-1]

		m.stack = m.stack[:f.sp]
		m.params = f.params

		err = m.store(f.dst, v)
		if err != nil {
			return 0, false, 0, err
		}

		return m.p.Next(f.ret), false, 0, nil
	case ir.Arg:
		v, err := m.load(in.X)
		if err != nil {
			return 0, false, 0, err
		}

		m.stack = append(m.stack, v)
	case ir.Call:
		entry, ok := m.funcs[string(in.Func)]
		if !ok {
			return 0, false, 0, errors.Wrap(ErrUnknownFunc, "%v", in.Func)
		}

		sp := len(m.stack)
		for q := m.p.Prev(pc); q != 0; q = m.p.Prev(q) {
			if _, ok := m.p.Get(q).(ir.Arg); !ok {
				break
			}

			sp--
		}

		m.frames = append(m.frames, frame{ret: pc, dst: in.Dst, sp: sp, params: m.params})
		m.params = 0

		return m.p.Next(entry), false, 0, nil
	case ir.Param:
		m.params++

		i := len(m.stack) - m.params
		if i < 0 {
			return 0, false, 0, errors.Wrap(ErrBadAddress, "param %d", m.params)
		}

		err = m.store(in.X, m.stack[i])
		if err != nil {
			return 0, false, 0, err
		}
	case ir.Read:
		if len(m.input) == 0 {
			return 0, false, 0, ErrInputEOF
		}

		v := m.input[0]
		m.input = m.input[1:]

		err = m.store(in.Dst, v)
		if err != nil {
			return 0, false, 0, err
		}
	case ir.Write:
		v, err := m.load(in.X)
		if err != nil {
			return 0, false, 0, err
		}

		m.output = append(m.output, v)
	default:
		return 0, false, 0, ir.Internal("unknown instruction: %T", in)
	}

	return next, false, 0, nil
}

func (m *Machine) jump(l ir.Label) (ir.Node, bool, int32, error) {
	n, ok := m.labels[l]
	if !ok {
		return 0, false, 0, ir.Internal("undefined label %v", l)
	}

	return n, false, 0, nil
}

func (m *Machine) load(x ir.Operand) (int32, error) {
	switch x := x.(type) {
	case ir.Int:
		return int32(x), nil
	case ir.Float:
		return int32(math.Float32bits(float32(x))), nil
	case ir.Addr:
		a, ok := m.slots[x.X]
		if !ok {
			return 0, ir.Internal("operand has no storage: %v", x.X)
		}

		return a, nil
	case ir.Deref:
		a, err := m.load(x.X)
		if err != nil {
			return 0, err
		}

		return m.word(a)
	case ir.Var, ir.Temp:
		return m.word(m.slots[x])
	}

	return 0, ir.Internal("operand has no value: %v", x)
}

func (m *Machine) store(x ir.Operand, v int32) error {
	var a int32

	switch q := x.(type) {
	case ir.Deref:
		var err error

		a, err = m.load(q.X)
		if err != nil {
			return err
		}
	case ir.Var, ir.Temp:
		a = m.slots[x]
	default:
		return ir.Internal("operand has no storage: %v", x)
	}

	i, err := m.index(a)
	if err != nil {
		return err
	}

	m.mem[i] = v

	return nil
}

func (m *Machine) word(a int32) (int32, error) {
	i, err := m.index(a)
	if err != nil {
		return 0, err
	}

	return m.mem[i], nil
}

func (m *Machine) index(a int32) (int, error) {
	if a <= 0 || a%4 != 0 || int(a/4) >= len(m.mem) {
		return 0, errors.Wrap(ErrBadAddress, "%#x", a)
	}

	return int(a / 4), nil
}

func dst(in ir.Instr) ir.Operand {
	switch in := in.(type) {
	case ir.Assign:
		return in.Dst
	case ir.BinOp:
		return in.Dst
	case ir.Call:
		return in.Dst
	case ir.Read:
		return in.Dst
	}

	return nil
}
