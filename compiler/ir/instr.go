package ir

import "fmt"

type (
	Instr interface {
		fmt.Stringer
		instr()
	}

	Arith int
	Rel   int

	DefLabel struct {
		L Label
	}

	FuncEntry struct {
		Name string
	}

	Assign struct {
		Dst Operand
		Src Operand
	}

	BinOp struct {
		Op   Arith
		Dst  Operand
		L, R Operand
	}

	Goto struct {
		L Label
	}

	// If jumps to Target when the relation holds and falls through otherwise.
	If struct {
		L      Operand
		Rel    Rel
		R      Operand
		Target Label
	}

	Return struct {
		X Operand
	}

	// Alloc reserves Size bytes of storage for X.
	Alloc struct {
		X    Operand
		Size int
	}

	Arg struct {
		X Operand
	}

	Call struct {
		Dst  Operand
		Func Sym
	}

	Param struct {
		X Var
	}

	Read struct {
		Dst Operand
	}

	Write struct {
		X Operand
	}
)

const (
	Add Arith = iota
	Sub
	Mul
	Div
)

const (
	LT Rel = iota
	LE
	GT
	GE
	EQ
	NE
)

var (
	arithNames = [...]string{Add: "+", Sub: "-", Mul: "*", Div: "/"}
	relNames   = [...]string{LT: "<", LE: "<=", GT: ">", GE: ">=", EQ: "==", NE: "!="}
)

func (DefLabel) instr()  {}
func (FuncEntry) instr() {}
func (Assign) instr()    {}
func (BinOp) instr()     {}
func (Goto) instr()      {}
func (If) instr()        {}
func (Return) instr()    {}
func (Alloc) instr()     {}
func (Arg) instr()       {}
func (Call) instr()      {}
func (Param) instr()     {}
func (Read) instr()      {}
func (Write) instr()     {}

func (op Arith) String() string {
	if op < 0 || int(op) >= len(arithNames) {
		return fmt.Sprintf("arith(%d)", int(op))
	}

	return arithNames[op]
}

func (r Rel) String() string {
	if r < 0 || int(r) >= len(relNames) {
		return fmt.Sprintf("rel(%d)", int(r))
	}

	return relNames[r]
}

func (x DefLabel) String() string  { return fmt.Sprintf("LABEL %v :", x.L) }
func (x FuncEntry) String() string { return fmt.Sprintf("FUNCTION %s :", x.Name) }
func (x Assign) String() string    { return fmt.Sprintf("%v := %v", x.Dst, x.Src) }
func (x BinOp) String() string     { return fmt.Sprintf("%v := %v %v %v", x.Dst, x.L, x.Op, x.R) }
func (x Goto) String() string      { return fmt.Sprintf("GOTO %v", x.L) }
func (x If) String() string        { return fmt.Sprintf("IF %v %v %v GOTO %v", x.L, x.Rel, x.R, x.Target) }
func (x Return) String() string    { return fmt.Sprintf("RETURN %v", x.X) }
func (x Alloc) String() string     { return fmt.Sprintf("DEC %v %d", x.X, x.Size) }
func (x Arg) String() string       { return fmt.Sprintf("ARG %v", x.X) }
func (x Call) String() string      { return fmt.Sprintf("%v := CALL %v", x.Dst, x.Func) }
func (x Param) String() string     { return fmt.Sprintf("PARAM %v", x.X) }
func (x Read) String() string      { return fmt.Sprintf("READ %v", x.Dst) }
func (x Write) String() string     { return fmt.Sprintf("WRITE %v", x.X) }

// Def returns the operand written by in, or nil.
// Stores through a pointer (*p := x) define nothing nameable.
func Def(in Instr) Operand {
	var d Operand

	switch in := in.(type) {
	case Assign:
		d = in.Dst
	case BinOp:
		d = in.Dst
	case Call:
		d = in.Dst
	case Read:
		d = in.Dst
	case Param:
		d = in.X
	default:
		return nil
	}

	if _, ok := d.(Deref); ok {
		return nil
	}

	return d
}

// Uses returns the operands read by in.
// A pointer store *p := x reads both p and x.
func Uses(in Instr) []Operand {
	switch in := in.(type) {
	case Assign:
		if d, ok := in.Dst.(Deref); ok {
			return []Operand{in.Src, d.X}
		}

		return []Operand{in.Src}
	case BinOp:
		return []Operand{in.L, in.R}
	case If:
		return []Operand{in.L, in.R}
	case Return:
		return []Operand{in.X}
	case Alloc:
		return []Operand{in.X}
	case Arg:
		return []Operand{in.X}
	case Write:
		return []Operand{in.X}
	case Call:
		if d, ok := in.Dst.(Deref); ok {
			return []Operand{d.X}
		}
	case Read:
		if d, ok := in.Dst.(Deref); ok {
			return []Operand{d.X}
		}
	}

	return nil
}

// Reads reports whether in reads x directly or through &x / *x containment.
func Reads(in Instr, x Operand) bool {
	for _, u := range Uses(in) {
		if Contains(u, x) {
			return true
		}
	}

	return false
}

// MapUses rewrites top-level value operands of in with f.
// Operands wrapped in & or * and store destinations are left intact.
func MapUses(in Instr, f func(Operand) Operand) Instr {
	switch q := in.(type) {
	case Assign:
		q.Src = f(q.Src)
		return q
	case BinOp:
		q.L = f(q.L)
		q.R = f(q.R)
		return q
	case If:
		q.L = f(q.L)
		q.R = f(q.R)
		return q
	case Return:
		q.X = f(q.X)
		return q
	case Arg:
		q.X = f(q.X)
		return q
	case Write:
		q.X = f(q.X)
		return q
	}

	return in
}
