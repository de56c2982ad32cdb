package ir

import (
	"fmt"
	"strconv"
)

type (
	// Operand is one of Temp, Var, Sym, Int, Float, Addr, Deref.
	// Operands are comparable: == is structural equality.
	Operand interface {
		fmt.Stringer
		operand()
	}

	Temp  int
	Var   string
	Sym   string
	Int   int32
	Float float32

	Addr struct {
		X Operand
	}

	Deref struct {
		X Operand
	}

	Label int
)

func (Temp) operand()  {}
func (Var) operand()   {}
func (Sym) operand()   {}
func (Int) operand()   {}
func (Float) operand() {}
func (Addr) operand()  {}
func (Deref) operand() {}

func (x Temp) String() string  { return "t" + strconv.Itoa(int(x)) }
func (x Var) String() string   { return string(x) }
func (x Sym) String() string   { return string(x) }
func (x Int) String() string   { return "#" + strconv.Itoa(int(x)) }
func (x Float) String() string { return fmt.Sprintf("#%.2f", float32(x)) }
func (x Addr) String() string  { return "&" + x.X.String() }
func (x Deref) String() string { return "*" + x.X.String() }

func (l Label) String() string { return "L" + strconv.Itoa(int(l)) }

func Equal(x, y Operand) bool { return x == y }

// Contains reports whether x is y or wraps an operand containing y.
func Contains(x, y Operand) bool {
	for x != nil {
		if x == y {
			return true
		}

		switch q := x.(type) {
		case Addr:
			x = q.X
		case Deref:
			x = q.X
		default:
			return false
		}
	}

	return false
}

func IsLiteral(x Operand) bool {
	switch x.(type) {
	case Int, Float:
		return true
	}

	return false
}

func IsZero(x Operand) bool {
	switch x := x.(type) {
	case Int:
		return x == 0
	case Float:
		return x == 0
	}

	return false
}

func IsOne(x Operand) bool {
	switch x := x.(type) {
	case Int:
		return x == 1
	case Float:
		return x == 1
	}

	return false
}
