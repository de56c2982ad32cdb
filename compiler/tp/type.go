package tp

import (
	"fmt"
	"strings"
)

type (
	Type interface {
		Width() int
		fmt.Stringer
	}

	Basic int

	Array struct {
		Elem Type
		Len  int
	}

	Struct struct {
		Name   string // empty for anonymous structs
		Fields []Field
	}

	Field struct {
		Name string
		Type Type
	}

	Func struct {
		Name   string
		Ret    Type
		Params []Type
	}
)

const (
	Int Basic = iota
	Float
)

const WordSize = 4

func (x Basic) Width() int { return WordSize }

func (x Basic) String() string {
	switch x {
	case Int:
		return "int"
	case Float:
		return "float"
	}

	return fmt.Sprintf("basic(%d)", int(x))
}

func (x *Array) Width() int {
	return x.Len * x.Elem.Width()
}

func (x *Array) String() string {
	var dims strings.Builder

	var t Type = x

	for {
		a, ok := t.(*Array)
		if !ok {
			break
		}

		fmt.Fprintf(&dims, "[%d]", a.Len)

		t = a.Elem
	}

	return fmt.Sprintf("%v%s", t, dims.String())
}

func (x *Struct) Width() (w int) {
	for _, f := range x.Fields {
		w += f.Type.Width()
	}

	return w
}

func (x *Struct) String() string {
	if x.Name != "" {
		return "struct " + x.Name
	}

	var b strings.Builder

	b.WriteString("struct {")

	for _, f := range x.Fields {
		fmt.Fprintf(&b, " %v %s;", f.Type, f.Name)
	}

	b.WriteString(" }")

	return b.String()
}

func (x *Struct) Field(name string) (Field, bool) {
	for _, f := range x.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

func (x *Func) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%v %s(", x.Ret, x.Name)

	for i, p := range x.Params {
		if i != 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "%v", p)
	}

	b.WriteString(")")

	return b.String()
}

// Width returns storage size of t in bytes.
func Width(t Type) int {
	if t == nil {
		return WordSize
	}

	return t.Width()
}

func IsInt(t Type) bool   { return t == Int }
func IsFloat(t Type) bool { return t == Float }

func IsBasic(t Type) bool {
	_, ok := t.(Basic)
	return ok
}

func IsArray(t Type) bool {
	_, ok := t.(*Array)
	return ok
}

func IsStruct(t Type) bool {
	_, ok := t.(*Struct)
	return ok
}

// Equal reports structural equivalence.
// Arrays are equal when element types are, regardless of length.
// Structs are equal when their field types are pairwise equal.
func Equal(x, y Type) bool {
	switch x := x.(type) {
	case Basic:
		y, ok := y.(Basic)
		return ok && x == y
	case *Array:
		y, ok := y.(*Array)
		return ok && Equal(x.Elem, y.Elem)
	case *Struct:
		y, ok := y.(*Struct)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}

		if x == y {
			return true
		}

		for i := range x.Fields {
			if !Equal(x.Fields[i].Type, y.Fields[i].Type) {
				return false
			}
		}

		return true
	}

	return false
}

func EqualList(x, y []Type) bool {
	if len(x) != len(y) {
		return false
	}

	for i := range x {
		if !Equal(x[i], y[i]) {
			return false
		}
	}

	return true
}
