package ast

import "github.com/nettee/compiler-lab/compiler/tp"

type (
	Node interface {
		Span() Base
	}

	Base struct {
		Pos int
		End int
	}

	Program struct {
		Base `tlog:",embed"`

		Defs []Def
	}

	Def interface {
		Node
		def()
	}

	Stmt interface {
		Node
		stmt()
	}

	Expr interface {
		Node
		Annotation() *Typed
	}

	// Typed is filled in by semantic analysis.
	Typed struct {
		Type   tp.Type
		Lvalue bool
	}

	// Specifiers

	Spec interface {
		Node
		spec()
	}

	BasicSpec struct {
		Base `tlog:",embed"`

		Type tp.Basic
	}

	StructSpec struct {
		Base `tlog:",embed"`

		Tag    string
		Fields []*VarDef // nil when the struct is only referenced by tag
		Body   bool
	}

	// Definitions

	VarDef struct {
		Base `tlog:",embed"`

		Spec Spec
		Vars []*VarDec
	}

	StructDef struct {
		Base `tlog:",embed"`

		Spec *StructSpec
	}

	FuncDef struct {
		Base `tlog:",embed"`

		Spec   Spec
		Name   string
		Params []*Param
		Body   *Compound // nil for declarations

		Type *tp.Func
	}

	Param struct {
		Base `tlog:",embed"`

		Spec Spec
		Dec  *VarDec
	}

	VarDec struct {
		Base `tlog:",embed"`

		Name string
		Dims []int
		Init Expr

		Type tp.Type
	}

	// Statements

	ExprStmt struct {
		Base `tlog:",embed"`

		X Expr
	}

	Compound struct {
		Base `tlog:",embed"`

		Defs  []*VarDef
		Stmts []Stmt
	}

	Return struct {
		Base `tlog:",embed"`

		X Expr
	}

	If struct {
		Base `tlog:",embed"`

		Cond Expr
		Then Stmt
		Else Stmt // nil without else branch
	}

	While struct {
		Base `tlog:",embed"`

		Cond Expr
		Body Stmt
	}

	// Expressions

	Ident struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		Name string
	}

	IntLit struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		Value int32
	}

	FloatLit struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		Value float32
	}

	Paren struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		X Expr
	}

	Assign struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		L, R Expr
	}

	Binary struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		Op   Op
		L, R Expr
	}

	Unary struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		Op Op
		X  Expr
	}

	Call struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		Name string
		Args []Expr
	}

	Index struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		X     Expr
		Index Expr
	}

	Field struct {
		Base  `tlog:",embed"`
		Typed `tlog:",embed"`

		X    Expr
		Name string
	}
)

func (b Base) Span() Base { return b }

func (t *Typed) Annotation() *Typed { return t }

func (*VarDef) def()    {}
func (*StructDef) def() {}
func (*FuncDef) def()   {}

func (*BasicSpec) spec()  {}
func (*StructSpec) spec() {}

func (*ExprStmt) stmt() {}
func (*Compound) stmt() {}
func (*Return) stmt()   {}
func (*If) stmt()       {}
func (*While) stmt()    {}

// Unparen strips redundant parentheses.
func Unparen(x Expr) Expr {
	for {
		p, ok := x.(*Paren)
		if !ok {
			return x
		}

		x = p.X
	}
}

// Root returns the innermost subscripted expression of a[i][j]...
func Root(x *Index) Expr {
	var e Expr = x

	for {
		ix, ok := Unparen(e).(*Index)
		if !ok {
			return Unparen(e)
		}

		e = ix.X
	}
}
