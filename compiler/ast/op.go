package ast

type Op int

const (
	_ Op = iota

	Add
	Sub
	Mul
	Div

	LT
	LE
	GT
	GE
	EQ
	NE

	And
	Or

	Neg
	Not
)

var opNames = [...]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
	LT:  "<",
	LE:  "<=",
	GT:  ">",
	GE:  ">=",
	EQ:  "==",
	NE:  "!=",
	And: "&&",
	Or:  "||",
	Neg: "-",
	Not: "!",
}

func (op Op) String() string {
	if op <= 0 || int(op) >= len(opNames) {
		return "?"
	}

	return opNames[op]
}

func (op Op) IsArith() bool { return op >= Add && op <= Div }

func (op Op) IsRel() bool { return op >= LT && op <= NE }

func (op Op) IsLogic() bool { return op == And || op == Or }
