package parser

// ExprKind discriminates the shape of a parsed numeric/label expression.
type ExprKind int

const (
	ExprNumber ExprKind = iota
	ExprFloat
	ExprIdent
)

// Expr is an immediate, float, or label-reference expression, optionally
// combined with a trailing "+ N" / "- N" numeric adjustment (constant
// arithmetic, or the two-immediate offset form "imm1 + imm2(reg)").
type Expr struct {
	Kind       ExprKind
	IntValue   int64
	FloatValue float64
	Ident      string

	HasOp     bool
	Op        byte // '+' or '-'
	OpOperand int64

	Pos Position
}

// OperandKind discriminates the shape of a parsed instruction operand.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandOffset // disp(reg), disp is an Expr
	OperandString
)

// Operand is one parsed instruction or directive argument.
type Operand struct {
	Kind     OperandKind
	Register int
	RegName  string
	Expr     *Expr
	Text     string // decoded contents of a string literal
	Pos      Position
}

// ItemKind discriminates the kind of a top-level program item.
type ItemKind int

const (
	ItemLabel ItemKind = iota
	ItemDirective
	ItemInstruction
	ItemConstant
)

// Item is one element of the parsed, positioned item stream: a label
// declaration, a directive, an instruction, or a constant definition.
type Item struct {
	Kind ItemKind
	Pos  Position

	Label string // ItemLabel

	Directive     string // ItemDirective, without the leading dot
	DirectiveArgs []Operand

	Mnemonic string // ItemInstruction
	Operands []Operand

	ConstName string // ItemConstant
	ConstExpr *Expr

	RawLine string
}

// Program is the parsed item stream for one merged translation unit, plus
// its resolved file attributes.
type Program struct {
	Items   []*Item
	TabSize int
}
