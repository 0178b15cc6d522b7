// Package catalog loads the declarative instruction-set catalog (native and
// pseudo instructions) that both the assembler and the decompiler use as
// their single source of truth.
package catalog

// ArgumentType enumerates the shapes an instruction argument can take at
// compile time. Compile-only (pseudo) types never reach native encoding.
type ArgumentType string

const (
	Rd      ArgumentType = "Rd"
	Rs      ArgumentType = "Rs"
	Rt      ArgumentType = "Rt"
	Shamt   ArgumentType = "Shamt"
	I16     ArgumentType = "I16"
	U16     ArgumentType = "U16"
	J       ArgumentType = "J"
	OffRs   ArgumentType = "OffRs"
	OffRt   ArgumentType = "OffRt"
	F32     ArgumentType = "F32"
	F64     ArgumentType = "F64"
	I32     ArgumentType = "I32"     // pseudo-only
	U32     ArgumentType = "U32"     // pseudo-only
	Off32Rs ArgumentType = "Off32Rs" // pseudo-only
	Off32Rt ArgumentType = "Off32Rt" // pseudo-only
	Rx      ArgumentType = "Rx"      // pseudo-only placeholder, must not reach encoding
)

// IsPseudoOnly reports whether the argument type may only appear in a
// PseudoSignature's CompileSignature.
func (a ArgumentType) IsPseudoOnly() bool {
	switch a {
	case I32, U32, Off32Rs, Off32Rt, Rx:
		return true
	default:
		return false
	}
}

// CompileSignature is the declarative argument schema used at assembly time.
type CompileSignature struct {
	Format        []ArgumentType `yaml:"format"`
	RelativeLabel bool           `yaml:"relative_label"`
}

// RuntimeKind tags which MIPS instruction-word shape a RuntimeSignature
// describes.
type RuntimeKind string

const (
	KindR RuntimeKind = "R"
	KindI RuntimeKind = "I"
	KindJ RuntimeKind = "J"
)

// RuntimeSignature holds the opcode-field constants used to encode/decode a
// native instruction. Optional fields (pointers) are fixed constants that
// decode must match against; nil means the field is taken from the operand
// list instead.
type RuntimeSignature struct {
	Kind   RuntimeKind    `yaml:"type"`
	Opcode uint32         `yaml:"opcode"`
	Funct  *uint32        `yaml:"funct,omitempty"`
	Shamt  *uint32        `yaml:"shamt,omitempty"`
	Rs     *uint32        `yaml:"rs,omitempty"`
	Rt     *uint32        `yaml:"rt,omitempty"`
	Rd     *uint32        `yaml:"rd,omitempty"`
	Reads  []ArgumentType `yaml:"reads,omitempty"`
}

// InstSignature describes one native instruction: its compile-time argument
// schema and its runtime encoding.
type InstSignature struct {
	Name      string
	DescShort string
	DescLong  string
	Compile   CompileSignature
	Runtime   RuntimeSignature
}

// PseudoExpand is one step of a pseudo-instruction's expansion: a native
// instruction name plus a template for its arguments. A step that resolves
// to another pseudo-instruction is rejected by the text pass.
// Template tokens refer to the pseudo's own argument slots ("$1", "$2", ...)
// or are literal registers/numbers/hi()/lo() extractions.
type PseudoExpand struct {
	Inst string   `yaml:"inst"`
	Data []string `yaml:"data"`
}

// PseudoSignature describes a pseudo-instruction: its compile-time argument
// schema and the ordered sequence of native instructions it expands to.
type PseudoSignature struct {
	Name    string
	Compile CompileSignature
	Expand  []PseudoExpand
}
