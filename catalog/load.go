package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultCatalogYAML is the catalog shipped alongside the binary, loaded at
// runtime rather than baked in by a code generator.
//
//go:embed data/instructions.yaml
var defaultCatalogYAML []byte

// yamlFile is the on-disk shape of the catalog file: two top-level lists,
// instructions and pseudoinstructions.
type yamlFile struct {
	Instructions       []yamlInstruction `yaml:"instructions"`
	PseudoInstructions []yamlPseudo      `yaml:"pseudoinstructions"`
}

type yamlCompile struct {
	Format        []string `yaml:"format"`
	RelativeLabel bool     `yaml:"relative_label"`
}

type yamlRuntime struct {
	Type   string   `yaml:"type"`
	Opcode uint32   `yaml:"opcode"`
	Funct  *uint32  `yaml:"funct"`
	Shamt  *uint32  `yaml:"shamt"`
	Rs     *uint32  `yaml:"rs"`
	Rt     *uint32  `yaml:"rt"`
	Rd     *uint32  `yaml:"rd"`
	Reads  []string `yaml:"reads"`
}

type yamlInstruction struct {
	Name      string      `yaml:"name"`
	DescShort string      `yaml:"desc_short"`
	DescLong  string      `yaml:"desc_long"`
	Compile   yamlCompile `yaml:"compile"`
	Runtime   yamlRuntime `yaml:"runtime"`
}

type yamlPseudo struct {
	Name    string         `yaml:"name"`
	Compile yamlCompile    `yaml:"compile"`
	Expand  []PseudoExpand `yaml:"expand"`
}

// LoadDefault loads the catalog embedded in the binary.
func LoadDefault() (*InstSet, error) {
	return parseCatalog(defaultCatalogYAML)
}

// LoadFile loads a catalog from a path on disk, falling back to the
// embedded default when path is empty.
func LoadFile(path string) (*InstSet, error) {
	if path == "" {
		return LoadDefault()
	}
	raw, err := os.ReadFile(path) // #nosec G304 -- user-supplied catalog path
	if err != nil {
		return nil, fmt.Errorf("reading instruction catalog: %w", err)
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (*InstSet, error) {
	var doc yamlFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing instruction catalog: %w", err)
	}

	set := NewInstSet()

	for _, inst := range doc.Instructions {
		sig, err := toInstSignature(inst)
		if err != nil {
			return nil, fmt.Errorf("instruction %q: %w", inst.Name, err)
		}
		set.AddNative(sig)
	}

	for _, p := range doc.PseudoInstructions {
		sig, err := toPseudoSignature(p)
		if err != nil {
			return nil, fmt.Errorf("pseudoinstruction %q: %w", p.Name, err)
		}
		set.AddPseudo(sig)
	}

	return set, nil
}

func toInstSignature(y yamlInstruction) (*InstSignature, error) {
	compile, err := toCompileSignature(y.Compile)
	if err != nil {
		return nil, err
	}

	var kind RuntimeKind
	switch strings.ToUpper(y.Runtime.Type) {
	case "R":
		kind = KindR
	case "I":
		kind = KindI
	case "J":
		kind = KindJ
	default:
		return nil, fmt.Errorf("unknown runtime type %q", y.Runtime.Type)
	}

	if kind == KindR && y.Runtime.Funct == nil {
		return nil, fmt.Errorf("YamlMissingFunct: R-type instruction requires funct")
	}

	reads := make([]ArgumentType, 0, len(y.Runtime.Reads))
	for _, r := range y.Runtime.Reads {
		reads = append(reads, ArgumentType(r))
	}

	return &InstSignature{
		Name:      strings.ToLower(y.Name),
		DescShort: y.DescShort,
		DescLong:  y.DescLong,
		Compile:   compile,
		Runtime: RuntimeSignature{
			Kind:   kind,
			Opcode: y.Runtime.Opcode,
			Funct:  y.Runtime.Funct,
			Shamt:  y.Runtime.Shamt,
			Rs:     y.Runtime.Rs,
			Rt:     y.Runtime.Rt,
			Rd:     y.Runtime.Rd,
			Reads:  reads,
		},
	}, nil
}

func toPseudoSignature(y yamlPseudo) (*PseudoSignature, error) {
	compile, err := toCompileSignature(y.Compile)
	if err != nil {
		return nil, err
	}
	if len(y.Expand) == 0 {
		return nil, fmt.Errorf("pseudoinstruction has no expansion")
	}
	return &PseudoSignature{
		Name:    strings.ToLower(y.Name),
		Compile: compile,
		Expand:  y.Expand,
	}, nil
}

func toCompileSignature(y yamlCompile) (CompileSignature, error) {
	format := make([]ArgumentType, 0, len(y.Format))
	for _, f := range y.Format {
		format = append(format, ArgumentType(f))
	}
	return CompileSignature{Format: format, RelativeLabel: y.RelativeLabel}, nil
}
