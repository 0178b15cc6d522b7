package parser

import "os"

// ParseFile reads and parses a single assembly source file, applying tab
// re-normalization ahead of tokenization.
func ParseFile(filePath string) (*Program, *Parser, error) {
	content, err := os.ReadFile(filePath) // #nosec G304 -- user-provided assembly file path
	if err != nil {
		return nil, nil, err
	}

	pp := NewPreprocessor()
	source := pp.Normalize(string(content))

	p := NewParser(source, filePath)
	program, err := p.Parse()
	if err != nil {
		return program, p, err
	}
	return program, p, nil
}

// ParseSource parses already-in-memory source text under a synthetic
// filename, applying the same tab re-normalization as ParseFile.
func ParseSource(source, filename string) (*Program, *Parser, error) {
	pp := NewPreprocessor()
	normalized := pp.Normalize(source)
	p := NewParser(normalized, filename)
	program, err := p.Parse()
	if err != nil {
		return program, p, err
	}
	return program, p, nil
}
