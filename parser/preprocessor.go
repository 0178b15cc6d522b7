package parser

import "strings"

// defaultTabSize is used when no #![tabsize(N)] attribute is present.
const defaultTabSize = 8

// Preprocessor re-normalizes tab width across a source file ahead of
// tokenization, honoring a leading #![tabsize(N)] file attribute so that
// reported column numbers line up with what the author sees in an editor
// configured for that width.
type Preprocessor struct {
	tabSize int
}

// NewPreprocessor creates a preprocessor with the default tab width.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{tabSize: defaultTabSize}
}

// Normalize expands tab characters to spaces using the tab width declared
// by a leading #![tabsize(N)] attribute in source, or the default width if
// none is present. The attribute line itself is left intact for the parser
// to consume.
func (pp *Preprocessor) Normalize(source string) string {
	pp.tabSize = detectTabSize(source)
	if pp.tabSize <= 0 {
		pp.tabSize = defaultTabSize
	}

	var out strings.Builder
	column := 0
	for _, ch := range source {
		switch ch {
		case '\t':
			spaces := pp.tabSize - (column % pp.tabSize)
			for i := 0; i < spaces; i++ {
				out.WriteByte(' ')
			}
			column += spaces
		case '\n':
			out.WriteRune(ch)
			column = 0
		default:
			out.WriteRune(ch)
			column++
		}
	}
	return out.String()
}

func detectTabSize(source string) int {
	firstLine := source
	if idx := strings.IndexByte(source, '\n'); idx >= 0 {
		firstLine = source[:idx]
	}
	firstLine = strings.TrimSpace(firstLine)
	if !strings.HasPrefix(firstLine, "#![") || !strings.HasSuffix(firstLine, "]") {
		return defaultTabSize
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(firstLine, "#!["), "]")
	if !strings.HasPrefix(inner, "tabsize(") || !strings.HasSuffix(inner, ")") {
		return defaultTabSize
	}
	numStr := strings.TrimSuffix(strings.TrimPrefix(inner, "tabsize("), ")")
	n := 0
	for _, ch := range numStr {
		if ch < '0' || ch > '9' {
			return defaultTabSize
		}
		n = n*10 + int(ch-'0')
	}
	if n == 0 {
		return defaultTabSize
	}
	return n
}
