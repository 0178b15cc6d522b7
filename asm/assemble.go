package asm

import (
	_ "embed"
	"fmt"

	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/parser"
)

//go:embed data/kernel_prelude.asm
var kernelPreludeSource string

// preludeItems parses the kernel prelude once per assembly so its items
// can be laid out ahead of user code; main_entry jumps to the user
// program's "main" label and exits via syscall 10 once it returns.
func preludeItems() ([]*parser.Item, error) {
	prog, _, err := parser.ParseSource(kernelPreludeSource, "<kernel_prelude>")
	if err != nil {
		return nil, fmt.Errorf("internal: kernel prelude failed to parse: %w", err)
	}
	return prog.Items, nil
}

// Assemble runs the layout pass then the text pass over the kernel
// prelude followed by every given program's items, producing a complete
// Binary.
func Assemble(set *catalog.InstSet, programs ...*parser.Program) (*binaryfmt.Binary, error) {
	prelude, err := preludeItems()
	if err != nil {
		return nil, err
	}

	var items []*parser.Item
	items = append(items, prelude...)
	for _, prog := range programs {
		items = append(items, prog.Items...)
	}

	ls := newLayoutState(set)
	if err := ls.layout(items); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	ts := newTextState(ls.binary, set)
	if err := ts.emit(items); err != nil {
		return nil, fmt.Errorf("text pass: %w", err)
	}

	if !ls.binary.WordAligned() {
		return nil, fmt.Errorf("internal: text segment is not word-aligned after assembly")
	}

	return ls.binary, nil
}
