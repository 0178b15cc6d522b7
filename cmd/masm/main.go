package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/eduvm/mips32/asm"
	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/parser"
	"github.com/eduvm/mips32/runtime"
	"github.com/eduvm/mips32/timeline"
	"github.com/eduvm/mips32/vm"
)

// Version can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var Version = "dev"

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version information")
		showHelp     = flag.Bool("help", false, "Show help information")
		compileOnly  = flag.Bool("compile", false, "Assemble only, print the decompiled listing, and exit")
		hexDump      = flag.Bool("hex", false, "Emit one encoded word per line as hex, then exit")
		zeroPad      = flag.Bool("zero-pad", false, "Zero-pad -hex output to 8 hex digits")
		dumpSymbols  = flag.Bool("dump-symbols", false, "Print labels sorted by address and constants sorted by name, then exit")
		maxSteps     = flag.Uint64("max-steps", 1000000, "Maximum forward steps before halting with an error")
		enableTrace  = flag.Bool("trace", false, "Record an execution trace and print it after the run")
		traceWindow  = flag.Int("trace-window", 10000, "Maximum trace entries retained")
		enableStats  = flag.Bool("stats", false, "Print instruction-count statistics after the run")
		catalogPath  = flag.String("catalog", "", "Path to an instruction catalog YAML (default: embedded catalog)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("masm %s\n", Version)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	sourcePaths, guestArgv := splitGuestArgv(flag.Args())
	if len(sourcePaths) == 0 {
		printHelp()
		os.Exit(0)
	}

	set, err := loadCatalog(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	programs := make([]*parser.Program, 0, len(sourcePaths))
	for _, path := range sourcePaths {
		prog, _, err := parser.ParseFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Parse error:\n%v\n", err)
			os.Exit(1)
		}
		programs = append(programs, prog)
	}

	bin, err := asm.Assemble(set, programs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembler error: %v\n", err)
		os.Exit(1)
	}

	if *dumpSymbols {
		dumpSymbolTable(bin)
		os.Exit(0)
	}

	if *hexDump {
		if err := printHexDump(bin, *zeroPad); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *compileOnly {
		if err := printDecompilation(bin, set); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	os.Exit(runProgram(bin, set, guestArgv, *maxSteps, *enableTrace, *traceWindow, *enableStats))
}

func splitGuestArgv(args []string) ([]string, []string) {
	for i, a := range args {
		if a == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

func loadCatalog(path string) (*catalog.InstSet, error) {
	if path == "" {
		return catalog.LoadDefault()
	}
	return catalog.LoadFile(path)
}

func printHexDump(bin *binaryfmt.Binary, zeroPad bool) error {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	format := "%x\n"
	if zeroPad {
		format = "%08x\n"
	}

	for addr := binaryfmt.TextStart; addr+4 <= binaryfmt.TextStart+uint32(len(bin.Text)); addr += 4 {
		word, ok := wordAt(bin.Text, binaryfmt.TextStart, addr)
		if !ok {
			break
		}
		fmt.Fprintf(w, format, word)
	}
	return nil
}

func wordAt(segment []binaryfmt.Safe[byte], base, addr uint32) (uint32, bool) {
	off := int(addr - base)
	if off < 0 || off+4 > len(segment) {
		return 0, false
	}
	var w uint32
	for i := 0; i < 4; i++ {
		b, ok := segment[off+i].Get()
		if !ok {
			return 0, false
		}
		w |= uint32(b) << uint(8*i)
	}
	return w, true
}

func printDecompilation(bin *binaryfmt.Binary, set *catalog.InstSet) error {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for addr := binaryfmt.TextStart; addr+4 <= binaryfmt.TextStart+uint32(len(bin.Text)); addr += 4 {
		word, ok := wordAt(bin.Text, binaryfmt.TextStart, addr)
		if !ok {
			break
		}
		text, err := asm.Decompile(bin, set, addr, word)
		if err != nil {
			return err
		}
		if name, ok := bin.Labels.NameForAddress(addr); ok {
			fmt.Fprintf(w, "%s:\n", name)
		}
		fmt.Fprintf(w, "  0x%08x  %s\n", addr, text)
	}
	return nil
}

func dumpSymbolTable(bin *binaryfmt.Binary) {
	names := bin.Labels.Names()
	sort.Slice(names, func(i, j int) bool {
		ai, _ := bin.Labels.Lookup(names[i])
		aj, _ := bin.Labels.Lookup(names[j])
		return ai < aj
	})
	for _, name := range names {
		addr, _ := bin.Labels.Lookup(name)
		fmt.Printf("0x%08X  %s\n", addr, name)
	}

	constNames := make([]string, 0, len(bin.Constants))
	for name := range bin.Constants {
		constNames = append(constNames, name)
	}
	sort.Strings(constNames)
	for _, name := range constNames {
		fmt.Printf("const      %s = %d\n", name, bin.Constants[name])
	}
}

// runProgram runs bin to completion. guestArgv is accepted for CLI-surface
// completeness (the -- separator) but is not exposed to the running
// program: the syscall table has no argc/argv convention for it to land in.
func runProgram(bin *binaryfmt.Binary, set *catalog.InstSet, guestArgv []string, maxSteps uint64, enableTrace bool, traceWindow int, enableStats bool) int {
	_ = guestArgv
	entry, ok := bin.Labels.Lookup("main_entry")
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: no entry point (main_entry) in assembled binary")
		return 1
	}

	stdio := runtime.NewStdIO(os.Stdout, os.Stdin)
	r := runtime.New(stdio)

	var trace *timeline.Trace
	if enableTrace {
		trace = timeline.NewTrace(traceWindow)
	}
	var stats *runtime.Statistics
	if enableStats {
		stats = runtime.NewStatistics()
	}

	cur := vm.NewStateWithImage(bin)
	cur.PC = entry

	for step := uint64(0); step < maxSteps; step++ {
		if trace != nil || stats != nil {
			if word, ok := wordAt(bin.Text, binaryfmt.TextStart, cur.PC); ok {
				if text, err := asm.Decompile(bin, set, cur.PC, word); err == nil {
					if trace != nil {
						trace.Append(cur.PC, text)
					}
					if stats != nil {
						stats.Record(strings.Fields(text)[0])
					}
				}
			}
		}

		next, outcome, err := r.Step(cur, bin, set)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nRuntime error at PC=0x%08X: %v\n", cur.PC, err)
			printDiagnostics(trace, stats)
			return 1
		}
		cur = next

		if outcome.Exited {
			printDiagnostics(trace, stats)
			return int(outcome.ExitCode)
		}
	}

	fmt.Fprintf(os.Stderr, "\nhalted: exceeded -max-steps=%d\n", maxSteps)
	printDiagnostics(trace, stats)
	return 1
}

func printDiagnostics(trace *timeline.Trace, stats *runtime.Statistics) {
	if trace != nil {
		fmt.Fprintln(os.Stderr)
		for _, e := range trace.Entries() {
			fmt.Fprintf(os.Stderr, "0x%08x  %s\n", e.Addr, e.Text)
		}
	}
	if stats != nil {
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, stats.String())
	}
}

func printHelp() {
	fmt.Printf(`masm %s - MIPS32 classroom assembler and debugging emulator

Usage: masm [options] <source-file>... [-- guest-args...]

Options:
  -help              Show this help message
  -version           Show version information
  -compile           Assemble only, print the decompiled listing, and exit
  -hex               Emit one encoded word per line as hex, then exit
  -zero-pad          Zero-pad -hex output to 8 hex digits
  -dump-symbols      Print labels sorted by address and constants sorted by name, then exit
  -catalog FILE      Load an instruction catalog YAML instead of the embedded one
  -max-steps N       Maximum forward steps before halting with an error (default 1000000)
  -trace             Record an execution trace and print it after the run
  -trace-window N    Maximum trace entries retained (default 10000)
  -stats             Print instruction-count statistics after the run

Examples:
  masm hello.asm
  masm -compile hello.asm
  masm -hex -zero-pad hello.asm
  masm -trace -stats hello.asm -- arg1 arg2
`, Version)
}
