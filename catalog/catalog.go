package catalog

import "fmt"

// InstSet is the loaded instruction catalog: native instructions and
// pseudo-instructions, each indexed by (lower-case) name. Several
// signatures can share a name when different operand shapes compile to
// different encodings (e.g. "add" only ever has one shape, but a catalog
// could in principle describe overloaded mnemonics).
type InstSet struct {
	nativeSet map[string][]*InstSignature
	pseudoSet map[string][]*PseudoSignature

	// insertion-ordered names, used for "did you mean" suggestions and for
	// deterministic dumps.
	nativeNames []string
	pseudoNames []string
}

// NewInstSet creates an empty catalog; use AddNative/AddPseudo or Load to
// populate it.
func NewInstSet() *InstSet {
	return &InstSet{
		nativeSet: make(map[string][]*InstSignature),
		pseudoSet: make(map[string][]*PseudoSignature),
	}
}

// AddNative registers a native instruction signature.
func (s *InstSet) AddNative(sig *InstSignature) {
	key := sig.Name
	if _, exists := s.nativeSet[key]; !exists {
		s.nativeNames = append(s.nativeNames, key)
	}
	s.nativeSet[key] = append(s.nativeSet[key], sig)
}

// AddPseudo registers a pseudo-instruction signature.
func (s *InstSet) AddPseudo(sig *PseudoSignature) {
	key := sig.Name
	if _, exists := s.pseudoSet[key]; !exists {
		s.pseudoNames = append(s.pseudoNames, key)
	}
	s.pseudoSet[key] = append(s.pseudoSet[key], sig)
}

// NativeCandidates returns every native signature registered under name.
func (s *InstSet) NativeCandidates(name string) []*InstSignature {
	return s.nativeSet[name]
}

// PseudoCandidates returns every pseudo signature registered under name.
func (s *InstSet) PseudoCandidates(name string) []*PseudoSignature {
	return s.pseudoSet[name]
}

// HasName reports whether name is known as either a native or pseudo
// instruction, regardless of argument shape.
func (s *InstSet) HasName(name string) bool {
	_, isNative := s.nativeSet[name]
	_, isPseudo := s.pseudoSet[name]
	return isNative || isPseudo
}

// AllNames returns every known mnemonic (native then pseudo), for
// Levenshtein-based suggestion search.
func (s *InstSet) AllNames() []string {
	out := make([]string, 0, len(s.nativeNames)+len(s.pseudoNames))
	out = append(out, s.nativeNames...)
	out = append(out, s.pseudoNames...)
	return out
}

// NativeByOpcode finds the native signature matching a decoded instruction
// word's fixed fields. Used by the decompiler. It returns the first
// signature whose fixed Runtime fields (funct/rs/rt/rd/shamt, as declared)
// match the decoded word.
func (s *InstSet) NativeByOpcode(kind RuntimeKind, opcode, funct, rs, rt, rd, shamt uint32) (*InstSignature, error) {
	for _, name := range s.nativeNames {
		for _, sig := range s.nativeSet[name] {
			rt2 := sig.Runtime
			if rt2.Kind != kind || rt2.Opcode != opcode {
				continue
			}
			if rt2.Funct != nil && *rt2.Funct != funct {
				continue
			}
			if rt2.Rs != nil && *rt2.Rs != rs {
				continue
			}
			if rt2.Rt != nil && *rt2.Rt != rt {
				continue
			}
			if rt2.Rd != nil && *rt2.Rd != rd {
				continue
			}
			if rt2.Shamt != nil && *rt2.Shamt != shamt {
				continue
			}
			return sig, nil
		}
	}
	return nil, fmt.Errorf("no catalog entry matches opcode=%d funct=%d", opcode, funct)
}
