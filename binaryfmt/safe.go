// Package binaryfmt holds the assembled program: byte segments, the label
// and constant tables, source line mapping, and breakpoints. It is produced
// once by the assembler and is read-only afterward except for breakpoint
// mutation.
package binaryfmt

// Safe is a value that is either Valid(T) or Uninitialised. Reading an
// Uninitialised slot is a runtime fault.
type Safe[T any] struct {
	value T
	valid bool
}

// ValidOf returns a Safe holding v.
func ValidOf[T any](v T) Safe[T] {
	return Safe[T]{value: v, valid: true}
}

// UninitialisedOf returns the zero (uninitialised) Safe value.
func UninitialisedOf[T any]() Safe[T] {
	return Safe[T]{}
}

// IsValid reports whether the slot has been written.
func (s Safe[T]) IsValid() bool {
	return s.valid
}

// Get returns the underlying value and whether it was valid. Callers that
// must fault on an uninitialised read should check ok themselves rather
// than using the zero value silently.
func (s Safe[T]) Get() (T, bool) {
	return s.value, s.valid
}

// MustGet returns the underlying value, panicking if uninitialised. Reserved
// for call sites that have already checked IsValid (e.g. $0, which is
// always valid by construction).
func (s Safe[T]) MustGet() T {
	if !s.valid {
		panic("binaryfmt: read of uninitialised Safe value")
	}
	return s.value
}
