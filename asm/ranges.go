package asm

import "fmt"

func fitsSigned16(v int64) bool {
	return v >= -32768 && v <= 32767
}

func fitsUnsigned16(v int64) bool {
	return v >= 0 && v <= 65535
}

func fitsSigned32(v int64) bool {
	return v >= -2147483648 && v <= 4294967295
}

func fitsShamt(v int64) bool {
	return v >= 0 && v <= 31
}

// checkImmediateRange validates v against the numeric range implied by
// argType, returning ImmediateOutOfRange on failure.
func checkImmediateRange(argType string, v int64) error {
	switch argType {
	case "I16":
		if !fitsSigned16(v) {
			return fmt.Errorf("ImmediateOutOfRange: %d does not fit a signed 16-bit field", v)
		}
	case "U16":
		if !fitsUnsigned16(v) {
			return fmt.Errorf("ImmediateOutOfRange: %d does not fit an unsigned 16-bit field", v)
		}
	case "Shamt":
		if !fitsShamt(v) {
			return fmt.Errorf("ImmediateOutOfRange: shift amount %d must be 0..31", v)
		}
	case "I32", "U32":
		if !fitsSigned32(v) {
			return fmt.Errorf("ImmediateOutOfRange: %d does not fit a 32-bit field", v)
		}
	}
	return nil
}
