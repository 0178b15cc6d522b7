package parser

import (
	"strconv"
	"strings"
)

// registerNames maps every symbolic MIPS register name to its number.
var registerNames = map[string]int{
	"zero": 0,
	"at":   1,
	"v0":   2, "v1": 3,
	"a0": 4, "a1": 5, "a2": 6, "a3": 7,
	"t0": 8, "t1": 9, "t2": 10, "t3": 11, "t4": 12, "t5": 13, "t6": 14, "t7": 15,
	"s0": 16, "s1": 17, "s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"t8": 24, "t9": 25,
	"k0": 26, "k1": 27,
	"gp": 28,
	"sp": 29,
	"fp": 30, "s8": 30,
	"ra": 31,
}

// RegisterNumber resolves a register token literal (with the leading '$'
// already stripped) to its 0-31 number. Accepts both "$12" and "$t4" forms.
func RegisterNumber(literal string) (int, bool) {
	lower := strings.ToLower(literal)
	if n, ok := registerNames[lower]; ok {
		return n, true
	}
	if n, err := strconv.Atoi(literal); err == nil {
		if n >= 0 && n <= 31 {
			return n, true
		}
		return n, false
	}
	return 0, false
}
