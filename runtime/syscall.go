package runtime

import (
	"fmt"

	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/vm"
)

// syscall dispatches on the service code in $v0, per the fixed 1..17 table;
// codes 13-16 (open/read/write/close) are stubbed and always return -1, and
// the floating-point codes (2, 3, 6, 7) are stubbed the same way since this
// machine models no coprocessor-1 register file.
func (r *Runtime) syscall(cur, next *vm.State) (Outcome, error) {
	code, err := readReg(cur, vm.V0)
	if err != nil {
		return Outcome{}, err
	}

	switch code {
	case 1: // print_int
		a0, err := readReg(cur, vm.A0)
		if err != nil {
			return Outcome{}, err
		}
		fmt.Fprintf(r.IO, "%d", a0)

	case 2, 3, 6, 7: // print_float/double, read_float/double: no FPU modeled
		next.SetRegister(vm.V0, binaryfmt.ValidOf(int32(-1)))

	case 4: // print_string
		addr, err := readReg(cur, vm.A0)
		if err != nil {
			return Outcome{}, err
		}
		s, ferr := r.readCString(cur, uint32(addr))
		if ferr != nil {
			return Outcome{}, ferr
		}
		fmt.Fprint(r.IO, s)

	case 5: // read_int
		v, err := readIntToken(r.IO)
		if err != nil {
			return Outcome{}, fmt.Errorf("read_int: %w", err)
		}
		next.SetRegister(vm.V0, binaryfmt.ValidOf(v))

	case 8: // read_string
		addr, err := readReg(cur, vm.A0)
		if err != nil {
			return Outcome{}, err
		}
		maxLen, err := readReg(cur, vm.A1)
		if err != nil {
			return Outcome{}, err
		}
		line, _ := r.IO.ReadLine()
		limit := int(maxLen) - 1
		if limit < 0 {
			limit = 0
		}
		if len(line) > limit {
			line = line[:limit]
		}
		base := uint32(addr)
		for i := 0; i < len(line); i++ {
			next.Memory.WriteByte(base+uint32(i), line[i])
		}
		next.Memory.WriteByte(base+uint32(len(line)), 0)

	case 9: // sbrk
		amount, err := readReg(cur, vm.A0)
		if err != nil {
			return Outcome{}, err
		}
		if amount < 0 {
			return Outcome{}, faultSbrkNegative(amount)
		}
		old := r.initialHeapBreak()
		r.heapBreak = old + uint32(amount)
		next.SetRegister(vm.V0, binaryfmt.ValidOf(int32(old)))

	case 10: // exit
		return Outcome{Exited: true, ExitCode: 0}, nil

	case 11: // print_char
		a0, err := readReg(cur, vm.A0)
		if err != nil {
			return Outcome{}, err
		}
		fmt.Fprintf(r.IO, "%c", byte(a0))

	case 12: // read_char
		b, err := r.IO.ReadByte()
		if err != nil {
			return Outcome{}, fmt.Errorf("read_char: %w", err)
		}
		next.SetRegister(vm.V0, binaryfmt.ValidOf(int32(b)))

	case 13, 14, 15, 16: // open/read/write/close
		next.SetRegister(vm.V0, binaryfmt.ValidOf(int32(-1)))

	case 17: // exit_status
		a0, err := readReg(cur, vm.A0)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Exited: true, ExitCode: a0}, nil

	default:
		next.SetRegister(vm.V0, binaryfmt.ValidOf(int32(-1)))
	}

	return Outcome{}, nil
}

func (r *Runtime) readCString(s *vm.State, addr uint32) (string, error) {
	var bytes []byte
	for {
		b, ok := s.Memory.ReadByte(addr).Get()
		if !ok {
			return "", faultUninitialised("byte", fmt.Sprintf("address 0x%08X", addr))
		}
		if b == 0 {
			break
		}
		bytes = append(bytes, b)
		addr++
	}
	return string(bytes), nil
}
