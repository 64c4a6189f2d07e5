// This file is part of Dismantle.
//
// Dismantle is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Dismantle is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Dismantle.  If not, see <https://www.gnu.org/licenses/>.

package analysis

import "github.com/jetsetilly/dismantle/arm"

// IsValidFunctionStart decides whether the decoded instruction could
// plausibly be the first instruction of a function.
func IsValidFunctionStart(addr uint32, ins arm.Ins, parsed arm.ParsedIns) bool {
	switch ins.Mode {
	case arm.ModeARM:
		return isValidFunctionStartARM(addr, ins, parsed)
	case arm.ModeThumb:
		return isValidFunctionStartThumb(addr, ins, parsed)
	}
	return false
}

func isValidFunctionStartARM(_ uint32, ins arm.Ins, parsed arm.ParsedIns) bool {
	if ins.IsIllegal() || parsed.IsIllegal() {
		return false
	}
	// a function cannot begin in the middle of a conditional block
	if ins.HasCond() && ins.ModifierCond() != arm.AL && ins.ModifierCond() != arm.NV {
		return false
	}
	return true
}

// the Thumb rejection patterns are aimed at data tables that happen to
// decode as Thumb instructions. each pattern is something a compiler would
// never emit as the first instruction of a function.
func isValidFunctionStartThumb(_ uint32, ins arm.Ins, parsed arm.ParsedIns) bool {
	if ins.IsIllegal() || parsed.IsIllegal() {
		return false
	}

	// BL/BLX is a two-halfword sequence. a lone half cannot begin a
	// function
	if ins.Mnemonic == "bl" || ins.Mnemonic == "blh" {
		return false
	}

	switch parsed.Mnemonic {
	case "mov", "movs":
		// useless mov: mov rd, rd
		if dst, src, ok := twoRegs(parsed); ok && parsed.Args[2] == nil && dst == src {
			return false
		}

	case "lsl", "lsls", "lsr", "lsrs":
		dst, src, ok := twoRegs(parsed)
		if !ok {
			break
		}
		shift, ok := parsed.Args[2].(arm.UImm)
		if !ok {
			break
		}

		// useless shift: lsl rd, rd, #0
		if (parsed.Mnemonic == "lsl" || parsed.Mnemonic == "lsls") && dst == src && shift == 0 {
			return false
		}

		// a table of bytes with values 0-7 decodes as shifts of r0 by a
		// multiple of four
		if src == arm.R0 && shift%4 == 0 {
			return false
		}

	case "ldr", "ldrh", "ldrb":
		// the load base at a function start can only be an argument
		// register, SP or PC
		if base, ok := parsed.Args[1].(arm.Reg); ok && base.Deref {
			switch base.Reg {
			case arm.R0, arm.R1, arm.R2, arm.R3, arm.SP, arm.PC:
			default:
				return false
			}
		}

	case "strh", "strb":
		// store of a register through itself:
		//	*ptr = (u16) ptr
		if src, ok := parsed.Args[0].(arm.Reg); ok {
			if base, ok := parsed.Args[1].(arm.Reg); ok && base.Deref && base.Reg == src.Reg {
				return false
			}
		}
	}

	return true
}

// twoRegs extracts the first two arguments when both are plain registers.
func twoRegs(parsed arm.ParsedIns) (arm.Register, arm.Register, bool) {
	a, ok := parsed.Args[0].(arm.Reg)
	if !ok || a.Deref {
		return 0, 0, false
	}
	b, ok := parsed.Args[1].(arm.Reg)
	if !ok || b.Deref {
		return 0, 0, false
	}
	return a.Reg, b.Reg, true
}
