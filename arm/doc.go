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

// Package arm decodes ARM and Thumb instructions to the level of detail the
// analysis packages need: mnemonic, condition, argument list, branch
// destinations and register lists. It is not an emulator and it makes no
// attempt to describe the behaviour of an instruction beyond that.
//
// The target architecture is ARMv5TE, little-endian, with mnemonics in the
// pre-UAL spelling.
//
// Thumb instructions are decoded natively, working down the format table of
// the ARM7TDMI data sheet. The BL/BLX instruction pair is decoded as two
// halfword instructions, named bl and blh (blx for the second half of the
// BLX form).
//
// ARM instructions are decoded with the golang.org/x/arch/arm/armasm
// package, with the results reduced to the uniform Ins/ParsedIns form. The
// branch and block-transfer classes are taken straight from the opcode bits
// because the analysis depends on them exactly.
//
// The Parser type presents a byte slice as a lazy sequence of instructions.
// Instructions are consumed in order with the Next() function.
package arm
