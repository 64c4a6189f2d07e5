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

package arm

import (
	"encoding/binary"
	"strings"

	"golang.org/x/arch/arm/armasm"
)

// decodeARM decodes a 32-bit ARM instruction word.
//
// The branch and block-transfer classes are decoded from the opcode bits
// directly. The analysis depends on their exact destination and register
// list values and the opcode fields are simpler than any decoder output.
// Everything else goes through the armasm package with the result reduced
// to the uniform Ins/ParsedIns form.
func decodeARM(opcode uint32) (Ins, ParsedIns) {
	cond := Cond((opcode >> 28) & 0xf)

	if cond == NV {
		// the unconditional space. the only instruction the analysis can
		// meet here is BLX(1), which borrows the branch-with-link encoding
		// with the H bit selecting the halfword offset (ARMv5T)
		if (opcode>>25)&0x7 == 0b101 {
			h := int32((opcode >> 24) & 0x1)
			dest := signExtend24(opcode)<<2 + (h << 1) + 8

			ins, parsed := armIns(opcode, NV, "blx")
			parsed.Args[0] = BranchDest(dest)
			return ins, parsed
		}
		return armIllegal(opcode)
	}

	switch (opcode >> 25) & 0x7 {
	case 0b101:
		// branch / branch with link
		mnemonic := "b"
		if opcode&0x01000000 == 0x01000000 {
			mnemonic = "bl"
		}
		dest := signExtend24(opcode)<<2 + 8

		ins, parsed := armIns(opcode, cond, mnemonic)
		parsed.Args[0] = BranchDest(dest)
		return ins, parsed

	case 0b100:
		// block data transfer
		return armBlockTransfer(opcode, cond)
	}

	return armDecodeWithArmasm(opcode, cond)
}

func armIns(opcode uint32, cond Cond, mnemonic string) (Ins, ParsedIns) {
	ins := Ins{
		Mode:     ModeARM,
		Raw:      opcode,
		Cond:     cond,
		Mnemonic: mnemonic,
	}
	parsed := ParsedIns{
		Mnemonic: mnemonic,
		Cond:     cond,
	}
	return ins, parsed
}

func armIllegal(opcode uint32) (Ins, ParsedIns) {
	ins, parsed := armIns(opcode, Cond((opcode>>28)&0xf), "")
	ins.Illegal = true
	parsed.Illegal = true
	return ins, parsed
}

// signExtend24 treats the low 24 bits of the word as a signed value.
func signExtend24(opcode uint32) int32 {
	return int32(opcode<<8) >> 8
}

func armBlockTransfer(opcode uint32, cond Cond) (Ins, ParsedIns) {
	load := opcode&0x00100000 == 0x00100000
	writeback := opcode&0x00200000 == 0x00200000
	up := opcode&0x00800000 == 0x00800000
	pre := opcode&0x01000000 == 0x01000000
	baseReg := Register((opcode >> 16) & 0xf)
	list := RegList(opcode & 0xffff)

	var mnemonic string
	if load {
		mnemonic = "ldm"
	} else {
		mnemonic = "stm"
	}
	switch {
	case !pre && up:
		mnemonic += "ia"
	case pre && up:
		mnemonic += "ib"
	case !pre && !up:
		mnemonic += "da"
	default:
		mnemonic += "db"
	}

	// pop and push are the familiar spellings of the stack forms
	if baseReg == SP && writeback {
		if load && mnemonic == "ldmia" {
			mnemonic = "pop"
		} else if !load && mnemonic == "stmdb" {
			mnemonic = "push"
		}
	}

	ins, parsed := armIns(opcode, cond, mnemonic)
	ins.loadsMultiple = load
	ins.regList = list
	ins.regListPC = list

	if mnemonic == "pop" || mnemonic == "push" {
		parsed.Args[0] = list
	} else {
		parsed.Args[0] = Reg{Reg: baseReg, WriteBack: writeback}
		parsed.Args[1] = list
	}
	return ins, parsed
}

// armDecodeWithArmasm maps an armasm decode onto the uniform form.
func armDecodeWithArmasm(opcode uint32, cond Cond) (Ins, ParsedIns) {
	var src [4]byte
	binary.LittleEndian.PutUint32(src[:], opcode)

	inst, err := armasm.Decode(src[:], armasm.ModeARM)
	if err != nil {
		return armIllegal(opcode)
	}

	// the condition is part of the armasm op name. the base mnemonic is the
	// part before the first dot, lower-cased
	mnemonic := strings.ToLower(inst.Op.String())
	if idx := strings.Index(mnemonic, "."); idx >= 0 {
		mnemonic = mnemonic[:idx]
	}

	ins, parsed := armIns(opcode, cond, mnemonic)

	slot := 0
	addArg := func(a Argument) {
		if slot < len(parsed.Args) {
			parsed.Args[slot] = a
			slot++
		}
	}

	for _, a := range inst.Args {
		if a == nil {
			break
		}

		switch a := a.(type) {
		case armasm.Imm:
			addArg(UImm(uint32(a)))
		case armasm.Reg:
			if r, ok := mapArmasmReg(a); ok {
				addArg(Reg{Reg: r})
			}
		case armasm.RegShift:
			if r, ok := mapArmasmReg(a.Reg); ok {
				addArg(Reg{Reg: r})
			}
		case armasm.RegShiftReg:
			if r, ok := mapArmasmReg(a.Reg); ok {
				addArg(Reg{Reg: r})
			}
		case armasm.PCRel:
			addArg(BranchDest(int32(a) + 8))
		case armasm.Mem:
			base, ok := mapArmasmReg(a.Base)
			if !ok {
				return armIllegal(opcode)
			}
			addArg(Reg{Reg: base, Deref: true, WriteBack: a.Mode == armasm.AddrPreIndex})
			if a.Sign != 0 {
				// register offset
				if r, ok := mapArmasmReg(a.Index); ok {
					addArg(Reg{Reg: r, Deref: true})
				}
			} else {
				addArg(OffsetImm{
					Value:       int32(a.Offset),
					PostIndexed: a.Mode == armasm.AddrPostIndex,
				})
			}
		case armasm.RegList:
			list := RegList(a)
			ins.regList = list
			ins.regListPC = list
			addArg(list)
		default:
			// argument types with no analysis significance (endianness
			// specifiers and the like) are dropped
		}
	}

	return ins, parsed
}

// mapArmasmReg converts an armasm core register to the local Register type.
// The second return value is false for non-core registers.
func mapArmasmReg(r armasm.Reg) (Register, bool) {
	if r >= armasm.R0 && r <= armasm.R15 {
		return Register(r - armasm.R0), true
	}
	return 0, false
}
