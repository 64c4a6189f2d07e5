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

// decodeThumb decodes a Thumb halfword, working backwards up the table in
// Figure 5-1 of the ARM7TDMI Data Sheet.
func decodeThumb(opcode uint16) (Ins, ParsedIns) {
	if opcode&0xf800 == 0xf000 {
		// format 19 - Long branch with link (first half)
		return thumbBranchLinkHalf(opcode, "bl")
	} else if opcode&0xf800 == 0xf800 {
		// format 19 - Long branch with link (second half)
		return thumbBranchLinkHalf(opcode, "blh")
	} else if opcode&0xf800 == 0xe800 {
		// the BLX suffix occupies the odd half of the unconditional branch
		// space (ARMv5T)
		return thumbBranchLinkHalf(opcode, "blx")
	} else if opcode&0xf800 == 0xe000 {
		// format 18 - Unconditional branch
		return thumbUnconditionalBranch(opcode)
	} else if opcode&0xff00 == 0xdf00 {
		// format 17 - Software interrupt
		return thumbSoftwareInterrupt(opcode)
	} else if opcode&0xf000 == 0xd000 {
		// format 16 - Conditional branch
		return thumbConditionalBranch(opcode)
	} else if opcode&0xf000 == 0xc000 {
		// format 15 - Multiple load/store
		return thumbMultipleLoadStore(opcode)
	} else if opcode&0xf600 == 0xb400 {
		// format 14 - Push/pop registers
		return thumbPushPopRegisters(opcode)
	} else if opcode&0xff00 == 0xbe00 {
		// breakpoint (ARMv5T)
		return thumbBreakpoint(opcode)
	} else if opcode&0xff00 == 0xb000 {
		// format 13 - Add offset to stack pointer
		return thumbAddOffsetToSP(opcode)
	} else if opcode&0xf000 == 0xb000 {
		// the remaining gaps in the miscellaneous space are undefined
		return thumbIllegal(opcode)
	} else if opcode&0xf000 == 0xa000 {
		// format 12 - Load address
		return thumbLoadAddress(opcode)
	} else if opcode&0xf000 == 0x9000 {
		// format 11 - SP-relative load/store
		return thumbSPRelativeLoadStore(opcode)
	} else if opcode&0xf000 == 0x8000 {
		// format 10 - Load/store halfword
		return thumbLoadStoreHalfword(opcode)
	} else if opcode&0xe000 == 0x6000 {
		// format 9 - Load/store with immediate offset
		return thumbLoadStoreWithImmOffset(opcode)
	} else if opcode&0xf200 == 0x5200 {
		// format 8 - Load/store sign-extended byte/halfword
		return thumbLoadStoreSignExtended(opcode)
	} else if opcode&0xf200 == 0x5000 {
		// format 7 - Load/store with register offset
		return thumbLoadStoreWithRegisterOffset(opcode)
	} else if opcode&0xf800 == 0x4800 {
		// format 6 - PC-relative load
		return thumbPCRelativeLoad(opcode)
	} else if opcode&0xfc00 == 0x4400 {
		// format 5 - Hi register operations/branch exchange
		return thumbHiRegisterOps(opcode)
	} else if opcode&0xfc00 == 0x4000 {
		// format 4 - ALU operations
		return thumbALUOperations(opcode)
	} else if opcode&0xe000 == 0x2000 {
		// format 3 - Move/compare/add/subtract immediate
		return thumbMovCmpAddSubImm(opcode)
	} else if opcode&0xf800 == 0x1800 {
		// format 2 - Add/subtract
		return thumbAddSubtract(opcode)
	} else if opcode&0xe000 == 0x0000 {
		// format 1 - Move shifted register
		return thumbMoveShiftedRegister(opcode)
	}

	return thumbIllegal(opcode)
}

// thumbIns builds the common parts of a decoded Thumb instruction.
func thumbIns(opcode uint16, mnemonic string) (Ins, ParsedIns) {
	ins := Ins{
		Mode:     ModeThumb,
		Raw:      uint32(opcode),
		Cond:     AL,
		Mnemonic: mnemonic,
	}
	parsed := ParsedIns{
		Mnemonic: mnemonic,
		Cond:     AL,
	}
	return ins, parsed
}

func thumbIllegal(opcode uint16) (Ins, ParsedIns) {
	ins, parsed := thumbIns(opcode, "")
	ins.Illegal = true
	parsed.Illegal = true
	return ins, parsed
}

func thumbBranchLinkHalf(opcode uint16, mnemonic string) (Ins, ParsedIns) {
	// the offset field of either half. the halves are meaningless in
	// isolation so the field is presented as a plain immediate; pairing is
	// the caller's responsibility
	ins, parsed := thumbIns(opcode, mnemonic)
	parsed.Args[0] = UImm(opcode & 0x07ff)
	return ins, parsed
}

func thumbUnconditionalBranch(opcode uint16) (Ins, ParsedIns) {
	// format 18 - Unconditional branch
	offset := int32(int16(opcode<<5)) >> 4

	ins, parsed := thumbIns(opcode, "b")
	parsed.Args[0] = BranchDest(offset + 4)
	return ins, parsed
}

func thumbSoftwareInterrupt(opcode uint16) (Ins, ParsedIns) {
	// format 17 - Software interrupt
	ins, parsed := thumbIns(opcode, "swi")
	parsed.Args[0] = UImm(opcode & 0x00ff)
	return ins, parsed
}

func thumbConditionalBranch(opcode uint16) (Ins, ParsedIns) {
	// format 16 - Conditional branch
	cond := Cond((opcode & 0x0f00) >> 8)
	if cond == AL {
		// the AL encoding of the conditional branch is undefined
		return thumbIllegal(opcode)
	}

	offset := int32(int8(opcode&0x00ff)) << 1

	ins, parsed := thumbIns(opcode, "b")
	ins.Cond = cond
	parsed.Cond = cond
	parsed.Args[0] = BranchDest(offset + 4)
	return ins, parsed
}

func thumbMultipleLoadStore(opcode uint16) (Ins, ParsedIns) {
	// format 15 - Multiple load/store
	load := opcode&0x0800 == 0x0800
	baseReg := Register((opcode & 0x0700) >> 8)
	list := RegList(opcode & 0x00ff)

	mnemonic := "stmia"
	if load {
		mnemonic = "ldmia"
	}

	ins, parsed := thumbIns(opcode, mnemonic)
	ins.loadsMultiple = load
	ins.regList = list
	ins.regListPC = list
	parsed.Args[0] = Reg{Reg: baseReg, WriteBack: true}
	parsed.Args[1] = list
	return ins, parsed
}

func thumbPushPopRegisters(opcode uint16) (Ins, ParsedIns) {
	// format 14 - Push/pop registers
	load := opcode&0x0800 == 0x0800
	rbit := opcode&0x0100 == 0x0100
	list := RegList(opcode & 0x00ff)

	mnemonic := "push"
	extended := list
	if load {
		mnemonic = "pop"
		if rbit {
			extended |= 1 << uint16(PC)
		}
	} else if rbit {
		extended |= 1 << uint16(LR)
	}

	ins, parsed := thumbIns(opcode, mnemonic)
	ins.loadsMultiple = load
	ins.regList = list
	ins.regListPC = extended
	parsed.Args[0] = extended
	return ins, parsed
}

func thumbBreakpoint(opcode uint16) (Ins, ParsedIns) {
	ins, parsed := thumbIns(opcode, "bkpt")
	parsed.Args[0] = UImm(opcode & 0x00ff)
	return ins, parsed
}

func thumbAddOffsetToSP(opcode uint16) (Ins, ParsedIns) {
	// format 13 - Add offset to stack pointer
	imm := int32(opcode&0x007f) << 2
	if opcode&0x0080 == 0x0080 {
		imm = -imm
	}

	ins, parsed := thumbIns(opcode, "add")
	parsed.Args[0] = Reg{Reg: SP}
	parsed.Args[1] = OffsetImm{Value: imm}
	return ins, parsed
}

func thumbLoadAddress(opcode uint16) (Ins, ParsedIns) {
	// format 12 - Load address
	sp := opcode&0x0800 == 0x0800
	destReg := Register((opcode & 0x0700) >> 8)
	imm := uint32(opcode&0x00ff) << 2

	base := PC
	if sp {
		base = SP
	}

	ins, parsed := thumbIns(opcode, "add")
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: base}
	parsed.Args[2] = UImm(imm)
	return ins, parsed
}

func thumbSPRelativeLoadStore(opcode uint16) (Ins, ParsedIns) {
	// format 11 - SP-relative load/store
	load := opcode&0x0800 == 0x0800
	destReg := Register((opcode & 0x0700) >> 8)
	offset := int32(opcode&0x00ff) << 2

	mnemonic := "str"
	if load {
		mnemonic = "ldr"
	}

	ins, parsed := thumbIns(opcode, mnemonic)
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: SP, Deref: true}
	parsed.Args[2] = OffsetImm{Value: offset}
	return ins, parsed
}

func thumbLoadStoreHalfword(opcode uint16) (Ins, ParsedIns) {
	// format 10 - Load/store halfword
	load := opcode&0x0800 == 0x0800
	offset := int32((opcode&0x07c0)>>6) << 1
	baseReg := Register((opcode & 0x0038) >> 3)
	destReg := Register(opcode & 0x0007)

	mnemonic := "strh"
	if load {
		mnemonic = "ldrh"
	}

	ins, parsed := thumbIns(opcode, mnemonic)
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: baseReg, Deref: true}
	parsed.Args[2] = OffsetImm{Value: offset}
	return ins, parsed
}

func thumbLoadStoreWithImmOffset(opcode uint16) (Ins, ParsedIns) {
	// format 9 - Load/store with immediate offset
	load := opcode&0x0800 == 0x0800
	byteTransfer := opcode&0x1000 == 0x1000
	offset := int32((opcode & 0x07c0) >> 6)
	baseReg := Register((opcode & 0x0038) >> 3)
	destReg := Register(opcode & 0x0007)

	var mnemonic string
	if load {
		mnemonic = "ldr"
	} else {
		mnemonic = "str"
	}
	if byteTransfer {
		mnemonic += "b"
	} else {
		offset <<= 2
	}

	ins, parsed := thumbIns(opcode, mnemonic)
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: baseReg, Deref: true}
	parsed.Args[2] = OffsetImm{Value: offset}
	return ins, parsed
}

func thumbLoadStoreSignExtended(opcode uint16) (Ins, ParsedIns) {
	// format 8 - Load/store sign-extended byte/halfword
	hbit := opcode&0x0800 == 0x0800
	sbit := opcode&0x0400 == 0x0400
	offsetReg := Register((opcode & 0x01c0) >> 6)
	baseReg := Register((opcode & 0x0038) >> 3)
	destReg := Register(opcode & 0x0007)

	var mnemonic string
	switch {
	case !sbit && !hbit:
		mnemonic = "strh"
	case sbit && !hbit:
		mnemonic = "ldsb"
	case !sbit && hbit:
		mnemonic = "ldrh"
	default:
		mnemonic = "ldsh"
	}

	ins, parsed := thumbIns(opcode, mnemonic)
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: baseReg, Deref: true}
	parsed.Args[2] = Reg{Reg: offsetReg, Deref: true}
	return ins, parsed
}

func thumbLoadStoreWithRegisterOffset(opcode uint16) (Ins, ParsedIns) {
	// format 7 - Load/store with register offset
	load := opcode&0x0800 == 0x0800
	byteTransfer := opcode&0x0400 == 0x0400
	offsetReg := Register((opcode & 0x01c0) >> 6)
	baseReg := Register((opcode & 0x0038) >> 3)
	destReg := Register(opcode & 0x0007)

	var mnemonic string
	if load {
		mnemonic = "ldr"
	} else {
		mnemonic = "str"
	}
	if byteTransfer {
		mnemonic += "b"
	}

	ins, parsed := thumbIns(opcode, mnemonic)
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: baseReg, Deref: true}
	parsed.Args[2] = Reg{Reg: offsetReg, Deref: true}
	return ins, parsed
}

func thumbPCRelativeLoad(opcode uint16) (Ins, ParsedIns) {
	// format 6 - PC-relative load
	destReg := Register((opcode & 0x0700) >> 8)
	offset := int32(opcode&0x00ff) << 2

	ins, parsed := thumbIns(opcode, "ldr")
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: PC, Deref: true}
	parsed.Args[2] = OffsetImm{Value: offset}
	return ins, parsed
}

func thumbHiRegisterOps(opcode uint16) (Ins, ParsedIns) {
	// format 5 - Hi register operations/branch exchange
	op := (opcode & 0x0300) >> 8
	h1 := opcode&0x0080 == 0x0080
	srcReg := Register((opcode & 0x0078) >> 3)
	destReg := Register(opcode & 0x0007)
	if h1 {
		destReg += 8
	}

	if op == 0b11 {
		mnemonic := "bx"
		if h1 {
			// h1 repurposed as the BLX flag (ARMv5T)
			mnemonic = "blx"
		}
		ins, parsed := thumbIns(opcode, mnemonic)
		parsed.Args[0] = Reg{Reg: srcReg}
		return ins, parsed
	}

	var mnemonic string
	switch op {
	case 0b00:
		mnemonic = "add"
	case 0b01:
		mnemonic = "cmp"
	case 0b10:
		mnemonic = "mov"
	}

	ins, parsed := thumbIns(opcode, mnemonic)
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: srcReg}
	return ins, parsed
}

func thumbALUOperations(opcode uint16) (Ins, ParsedIns) {
	// format 4 - ALU operations
	op := (opcode & 0x03c0) >> 6
	srcReg := Register((opcode & 0x0038) >> 3)
	destReg := Register(opcode & 0x0007)

	mnemonics := [16]string{
		"and", "eor", "lsl", "lsr", "asr", "adc", "sbc", "ror",
		"tst", "neg", "cmp", "cmn", "orr", "mul", "bic", "mvn",
	}

	ins, parsed := thumbIns(opcode, mnemonics[op])
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: srcReg}
	return ins, parsed
}

func thumbMovCmpAddSubImm(opcode uint16) (Ins, ParsedIns) {
	// format 3 - Move/compare/add/subtract immediate
	op := (opcode & 0x1800) >> 11
	destReg := Register((opcode & 0x0700) >> 8)
	imm := uint32(opcode & 0x00ff)

	mnemonics := [4]string{"mov", "cmp", "add", "sub"}

	ins, parsed := thumbIns(opcode, mnemonics[op])
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = UImm(imm)
	return ins, parsed
}

func thumbAddSubtract(opcode uint16) (Ins, ParsedIns) {
	// format 2 - Add/subtract
	imm := opcode&0x0400 == 0x0400
	sub := opcode&0x0200 == 0x0200
	field := (opcode & 0x01c0) >> 6
	srcReg := Register((opcode & 0x0038) >> 3)
	destReg := Register(opcode & 0x0007)

	mnemonic := "add"
	if sub {
		mnemonic = "sub"
	}

	ins, parsed := thumbIns(opcode, mnemonic)
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: srcReg}
	if imm {
		parsed.Args[2] = UImm(field)
	} else {
		parsed.Args[2] = Reg{Reg: Register(field)}
	}
	return ins, parsed
}

func thumbMoveShiftedRegister(opcode uint16) (Ins, ParsedIns) {
	// format 1 - Move shifted register
	op := (opcode & 0x1800) >> 11
	shift := uint32((opcode & 0x07c0) >> 6)
	srcReg := Register((opcode & 0x0038) >> 3)
	destReg := Register(opcode & 0x0007)

	mnemonics := [3]string{"lsl", "lsr", "asr"}

	ins, parsed := thumbIns(opcode, mnemonics[op])
	parsed.Args[0] = Reg{Reg: destReg}
	parsed.Args[1] = Reg{Reg: srcReg}
	parsed.Args[2] = UImm(shift)
	return ins, parsed
}
