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

package arm_test

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/dismantle/arm"
	"github.com/jetsetilly/dismantle/test"
)

// decode a single Thumb halfword
func decodeThumb(t *testing.T, opcode uint16) (arm.Ins, arm.ParsedIns) {
	t.Helper()

	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], opcode)

	p := arm.NewParser(arm.ModeThumb, 0, b[:])
	_, ins, parsed, ok := p.Next()
	test.ExpectSuccess(t, ok)

	return ins, parsed
}

func TestThumbMoveShiftedRegister(t *testing.T) {
	// lsl r1, r1, #0
	_, parsed := decodeThumb(t, 0x0009)
	test.ExpectEquality(t, parsed.Mnemonic, "lsl")
	test.ExpectEquality(t, parsed.Args[0].(arm.Reg).Reg, arm.R1)
	test.ExpectEquality(t, parsed.Args[1].(arm.Reg).Reg, arm.R1)
	test.ExpectEquality(t, parsed.Args[2].(arm.UImm), arm.UImm(0))

	// lsl r2, r0, #8
	_, parsed = decodeThumb(t, 0x0202)
	test.ExpectEquality(t, parsed.Mnemonic, "lsl")
	test.ExpectEquality(t, parsed.Args[0].(arm.Reg).Reg, arm.R2)
	test.ExpectEquality(t, parsed.Args[1].(arm.Reg).Reg, arm.R0)
	test.ExpectEquality(t, parsed.Args[2].(arm.UImm), arm.UImm(8))
}

func TestThumbHiRegisterOps(t *testing.T) {
	// mov r3, r3
	_, parsed := decodeThumb(t, 0x461b)
	test.ExpectEquality(t, parsed.Mnemonic, "mov")
	test.ExpectEquality(t, parsed.Args[0].(arm.Reg).Reg, arm.R3)
	test.ExpectEquality(t, parsed.Args[1].(arm.Reg).Reg, arm.R3)

	// mov r3, r4
	_, parsed = decodeThumb(t, 0x4623)
	test.ExpectEquality(t, parsed.Args[0].(arm.Reg).Reg, arm.R3)
	test.ExpectEquality(t, parsed.Args[1].(arm.Reg).Reg, arm.R4)

	// bx lr
	ins, parsed := decodeThumb(t, 0x4770)
	test.ExpectEquality(t, parsed.Mnemonic, "bx")
	test.ExpectEquality(t, parsed.Args[0].(arm.Reg).Reg, arm.LR)
	test.ExpectFailure(t, ins.IsConditional())
}

func TestThumbLoads(t *testing.T) {
	// ldr r0, [r5]
	_, parsed := decodeThumb(t, 0x6828)
	test.ExpectEquality(t, parsed.Mnemonic, "ldr")
	test.ExpectEquality(t, parsed.Args[0].(arm.Reg).Reg, arm.R0)
	test.ExpectEquality(t, parsed.Args[1].(arm.Reg).Reg, arm.R5)
	test.ExpectSuccess(t, parsed.Args[1].(arm.Reg).Deref)

	// ldr r0, [sp, #4]
	_, parsed = decodeThumb(t, 0x9801)
	test.ExpectEquality(t, parsed.Mnemonic, "ldr")
	test.ExpectEquality(t, parsed.Args[1].(arm.Reg).Reg, arm.SP)
	test.ExpectEquality(t, parsed.Args[2].(arm.OffsetImm).Value, int32(4))

	// ldr r1, [pc, #4]
	_, parsed = decodeThumb(t, 0x4901)
	test.ExpectEquality(t, parsed.Mnemonic, "ldr")
	test.ExpectEquality(t, parsed.Args[0].(arm.Reg).Reg, arm.R1)
	test.ExpectEquality(t, parsed.Args[1].(arm.Reg).Reg, arm.PC)
	test.ExpectEquality(t, parsed.Args[2].(arm.OffsetImm).Value, int32(4))
}

func TestThumbBranches(t *testing.T) {
	// b .+8 (offset field of 2)
	ins, parsed := decodeThumb(t, 0xe002)
	test.ExpectEquality(t, parsed.Mnemonic, "b")
	test.ExpectFailure(t, ins.IsConditional())
	dest, ok := parsed.BranchDestination()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, dest, int32(8))

	// bne .-2 (offset field of -3)
	ins, parsed = decodeThumb(t, 0xd1fd)
	test.ExpectEquality(t, parsed.Mnemonic, "b")
	test.ExpectEquality(t, ins.Cond, arm.NE)
	test.ExpectSuccess(t, ins.IsConditional())
	dest, ok = parsed.BranchDestination()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, dest, int32(-2))

	// the AL conditional branch encoding is undefined
	ins, _ = decodeThumb(t, 0xde00)
	test.ExpectSuccess(t, ins.IsIllegal())

	// lone BL halves decode but name themselves as halves
	_, parsed = decodeThumb(t, 0xf000)
	test.ExpectEquality(t, parsed.Mnemonic, "bl")
	_, parsed = decodeThumb(t, 0xf800)
	test.ExpectEquality(t, parsed.Mnemonic, "blh")
}

func TestThumbPushPop(t *testing.T) {
	// pop {pc} (R bit set, empty list)
	ins, _ := decodeThumb(t, 0xbd00)
	test.ExpectEquality(t, ins.Mnemonic, "pop")
	test.ExpectSuccess(t, ins.LoadsMultiple())
	test.ExpectFailure(t, ins.RegisterList().Contains(arm.PC))
	test.ExpectSuccess(t, ins.RegisterListPC().Contains(arm.PC))

	// pop {r4, r5}
	ins, _ = decodeThumb(t, 0xbc30)
	test.ExpectSuccess(t, ins.RegisterList().Contains(arm.R4))
	test.ExpectFailure(t, ins.RegisterListPC().Contains(arm.PC))

	// push {r4, lr}
	ins, _ = decodeThumb(t, 0xb510)
	test.ExpectEquality(t, ins.Mnemonic, "push")
	test.ExpectFailure(t, ins.LoadsMultiple())
	test.ExpectSuccess(t, ins.RegisterListPC().Contains(arm.LR))

	// ldmia r2!, {r0, r1}
	ins, parsed := decodeThumb(t, 0xca03)
	test.ExpectEquality(t, ins.Mnemonic, "ldmia")
	test.ExpectSuccess(t, ins.LoadsMultiple())
	test.ExpectEquality(t, parsed.Args[0].(arm.Reg).Reg, arm.R2)
	test.ExpectSuccess(t, ins.RegisterList().Contains(arm.R0))
}

func TestThumbUndefined(t *testing.T) {
	// a gap in the miscellaneous space
	ins, parsed := decodeThumb(t, 0xb100)
	test.ExpectSuccess(t, ins.IsIllegal())
	test.ExpectSuccess(t, parsed.IsIllegal())
}
