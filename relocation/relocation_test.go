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

package relocation_test

import (
	"debug/elf"
	"testing"

	"github.com/jetsetilly/dismantle/memorymap"
	"github.com/jetsetilly/dismantle/relocation"
	"github.com/jetsetilly/dismantle/test"
)

// the call kind follows from which sides of the call are Thumb code
func TestCallKindDerivation(t *testing.T) {
	target := relocation.TargetMain()

	r := relocation.NewCall(0, 0, target, true, true)
	test.ExpectEquality(t, r.Kind, relocation.ThumbCall)

	r = relocation.NewCall(0, 0, target, true, false)
	test.ExpectEquality(t, r.Kind, relocation.ThumbCallArm)

	r = relocation.NewCall(0, 0, target, false, true)
	test.ExpectEquality(t, r.Kind, relocation.ArmCallThumb)

	r = relocation.NewCall(0, 0, target, false, false)
	test.ExpectEquality(t, r.Kind, relocation.ArmCall)
}

func TestELFTypes(t *testing.T) {
	test.ExpectEquality(t, relocation.ArmCall.ELFType(), elf.R_ARM_PC24)
	test.ExpectEquality(t, relocation.ThumbCall.ELFType(), elf.R_ARM_THM_PC22)
	test.ExpectEquality(t, relocation.ArmCallThumb.ELFType(), elf.R_ARM_XPC25)
	test.ExpectEquality(t, relocation.ThumbCallArm.ELFType(), elf.R_ARM_THM_XPC22)
	test.ExpectEquality(t, relocation.Load.ELFType(), elf.R_ARM_ABS32)
}

func TestSymbolClass(t *testing.T) {
	test.ExpectEquality(t, relocation.ArmCall.SymbolClass(), relocation.TextSymbol)
	test.ExpectEquality(t, relocation.ThumbCallArm.SymbolClass(), relocation.TextSymbol)
	test.ExpectEquality(t, relocation.Load.SymbolClass(), relocation.DataSymbol)
}

func TestTargetFromModules(t *testing.T) {
	// no candidates
	target := relocation.TargetFromModules(nil)
	test.ExpectSuccess(t, target.IsNone())

	// a single candidate of each kind
	target = relocation.TargetFromModules([]memorymap.ModuleKind{memorymap.Main})
	test.ExpectSuccess(t, target.Equal(relocation.TargetMain()))

	target = relocation.TargetFromModules([]memorymap.ModuleKind{memorymap.Autoload(memorymap.AutoloadITCM)})
	test.ExpectSuccess(t, target.Equal(relocation.TargetItcm()))

	target = relocation.TargetFromModules([]memorymap.ModuleKind{memorymap.Autoload(memorymap.AutoloadDTCM)})
	test.ExpectSuccess(t, target.Equal(relocation.TargetDtcm()))

	target = relocation.TargetFromModules([]memorymap.ModuleKind{memorymap.Overlay(7)})
	test.ExpectSuccess(t, target.Equal(relocation.TargetOverlay(7)))

	// multiple overlays
	target = relocation.TargetFromModules([]memorymap.ModuleKind{memorymap.Overlay(3), memorymap.Overlay(4)})
	test.ExpectSuccess(t, target.Equal(relocation.TargetOverlays([]uint16{3, 4})))
}

func expectPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	f()
}

// a multi-module target mixing non-overlay modules means the candidate
// search is broken
func TestTargetFromModulesInvariants(t *testing.T) {
	expectPanic(t, func() {
		relocation.TargetFromModules([]memorymap.ModuleKind{memorymap.Main, memorymap.Overlay(0)})
	})

	expectPanic(t, func() {
		relocation.TargetFromModules([]memorymap.ModuleKind{memorymap.Overlay(0), memorymap.Main})
	})

	// an unknown autoload is corrupt input
	expectPanic(t, func() {
		relocation.TargetFromModules([]memorymap.ModuleKind{memorymap.Autoload(memorymap.AutoloadUnknown)})
	})
}

func TestTargetModules(t *testing.T) {
	target := relocation.TargetOverlays([]uint16{3, 4, 5})

	first, ok := target.FirstModule()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, first, memorymap.Overlay(3))

	other := target.OtherModules()
	test.ExpectEquality(t, len(other), 2)
	test.ExpectEquality(t, other[0], memorymap.Overlay(4))
	test.ExpectEquality(t, other[1], memorymap.Overlay(5))

	_, ok = relocation.TargetNone().FirstModule()
	test.ExpectFailure(t, ok)
}

func TestTableOrdering(t *testing.T) {
	table := relocation.NewTable()
	table.AddLoad(0x02000020, 0x02000100, relocation.TargetMain())
	table.AddLoad(0x02000008, 0x02000104, relocation.TargetMain())
	table.AddCall(0x02000010, 0x02000000, relocation.TargetMain(), true, true)

	rs := table.Iter()
	test.ExpectEquality(t, len(rs), 3)
	test.ExpectEquality(t, rs[0].From, uint32(0x02000008))
	test.ExpectEquality(t, rs[1].From, uint32(0x02000010))
	test.ExpectEquality(t, rs[2].From, uint32(0x02000020))

	// the range is half-open
	rs = table.IterRange(0x02000008, 0x02000020)
	test.ExpectEquality(t, len(rs), 2)
	test.ExpectEquality(t, rs[0].From, uint32(0x02000008))
	test.ExpectEquality(t, rs[1].From, uint32(0x02000010))

	r, ok := table.Get(0x02000010)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, r.Kind, relocation.ThumbCall)
}

// re-adding an identical relocation leaves the table unchanged
func TestTableIdempotence(t *testing.T) {
	table := relocation.NewTable()

	r := relocation.NewLoad(0x02000008, 0x02000100, relocation.TargetOverlay(3))
	table.Add(r)
	table.Add(r)

	test.ExpectEquality(t, table.Len(), 1)
}

// a different relocation at an occupied address is a collision and panics
func TestTableCollision(t *testing.T) {
	table := relocation.NewTable()
	table.AddLoad(0x02000008, 0x02000100, relocation.TargetMain())

	expectPanic(t, func() {
		table.AddLoad(0x02000008, 0x02000104, relocation.TargetMain())
	})
}
