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

package module_test

import (
	"testing"

	"github.com/jetsetilly/dismantle/memorymap"
	"github.com/jetsetilly/dismantle/module"
	"github.com/jetsetilly/dismantle/test"
)

func TestSections(t *testing.T) {
	code := make([]byte, 0x20)
	code[0x10] = 0x78
	code[0x11] = 0x56
	code[0x12] = 0x34
	code[0x13] = 0x12

	m := module.NewModule(memorymap.Main, 0x02000000, code, []module.Section{
		{Name: ".text", Kind: memorymap.SectionCode, Start: 0x02000000, End: 0x02000010},
		{Name: ".data", Kind: memorymap.SectionData, Start: 0x02000010, End: 0x02000020},
		{Name: ".bss", Kind: memorymap.SectionBss, Start: 0x02000020, End: 0x02000040},
	})

	test.ExpectEquality(t, len(m.FindSections(0x02000008)), 1)
	test.ExpectEquality(t, m.FindSections(0x02000008)[0], 0)
	test.ExpectEquality(t, m.FindSections(0x02000030)[0], 2)
	test.ExpectEquality(t, len(m.FindSections(0x02000040)), 0)
	test.ExpectEquality(t, len(m.FindSections(0x01000000)), 0)

	// word reads are little-endian and address checked
	w, ok := m.ReadWord(0x02000010)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, w, uint32(0x12345678))

	_, ok = m.ReadWord(0x02000020)
	test.ExpectFailure(t, ok)

	c, ok := m.CodeAt(0x02000010)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, len(c), 0x10)
}
