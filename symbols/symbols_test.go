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

package symbols_test

import (
	"testing"

	"github.com/jetsetilly/dismantle/curated"
	"github.com/jetsetilly/dismantle/memorymap"
	"github.com/jetsetilly/dismantle/symbols"
	"github.com/jetsetilly/dismantle/test"
)

func TestMapAccumulation(t *testing.T) {
	m := symbols.NewMap()

	test.ExpectSuccess(t, m.AddFunction("func_02000000", 0x02000000))
	test.ExpectSuccess(t, m.AddData("data_02000100", 0x02000100))
	test.ExpectSuccess(t, m.AddBss("bss_02000200", 0x02000200))

	sym, ok := m.ByAddress(0x02000100)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, sym.Name, "data_02000100")
	test.ExpectEquality(t, sym.Kind, symbols.Data)

	_, ok = m.ByAddress(0x02000300)
	test.ExpectFailure(t, ok)

	// re-adding an identical symbol is a no-op
	test.ExpectSuccess(t, m.AddData("data_02000100", 0x02000100))
	test.ExpectEquality(t, m.Len(), 3)

	// renaming or reclassifying an address is an error
	err := m.AddData("other", 0x02000100)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, symbols.Conflict))

	err = m.AddBss("data_02000100", 0x02000100)
	test.ExpectFailure(t, err)
}

func TestMapOrdering(t *testing.T) {
	m := symbols.NewMap()

	test.ExpectSuccess(t, m.AddData("c", 0x02000300))
	test.ExpectSuccess(t, m.AddData("a", 0x02000100))
	test.ExpectSuccess(t, m.AddData("b", 0x02000200))

	syms := m.Iter()
	test.ExpectEquality(t, len(syms), 3)
	test.ExpectEquality(t, syms[0].Name, "a")
	test.ExpectEquality(t, syms[1].Name, "b")
	test.ExpectEquality(t, syms[2].Name, "c")
}

func TestAmbiguousKinds(t *testing.T) {
	m := symbols.NewMap()

	test.ExpectSuccess(t, m.AddAmbiguousData("data_02100000", 0x02100000))
	test.ExpectSuccess(t, m.AddAmbiguousBss("bss_02100100", 0x02100100))

	sym, _ := m.ByAddress(0x02100000)
	test.ExpectEquality(t, sym.Kind, symbols.AmbiguousData)

	sym, _ = m.ByAddress(0x02100100)
	test.ExpectEquality(t, sym.Kind, symbols.AmbiguousBss)
}

// each module kind gets its own map
func TestMaps(t *testing.T) {
	maps := symbols.NewMaps()

	main := maps.Get(memorymap.Main)
	test.ExpectSuccess(t, main.AddFunction("entry", 0x02000000))

	// the same kind returns the same map
	test.ExpectEquality(t, maps.Get(memorymap.Main), main)

	// a different kind does not
	overlay := maps.Get(memorymap.Overlay(3))
	test.ExpectInequality(t, overlay, main)
	test.ExpectEquality(t, overlay.Len(), 0)

	// overlays are distinguished by ID
	test.ExpectInequality(t, maps.Get(memorymap.Overlay(4)), overlay)
}
