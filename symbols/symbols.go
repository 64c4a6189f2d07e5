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

package symbols

import (
	"slices"

	"github.com/jetsetilly/dismantle/curated"
	"github.com/jetsetilly/dismantle/memorymap"
)

// Kind classifies a symbol Map entry.
type Kind int

// List of valid Kind values. The ambiguous kinds mark symbols whose address
// lies in more than one overlay.
const (
	Function Kind = iota
	Data
	Bss
	AmbiguousData
	AmbiguousBss
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case Data:
		return "data"
	case Bss:
		return "bss"
	case AmbiguousData:
		return "ambiguous data"
	case AmbiguousBss:
		return "ambiguous bss"
	}
	panic("unknown symbol Kind")
}

// Symbol is one entry in a Map.
type Symbol struct {
	Name    string
	Address uint32
	Kind    Kind

	// Size is zero when unknown. bss symbols in particular have no size
	// until a later layer measures them
	Size uint32
}

// Conflict is the error pattern returned when an address is renamed or
// reclassified.
const Conflict = "symbols: %s symbol at 0x%08x conflicts with existing %s symbol '%s'"

// Map records the symbols of a single module, indexed by address.
type Map struct {
	byAddr map[uint32]Symbol
	index  []uint32
	sorted bool
}

// NewMap is the preferred method of initialisation for the Map type.
func NewMap() *Map {
	return &Map{
		byAddr: make(map[uint32]Symbol),
	}
}

// ByAddress returns the symbol at an address.
func (m *Map) ByAddress(addr uint32) (Symbol, bool) {
	s, ok := m.byAddr[addr]
	return s, ok
}

// Len returns the number of symbols in the map.
func (m *Map) Len() int {
	return len(m.byAddr)
}

func (m *Map) add(s Symbol) error {
	if e, ok := m.byAddr[s.Address]; ok {
		if e == s {
			// accumulation is monotone. re-adding an identical symbol is
			// not an error
			return nil
		}
		return curated.Errorf(Conflict, s.Kind, s.Address, e.Kind, e.Name)
	}

	m.byAddr[s.Address] = s
	m.index = append(m.index, s.Address)
	m.sorted = false
	return nil
}

// AddFunction adds a function symbol.
func (m *Map) AddFunction(name string, addr uint32) error {
	return m.add(Symbol{Name: name, Address: addr, Kind: Function})
}

// AddData adds a data symbol.
func (m *Map) AddData(name string, addr uint32) error {
	return m.add(Symbol{Name: name, Address: addr, Kind: Data})
}

// AddBss adds a bss symbol of unknown size.
func (m *Map) AddBss(name string, addr uint32) error {
	return m.add(Symbol{Name: name, Address: addr, Kind: Bss})
}

// AddAmbiguousData adds a data symbol that may belong to another overlay.
func (m *Map) AddAmbiguousData(name string, addr uint32) error {
	return m.add(Symbol{Name: name, Address: addr, Kind: AmbiguousData})
}

// AddAmbiguousBss adds a bss symbol that may belong to another overlay.
func (m *Map) AddAmbiguousBss(name string, addr uint32) error {
	return m.add(Symbol{Name: name, Address: addr, Kind: AmbiguousBss})
}

// Iter returns the symbols of the map in ascending address order.
func (m *Map) Iter() []Symbol {
	if !m.sorted {
		slices.Sort(m.index)
		m.sorted = true
	}

	s := make([]Symbol, 0, len(m.index))
	for _, addr := range m.index {
		s = append(s, m.byAddr[addr])
	}
	return s
}

// Maps gathers the symbol maps of every module in the program, keyed by
// module kind.
type Maps struct {
	maps map[memorymap.ModuleKind]*Map
}

// NewMaps is the preferred method of initialisation for the Maps type.
func NewMaps() *Maps {
	return &Maps{
		maps: make(map[memorymap.ModuleKind]*Map),
	}
}

// Get returns the symbol map for a module kind, creating it if necessary.
func (m *Maps) Get(kind memorymap.ModuleKind) *Map {
	sm, ok := m.maps[kind]
	if !ok {
		sm = NewMap()
		m.maps[kind] = sm
	}
	return sm
}
