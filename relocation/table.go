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

package relocation

import (
	"fmt"
	"slices"

	"github.com/jetsetilly/dismantle/logger"
)

// Table holds the relocations of one module, keyed and ordered by source
// address.
type Table struct {
	byFrom map[uint32]Relocation
	index  []uint32
	sorted bool
}

// NewTable is the preferred method of initialisation for the Table type.
func NewTable() *Table {
	return &Table{
		byFrom: make(map[uint32]Relocation),
	}
}

// Add inserts a relocation, keyed by its From address. Re-adding an
// identical relocation logs a warning and keeps the existing entry. A
// different relocation at an occupied address is a collision; collisions
// mean the upstream analysis produced two truths about one instruction,
// so the function panics with both.
func (t *Table) Add(r Relocation) {
	if e, ok := t.byFrom[r.From]; ok {
		if e.Equal(r) {
			logger.Logf(logger.Allow, "relocation",
				"relocation from 0x%08x to 0x%08x in %s is identical to existing one",
				r.From, r.To, r.Target)
			return
		}
		panic(fmt.Sprintf(
			"relocation from 0x%08x to 0x%08x in %s collides with existing one to 0x%08x in %s",
			r.From, r.To, r.Target, e.To, e.Target))
	}

	t.byFrom[r.From] = r
	t.index = append(t.index, r.From)
	t.sorted = false
}

// AddCall derives a call relocation from the thumb-ness of either side and
// inserts it.
func (t *Table) AddCall(from uint32, to uint32, target Target, fromThumb bool, toThumb bool) {
	t.Add(NewCall(from, to, target, fromThumb, toThumb))
}

// AddLoad inserts a load relocation.
func (t *Table) AddLoad(from uint32, to uint32, target Target) {
	t.Add(NewLoad(from, to, target))
}

// Extend inserts each relocation in the list.
func (t *Table) Extend(rs []Relocation) {
	for _, r := range rs {
		t.Add(r)
	}
}

// Get returns the relocation at a source address.
func (t *Table) Get(from uint32) (Relocation, bool) {
	r, ok := t.byFrom[from]
	return r, ok
}

// Len returns the number of relocations in the table.
func (t *Table) Len() int {
	return len(t.byFrom)
}

func (t *Table) sort() {
	if !t.sorted {
		slices.Sort(t.index)
		t.sorted = true
	}
}

// Iter returns the relocations of the table in ascending From order.
func (t *Table) Iter() []Relocation {
	t.sort()

	rs := make([]Relocation, 0, len(t.index))
	for _, from := range t.index {
		rs = append(rs, t.byFrom[from])
	}
	return rs
}

// IterRange returns the relocations with From in the half-open range
// [lo, hi), in ascending order.
func (t *Table) IterRange(lo uint32, hi uint32) []Relocation {
	t.sort()

	start, _ := slices.BinarySearch(t.index, lo)
	end, _ := slices.BinarySearch(t.index, hi)

	rs := make([]Relocation, 0, end-start)
	for _, from := range t.index[start:end] {
		rs = append(rs, t.byFrom[from])
	}
	return rs
}
