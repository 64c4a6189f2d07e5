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

package module

import (
	"encoding/binary"

	"github.com/jetsetilly/dismantle/memorymap"
	"github.com/jetsetilly/dismantle/relocation"
)

// Section is a named, contiguous address range inside a module.
type Section struct {
	Name  string
	Kind  memorymap.SectionKind
	Start uint32
	End   uint32
}

// Contains returns true if the address lies in the section's half-open
// range.
func (s Section) Contains(addr uint32) bool {
	return addr >= s.Start && addr < s.End
}

// Size returns the number of bytes in the section.
func (s Section) Size() uint32 {
	return s.End - s.Start
}

// Module is one loadable module of the target program.
type Module struct {
	kind     memorymap.ModuleKind
	baseAddr uint32
	code     []byte
	sections []Section

	relocations *relocation.Table

	// DefaultDataPrefix and DefaultFuncPrefix are prepended to the hex
	// address when the analysis invents a name for a symbol in this module
	DefaultDataPrefix string
	DefaultFuncPrefix string
}

// NewModule is the preferred method of initialisation for the Module type.
// The code slice covers the module's sections, starting at the base
// address. bss sections have no bytes in the slice; they extend past the
// end of it.
func NewModule(kind memorymap.ModuleKind, baseAddr uint32, code []byte, sections []Section) *Module {
	return &Module{
		kind:              kind,
		baseAddr:          baseAddr,
		code:              code,
		sections:          sections,
		relocations:       relocation.NewTable(),
		DefaultDataPrefix: "data_",
		DefaultFuncPrefix: "func_",
	}
}

// Kind returns the module's kind.
func (m *Module) Kind() memorymap.ModuleKind {
	return m.kind
}

// BaseAddr returns the load address of the first byte of the module.
func (m *Module) BaseAddr() uint32 {
	return m.baseAddr
}

// Code returns the module's code bytes.
func (m *Module) Code() []byte {
	return m.code
}

// Sections returns the module's sections.
func (m *Module) Sections() []Section {
	return m.sections
}

// Relocations returns the module's relocation table.
func (m *Module) Relocations() *relocation.Table {
	return m.relocations
}

// FindSections returns the indices of the sections containing the address.
// Sections do not normally overlap so the list has at most one entry; a
// module with no section at the address returns an empty list.
func (m *Module) FindSections(addr uint32) []int {
	var indices []int
	for i, s := range m.sections {
		if s.Contains(addr) {
			indices = append(indices, i)
		}
	}
	return indices
}

// CodeAt returns the sub-slice of the module's code starting at the
// address. The second return value is false if the address is outside the
// code bytes.
func (m *Module) CodeAt(addr uint32) ([]byte, bool) {
	if addr < m.baseAddr || addr >= m.baseAddr+uint32(len(m.code)) {
		return nil, false
	}
	return m.code[addr-m.baseAddr:], true
}

// ReadWord returns the 32-bit little-endian word at the address. The
// second return value is false if the address is outside the code bytes.
func (m *Module) ReadWord(addr uint32) (uint32, bool) {
	c, ok := m.CodeAt(addr)
	if !ok || len(c) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(c), true
}
