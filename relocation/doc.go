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

// Package relocation models the references between modules that the
// analysis discovers: PC-relative calls and absolute loads, tagged with the
// module or modules the target address belongs to.
//
// A target of more than one module is permitted only when every candidate
// is an overlay. Overlays share an address range so a bare address genuinely
// can belong to several of them; any other combination means the upstream
// analysis is broken and is treated as such.
//
// The Table type holds the relocations of one module, ordered by source
// address. Tables can be written to and read from a text file, one
// relocation per line. See ReadFile() and WriteFile() for the format.
package relocation
