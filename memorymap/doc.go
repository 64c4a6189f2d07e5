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

// Package memorymap names the parts of the target program's memory layout
// that every other package needs to agree on: the kinds of module that can
// own an address (the main binary, numbered overlays and the two
// tightly-coupled-memory autoloads) and the kinds of section found inside a
// module.
//
// The package sits at the bottom of the dependency graph. It defines names
// only and holds no state.
package memorymap
