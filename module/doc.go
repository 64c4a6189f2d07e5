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

// Package module describes one loadable module of the target program: its
// kind, its code bytes, the sections inside it and the relocation table the
// analysis accumulates for it.
//
// A module owns its code bytes. Everything derived from a module — parsed
// functions in particular — refers to sub-slices of those bytes and never
// copies them.
package module
