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

// Package symbols keeps track of the addresses named during analysis. Each
// module of the program has its own symbol Map; the Maps type gathers the
// per-module maps, keyed by module kind.
//
// Entries only accumulate. Adding an entry identical to an existing one is
// a no-op; adding a different entry at an occupied address is an error.
//
// An ambiguous symbol is one whose address lies inside the address range of
// more than one overlay. Each candidate module's map receives its own
// ambiguous entry; the entries remain in place until some later layer
// disambiguates them.
package symbols
