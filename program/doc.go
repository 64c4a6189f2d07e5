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

// Package program gathers the modules of the target program — the main
// module, its overlays and the autoloads — and drives whole-program
// analysis over them.
//
// The modules live in a single vector partitioned into three contiguous
// index ranges, in the order main, overlays, autoloads. Analysis proceeds
// in that order. The ExternalModules type presents the modules other than
// a focused one as a pair of slices either side of the focus index.
package program
