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

// Package analysis finds the functions in a module's code and the
// references between modules.
//
// Function discovery is heuristic. A candidate address is accepted if its
// first instruction could plausibly begin a function (see
// IsValidFunctionStart) and the instruction stream from there reaches a
// return instruction. Whether a candidate is decoded as ARM or Thumb is
// decided by a crude four-byte test; when the guess is wrong the decode
// runs into an illegal instruction and discovery stops cleanly, it does
// not retry in the other mode.
//
// Return recognition has to see through conditional blocks. An if/else is
// emitted as forward branches, so a PC-setting instruction before the
// furthest forward branch target seen so far is the end of a conditional
// block, not of the function. Only a return at or past that target
// terminates the parse.
//
// The ExternalReferences() function walks a module's parsed functions and
// produces the relocations for its direct calls and literal-pool loads,
// resolving each target address against every module's section ranges. An
// address inside several overlays yields a candidate per overlay; the
// caller materialises those as ambiguous symbols.
package analysis
