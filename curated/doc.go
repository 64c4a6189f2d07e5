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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The Is() function can be used to check whether an error was created with a
// specific pattern. The Has() function is similar but checks whether the
// pattern occurs somewhere in the error chain. For example:
//
//	e := curated.Errorf("relocation: %v", err)
//
//	if curated.Is(e, "relocation: %v") {
//		fmt.Println("true")
//	}
//
// Packages in this project declare the patterns they return as exported
// string constants, next to the functions that return them. Callers that
// care about a specific failure compare with Is() or Has() against those
// constants.
//
// The IsAny() function answers whether the error was created by
// curated.Errorf() at all. An uncurated error reaching the top of the
// program indicates an unexpected failure.
//
// The Error() function implementation normalises the error chain so that
// adjacent duplicate message parts are not repeated.
package curated
