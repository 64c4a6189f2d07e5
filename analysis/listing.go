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

package analysis

import (
	"fmt"
	"io"

	"github.com/jetsetilly/dismantle/arm"
	"github.com/jetsetilly/dismantle/symbols"
)

// WriteAssembly writes the function as an assembly listing. Internal
// labels are written in place and the bytes after the final return
// instruction are written as data words.
//
// Branch and pool-load operands are rendered by name where one is known:
// the function's own labels first, then the module's symbol map. A nil
// symbol map is allowed; operands then fall back to their numeric form.
func (fn *Function) WriteAssembly(w io.Writer, symbolMap *symbols.Map) error {
	mode := arm.ModeARM
	funcStart := "arm_func_start"
	funcEnd := "arm_func_end"
	if fn.thumb {
		mode = arm.ModeThumb
		funcStart = "thumb_func_start"
		funcEnd = "thumb_func_end"
	}

	parser := arm.NewParser(mode, fn.startAddress, fn.code)

	write := func(format string, args ...any) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	}

	lookup := func(addr uint32) (string, bool) {
		if label, ok := fn.labels[addr]; ok {
			return label, true
		}
		if symbolMap != nil {
			if sym, ok := symbolMap.ByAddress(addr); ok {
				return sym.Name, true
			}
		}
		return "", false
	}

	if err := write("    .global %s\n", fn.name); err != nil {
		return err
	}
	if err := write("    %s %s\n", funcStart, fn.name); err != nil {
		return err
	}
	if err := write("%s: ; 0x%08x\n", fn.name, fn.startAddress); err != nil {
		return err
	}

	for {
		addr, ins, parsed, ok := parser.Next()
		if !ok {
			break
		}

		if label, ok := fn.labels[addr]; ok {
			if err := write("%s:\n", label); err != nil {
				return err
			}
		}

		if parser.Mode == arm.ModeData {
			var err error
			if ins.Mnemonic == ".hword" {
				err = write("    .hword 0x%04x\n", ins.Code())
			} else {
				err = write("    .word 0x%08x\n", ins.Code())
			}
			if err != nil {
				return err
			}
		} else {
			line := parsed.String()

			if dest, ok := parsed.BranchDestination(); ok {
				if name, ok := lookup(uint32(int32(addr) + dest)); ok {
					line = fmt.Sprintf("%s%s %s", parsed.Mnemonic, parsed.Cond.Suffix(), name)
				}
			} else if pool, ok := poolLoad(ins, parsed, addr, fn.thumb); ok {
				if name, ok := lookup(pool); ok {
					line = fmt.Sprintf("%s %s, %s", parsed.Mnemonic, parsed.Args[0], name)
				}
			}

			if err := write("    %s\n", line); err != nil {
				return err
			}
		}

		if addr+parser.Mode.InstructionSize(addr) >= fn.codeEndAddress {
			parser.Mode = arm.ModeData
		}
	}

	return write("    %s %s\n", funcEnd, fn.name)
}
