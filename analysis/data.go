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
	"slices"

	"github.com/jetsetilly/dismantle/arm"
	"github.com/jetsetilly/dismantle/memorymap"
	"github.com/jetsetilly/dismantle/module"
	"github.com/jetsetilly/dismantle/relocation"
)

// Options controls the external-reference analysis.
type Options struct {
	// record calls to addresses outside every known module with a none
	// target instead of dropping them
	AllowUnknownFunctionCalls bool
}

// SymbolCandidate is one module section an external address may belong
// to.
type SymbolCandidate struct {
	ModuleIndex  int
	SectionIndex int
}

// ExternalSymbol is an address referenced by the analysed module, with the
// candidate sections it may belong to. The candidate list is never empty.
type ExternalSymbol struct {
	Address    uint32
	Candidates []SymbolCandidate
}

// RelocationResult is the outcome of analysing one module's external
// references.
type RelocationResult struct {
	Relocations     []relocation.Relocation
	ExternalSymbols []ExternalSymbol
}

// ExternalReferences walks the parsed functions of one module and
// produces the relocations for its direct calls and literal-pool loads.
//
// Every target address is resolved against the section ranges of every
// module in the program, the analysed module included. A target inside
// the analysed module itself still produces a relocation, with the
// module's own kind as the target, but no external symbol. A pool
// constant that resolves to no module is an ordinary constant and
// produces nothing; a call that resolves to no module is dropped or
// recorded with a none target, according to the options.
func ExternalReferences(modules []*module.Module, functions [][]*Function, moduleIndex int, opts Options) (RelocationResult, error) {
	var result RelocationResult

	// accumulated external symbols, de-duplicated by address
	seen := make(map[uint32]bool)

	resolve := func(addr uint32) ([]SymbolCandidate, []memorymap.ModuleKind) {
		var candidates []SymbolCandidate
		var kinds []memorymap.ModuleKind
		for i, m := range modules {
			sections := m.FindSections(addr)
			for _, s := range sections {
				candidates = append(candidates, SymbolCandidate{ModuleIndex: i, SectionIndex: s})
			}
			if len(sections) > 0 {
				kinds = append(kinds, m.Kind())
			}
		}
		return candidates, kinds
	}

	record := func(addr uint32, candidates []SymbolCandidate) {
		// a local target produces a relocation only. candidates in the
		// analysed module itself are not external; with those removed a
		// purely local target has nothing left to record
		external := candidates[:0:0]
		for _, c := range candidates {
			if c.ModuleIndex != moduleIndex {
				external = append(external, c)
			}
		}

		if len(external) == 0 || seen[addr] {
			return
		}
		seen[addr] = true
		result.ExternalSymbols = append(result.ExternalSymbols, ExternalSymbol{
			Address:    addr,
			Candidates: external,
		})
	}

	call := func(from uint32, to uint32, fromThumb bool, toThumb bool) {
		candidates, kinds := resolve(to)
		if len(kinds) == 0 && !opts.AllowUnknownFunctionCalls {
			return
		}
		target := relocation.TargetFromModules(kinds)
		result.Relocations = append(result.Relocations, relocation.NewCall(from, to, target, fromThumb, toThumb))
		record(to, candidates)
	}

	for _, fn := range functions[moduleIndex] {
		mode := arm.ModeARM
		if fn.IsThumb() {
			mode = arm.ModeThumb
		}

		// only the instructions up to the final return are walked. the
		// trailing literal pool is read through the pool loads that
		// reference it
		code := fn.Code()[:fn.CodeEndAddress()-fn.StartAddress()]
		parser := arm.NewParser(mode, fn.StartAddress(), code)

		// the first half of a Thumb BL/BLX pair, waiting for its second
		// half
		blAddress := uint32(0)
		blOffset := uint32(0)
		blPending := false

		for {
			addr, ins, parsed, ok := parser.Next()
			if !ok {
				break
			}

			if fn.IsThumb() {
				switch ins.Mnemonic {
				case "bl":
					if imm, ok := parsed.Args[0].(arm.UImm); ok {
						blAddress = addr
						blOffset = uint32(imm)
						blPending = true
					}
					continue
				case "blh":
					if imm, ok := parsed.Args[0].(arm.UImm); ok && blPending {
						dest := thumbLongBranchDestination(blAddress, blOffset, uint32(imm))
						call(blAddress, dest, true, true)
					}
					blPending = false
					continue
				case "blx":
					if imm, ok := parsed.Args[0].(arm.UImm); ok && blPending {
						// the BLX form always lands on an ARM word boundary
						dest := thumbLongBranchDestination(blAddress, blOffset, uint32(imm)) &^ 3
						call(blAddress, dest, true, false)
					}
					blPending = false
					continue
				}
				blPending = false
			} else {
				switch ins.Mnemonic {
				case "bl":
					if dest, ok := parsed.BranchDestination(); ok {
						call(addr, uint32(int32(addr)+dest), false, false)
					}
					continue
				case "blx":
					if dest, ok := parsed.BranchDestination(); ok {
						call(addr, uint32(int32(addr)+dest), false, true)
					}
					continue
				}
			}

			if pool, ok := poolLoad(ins, parsed, addr, fn.IsThumb()); ok {
				value, ok := readFunctionWord(fn, pool)
				if !ok {
					continue
				}

				candidates, kinds := resolve(value)
				if len(kinds) == 0 {
					// an ordinary constant, not an address
					continue
				}

				target := relocation.TargetFromModules(kinds)
				result.Relocations = append(result.Relocations, relocation.NewLoad(pool, value, target))
				record(value, candidates)
			}
		}
	}

	slices.SortFunc(result.Relocations, func(a, b relocation.Relocation) int {
		return int(int64(a.From) - int64(b.From))
	})

	return result, nil
}

// thumbLongBranchDestination combines the two halves of a Thumb BL/BLX
// pair. The high half carries bits 12-22 of the offset, sign-extended; the
// low half carries bits 1-11.
func thumbLongBranchDestination(blAddress uint32, high uint32, low uint32) uint32 {
	offset := int32(high<<21) >> 9 // sign-extended, high bits in place
	offset |= int32(low << 1)
	return uint32(int32(blAddress) + 4 + offset)
}

// readFunctionWord reads the 32-bit word at an address inside the
// function's code.
func readFunctionWord(fn *Function, addr uint32) (uint32, bool) {
	offset := addr - fn.StartAddress()
	code := fn.Code()
	if addr < fn.StartAddress() || offset+4 > uint32(len(code)) {
		return 0, false
	}
	return uint32(code[offset]) | uint32(code[offset+1])<<8 | uint32(code[offset+2])<<16 | uint32(code[offset+3])<<24, true
}
