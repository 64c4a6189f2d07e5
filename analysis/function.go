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

	"github.com/jetsetilly/dismantle/arm"
	"github.com/jetsetilly/dismantle/curated"
	"github.com/jetsetilly/dismantle/logger"
	"github.com/jetsetilly/dismantle/symbols"
)

// Function is a contiguous span of code ending in a return instruction.
// Functions are immutable once parsed.
type Function struct {
	name string

	startAddress uint32

	// endAddress is the first byte past the function, including any
	// trailing literal pool, and is aligned up to four bytes. the
	// codeEndAddress is the first byte past the final return instruction
	// and may be smaller
	endAddress     uint32
	codeEndAddress uint32

	thumb bool

	// labels names the addresses inside the function that are branched to
	// or loaded from
	labels map[uint32]string

	// the function's view of the module's code bytes. the slice is not a
	// copy
	code []byte
}

// Sentinel error patterns for function parsing.
const (
	IllegalInstruction = "function: illegal instruction in %s"
	NoReturn           = "function: no return instruction found for %s"
)

// Name returns the function's name.
func (fn *Function) Name() string {
	return fn.name
}

// StartAddress returns the address of the function's first instruction.
func (fn *Function) StartAddress() uint32 {
	return fn.startAddress
}

// EndAddress returns the first address past the function, including any
// trailing literal pool. It is always a multiple of four.
func (fn *Function) EndAddress() uint32 {
	return fn.endAddress
}

// CodeEndAddress returns the first address past the final return
// instruction.
func (fn *Function) CodeEndAddress() uint32 {
	return fn.codeEndAddress
}

// IsThumb returns true if the function is Thumb code.
func (fn *Function) IsThumb() bool {
	return fn.thumb
}

// Size returns the number of bytes covered by the function.
func (fn *Function) Size() uint32 {
	return fn.endAddress - fn.startAddress
}

// Labels returns the function's internal labels, keyed by address.
func (fn *Function) Labels() map[uint32]string {
	return fn.labels
}

// Label returns the label at an address.
func (fn *Function) Label(addr uint32) (string, bool) {
	l, ok := fn.labels[addr]
	return l, ok
}

// Code returns the function's code bytes, including any trailing literal
// pool.
func (fn *Function) Code() []byte {
	return fn.code
}

// isThumbFunction guesses the decoding mode of the code at a candidate
// function start. The test is intentionally crude: an ARM function in
// practice begins with an instruction in the AL condition, so a fourth
// byte with a 0xe high nibble means ARM. A wrong guess is tolerated by the
// parser meeting an illegal decode and abandoning the function.
func isThumbFunction(code []byte) bool {
	if len(code) < 4 {
		// can't contain a full ARM instruction
		return true
	}
	return code[3]&0xf0 != 0xe0
}

// isReturn recognises the unconditional instruction forms that return from
// a function.
func isReturn(ins arm.Ins, parsed arm.ParsedIns) bool {
	if ins.IsConditional() {
		return false
	}

	if ins.Mnemonic == "bx" {
		// bx *
		return true
	}

	if ins.Mnemonic == "mov" {
		// mov pc, *
		regs := parsed.Registers()
		return len(regs) > 0 && regs[0] == arm.PC
	}

	if ins.LoadsMultiple() {
		// PC can't appear in the plain register list of a Thumb pop, hence
		// the difference between RegisterList() and RegisterListPC()
		if len(ins.Mnemonic) >= 3 && ins.Mnemonic[:3] == "ldm" && ins.RegisterList().Contains(arm.PC) {
			// ldm* *, {..., pc}
			return true
		}
		if ins.Mnemonic == "pop" && ins.RegisterListPC().Contains(arm.PC) {
			// pop {..., pc}
			return true
		}
	}

	return false
}

// branchDestination returns the absolute destination of a plain branch
// instruction. Conditional branches count; branch-and-link does not.
func branchDestination(_ arm.Ins, parsed arm.ParsedIns, addr uint32) (uint32, bool) {
	if parsed.Mnemonic != "b" {
		return 0, false
	}
	dest, ok := parsed.BranchDestination()
	if !ok {
		return 0, false
	}
	return uint32(int32(addr) + dest), true
}

// poolLoad returns the address of the literal pool constant read by a
// PC-relative load.
func poolLoad(_ arm.Ins, parsed arm.ParsedIns, addr uint32, thumb bool) (uint32, bool) {
	if parsed.Mnemonic != "ldr" {
		return 0, false
	}

	dest, ok := parsed.Args[0].(arm.Reg)
	if !ok || dest.Reg == arm.PC {
		return 0, false
	}
	base, ok := parsed.Args[1].(arm.Reg)
	if !ok || !base.Deref || base.Reg != arm.PC {
		return 0, false
	}
	offset, ok := parsed.Args[2].(arm.OffsetImm)
	if !ok || offset.PostIndexed {
		return 0, false
	}

	// ldr *, [pc, *]
	loadAddress := uint32(int32(addr) + offset.Value)
	if thumb {
		// the Thumb PC reads as the aligned address of the instruction
		// plus four
		loadAddress = alignUp(loadAddress+1, 4)
	} else {
		loadAddress += 8
	}
	return loadAddress, true
}

func alignUp(v uint32, m uint32) uint32 {
	return (v + m - 1) &^ (m - 1)
}

// labelName generates the name for an internal label.
func labelName(addr uint32) string {
	return fmt.Sprintf("_%08x", addr)
}

// ParseFunction walks the instruction stream from the start address to the
// function's final return instruction. The code slice begins at the start
// address and extends at least to the end of the function.
//
// The walk keeps two high-water marks. The furthest forward branch target
// seen so far separates "inside a conditional block" from "past every
// conditional block": a return instruction before that target does not
// terminate the function. The furthest literal pool address extends the
// function past its final return to cover trailing pool constants.
func ParseFunction(name string, startAddress uint32, thumb bool, parser *arm.Parser, code []byte) (*Function, error) {
	labels := make(map[uint32]string)

	var codeEndAddress uint32

	// address of the furthest conditional code, so we can detect the final
	// return instruction
	var lastConditionalDestination uint32

	// address of the furthest pool constant, to get the function's true
	// end address
	var lastPoolAddress uint32

	for {
		addr, ins, parsed, ok := parser.Next()
		if !ok {
			return nil, curated.Errorf(NoReturn, name)
		}

		if ins.IsIllegal() || parsed.IsIllegal() {
			logger.Logf(logger.Allow, "analysis", "%s", name)
			logger.Logf(logger.Allow, "analysis", "%#x: %08x  %s", addr, ins.Code(), parsed)
			return nil, curated.Errorf(IllegalInstruction, name)
		}

		if addr >= lastConditionalDestination && isReturn(ins, parsed) {
			// we're not inside a conditional code block, so this is the
			// final return instruction
			codeEndAddress = addr + parser.Mode.InstructionSize(addr)
			break
		}

		if dest, ok := branchDestination(ins, parsed, addr); ok {
			labels[dest] = labelName(dest)
			lastConditionalDestination = max(lastConditionalDestination, dest)
		}

		if pool, ok := poolLoad(ins, parsed, addr, thumb); ok {
			labels[pool] = labelName(pool)
			lastPoolAddress = max(lastPoolAddress, pool)
		}
	}

	endAddress := codeEndAddress
	if lastPoolAddress != 0 {
		endAddress = max(endAddress, lastPoolAddress+4)
	}
	endAddress = alignUp(endAddress, 4)

	size := endAddress - startAddress

	return &Function{
		name:           name,
		startAddress:   startAddress,
		endAddress:     endAddress,
		codeEndAddress: codeEndAddress,
		thumb:          thumb,
		labels:         labels,
		code:           code[:size],
	}, nil
}

// FindOptions restricts FindFunctions to part of the code region. The zero
// value places no restrictions.
type FindOptions struct {
	// discovery range. a zero StartAddress means the base address; a zero
	// EndAddress means the end of the code
	StartAddress uint32
	EndAddress   uint32

	// maximum number of functions to discover. zero means no limit
	MaxFunctions int
}

// FindFunctions iterates over a code region, parsing one function after
// another. Newly discovered functions are registered in the symbol map;
// functions already named in the map keep their name.
//
// Discovery stops at the end of the region, after MaxFunctions functions,
// or at the first parse failure.
func FindFunctions(code []byte, baseAddr uint32, defaultNamePrefix string, symbolMap *symbols.Map, opts FindOptions) []*Function {
	var functions []*Function

	startOffset := uint32(0)
	if opts.StartAddress != 0 {
		startOffset = opts.StartAddress - baseAddr
	}
	endOffset := uint32(len(code))
	if opts.EndAddress != 0 {
		endOffset = opts.EndAddress - baseAddr
	}

	startAddress := baseAddr + startOffset
	code = code[startOffset:endOffset]

	for len(code) > 0 && (opts.MaxFunctions == 0 || len(functions) < opts.MaxFunctions) {
		thumb := isThumbFunction(code)

		mode := arm.ModeARM
		if thumb {
			mode = arm.ModeThumb
		}
		// the candidate's first instruction must look like a function start
		// before any parsing happens
		peek := arm.NewParser(mode, startAddress, code)
		if addr, ins, parsed, ok := peek.Next(); !ok || !IsValidFunctionStart(addr, ins, parsed) {
			logger.Logf(logger.Allow, "analysis", "0x%08x is not a valid function start", startAddress)
			break
		}

		parser := arm.NewParser(mode, startAddress, code)

		var name string
		var new bool
		if sym, ok := symbolMap.ByAddress(startAddress); ok {
			name = sym.Name
		} else {
			name = fmt.Sprintf("%s%08x", defaultNamePrefix, startAddress)
			new = true
		}

		fn, err := ParseFunction(name, startAddress, thumb, parser, code)
		if err != nil {
			logger.Log(logger.Allow, "analysis", err)
			break
		}

		if new {
			if err := symbolMap.AddFunction(fn.name, fn.startAddress); err != nil {
				logger.Log(logger.Allow, "analysis", err)
			}
		}

		startAddress = fn.endAddress
		code = code[fn.Size():]

		functions = append(functions, fn)
	}

	return functions
}
