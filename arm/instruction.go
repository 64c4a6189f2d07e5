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

package arm

import (
	"fmt"
	"strings"
)

// Argument is one entry in the argument list of a ParsedIns. The concrete
// types are Reg, UImm, OffsetImm, RegList and BranchDest. An unused slot is
// nil.
type Argument interface {
	fmt.Stringer

	// sealed. the analysis packages switch over the concrete types and a
	// new implementation would silently fall through those switches.
	argument()
}

// Reg is a register argument. Deref is true when the register appears
// inside the brackets of an address operand. WriteBack is true when the
// register is followed by the writeback marker.
type Reg struct {
	Reg       Register
	Deref     bool
	WriteBack bool
}

func (a Reg) argument() {}

func (a Reg) String() string {
	if a.WriteBack && !a.Deref {
		return fmt.Sprintf("%s!", a.Reg)
	}
	return a.Reg.String()
}

// UImm is an unsigned immediate argument.
type UImm uint32

func (a UImm) argument() {}

func (a UImm) String() string {
	return fmt.Sprintf("#0x%x", uint32(a))
}

// OffsetImm is a signed immediate offset in an address operand.
type OffsetImm struct {
	Value       int32
	PostIndexed bool
}

func (a OffsetImm) argument() {}

func (a OffsetImm) String() string {
	if a.Value < 0 {
		return fmt.Sprintf("#-0x%x", -a.Value)
	}
	return fmt.Sprintf("#0x%x", a.Value)
}

// RegList is the register list of a block transfer instruction. Bit N of
// the mask is register N.
type RegList uint16

func (a RegList) argument() {}

// Contains returns true if the register is in the list.
func (a RegList) Contains(r Register) bool {
	return a&(1<<uint16(r)) != 0
}

func (a RegList) String() string {
	s := strings.Builder{}
	s.WriteString("{")
	comma := false
	for r := R0; r <= PC; r++ {
		if a.Contains(r) {
			if comma {
				s.WriteString(", ")
			}
			s.WriteString(r.String())
			comma = true
		}
	}
	s.WriteString("}")
	return s.String()
}

// BranchDest is the destination of a branch instruction, relative to the
// address of the instruction. The prefetch offset (8 for ARM, 4 for Thumb)
// is included in the value.
type BranchDest int32

func (a BranchDest) argument() {}

func (a BranchDest) String() string {
	if a < 0 {
		return fmt.Sprintf(".-0x%x", -int32(a))
	}
	return fmt.Sprintf(".+0x%x", int32(a))
}

// Ins is the opcode-level view of a decoded instruction.
type Ins struct {
	Mode ParseMode
	Raw  uint32
	Cond Cond

	// mnemonic without any condition suffix
	Mnemonic string

	// the word could not be decoded in the selected mode
	Illegal bool

	loadsMultiple bool

	// regList is the plain register list of a block transfer instruction.
	// regListPC extends the list with the registers implied by the
	// instruction: PC for pop and LR for push. the two are identical in ARM
	// mode.
	regList   RegList
	regListPC RegList
}

// HasCond returns true if the instruction encoding has a condition field.
func (i Ins) HasCond() bool {
	return i.Mode == ModeARM
}

// ModifierCond returns the condition under which the instruction executes.
func (i Ins) ModifierCond() Cond {
	return i.Cond
}

// IsConditional returns true if execution of the instruction depends on the
// status flags.
func (i Ins) IsConditional() bool {
	return i.Cond.Conditional()
}

// LoadsMultiple returns true for the LDM class of instruction, including
// pop.
func (i Ins) LoadsMultiple() bool {
	return i.loadsMultiple
}

// RegisterList returns the plain register list of a block transfer
// instruction.
func (i Ins) RegisterList() RegList {
	return i.regList
}

// RegisterListPC returns the register list extended with the registers the
// instruction implies. PC cannot appear in the plain list of a Thumb pop;
// it appears in the extended list when the R bit is set.
func (i Ins) RegisterListPC() RegList {
	return i.regListPC
}

// Code returns the raw opcode word.
func (i Ins) Code() uint32 {
	return i.Raw
}

// IsIllegal returns true if the word could not be decoded.
func (i Ins) IsIllegal() bool {
	return i.Illegal
}

// ParsedIns is the argument-level view of a decoded instruction.
type ParsedIns struct {
	Mnemonic string
	Cond     Cond
	Args     [4]Argument
	Illegal  bool
}

// IsIllegal returns true if the parse failed.
func (p ParsedIns) IsIllegal() bool {
	return p.Illegal
}

// BranchDestination returns the relative destination of a branch
// instruction and true if the instruction has one.
func (p ParsedIns) BranchDestination() (int32, bool) {
	for _, a := range p.Args {
		if d, ok := a.(BranchDest); ok {
			return int32(d), true
		}
	}
	return 0, false
}

// Registers returns the register arguments of the instruction in argument
// order. Registers inside address brackets are included.
func (p ParsedIns) Registers() []Register {
	var regs []Register
	for _, a := range p.Args {
		if r, ok := a.(Reg); ok {
			regs = append(regs, r.Reg)
		}
	}
	return regs
}

// String returns the instruction in assembly form.
func (p ParsedIns) String() string {
	s := strings.Builder{}
	s.WriteString(p.Mnemonic)
	s.WriteString(p.Cond.Suffix())

	bracket := false
	comma := false
	for _, a := range p.Args {
		if a == nil {
			break
		}

		r, isReg := a.(Reg)
		o, isOffset := a.(OffsetImm)

		// a post-indexed offset closes the bracket before it is written
		if bracket && isOffset && o.PostIndexed {
			s.WriteString("]")
			bracket = false
		}

		if comma {
			s.WriteString(", ")
		} else {
			s.WriteString(" ")
		}
		comma = true

		if isReg && r.Deref && !bracket {
			s.WriteString("[")
			bracket = true
		}

		s.WriteString(a.String())
	}
	if bracket {
		s.WriteString("]")
	}

	return s.String()
}
