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

package relocation

import (
	"debug/elf"
	"fmt"
	"slices"
	"strings"

	"github.com/jetsetilly/dismantle/memorymap"
)

// Kind is the type of a relocation. Calls record whether either side of
// the call is Thumb code because the ELF relocation type differs for each
// combination.
type Kind int

// List of valid Kind values.
const (
	ArmCall Kind = iota
	ThumbCall
	ArmCallThumb
	ThumbCallArm
	Load
)

func (k Kind) String() string {
	switch k {
	case ArmCall:
		return "arm_call"
	case ThumbCall:
		return "thumb_call"
	case ArmCallThumb:
		return "arm_call_thumb"
	case ThumbCallArm:
		return "thumb_call_arm"
	case Load:
		return "load"
	}
	panic("unknown relocation Kind")
}

// ELFType returns the ELF relocation type that patches an instruction of
// this kind.
func (k Kind) ELFType() elf.R_ARM {
	switch k {
	case ArmCall:
		return elf.R_ARM_PC24
	case ThumbCall:
		return elf.R_ARM_THM_PC22
	case ArmCallThumb:
		return elf.R_ARM_XPC25
	case ThumbCallArm:
		return elf.R_ARM_THM_XPC22
	case Load:
		return elf.R_ARM_ABS32
	}
	panic("unknown relocation Kind")
}

// SymbolClass is the domain of symbol the relocation refers to.
type SymbolClass int

// List of valid SymbolClass values.
const (
	TextSymbol SymbolClass = iota
	DataSymbol
)

// SymbolClass returns TextSymbol for the call kinds and DataSymbol for
// loads.
func (k Kind) SymbolClass() SymbolClass {
	if k == Load {
		return DataSymbol
	}
	return TextSymbol
}

// targetClass is the discriminator for Target.
type targetClass int

const (
	targetNone targetClass = iota
	targetMain
	targetItcm
	targetDtcm
	targetOverlay
	targetOverlays
)

// Target is the module, or set of candidate overlays, that a relocation
// points into. The zero value is the None target.
type Target struct {
	class targetClass

	// the single overlay ID for the Overlay class; the full list for the
	// Overlays class (always two or more)
	ids []uint16
}

// TargetNone is the target of a relocation whose destination address lies
// in no known module.
func TargetNone() Target {
	return Target{class: targetNone}
}

// TargetMain is the target of a relocation into the main module.
func TargetMain() Target {
	return Target{class: targetMain}
}

// TargetItcm is the target of a relocation into the ITCM autoload.
func TargetItcm() Target {
	return Target{class: targetItcm}
}

// TargetDtcm is the target of a relocation into the DTCM autoload.
func TargetDtcm() Target {
	return Target{class: targetDtcm}
}

// TargetOverlay is the target of a relocation into a single overlay.
func TargetOverlay(id uint16) Target {
	return Target{class: targetOverlay, ids: []uint16{id}}
}

// TargetOverlays is the target of a relocation whose destination address
// lies in two or more overlays. The function panics on fewer than two IDs;
// use TargetOverlay for a single candidate.
func TargetOverlays(ids []uint16) Target {
	if len(ids) < 2 {
		panic("a relocation to multiple overlays requires two or more overlay IDs")
	}
	return Target{class: targetOverlays, ids: slices.Clone(ids)}
}

// TargetFromModules constructs the minimal target for the candidate
// modules an address resolved to. An empty candidate list gives the None
// target. More than one candidate is permitted only if every one is an
// overlay; any other combination panics because it means the candidate
// search is broken. An autoload of unknown kind is corrupt input and
// panics likewise.
func TargetFromModules(kinds []memorymap.ModuleKind) Target {
	if len(kinds) == 0 {
		return TargetNone()
	}

	first := kinds[0]

	if first.IsMain() {
		if len(kinds) > 1 {
			panic("relocations to main should be unambiguous")
		}
		return TargetMain()
	}

	if autoload, ok := first.IsAutoload(); ok {
		if len(kinds) > 1 {
			panic(fmt.Sprintf("relocations to %s should be unambiguous", autoload))
		}
		switch autoload {
		case memorymap.AutoloadITCM:
			return TargetItcm()
		case memorymap.AutoloadDTCM:
			return TargetDtcm()
		}
		panic(fmt.Sprintf("unknown autoload kind '%s'", autoload))
	}

	ids := make([]uint16, 0, len(kinds))
	for _, kind := range kinds {
		id, ok := kind.IsOverlay()
		if !ok {
			panic("relocations to overlays should not go to other kinds of modules")
		}
		ids = append(ids, id)
	}
	if len(ids) > 1 {
		return TargetOverlays(ids)
	}
	return TargetOverlay(ids[0])
}

// Equal compares two targets structurally.
func (t Target) Equal(other Target) bool {
	return t.class == other.class && slices.Equal(t.ids, other.ids)
}

// IsNone returns true for the None target.
func (t Target) IsNone() bool {
	return t.class == targetNone
}

// OverlayIDs returns the candidate overlay IDs of an Overlay or Overlays
// target. The list is nil for the other classes.
func (t Target) OverlayIDs() []uint16 {
	return t.ids
}

// FirstModule returns the first (and possibly only) module the target
// points to. The second return value is false for the None target.
func (t Target) FirstModule() (memorymap.ModuleKind, bool) {
	switch t.class {
	case targetMain:
		return memorymap.Main, true
	case targetItcm:
		return memorymap.Autoload(memorymap.AutoloadITCM), true
	case targetDtcm:
		return memorymap.Autoload(memorymap.AutoloadDTCM), true
	case targetOverlay, targetOverlays:
		return memorymap.Overlay(t.ids[0]), true
	}
	return memorymap.ModuleKind{}, false
}

// OtherModules returns the modules beyond the first that the target points
// to. The list is empty for every class except Overlays.
func (t Target) OtherModules() []memorymap.ModuleKind {
	if t.class != targetOverlays {
		return nil
	}
	other := make([]memorymap.ModuleKind, 0, len(t.ids)-1)
	for _, id := range t.ids[1:] {
		other = append(other, memorymap.Overlay(id))
	}
	return other
}

func (t Target) String() string {
	switch t.class {
	case targetNone:
		return "none"
	case targetMain:
		return "main"
	case targetItcm:
		return "itcm"
	case targetDtcm:
		return "dtcm"
	case targetOverlay:
		return fmt.Sprintf("overlay(%d)", t.ids[0])
	case targetOverlays:
		s := strings.Builder{}
		s.WriteString("overlays(")
		for i, id := range t.ids {
			if i > 0 {
				s.WriteString(",")
			}
			fmt.Fprintf(&s, "%d", id)
		}
		s.WriteString(")")
		return s.String()
	}
	panic("unknown relocation Target")
}

// Relocation is a single typed reference from a source address to a target
// address.
type Relocation struct {
	From   uint32
	To     uint32
	Kind   Kind
	Target Target
}

// NewCall creates a call relocation. The kind is derived from which sides
// of the call are Thumb code.
func NewCall(from uint32, to uint32, target Target, fromThumb bool, toThumb bool) Relocation {
	var kind Kind
	switch {
	case fromThumb && toThumb:
		kind = ThumbCall
	case fromThumb && !toThumb:
		kind = ThumbCallArm
	case !fromThumb && toThumb:
		kind = ArmCallThumb
	default:
		kind = ArmCall
	}
	return Relocation{From: from, To: to, Kind: kind, Target: target}
}

// NewLoad creates a load relocation.
func NewLoad(from uint32, to uint32, target Target) Relocation {
	return Relocation{From: from, To: to, Kind: Load, Target: target}
}

// Equal compares two relocations structurally.
func (r Relocation) Equal(other Relocation) bool {
	return r.From == other.From && r.To == other.To && r.Kind == other.Kind && r.Target.Equal(other.Target)
}

func (r Relocation) String() string {
	return fmt.Sprintf("from:0x%08x kind:%s to:0x%08x module:%s", r.From, r.Kind, r.To, r.Target)
}
