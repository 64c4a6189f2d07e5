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

package memorymap

import "fmt"

// AutoloadKind identifies one of the fixed-role autoload modules.
type AutoloadKind int

// List of valid AutoloadKind values. AutoloadUnknown indicates a corrupt
// input and is rejected whenever an autoload is resolved to a relocation
// target.
const (
	AutoloadITCM AutoloadKind = iota
	AutoloadDTCM
	AutoloadUnknown
)

func (k AutoloadKind) String() string {
	switch k {
	case AutoloadITCM:
		return "itcm"
	case AutoloadDTCM:
		return "dtcm"
	case AutoloadUnknown:
		return "unknown"
	}
	panic("unknown AutoloadKind")
}

// moduleClass is the discriminator for ModuleKind. not exported because the
// Is*() functions are the preferred way of inspecting a ModuleKind.
type moduleClass int

const (
	classMain moduleClass = iota
	classOverlay
	classAutoload
)

// ModuleKind identifies a module of the target program. The zero value is
// the main module. ModuleKind is comparable and is used as a map key by the
// symbols package.
type ModuleKind struct {
	class    moduleClass
	overlay  uint16
	autoload AutoloadKind
}

// Main is the ModuleKind of the main module.
var Main = ModuleKind{class: classMain}

// Overlay returns the ModuleKind for the overlay with the given ID.
func Overlay(id uint16) ModuleKind {
	return ModuleKind{class: classOverlay, overlay: id}
}

// Autoload returns the ModuleKind for the named autoload.
func Autoload(kind AutoloadKind) ModuleKind {
	return ModuleKind{class: classAutoload, autoload: kind}
}

// IsMain returns true if the kind identifies the main module.
func (k ModuleKind) IsMain() bool {
	return k.class == classMain
}

// IsOverlay returns the overlay ID and true if the kind identifies an
// overlay.
func (k ModuleKind) IsOverlay() (uint16, bool) {
	return k.overlay, k.class == classOverlay
}

// IsAutoload returns the autoload kind and true if the kind identifies an
// autoload.
func (k ModuleKind) IsAutoload() (AutoloadKind, bool) {
	return k.autoload, k.class == classAutoload
}

func (k ModuleKind) String() string {
	switch k.class {
	case classMain:
		return "main"
	case classOverlay:
		return fmt.Sprintf("overlay %d", k.overlay)
	case classAutoload:
		return k.autoload.String()
	}
	panic("unknown ModuleKind")
}

// SectionKind classifies the content of a module section.
type SectionKind int

// List of valid SectionKind values.
const (
	SectionCode SectionKind = iota
	SectionData
	SectionBss
)

func (k SectionKind) String() string {
	switch k {
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionBss:
		return "bss"
	}
	panic("unknown SectionKind")
}
