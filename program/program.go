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

package program

import (
	"fmt"

	"github.com/jetsetilly/dismantle/analysis"
	"github.com/jetsetilly/dismantle/curated"
	"github.com/jetsetilly/dismantle/logger"
	"github.com/jetsetilly/dismantle/memorymap"
	"github.com/jetsetilly/dismantle/module"
	"github.com/jetsetilly/dismantle/symbols"
)

// indexRange is a half-open range of indices into the module vector.
type indexRange struct {
	start int
	end   int
}

// Program is the collection of modules that make up the target program.
type Program struct {
	modules []*module.Module

	// functions discovered in each module, indexed like modules
	functions [][]*analysis.Function

	symbolMaps *symbols.Maps

	// indices into the modules vector
	main      int
	overlays  indexRange
	autoloads indexRange
}

// NoSymbolCandidate is the error pattern returned when a cross-reference
// resolves to no candidate at all.
const NoSymbolCandidate = "program: there should be at least one symbol candidate"

// NewProgram is the preferred method of initialisation for the Program
// type. The module vector is assembled in the order main, overlays,
// autoloads.
func NewProgram(main *module.Module, overlays []*module.Module, autoloads []*module.Module, symbolMaps *symbols.Maps) *Program {
	modules := make([]*module.Module, 0, 1+len(overlays)+len(autoloads))
	modules = append(modules, main)
	modules = append(modules, overlays...)
	modules = append(modules, autoloads...)

	return &Program{
		modules:    modules,
		functions:  make([][]*analysis.Function, len(modules)),
		symbolMaps: symbolMaps,
		main:       0,
		overlays:   indexRange{start: 1, end: 1 + len(overlays)},
		autoloads:  indexRange{start: 1 + len(overlays), end: len(modules)},
	}
}

// Main returns the main module.
func (p *Program) Main() *module.Module {
	return p.modules[p.main]
}

// Overlays returns the overlay modules.
func (p *Program) Overlays() []*module.Module {
	return p.modules[p.overlays.start:p.overlays.end]
}

// Autoloads returns the autoload modules.
func (p *Program) Autoloads() []*module.Module {
	return p.modules[p.autoloads.start:p.autoloads.end]
}

// Module returns the module at an index.
func (p *Program) Module(index int) *module.Module {
	return p.modules[index]
}

// NumModules returns the number of modules in the program.
func (p *Program) NumModules() int {
	return len(p.modules)
}

// SymbolMaps returns the program's symbol maps.
func (p *Program) SymbolMaps() *symbols.Maps {
	return p.symbolMaps
}

// Functions returns the functions discovered in the module at an index.
func (p *Program) Functions(index int) []*analysis.Function {
	return p.functions[index]
}

// External returns the view of every module other than the one at the
// index.
func (p *Program) External(index int) ExternalModules {
	return ExternalModules{
		before:      p.modules[:index],
		after:       p.modules[index+1:],
		moduleIndex: index,
	}
}

// DiscoverFunctions runs function discovery over the code sections of
// every module, in module order. Discovered functions register themselves
// in the module's symbol map.
func (p *Program) DiscoverFunctions(opts analysis.FindOptions) {
	for i, m := range p.modules {
		symbolMap := p.symbolMaps.Get(m.Kind())

		for _, s := range m.Sections() {
			if s.Kind != memorymap.SectionCode {
				continue
			}

			code, ok := m.CodeAt(s.Start)
			if !ok {
				logger.Logf(logger.Allow, "program", "%s: section %s has no code bytes", m.Kind(), s.Name)
				continue
			}
			if uint32(len(code)) > s.Size() {
				code = code[:s.Size()]
			}

			fns := analysis.FindFunctions(code, s.Start, m.DefaultFuncPrefix, symbolMap, opts)
			p.functions[i] = append(p.functions[i], fns...)
		}
	}
}

// AnalyzeCrossReferences resolves the calls and loads of every module, in
// module order. Relocations accumulate in each module's table; referenced
// addresses become symbols in the candidate modules' symbol maps, with one
// ambiguous symbol per candidate when an address lies in several overlays.
func (p *Program) AnalyzeCrossReferences(opts analysis.Options) error {
	for moduleIndex := range p.modules {
		result, err := analysis.ExternalReferences(p.modules, p.functions, moduleIndex, opts)
		if err != nil {
			return err
		}

		p.modules[moduleIndex].Relocations().Extend(result.Relocations)

		for _, symbol := range result.ExternalSymbols {
			switch len(symbol.Candidates) {
			case 0:
				logger.Log(logger.Allow, "program", "there should be at least one symbol candidate")
				return curated.Errorf(NoSymbolCandidate)

			case 1:
				if err := p.addExternalSymbol(symbol.Address, symbol.Candidates[0], false); err != nil {
					return err
				}

			default:
				for _, candidate := range symbol.Candidates {
					if err := p.addExternalSymbol(symbol.Address, candidate, true); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// addExternalSymbol installs a data or bss symbol for a resolved
// cross-reference. A candidate in a code section is skipped: functions
// register themselves during discovery.
func (p *Program) addExternalSymbol(addr uint32, candidate analysis.SymbolCandidate, ambiguous bool) error {
	m := p.modules[candidate.ModuleIndex]
	section := m.Sections()[candidate.SectionIndex]
	name := fmt.Sprintf("%s%08x", m.DefaultDataPrefix, addr)
	symbolMap := p.symbolMaps.Get(m.Kind())

	switch section.Kind {
	case memorymap.SectionCode:
		// function symbol, already verified to exist
		return nil
	case memorymap.SectionData:
		if ambiguous {
			return symbolMap.AddAmbiguousData(name, addr)
		}
		return symbolMap.AddData(name, addr)
	case memorymap.SectionBss:
		if ambiguous {
			return symbolMap.AddAmbiguousBss(name, addr)
		}
		return symbolMap.AddBss(name, addr)
	}
	panic("unknown SectionKind")
}

// ExternalModules presents the modules either side of a focused module as
// a single indexable collection. Indices skip the focused module: an
// index below the focus addresses the before slice, an index at or above
// it addresses the after slice.
type ExternalModules struct {
	before      []*module.Module
	after       []*module.Module
	moduleIndex int
}

// Get returns the external module at an index.
func (e ExternalModules) Get(index int) *module.Module {
	if index < e.moduleIndex {
		return e.before[index]
	}
	return e.after[index-e.moduleIndex]
}

// Len returns the number of external modules.
func (e ExternalModules) Len() int {
	return e.moduleIndex + len(e.after)
}

// Iter returns the external modules in program order.
func (e ExternalModules) Iter() []*module.Module {
	modules := make([]*module.Module, 0, e.Len())
	modules = append(modules, e.before...)
	modules = append(modules, e.after...)
	return modules
}
