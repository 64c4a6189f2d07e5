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

package analysis_test

import (
	"testing"

	"github.com/jetsetilly/dismantle/analysis"
	"github.com/jetsetilly/dismantle/arm"
	"github.com/jetsetilly/dismantle/memorymap"
	"github.com/jetsetilly/dismantle/module"
	"github.com/jetsetilly/dismantle/relocation"
	"github.com/jetsetilly/dismantle/test"
)

func parseThumbFunction(t *testing.T, base uint32, code []byte) *analysis.Function {
	t.Helper()
	parser := arm.NewParser(arm.ModeThumb, base, code)
	fn, err := analysis.ParseFunction("test", base, true, parser, code)
	test.ExpectSuccess(t, err)
	return fn
}

func parseARMFunction(t *testing.T, base uint32, code []byte) *analysis.Function {
	t.Helper()
	parser := arm.NewParser(arm.ModeARM, base, code)
	fn, err := analysis.ParseFunction("test", base, false, parser, code)
	test.ExpectSuccess(t, err)
	return fn
}

// a main module holding the code under test and one overlay for external
// targets to land in
func referenceModules(mainCode []byte) []*module.Module {
	main := module.NewModule(memorymap.Main, 0x02000000, mainCode, []module.Section{
		{Name: ".text", Kind: memorymap.SectionCode, Start: 0x02000000, End: 0x02000000 + uint32(len(mainCode))},
	})
	ov := module.NewModule(memorymap.Overlay(3), 0x02100000, nil, []module.Section{
		{Name: ".text", Kind: memorymap.SectionCode, Start: 0x02100000, End: 0x02100100},
		{Name: ".data", Kind: memorymap.SectionData, Start: 0x02100100, End: 0x02100200},
	})
	return []*module.Module{main, ov}
}

// a Thumb BL pair produces a thumb_call relocation at the first halfword
func TestThumbCallRelocation(t *testing.T) {
	code := thumbCode(
		0xb500, // 00: push {lr}
		0xf0ff, // 02: bl (first half)
		0xfffd, // 04: blh: destination 0x02100000
		0xbd00, // 06: pop {pc}
	)

	modules := referenceModules(code)
	fn := parseThumbFunction(t, 0x02000000, code)

	result, err := analysis.ExternalReferences(modules, [][]*analysis.Function{{fn}, nil}, 0, analysis.Options{})
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, len(result.Relocations), 1)
	r := result.Relocations[0]
	test.ExpectEquality(t, r.From, uint32(0x02000002))
	test.ExpectEquality(t, r.To, uint32(0x02100000))
	test.ExpectEquality(t, r.Kind, relocation.ThumbCall)
	test.ExpectSuccess(t, r.Target.Equal(relocation.TargetOverlay(3)))

	test.ExpectEquality(t, len(result.ExternalSymbols), 1)
	sym := result.ExternalSymbols[0]
	test.ExpectEquality(t, sym.Address, uint32(0x02100000))
	test.ExpectEquality(t, len(sym.Candidates), 1)
	test.ExpectEquality(t, sym.Candidates[0], analysis.SymbolCandidate{ModuleIndex: 1, SectionIndex: 0})
}

// a Thumb BLX pair calls ARM code
func TestThumbCallArmRelocation(t *testing.T) {
	code := thumbCode(
		0xb500, // 00: push {lr}
		0xf0ff, // 02: bl (first half)
		0xeffd, // 04: blx: destination 0x02100000
		0xbd00, // 06: pop {pc}
	)

	modules := referenceModules(code)
	fn := parseThumbFunction(t, 0x02000000, code)

	result, err := analysis.ExternalReferences(modules, [][]*analysis.Function{{fn}, nil}, 0, analysis.Options{})
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, len(result.Relocations), 1)
	r := result.Relocations[0]
	test.ExpectEquality(t, r.From, uint32(0x02000002))
	test.ExpectEquality(t, r.To, uint32(0x02100000))
	test.ExpectEquality(t, r.Kind, relocation.ThumbCallArm)
}

// ARM bl and blx produce arm_call and arm_call_thumb relocations
func TestARMCallRelocations(t *testing.T) {
	code := armCode(
		0xeb03fffe, // 00: bl 0x02100000
		0xfa03fffd, // 04: blx 0x02100000
		0xe12fff1e, // 08: bx lr
	)

	modules := referenceModules(code)
	fn := parseARMFunction(t, 0x02000000, code)

	result, err := analysis.ExternalReferences(modules, [][]*analysis.Function{{fn}, nil}, 0, analysis.Options{})
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, len(result.Relocations), 2)

	r := result.Relocations[0]
	test.ExpectEquality(t, r.From, uint32(0x02000000))
	test.ExpectEquality(t, r.To, uint32(0x02100000))
	test.ExpectEquality(t, r.Kind, relocation.ArmCall)
	test.ExpectSuccess(t, r.Target.Equal(relocation.TargetOverlay(3)))

	r = result.Relocations[1]
	test.ExpectEquality(t, r.From, uint32(0x02000004))
	test.ExpectEquality(t, r.To, uint32(0x02100000))
	test.ExpectEquality(t, r.Kind, relocation.ArmCallThumb)

	// the shared destination is recorded once
	test.ExpectEquality(t, len(result.ExternalSymbols), 1)
}

// a pool load into the analysed module itself produces a relocation with
// the module's own target but no external symbol; a pool load into
// another module produces both
func TestPoolLoadTargets(t *testing.T) {
	code := thumbCode(
		0x4901, // 00: ldr r1, [pc, #4]   pool at 08
		0x4a02, // 02: ldr r2, [pc, #8]   pool at 0c
		0x4770, // 04: bx lr
		0x0000, // 06: padding
		0x0010, // 08: pool: 0x02000010 (local, in main .data)
		0x0200,
		0x0180, // 0c: pool: 0x02100180 (in the overlay's .data)
		0x0210,
	)

	main := module.NewModule(memorymap.Main, 0x02000000, code, []module.Section{
		{Name: ".text", Kind: memorymap.SectionCode, Start: 0x02000000, End: 0x02000010},
		{Name: ".data", Kind: memorymap.SectionData, Start: 0x02000010, End: 0x02000020},
	})
	ov := module.NewModule(memorymap.Overlay(3), 0x02100000, nil, []module.Section{
		{Name: ".data", Kind: memorymap.SectionData, Start: 0x02100100, End: 0x02100200},
	})
	modules := []*module.Module{main, ov}

	fn := parseThumbFunction(t, 0x02000000, code)

	result, err := analysis.ExternalReferences(modules, [][]*analysis.Function{{fn}, nil}, 0, analysis.Options{})
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, len(result.Relocations), 2)

	r := result.Relocations[0]
	test.ExpectEquality(t, r.From, uint32(0x02000008))
	test.ExpectEquality(t, r.To, uint32(0x02000010))
	test.ExpectEquality(t, r.Kind, relocation.Load)
	test.ExpectSuccess(t, r.Target.Equal(relocation.TargetMain()))

	r = result.Relocations[1]
	test.ExpectEquality(t, r.From, uint32(0x0200000c))
	test.ExpectEquality(t, r.To, uint32(0x02100180))
	test.ExpectSuccess(t, r.Target.Equal(relocation.TargetOverlay(3)))

	// only the overlay address is an external symbol
	test.ExpectEquality(t, len(result.ExternalSymbols), 1)
	test.ExpectEquality(t, result.ExternalSymbols[0].Address, uint32(0x02100180))
	test.ExpectEquality(t, result.ExternalSymbols[0].Candidates[0].ModuleIndex, 1)
}

// a call outside every module is dropped, or kept with a none target
func TestUnknownCallTarget(t *testing.T) {
	code := thumbCode(
		0xb500, // 00: push {lr}
		0xf0ff, // 02: bl (first half)
		0xffff, // 04: blh: destination outside every module
		0xbd00, // 06: pop {pc}
	)

	main := module.NewModule(memorymap.Main, 0x02000000, code, []module.Section{
		{Name: ".text", Kind: memorymap.SectionCode, Start: 0x02000000, End: 0x02000008},
	})
	modules := []*module.Module{main}

	fn := parseThumbFunction(t, 0x02000000, code)
	functions := [][]*analysis.Function{{fn}}

	result, err := analysis.ExternalReferences(modules, functions, 0, analysis.Options{})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(result.Relocations), 0)

	result, err = analysis.ExternalReferences(modules, functions, 0, analysis.Options{AllowUnknownFunctionCalls: true})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(result.Relocations), 1)
	test.ExpectSuccess(t, result.Relocations[0].Target.IsNone())
	test.ExpectEquality(t, len(result.ExternalSymbols), 0)
}
