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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jetsetilly/dismantle/curated"
)

// The file format is one relocation per line. A line is a space-separated
// sequence of key:value attributes in any order:
//
//	from:0x0200005c kind:thumb_call to:0x020001a0 module:overlay(3)
//
// All four attributes are required. Blank lines and lines with no
// attributes are skipped. Serialization always writes the attributes in
// the order above, with addresses as eight hex digits, sorted ascending by
// the from address.

// Sentinel error patterns for relocation file parsing. Every pattern
// begins with the file and row on which the error occurred.
const (
	UnknownAttribute = "%s: expected relocation attribute 'from', 'to', 'kind' or 'module' but got '%s'"
	BadAddress       = "%s: failed to parse \"%s\" address '%s'"
	MissingAttribute = "%s: missing '%s' attribute"
	BadKind          = "%s: unknown relocation kind '%s', must be one of: arm_call, thumb_call, arm_call_thumb, thumb_call_arm, load"
	BadTarget        = "%s: unknown relocation to '%s', must be one of: overlays, overlay, main, itcm, dtcm, none"
	BadTargetOptions = "%s: relocations to '%s' have no options, but got '(%s)'"
	BadOverlayID     = "%s: failed to parse overlay ID '%s'"
	FewOverlayIDs    = "%s: relocation to 'overlays' must have two or more overlay IDs, but got %v"
)

// ParseContext locates parse errors in their source file.
type ParseContext struct {
	File string
	Row  int
}

func (c ParseContext) String() string {
	return fmt.Sprintf("%s:%d", c.File, c.Row)
}

// ReadFile reads a relocation table from the named text file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, curated.Errorf("relocation: %v", err)
	}
	defer f.Close()

	return Read(f, path)
}

// Read reads a relocation table. The path argument is used for error
// messages only.
func Read(r io.Reader, path string) (*Table, error) {
	context := ParseContext{File: path}

	table := NewTable()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		context.Row++

		reloc, err := parseRelocation(scanner.Text(), context)
		if err != nil {
			return nil, err
		}
		if reloc == nil {
			continue
		}

		table.Add(*reloc)
	}
	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf("relocation: %v", err)
	}

	return table, nil
}

// WriteFile writes the table to the named text file, sorted ascending by
// the from address.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return curated.Errorf("relocation: %v", err)
	}
	defer f.Close()

	return t.Write(f)
}

// Write writes the table, sorted ascending by the from address.
func (t *Table) Write(w io.Writer) error {
	b := bufio.NewWriter(w)
	for _, r := range t.Iter() {
		if _, err := fmt.Fprintf(b, "%s\n", r); err != nil {
			return curated.Errorf("relocation: %v", err)
		}
	}
	if err := b.Flush(); err != nil {
		return curated.Errorf("relocation: %v", err)
	}
	return nil
}

// parseRelocation parses one line of a relocation file. A line with no
// attributes returns nil without error and should be skipped.
func parseRelocation(line string, context ParseContext) (*Relocation, error) {
	var from, to *uint32
	var kind *Kind
	var target *Target

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	for _, field := range fields {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			return nil, curated.Errorf(UnknownAttribute, context, field)
		}

		switch key {
		case "from":
			v, err := parseUint32(value)
			if err != nil {
				return nil, curated.Errorf(BadAddress, context, "from", value)
			}
			from = &v
		case "to":
			v, err := parseUint32(value)
			if err != nil {
				return nil, curated.Errorf(BadAddress, context, "to", value)
			}
			to = &v
		case "kind":
			k, err := parseKind(value, context)
			if err != nil {
				return nil, err
			}
			kind = &k
		case "module":
			m, err := parseTarget(value, context)
			if err != nil {
				return nil, err
			}
			target = &m
		default:
			return nil, curated.Errorf(UnknownAttribute, context, key)
		}
	}

	if from == nil {
		return nil, curated.Errorf(MissingAttribute, context, "from")
	}
	if to == nil {
		return nil, curated.Errorf(MissingAttribute, context, "to")
	}
	if kind == nil {
		return nil, curated.Errorf(MissingAttribute, context, "kind")
	}
	if target == nil {
		return nil, curated.Errorf(MissingAttribute, context, "module")
	}

	return &Relocation{From: *from, To: *to, Kind: *kind, Target: *target}, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	return uint16(v), err
}

func parseKind(s string, context ParseContext) (Kind, error) {
	switch s {
	case "arm_call":
		return ArmCall, nil
	case "thumb_call":
		return ThumbCall, nil
	case "arm_call_thumb":
		return ArmCallThumb, nil
	case "thumb_call_arm":
		return ThumbCallArm, nil
	case "load":
		return Load, nil
	}
	return 0, curated.Errorf(BadKind, context, s)
}

func parseTarget(s string, context ParseContext) (Target, error) {
	value, options, bracket := strings.Cut(s, "(")
	options = strings.TrimSuffix(options, ")")

	switch value {
	case "none", "main", "itcm", "dtcm":
		if bracket {
			return Target{}, curated.Errorf(BadTargetOptions, context, value, options)
		}
		switch value {
		case "none":
			return TargetNone(), nil
		case "main":
			return TargetMain(), nil
		case "itcm":
			return TargetItcm(), nil
		}
		return TargetDtcm(), nil

	case "overlay":
		id, err := parseUint16(options)
		if err != nil {
			return Target{}, curated.Errorf(BadOverlayID, context, options)
		}
		return TargetOverlay(id), nil

	case "overlays":
		var ids []uint16
		for _, o := range strings.Split(options, ",") {
			id, err := parseUint16(o)
			if err != nil {
				return Target{}, curated.Errorf(BadOverlayID, context, o)
			}
			ids = append(ids, id)
		}
		if len(ids) < 2 {
			return Target{}, curated.Errorf(FewOverlayIDs, context, ids)
		}
		return TargetOverlays(ids), nil
	}

	return Target{}, curated.Errorf(BadTarget, context, value)
}
