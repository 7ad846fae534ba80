// SPDX-License-Identifier: MPL-2.0

package classfile

import (
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
)

// Mapper maps the symbolic names found in a class file.
//
// Map receives internal names ("com/x/A") and package names ("com/x");
// MapValue receives string literals, which may be dotted class names or
// resource paths.
type Mapper interface {
	Map(name string) string
	MapValue(value string) string
}

// Rewriter rewrites class files through a Mapper.
type Rewriter struct {
	// ReuseSymbolTable keeps every original UTF-8 constant in place and only
	// appends the rewritten values. When false, a constant whose every use is
	// rewritten to the same value is replaced in place, which keeps the pool
	// from growing.
	ReuseSymbolTable bool
}

// Rewrite parses data and returns the class with every mapped name applied.
// Unchanged classes are returned as the input slice.
func (r Rewriter) Rewrite(data []byte, m Mapper) ([]byte, error) {
	cf, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cf.rewrite(m, r.ReuseSymbolTable)
}

func (c *ClassFile) mapSlot(s slot, m Mapper) (string, error) {
	old := c.pool[s.index].utf8
	switch s.role {
	case roleClass:
		return mapClassName(old, m)
	case rolePackage:
		return m.Map(old), nil
	case roleDescriptor:
		return mapDescriptor(old, m)
	case roleSignature:
		return mapSignature(old, m)
	case roleValue:
		return m.MapValue(old), nil
	default:
		return old, nil
	}
}

func (c *ClassFile) rewrite(m Mapper, reuse bool) ([]byte, error) {
	mapped := make([]string, len(c.slots))
	byIndex := make(map[uint16][]int)
	changed := false
	for i, s := range c.slots {
		v, err := c.mapSlot(s, m)
		if err != nil {
			return nil, err
		}
		if len(v) > maxUtf8Len {
			return nil, &SymbolError{Value: v[:64] + "...", Msg: "rewritten constant exceeds 65535 bytes"}
		}
		mapped[i] = v
		if v != c.pool[s.index].utf8 {
			changed = true
			byIndex[s.index] = append(byIndex[s.index], i)
		}
	}
	if !changed {
		return c.data, nil
	}

	pool := make([]constant, len(c.pool))
	for i, k := range c.pool {
		pool[i] = k.clone()
	}
	body := append([]byte(nil), c.data[c.poolEnd:]...)

	var extra []constant
	appended := make(map[string]uint16)
	appendUtf8 := func(v string) (uint16, error) {
		if idx, ok := appended[v]; ok {
			return idx, nil
		}
		next := len(pool) + len(extra)
		if next > maxUtf8Len-1 {
			return 0, &FormatError{Offset: 8, Msg: "constant pool overflow"}
		}
		extra = append(extra, constant{tag: tagUtf8, utf8: v})
		appended[v] = uint16(next)
		return uint16(next), nil
	}
	patch := func(s slot, idx uint16) {
		if s.entry >= 0 {
			binary.BigEndian.PutUint16(pool[s.entry].raw[s.offset:], idx)
			return
		}
		binary.BigEndian.PutUint16(body[s.offset-c.poolEnd:], idx)
	}

	for _, idx := range slices.Sorted(maps.Keys(byIndex)) {
		uses := byIndex[idx]
		inPlace := !reuse && len(uses) == c.uses(idx)
		if inPlace {
			// Every use is rewritten; the first new value takes the slot.
			pool[idx].utf8 = mapped[uses[0]]
		}
		for _, i := range uses {
			v := mapped[i]
			if inPlace && v == pool[idx].utf8 {
				continue
			}
			target, err := appendUtf8(v)
			if err != nil {
				return nil, err
			}
			patch(c.slots[i], target)
		}
	}

	out := make([]byte, 0, len(c.data)+64*len(extra))
	out = append(out, c.data[:8]...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(pool)+len(extra)))
	for _, k := range pool {
		out = k.appendTo(out)
	}
	for _, k := range extra {
		out = k.appendTo(out)
	}
	return append(out, body...), nil
}

// uses counts the slots referencing idx.
func (c *ClassFile) uses(idx uint16) int {
	n := 0
	for _, s := range c.slots {
		if s.index == idx {
			n++
		}
	}
	return n
}

// String describes the class for diagnostics.
func (c *ClassFile) String() string {
	return fmt.Sprintf("%s (class file %s, %d constants)", c.ThisClass(), c.Version(), len(c.pool)-1)
}
