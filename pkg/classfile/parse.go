// SPDX-License-Identifier: MPL-2.0

package classfile

import (
	"encoding/binary"
	"fmt"
)

const magic = 0xCAFEBABE

// role is the meaning of one reference to a UTF-8 constant.
type role uint8

const (
	// roleIdentity values are never rewritten (member, attribute and parameter names).
	roleIdentity role = iota
	// roleClass values are internal class names or array descriptors.
	roleClass
	// rolePackage values are internal package names.
	rolePackage
	// roleDescriptor values are field or method descriptors.
	roleDescriptor
	// roleSignature values are generic signatures.
	roleSignature
	// roleValue values are string literals.
	roleValue
)

// slot locates one u2 reference to a UTF-8 constant. A reference lives either
// inside a constant pool payload (entry >= 0) or in the class body at a
// file offset (entry == -1).
type slot struct {
	role   role
	index  uint16
	entry  int
	offset int
}

// ClassFile is a parsed class file.
type ClassFile struct {
	// Minor and Major are the class file format version.
	Minor, Major uint16
	// AccessFlags are the class access flags.
	AccessFlags uint16

	data       []byte
	pool       []constant
	poolEnd    int
	thisClass  uint16
	superClass uint16
	interfaces []uint16
	slots      []slot
}

// parser walks a class file, collecting slots.
type parser struct {
	data  []byte
	pos   int
	err   error
	cf    *ClassFile
	slots []slot
}

// Parse parses a class file and records every reference to a UTF-8 constant.
func Parse(data []byte) (*ClassFile, error) {
	p := &parser{data: data, cf: &ClassFile{data: data}}
	p.parse()
	if p.err != nil {
		return nil, p.err
	}
	p.cf.slots = p.slots
	return p.cf, nil
}

func (p *parser) parse() {
	if p.u4() != magic {
		p.fail(0, "bad magic number")
		return
	}
	p.cf.Minor = p.u2()
	p.cf.Major = p.u2()

	p.constantPool()
	if p.err != nil {
		return
	}
	p.cf.poolEnd = p.pos

	p.cf.AccessFlags = p.u2()
	p.cf.thisClass = p.u2()
	p.cf.superClass = p.u2()
	n := int(p.u2())
	for i := 0; i < n && p.err == nil; i++ {
		p.cf.interfaces = append(p.cf.interfaces, p.u2())
	}
	if p.err != nil {
		return
	}
	if !p.cf.isTag(p.cf.thisClass, tagClass) {
		p.fail(p.cf.poolEnd+2, "this_class is not a class constant")
		return
	}

	for range 2 { // fields, then methods
		count := int(p.u2())
		for i := 0; i < count && p.err == nil; i++ {
			p.member()
		}
	}
	p.attributes()

	if p.err == nil && p.pos != len(p.data) {
		p.fail(p.pos, "trailing bytes after class attributes")
	}
}

func (p *parser) constantPool() {
	count := int(p.u2())
	if count == 0 {
		p.fail(p.pos-2, "empty constant pool")
		return
	}

	pool := make([]constant, 1, count)
	for i := 1; i < count && p.err == nil; i++ {
		start := p.pos
		tag := p.u1()
		if tag == tagUtf8 {
			n := int(p.u2())
			pool = append(pool, constant{tag: tag, utf8: string(p.bytes(n))})
			continue
		}

		size, ok := payloadSize(tag)
		if !ok {
			p.fail(start, fmt.Sprintf("unknown constant pool tag %d", tag))
			return
		}
		raw := append([]byte(nil), p.bytes(size)...)
		entry := len(pool)
		pool = append(pool, constant{tag: tag, raw: raw})

		switch tag {
		case tagClass:
			p.poolSlot(roleClass, entry, 0, raw)
		case tagString:
			p.poolSlot(roleValue, entry, 0, raw)
		case tagNameAndType:
			p.poolSlot(roleIdentity, entry, 0, raw)
			p.poolSlot(roleDescriptor, entry, 2, raw)
		case tagMethodType:
			p.poolSlot(roleDescriptor, entry, 0, raw)
		case tagModule:
			p.poolSlot(roleIdentity, entry, 0, raw)
		case tagPackage:
			p.poolSlot(rolePackage, entry, 0, raw)
		case tagLong, tagDouble:
			pool = append(pool, constant{})
			i++
		}
	}
	if p.err != nil {
		return
	}
	p.cf.pool = pool

	// Pool references may point forward, so they are validated once the
	// whole pool is known.
	for _, s := range p.slots {
		if !p.cf.isTag(s.index, tagUtf8) {
			p.fail(0, fmt.Sprintf("constant %d references %d, which is not a UTF-8 constant", s.entry, s.index))
			return
		}
	}
}

func (p *parser) poolSlot(r role, entry, offset int, raw []byte) {
	if len(raw) < offset+2 {
		return
	}
	p.slots = append(p.slots, slot{
		role:   r,
		index:  binary.BigEndian.Uint16(raw[offset:]),
		entry:  entry,
		offset: offset,
	})
}

// ref consumes a u2 UTF-8 reference in the class body.
func (p *parser) ref(r role, allowZero bool) uint16 {
	at := p.pos
	idx := p.u2()
	if p.err != nil {
		return 0
	}
	if idx == 0 && allowZero {
		return 0
	}
	if !p.cf.isTag(idx, tagUtf8) {
		p.fail(at, fmt.Sprintf("index %d is not a UTF-8 constant", idx))
		return 0
	}
	p.slots = append(p.slots, slot{role: r, index: idx, entry: -1, offset: at})
	return idx
}

func (p *parser) member() {
	p.skip(2) // access_flags
	p.ref(roleIdentity, false)
	p.ref(roleDescriptor, false)
	p.attributes()
}

func (p *parser) attributes() {
	count := int(p.u2())
	for i := 0; i < count && p.err == nil; i++ {
		nameIdx := p.ref(roleIdentity, false)
		length := int(p.u4())
		if p.err != nil {
			return
		}
		end := p.pos + length
		if end > len(p.data) || end < p.pos {
			p.fail(p.pos, "attribute length exceeds class file")
			return
		}
		p.attribute(p.cf.pool[nameIdx].utf8)
		if p.err != nil {
			return
		}
		if p.pos > end {
			p.fail(end, "attribute overruns its declared length")
			return
		}
		p.pos = end
	}
}

func (p *parser) attribute(name string) {
	switch name {
	case "Signature":
		p.ref(roleSignature, false)
	case "SourceFile":
		p.ref(roleIdentity, false)
	case "Code":
		p.skip(4) // max_stack, max_locals
		p.skip(int(p.u4()))
		p.skip(8 * int(p.u2()))
		p.attributes()
	case "LocalVariableTable", "LocalVariableTypeTable":
		r := roleDescriptor
		if name == "LocalVariableTypeTable" {
			r = roleSignature
		}
		n := int(p.u2())
		for i := 0; i < n && p.err == nil; i++ {
			p.skip(4) // start_pc, length
			p.ref(roleIdentity, false)
			p.ref(r, false)
			p.skip(2) // index
		}
	case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
		n := int(p.u2())
		for i := 0; i < n && p.err == nil; i++ {
			p.annotation()
		}
	case "RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations":
		params := int(p.u1())
		for i := 0; i < params && p.err == nil; i++ {
			n := int(p.u2())
			for j := 0; j < n && p.err == nil; j++ {
				p.annotation()
			}
		}
	case "RuntimeVisibleTypeAnnotations", "RuntimeInvisibleTypeAnnotations":
		n := int(p.u2())
		for i := 0; i < n && p.err == nil; i++ {
			p.typeAnnotation()
		}
	case "AnnotationDefault":
		p.elementValue()
	case "Record":
		n := int(p.u2())
		for i := 0; i < n && p.err == nil; i++ {
			p.ref(roleIdentity, false)
			p.ref(roleDescriptor, false)
			p.attributes()
		}
	case "InnerClasses":
		n := int(p.u2())
		for i := 0; i < n && p.err == nil; i++ {
			p.skip(4) // inner_class_info_index, outer_class_info_index
			p.ref(roleIdentity, true)
			p.skip(2) // inner_class_access_flags
		}
	case "MethodParameters":
		n := int(p.u1())
		for i := 0; i < n && p.err == nil; i++ {
			p.ref(roleIdentity, true)
			p.skip(2)
		}
	}
}

func (p *parser) annotation() {
	p.ref(roleDescriptor, false)
	n := int(p.u2())
	for i := 0; i < n && p.err == nil; i++ {
		p.ref(roleIdentity, false)
		p.elementValue()
	}
}

func (p *parser) elementValue() {
	at := p.pos
	switch tag := p.u1(); tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		p.skip(2)
	case 's':
		p.ref(roleValue, false)
	case 'e':
		p.ref(roleDescriptor, false)
		p.ref(roleIdentity, false)
	case 'c':
		p.ref(roleDescriptor, false)
	case '@':
		p.annotation()
	case '[':
		n := int(p.u2())
		for i := 0; i < n && p.err == nil; i++ {
			p.elementValue()
		}
	default:
		if p.err == nil {
			p.fail(at, fmt.Sprintf("unknown element value tag %q", tag))
		}
	}
}

func (p *parser) typeAnnotation() {
	at := p.pos
	switch target := p.u1(); target {
	case 0x00, 0x01, 0x16:
		p.skip(1)
	case 0x10, 0x11, 0x12, 0x17, 0x42, 0x43, 0x44, 0x45, 0x46:
		p.skip(2)
	case 0x13, 0x14, 0x15:
	case 0x40, 0x41:
		p.skip(6 * int(p.u2()))
	case 0x47, 0x48, 0x49, 0x4A, 0x4B:
		p.skip(3)
	default:
		if p.err == nil {
			p.fail(at, fmt.Sprintf("unknown type annotation target 0x%02x", target))
		}
		return
	}
	p.skip(2 * int(p.u1())) // type_path
	p.annotation()
}

func (p *parser) fail(offset int, msg string) {
	if p.err == nil {
		p.err = &FormatError{Offset: offset, Msg: msg}
	}
}

func (p *parser) need(n int) bool {
	if p.err != nil {
		return false
	}
	if n < 0 || p.pos+n > len(p.data) {
		p.fail(p.pos, "unexpected end of class file")
		return false
	}
	return true
}

func (p *parser) u1() byte {
	if !p.need(1) {
		return 0
	}
	v := p.data[p.pos]
	p.pos++
	return v
}

func (p *parser) u2() uint16 {
	if !p.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(p.data[p.pos:])
	p.pos += 2
	return v
}

func (p *parser) u4() uint32 {
	if !p.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(p.data[p.pos:])
	p.pos += 4
	return v
}

func (p *parser) bytes(n int) []byte {
	if !p.need(n) {
		return nil
	}
	b := p.data[p.pos : p.pos+n]
	p.pos += n
	return b
}

func (p *parser) skip(n int) {
	if p.need(n) {
		p.pos += n
	}
}

// isTag reports whether idx is a valid constant pool index holding tag.
func (c *ClassFile) isTag(idx uint16, tag byte) bool {
	return idx > 0 && int(idx) < len(c.pool) && c.pool[idx].tag == tag
}

// className resolves a CONSTANT_Class index to its name.
func (c *ClassFile) className(idx uint16) string {
	if !c.isTag(idx, tagClass) {
		return ""
	}
	nameIdx := binary.BigEndian.Uint16(c.pool[idx].raw)
	if !c.isTag(nameIdx, tagUtf8) {
		return ""
	}
	return c.pool[nameIdx].utf8
}

// ThisClass returns the internal name of the class.
func (c *ClassFile) ThisClass() string { return c.className(c.thisClass) }

// SuperClass returns the internal name of the super class, or "" when the
// class has none (java/lang/Object itself and module-info).
func (c *ClassFile) SuperClass() string { return c.className(c.superClass) }

// Interfaces returns the internal names of the directly implemented interfaces.
func (c *ClassFile) Interfaces() []string {
	names := make([]string, 0, len(c.interfaces))
	for _, idx := range c.interfaces {
		names = append(names, c.className(idx))
	}
	return names
}

// Version returns the class file version as "major.minor".
func (c *ClassFile) Version() string {
	return fmt.Sprintf("%d.%d", c.Major, c.Minor)
}

// Utf8 returns the values of all UTF-8 constants in pool order.
func (c *ClassFile) Utf8() []string {
	var out []string
	for _, k := range c.pool {
		if k.tag == tagUtf8 {
			out = append(out, k.utf8)
		}
	}
	return out
}

// Strings returns the values of all string literal constants in pool order.
func (c *ClassFile) Strings() []string {
	var out []string
	for _, k := range c.pool {
		if k.tag != tagString {
			continue
		}
		idx := binary.BigEndian.Uint16(k.raw)
		if c.isTag(idx, tagUtf8) {
			out = append(out, c.pool[idx].utf8)
		}
	}
	return out
}
