// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bytes"
	"encoding/binary"
)

type (
	// ClassBuilder assembles small but structurally valid class files for
	// tests. Every method gets a one-instruction Code attribute carrying a
	// LocalVariableTable entry for "this", so references in the class body
	// are exercised as well as pool references.
	ClassBuilder struct {
		name       string
		super      string
		interfaces []string
		signature  string
		source     string
		fields     []member
		methods    []member
		strings    []string
		classRefs  []string
		methodRefs [][3]string
	}

	member struct {
		name      string
		desc      string
		signature string
	}

	poolBuilder struct {
		buf   bytes.Buffer
		count uint16
		utf8  map[string]uint16
		class map[string]uint16
		str   map[string]uint16
	}
)

// NewClass starts a class with the given internal name extending
// java/lang/Object.
func NewClass(name string) *ClassBuilder {
	return &ClassBuilder{name: name, super: "java/lang/Object"}
}

// Super sets the super class.
func (b *ClassBuilder) Super(name string) *ClassBuilder {
	b.super = name
	return b
}

// Implements adds implemented interfaces.
func (b *ClassBuilder) Implements(names ...string) *ClassBuilder {
	b.interfaces = append(b.interfaces, names...)
	return b
}

// Signature sets the class generic signature.
func (b *ClassBuilder) Signature(sig string) *ClassBuilder {
	b.signature = sig
	return b
}

// SourceFile sets the SourceFile attribute.
func (b *ClassBuilder) SourceFile(name string) *ClassBuilder {
	b.source = name
	return b
}

// Field adds a field; signature may be empty.
func (b *ClassBuilder) Field(name, desc, signature string) *ClassBuilder {
	b.fields = append(b.fields, member{name: name, desc: desc, signature: signature})
	return b
}

// Method adds a method with a trivial body.
func (b *ClassBuilder) Method(name, desc string) *ClassBuilder {
	b.methods = append(b.methods, member{name: name, desc: desc})
	return b
}

// String adds a string literal constant.
func (b *ClassBuilder) String(value string) *ClassBuilder {
	b.strings = append(b.strings, value)
	return b
}

// ClassRef adds a class constant.
func (b *ClassBuilder) ClassRef(name string) *ClassBuilder {
	b.classRefs = append(b.classRefs, name)
	return b
}

// MethodRef adds a method reference constant.
func (b *ClassBuilder) MethodRef(owner, name, desc string) *ClassBuilder {
	b.methodRefs = append(b.methodRefs, [3]string{owner, name, desc})
	return b
}

// Bytes encodes the class file.
func (b *ClassBuilder) Bytes() []byte {
	p := &poolBuilder{
		count: 1,
		utf8:  make(map[string]uint16),
		class: make(map[string]uint16),
		str:   make(map[string]uint16),
	}

	var body bytes.Buffer
	u2 := func(v uint16) { _ = binary.Write(&body, binary.BigEndian, v) }
	u4 := func(v uint32) { _ = binary.Write(&body, binary.BigEndian, v) }

	u2(0x0021) // ACC_PUBLIC | ACC_SUPER
	u2(p.classIdx(b.name))
	u2(p.classIdx(b.super))
	u2(uint16(len(b.interfaces)))
	for _, i := range b.interfaces {
		u2(p.classIdx(i))
	}

	u2(uint16(len(b.fields)))
	for _, f := range b.fields {
		u2(0x0001)
		u2(p.utf8Idx(f.name))
		u2(p.utf8Idx(f.desc))
		if f.signature == "" {
			u2(0)
			continue
		}
		u2(1)
		u2(p.utf8Idx("Signature"))
		u4(2)
		u2(p.utf8Idx(f.signature))
	}

	u2(uint16(len(b.methods)))
	for _, m := range b.methods {
		u2(0x0001)
		u2(p.utf8Idx(m.name))
		u2(p.utf8Idx(m.desc))
		u2(1)
		u2(p.utf8Idx("Code"))
		// max_stack, max_locals, code_length, code, exception_table_length,
		// attributes_count, LocalVariableTable
		u4(2 + 2 + 4 + 1 + 2 + 2 + (6 + 2 + 10))
		u2(1)
		u2(1)
		u4(1)
		body.WriteByte(0xB1) // return
		u2(0)
		u2(1)
		u2(p.utf8Idx("LocalVariableTable"))
		u4(2 + 10)
		u2(1)
		u2(0)
		u2(1)
		u2(p.utf8Idx("this"))
		u2(p.utf8Idx("L" + b.name + ";"))
		u2(0)
	}

	for _, s := range b.strings {
		p.stringIdx(s)
	}
	for _, c := range b.classRefs {
		p.classIdx(c)
	}
	for _, r := range b.methodRefs {
		p.methodRefIdx(r[0], r[1], r[2])
	}

	var attrs [][2]uint16
	if b.signature != "" {
		attrs = append(attrs, [2]uint16{p.utf8Idx("Signature"), p.utf8Idx(b.signature)})
	}
	if b.source != "" {
		attrs = append(attrs, [2]uint16{p.utf8Idx("SourceFile"), p.utf8Idx(b.source)})
	}
	u2(uint16(len(attrs)))
	for _, a := range attrs {
		u2(a[0])
		u4(2)
		u2(a[1])
	}

	var out bytes.Buffer
	_ = binary.Write(&out, binary.BigEndian, uint32(0xCAFEBABE))
	_ = binary.Write(&out, binary.BigEndian, uint16(0))
	_ = binary.Write(&out, binary.BigEndian, uint16(52))
	_ = binary.Write(&out, binary.BigEndian, p.count)
	out.Write(p.buf.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

func (p *poolBuilder) add(tag byte, payload ...uint16) uint16 {
	idx := p.count
	p.count++
	p.buf.WriteByte(tag)
	for _, v := range payload {
		_ = binary.Write(&p.buf, binary.BigEndian, v)
	}
	return idx
}

func (p *poolBuilder) utf8Idx(v string) uint16 {
	if idx, ok := p.utf8[v]; ok {
		return idx
	}
	idx := p.add(1, uint16(len(v)))
	p.buf.WriteString(v)
	p.utf8[v] = idx
	return idx
}

func (p *poolBuilder) classIdx(name string) uint16 {
	if idx, ok := p.class[name]; ok {
		return idx
	}
	idx := p.add(7, p.utf8Idx(name))
	p.class[name] = idx
	return idx
}

func (p *poolBuilder) stringIdx(v string) uint16 {
	if idx, ok := p.str[v]; ok {
		return idx
	}
	idx := p.add(8, p.utf8Idx(v))
	p.str[v] = idx
	return idx
}

func (p *poolBuilder) methodRefIdx(owner, name, desc string) uint16 {
	class := p.classIdx(owner)
	nat := p.add(12, p.utf8Idx(name), p.utf8Idx(desc))
	return p.add(10, class, nat)
}
