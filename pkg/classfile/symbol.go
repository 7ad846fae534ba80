// SPDX-License-Identifier: MPL-2.0

package classfile

import "strings"

// mapDescriptor maps every class name embedded in a field or method
// descriptor ("(ILcom/x/A;)[Lcom/x/B;").
func mapDescriptor(desc string, m Mapper) (string, error) {
	if !strings.ContainsRune(desc, 'L') {
		return desc, nil
	}

	var out strings.Builder
	out.Grow(len(desc))
	for i := 0; i < len(desc); {
		c := desc[i]
		if c != 'L' {
			out.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(desc[i:], ';')
		if end <= 1 {
			return "", &SymbolError{Value: desc, Msg: "unterminated class type"}
		}
		out.WriteByte('L')
		out.WriteString(m.Map(desc[i+1 : i+end]))
		out.WriteByte(';')
		i += end + 1
	}
	return out.String(), nil
}

// mapClassName maps a CONSTANT_Class name, which is an internal name or, for
// array classes, a descriptor.
func mapClassName(name string, m Mapper) (string, error) {
	if strings.HasPrefix(name, "[") {
		return mapDescriptor(name, m)
	}
	return m.Map(name), nil
}

// sigMapper maps the class names of a generic signature (JVMS §4.7.9.1).
type sigMapper struct {
	s   string
	i   int
	m   Mapper
	out strings.Builder
	err error
}

func mapSignature(sig string, m Mapper) (string, error) {
	if !strings.ContainsRune(sig, 'L') {
		return sig, nil
	}

	p := &sigMapper{s: sig, m: m}
	p.out.Grow(len(sig))
	p.signature()
	if p.err == nil && p.i != len(p.s) {
		p.fail("trailing characters")
	}
	if p.err != nil {
		return "", p.err
	}
	return p.out.String(), nil
}

func (p *sigMapper) signature() {
	if p.peek() == '<' {
		p.typeParameters()
	}
	if p.peek() == '(' {
		p.emit()
		for p.err == nil && p.peek() != ')' {
			p.javaType()
		}
		p.expect(')')
		p.javaType()
		for p.err == nil && p.peek() == '^' {
			p.emit()
			p.fieldType()
		}
		return
	}
	for p.err == nil && p.i < len(p.s) {
		p.fieldType()
	}
}

func (p *sigMapper) typeParameters() {
	p.expect('<')
	for p.err == nil && p.peek() != '>' {
		p.out.WriteString(p.identifier(":"))
		for p.err == nil && p.peek() == ':' {
			p.emit()
			switch p.peek() {
			case 'L', 'T', '[':
				p.fieldType()
			}
		}
	}
	p.expect('>')
}

func (p *sigMapper) javaType() {
	switch p.peek() {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 'V':
		p.emit()
	default:
		p.fieldType()
	}
}

func (p *sigMapper) fieldType() {
	switch p.peek() {
	case 'L':
		p.classType()
	case 'T':
		p.emit()
		p.out.WriteString(p.identifier(";"))
		p.expect(';')
	case '[':
		p.emit()
		p.javaType()
	default:
		p.fail("expected a reference type")
	}
}

func (p *sigMapper) classType() {
	p.expect('L')
	name := p.identifier("<.;")
	if p.err != nil {
		return
	}
	mapped := p.m.Map(name)
	p.out.WriteString(mapped)

	for p.err == nil {
		switch p.peek() {
		case '<':
			p.typeArguments()
		case '.':
			p.emit()
			inner := p.identifier("<.;")
			if p.err != nil {
				return
			}
			// Inner classes are mapped through their binary name and the
			// relocated outer prefix is stripped again.
			name += "$" + inner
			outerPrefix := mapped + "$"
			mapped = p.m.Map(name)
			if strings.HasPrefix(mapped, outerPrefix) {
				p.out.WriteString(mapped[len(outerPrefix):])
			} else {
				p.out.WriteString(mapped[strings.LastIndexByte(mapped, '$')+1:])
			}
		case ';':
			p.emit()
			return
		default:
			p.fail("unterminated class type")
		}
	}
}

func (p *sigMapper) typeArguments() {
	p.expect('<')
	for p.err == nil && p.peek() != '>' {
		switch p.peek() {
		case '*':
			p.emit()
		case '+', '-':
			p.emit()
			p.fieldType()
		default:
			p.fieldType()
		}
	}
	p.expect('>')
}

// identifier consumes bytes up to (not including) any byte in stop.
func (p *sigMapper) identifier(stop string) string {
	start := p.i
	for p.i < len(p.s) && strings.IndexByte(stop, p.s[p.i]) < 0 {
		p.i++
	}
	if p.i == start || p.i == len(p.s) {
		p.fail("bad identifier")
		return ""
	}
	return p.s[start:p.i]
}

func (p *sigMapper) peek() byte {
	if p.err != nil || p.i >= len(p.s) {
		return 0
	}
	return p.s[p.i]
}

func (p *sigMapper) emit() {
	p.out.WriteByte(p.s[p.i])
	p.i++
}

func (p *sigMapper) expect(c byte) {
	if p.peek() != c {
		p.fail("expected " + string(c))
		return
	}
	p.emit()
}

func (p *sigMapper) fail(msg string) {
	if p.err == nil {
		p.err = &SymbolError{Value: p.s, Msg: msg}
	}
}
