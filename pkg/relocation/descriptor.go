// SPDX-License-Identifier: MPL-2.0

package relocation

const (
	arrayMarker  = '['
	objectMarker = 'L'
	terminator   = ';'
)

// DescriptorKind classifies a token recognized by ParseDescriptor.
type DescriptorKind int

const (
	// KindPlain is any token that is not a type descriptor.
	KindPlain DescriptorKind = iota
	// KindObject is an object or object-array descriptor ("Lcom/x/Foo;", "[[Lcom/x/Foo;").
	KindObject
	// KindPrimitive is a primitive or primitive-array descriptor ("I", "[[J").
	KindPrimitive
)

// Descriptor is a token split into the part a relocator may rewrite (Name) and
// the markers around it that are reattached unchanged.
type Descriptor struct {
	Kind DescriptorKind
	// Prefix holds the array markers plus the object marker (e.g. "[[L").
	Prefix string
	// Name is the internal class name for object descriptors, or the whole
	// token for plain names.
	Name string
	// Suffix holds the terminator for object descriptors.
	Suffix string
}

// String reassembles the descriptor.
func (d Descriptor) String() string {
	return d.Prefix + d.Name + d.Suffix
}

// ParseDescriptor recognizes the grammar
//
//	'['* ( 'L' name ';' | primitive )
//
// where name is non-empty. Anything else is returned as a plain token with
// empty prefix and suffix. A lone primitive letter is plain: it is
// indistinguishable from a one-letter class name.
func ParseDescriptor(token string) Descriptor {
	plain := Descriptor{Kind: KindPlain, Name: token}

	i := 0
	for i < len(token) && token[i] == arrayMarker {
		i++
	}
	if i == len(token) {
		return plain
	}

	switch c := token[i]; {
	case c == objectMarker:
		// Need at least one name byte between the marker and the terminator.
		if len(token)-i < 3 || token[len(token)-1] != terminator {
			return plain
		}
		return Descriptor{
			Kind:   KindObject,
			Prefix: token[:i+1],
			Name:   token[i+1 : len(token)-1],
			Suffix: string(terminator),
		}
	case i > 0 && i == len(token)-1 && isPrimitive(c):
		return Descriptor{Kind: KindPrimitive, Prefix: token[:i], Name: token[i:]}
	default:
		return plain
	}
}

func isPrimitive(c byte) bool {
	switch c {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return true
	}
	return false
}
