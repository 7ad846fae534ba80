// SPDX-License-Identifier: MPL-2.0

package classfile

import "encoding/binary"

// Constant pool tags (JVMS §4.4).
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

const maxUtf8Len = 0xFFFF

// constant is one constant pool slot. UTF-8 constants keep their value in
// utf8; every other tag keeps its payload in raw so references can be patched
// in place. The unusable slot after a long or double has tag 0.
type constant struct {
	tag  byte
	utf8 string
	raw  []byte
}

// payloadSize returns the fixed payload length of non-UTF-8 tags.
func payloadSize(tag byte) (int, bool) {
	switch tag {
	case tagClass, tagString, tagMethodType, tagModule, tagPackage:
		return 2, true
	case tagMethodHandle:
		return 3, true
	case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
		tagNameAndType, tagDynamic, tagInvokeDynamic:
		return 4, true
	case tagLong, tagDouble:
		return 8, true
	}
	return 0, false
}

func (c constant) clone() constant {
	if c.raw != nil {
		c.raw = append([]byte(nil), c.raw...)
	}
	return c
}

func (c constant) appendTo(out []byte) []byte {
	if c.tag == 0 {
		return out
	}
	out = append(out, c.tag)
	if c.tag == tagUtf8 {
		out = binary.BigEndian.AppendUint16(out, uint16(len(c.utf8)))
		return append(out, c.utf8...)
	}
	return append(out, c.raw...)
}
