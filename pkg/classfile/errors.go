// SPDX-License-Identifier: MPL-2.0

package classfile

import (
	"errors"
	"fmt"
)

// ErrMalformed is the sentinel error wrapped by FormatError and SymbolError.
var ErrMalformed = errors.New("malformed class file")

type (
	// FormatError reports a structural problem at a byte offset.
	FormatError struct {
		Offset int
		Msg    string
	}

	// SymbolError reports a descriptor or signature that does not follow the
	// JVM grammar.
	SymbolError struct {
		Value string
		Msg   string
	}
)

// Error implements the error interface for FormatError.
func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed class file at offset %d: %s", e.Offset, e.Msg)
}

// Unwrap returns ErrMalformed for errors.Is() compatibility.
func (e *FormatError) Unwrap() error { return ErrMalformed }

// Error implements the error interface for SymbolError.
func (e *SymbolError) Error() string {
	return fmt.Sprintf("malformed symbol %q: %s", e.Value, e.Msg)
}

// Unwrap returns ErrMalformed for errors.Is() compatibility.
func (e *SymbolError) Unwrap() error { return ErrMalformed }
