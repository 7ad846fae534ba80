// SPDX-License-Identifier: MPL-2.0

package shade

import (
	"errors"
	"fmt"
)

var (
	// ErrRewrite is the sentinel error wrapped by RewriteError.
	ErrRewrite = errors.New("class rewrite failed")

	// ErrNoOutput is returned when a Request has no output path.
	ErrNoOutput = errors.New("no output archive specified")
)

// RewriteError reports a class entry the bytecode rewriter could not process.
// A partially relocated class is worse than no output, so the merge aborts.
type RewriteError struct {
	Archive string
	Entry   string
	Err     error
}

// Error implements the error interface for RewriteError.
func (e *RewriteError) Error() string {
	return fmt.Sprintf("failed to relocate class %s from %s: %v", e.Entry, e.Archive, e.Err)
}

// Unwrap returns ErrRewrite and the rewriter's error for errors.Is()/errors.As().
func (e *RewriteError) Unwrap() []error { return []error{ErrRewrite, e.Err} }
