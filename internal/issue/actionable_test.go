// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "merge archives"},
			expected: "failed to merge archives",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "open input archive", Resource: "lib/a.jar"},
			expected: "failed to open input archive: lib/a.jar",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error at line 5")},
			expected: "failed to load configuration: syntax error at line 5",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "open input archive",
				Resource:  "lib/a.jar",
				Cause:     errors.New("zip: not a valid zip file"),
			},
			expected: "failed to open input archive: lib/a.jar: zip: not a valid zip file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	inner := errors.New("permission denied")
	err := &ActionableError{
		Operation:   "create output archive",
		Resource:    "/out/app.jar",
		Suggestions: []string{"Check permissions", "Choose another location"},
		Cause:       fmt.Errorf("open: %w", inner),
	}

	short := err.Format(false)
	if !strings.Contains(short, "• Check permissions") || !strings.Contains(short, "• Choose another location") {
		t.Errorf("Format(false) = %q, want both suggestions", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") || !strings.Contains(verbose, "2. permission denied") {
		t.Errorf("Format(true) = %q, want the error chain", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("merge archives").
		WithResource("out.jar").
		WithSuggestion("one").
		WithSuggestions("two", "three").
		WithIssue(RewriteFailedId).
		Wrap(cause).
		Build()

	if ae.Operation != "merge archives" || ae.Resource != "out.jar" || ae.Issue != RewriteFailedId {
		t.Errorf("Build() = %+v", ae)
	}
	if len(ae.Suggestions) != 3 || !ae.HasSuggestions() {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error should wrap the cause")
	}
}

func TestWrapWithOperation(t *testing.T) {
	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}
	err := WrapWithOperation(errors.New("boom"), "write report")
	if err.Error() != "failed to write report: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIssueOf(t *testing.T) {
	inner := NewErrorContext().WithOperation("open input archive").WithIssue(InvalidArchiveId).Wrap(errors.New("bad")).BuildError()
	outer := NewErrorContext().WithOperation("merge archives").Wrap(inner).BuildError()

	if id, ok := IssueOf(fmt.Errorf("cli: %w", outer)); !ok || id != InvalidArchiveId {
		t.Errorf("IssueOf() = %d, %v, want InvalidArchiveId", id, ok)
	}
	if _, ok := IssueOf(errors.New("plain")); ok {
		t.Error("IssueOf(plain error) should report false")
	}
	if _, ok := IssueOf(WrapWithOperation(errors.New("x"), "y")); ok {
		t.Error("IssueOf() without an issue id should report false")
	}
}
