// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"shade-cli/internal/issue"
	"shade-cli/pkg/archive"
	"shade-cli/pkg/filter"
	"shade-cli/pkg/relocation"
	"shade-cli/pkg/shade"

	"github.com/charmbracelet/log"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) and the issue help page before
// returning the underlying error to fang.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a failure to an issue catalog ID and returns a styled
// message for CLI rendering. IDs attached by the producing layer win;
// otherwise the sentinel errors of the engine packages decide.
func classifyError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	styledMsg = fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	if id, ok := issue.IssueOf(err); ok {
		return id, styledMsg
	}

	var openErr *archive.OpenError
	switch {
	case errors.As(err, &openErr) && errors.Is(openErr.Err, os.ErrNotExist):
		issueID = issue.InputNotFoundId
	case errors.Is(err, archive.ErrInvalidArchive):
		issueID = issue.InvalidArchiveId
	case errors.Is(err, shade.ErrRewrite):
		issueID = issue.RewriteFailedId
	case errors.Is(err, relocation.ErrInvalidRelocator), errors.Is(err, filter.ErrInvalidFilter):
		issueID = issue.InvalidRuleId
	case errors.Is(err, os.ErrPermission):
		issueID = issue.OutputNotWritableId
	}

	return issueID, styledMsg
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, glamourStyle string, logger *log.Logger) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(glamourStyle)
		if renderErr != nil {
			logger.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}
