// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Well-known failure classes additionally link to a catalog
// Issue whose Markdown page is rendered in the terminal with glamour.
package issue
