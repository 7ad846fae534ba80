// SPDX-License-Identifier: MPL-2.0

// Package filter decides which entries of which input archives are left out of
// a merge.
//
// A Filter first answers whether it applies to an archive at all; the
// orchestrator resolves that once per archive and then asks the applicable
// filters about each entry by its original name. Finished is called once per
// merge, whatever the outcome, so filters can report on their own use.
package filter
