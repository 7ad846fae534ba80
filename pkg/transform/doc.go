// SPDX-License-Identifier: MPL-2.0

// Package transform merges resources that must not simply be copied
// first-wins: manifests, service registrations and other files whose content
// from every archive has to survive.
//
// A Transformer absorbs entries it recognizes by name during the merge and
// writes its accumulated result through an EntryWriter once the orchestrator
// asks it to. At most one transformer absorbs a given entry.
package transform
