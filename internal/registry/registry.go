// Package registry maps raw model labels scraped from the chat surface to
// canonical model identities. Known identities are declared as an ordered
// prefix table; anything that matches no prefix becomes a discovered
// identity on first occurrence.
package registry

import (
	"fmt"
	"sort"
)

// ErrIdentityUnavailable is returned when no raw label could be obtained at
// all. Callers must treat this as "do not record usage", not as a
// zero-count event.
var ErrIdentityUnavailable = fmt.Errorf("model identity unavailable")

// DeepResearchIdentity is the fixed identity committed by the
// research-confirmation trigger. It bypasses label resolution entirely.
const DeepResearchIdentity = "Deep Research"

// Entry binds a raw-label prefix to a canonical identity.
type Entry struct {
	Prefix   string `yaml:"prefix"`
	Identity string `yaml:"identity"`
}

// Registry is an ordered set of prefix-to-identity mappings.
type Registry struct {
	entries []Entry
	// byLength caches the entries sorted by descending prefix length,
	// ties broken by declaration order, which Resolve depends on.
	byLength []Entry
}

// Default returns the built-in registry for the Gemini model menu.
// Declaration order matters for tie-breaking and display order; prefix
// length, not order, decides matches.
func Default() *Registry {
	return New([]Entry{
		{Prefix: "2.5 Pro", Identity: "2.5 Pro"},
		{Prefix: "2.5 Flash", Identity: "2.5 Flash"},
		{Prefix: "2.0 Flash", Identity: "2.0 Flash"},
		{Prefix: "2.0 Flash Thinking", Identity: "2.0 Flash Thinking"},
		{Prefix: "Deep Research", Identity: DeepResearchIdentity},
	})
}

// New builds a registry from an ordered entry list.
func New(entries []Entry) *Registry {
	r := &Registry{entries: entries}

	r.byLength = make([]Entry, len(entries))
	copy(r.byLength, entries)
	sort.SliceStable(r.byLength, func(i, j int) bool {
		return len(r.byLength[i].Prefix) > len(r.byLength[j].Prefix)
	})

	return r
}

// Resolve maps a raw label to a canonical identity.
//
// The longest matching prefix wins: some known labels are prefixes of other
// known labels ("2.0 Flash" vs "2.0 Flash Thinking"), and matching longest
// first keeps the longer variant from being misclassified as the shorter
// one. A non-empty label that matches nothing is returned verbatim as a
// discovered identity. Only an empty label fails.
func (r *Registry) Resolve(rawLabel string) (string, error) {
	if rawLabel == "" {
		return "", ErrIdentityUnavailable
	}

	for _, e := range r.byLength {
		if hasPrefix(rawLabel, e.Prefix) {
			return e.Identity, nil
		}
	}

	return rawLabel, nil
}

// Known returns the canonical identities in declaration order, deduplicated.
func (r *Registry) Known() []string {
	seen := make(map[string]bool, len(r.entries))
	known := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		if seen[e.Identity] {
			continue
		}
		seen[e.Identity] = true
		known = append(known, e.Identity)
	}
	return known
}

// IsKnown reports whether identity appears in the registry.
func (r *Registry) IsKnown(identity string) bool {
	for _, e := range r.entries {
		if e.Identity == identity {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

func hasPrefix(s, prefix string) bool {
	return prefix != "" && len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
