package reconcile

import "strings"

// AdminMatchKind says which rule recognized a name as administrative.
// Checks run in preference order: an exact hit is reported even when a
// looser rule would also fire.
type AdminMatchKind string

const (
	AdminMatchNone      AdminMatchKind = ""
	AdminMatchExact     AdminMatchKind = "exact"
	AdminMatchPrefix    AdminMatchKind = "prefix"
	AdminMatchSubstring AdminMatchKind = "substring"
	AdminMatchFirstName AdminMatchKind = "first_name"
)

// AdminMatcher recognizes administrative and direct-sales accounts by
// name. Administrators technically trigger booking webhooks when they
// operate the calendar, but must never be attributed as the performing
// master of a visit.
type AdminMatcher struct {
	entries []adminEntry
}

type adminEntry struct {
	full  string
	first string
}

// NewAdminMatcher builds a matcher from the configured allow-list.
// Entries are normalized once; blank entries are ignored.
func NewAdminMatcher(names []string) *AdminMatcher {
	entries := make([]adminEntry, 0, len(names))
	for _, name := range names {
		full := normalizeName(name)
		if full == "" {
			continue
		}
		entries = append(entries, adminEntry{full: full, first: firstToken(full)})
	}
	return &AdminMatcher{entries: entries}
}

// Match reports whether the staff name belongs to an administrative
// account, and which rule recognized it.
func (m *AdminMatcher) Match(name string) AdminMatchKind {
	n := normalizeName(name)
	if n == "" || len(m.entries) == 0 {
		return AdminMatchNone
	}

	for _, e := range m.entries {
		if n == e.full {
			return AdminMatchExact
		}
	}
	for _, e := range m.entries {
		if strings.HasPrefix(n, e.full) {
			return AdminMatchPrefix
		}
	}
	for _, e := range m.entries {
		if strings.Contains(n, e.full) {
			return AdminMatchSubstring
		}
	}
	nFirst := firstToken(n)
	for _, e := range m.entries {
		if nFirst != "" && nFirst == e.first {
			return AdminMatchFirstName
		}
	}

	return AdminMatchNone
}

// IsAdmin reports whether the name matches any allow-list entry.
func (m *AdminMatcher) IsAdmin(name string) bool {
	return m.Match(name) != AdminMatchNone
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func firstToken(normalized string) string {
	if i := strings.IndexByte(normalized, ' '); i >= 0 {
		return normalized[:i]
	}
	return normalized
}
