package reconcile

import "testing"

func TestAdminMatcher_MatchKinds(t *testing.T) {
	matcher := NewAdminMatcher([]string{"Olena Admin", "  Direct Sales  "})

	cases := []struct {
		name string
		want AdminMatchKind
	}{
		{"Olena Admin", AdminMatchExact},
		{"olena admin", AdminMatchExact},
		{"OLENA   ADMIN", AdminMatchExact},
		{"Olena Admin (reception)", AdminMatchPrefix},
		{"Front desk Olena Admin", AdminMatchSubstring},
		{"Olena Petrenko", AdminMatchFirstName},
		{"Direct Sales", AdminMatchExact},
		{"Maria Ivanova", AdminMatchNone},
		{"", AdminMatchNone},
	}

	for _, tc := range cases {
		if got := matcher.Match(tc.name); got != tc.want {
			t.Errorf("Match(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestAdminMatcher_EmptyAllowList(t *testing.T) {
	matcher := NewAdminMatcher(nil)
	if matcher.IsAdmin("Olena Admin") {
		t.Error("empty allow-list must match nobody")
	}
}

func TestAdminMatcher_BlankEntriesIgnored(t *testing.T) {
	matcher := NewAdminMatcher([]string{"", "   ", "Olena"})
	if !matcher.IsAdmin("Olena") {
		t.Error("expected Olena to match")
	}
	if matcher.IsAdmin("Maria") {
		t.Error("blank entries must not match everything")
	}
}
