package notes

import (
	"testing"
	"testing/quick"
	"time"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "untitled"},
		{"whitespace only", "   \t\n", "untitled"},
		{"simple", "Trip Plan", "Trip_Plan"},
		{"trimmed", "  Trip Plan  ", "Trip_Plan"},
		{"run of spaces", "a    b", "a_b"},
		{"allowed punctuation", "v1.2-final_draft", "v1.2-final_draft"},
		{"slashes", "../etc/passwd", ".._etc_passwd"},
		{"quotes", `"quoted"`, "_quoted_"},
		{"tab inside", "a\tb", "a_b"},
		{"unicode", "café", "caf_"},
		{"emoji", "🙂 day", "__day"},
		{"backslash", `a\b`, "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTitle(tt.input); got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeTitle_Idempotent(t *testing.T) {
	f := func(s string) bool {
		once := SanitizeTitle(s)
		return once != "" && SanitizeTitle(once) == once
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

func TestDefaultTitle(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 5, 3, 0, time.UTC)

	got := DefaultTitle(now)
	if got != "Note 2026-10-14 09.05.03" {
		t.Errorf("DefaultTitle() = %q", got)
	}
	if SanitizeTitle(got) != "Note_2026-10-14_09.05.03" {
		t.Errorf("SanitizeTitle(DefaultTitle()) = %q", SanitizeTitle(got))
	}
}
