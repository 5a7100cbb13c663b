package recs

import "testing"

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"Hindi", "hi"},
		{"hindi", "hi"},
		{"English", "en"},
		{"Japanese", "ja"},
		{"Korean", "ko"},
		{"hi", "hi"},
		{"hi-IN", "hi"},
		{"en-US", "en"},
		{"not a language at all", ""},
	}
	for _, tc := range cases {
		if got := NormalizeLanguage(tc.in); got != tc.want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
