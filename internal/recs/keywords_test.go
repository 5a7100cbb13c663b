package recs

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   \n  ", nil},
		{"single title", "Inception", []string{"Inception"}},
		{"comma separated", "Inception, Dark, Dune", []string{"Inception", "Dark", "Dune"}},
		{"mixed separators", "Inception; Dark/Dune", []string{"Inception", "Dark", "Dune"}},
		{"caps at three", "One11, Two22, Three33, Four44", []string{"One11", "Two22", "Three33"}},
		{"drops short fragments", "It, ok, Inception", []string{"Inception"}},
		{"long title truncated to first words", "The Lord of the Rings: The Fellowship of the Ring", []string{"The Lord of"}},
		{"newline separated", "Breaking Bad\nThe Wire", []string{"Breaking Bad", "The Wire"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractKeywords(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractKeywords(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
