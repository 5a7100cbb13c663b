package recs

import (
	"testing"

	"mediapick/recservice/internal/domain"
)

func TestGenresForMood(t *testing.T) {
	cases := []struct {
		mood string
		want []string
	}{
		{"feel-good", []string{"Comedy", "Adventure", "Romance"}},
		{"Feel-Good", []string{"Comedy", "Adventure", "Romance"}},
		{"suspenseful", []string{"Thriller", "Horror", "Crime"}},
		{"mind-bending", []string{"Sci-Fi", "Mystery", "Fantasy"}},
		{"melancholic", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := GenresForMood(tc.mood)
		if len(got) != len(tc.want) {
			t.Fatalf("GenresForMood(%q) = %v, want %v", tc.mood, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("GenresForMood(%q) = %v, want %v", tc.mood, got, tc.want)
			}
		}
	}
}

func TestGenreMatches(t *testing.T) {
	cases := []struct {
		selected string
		item     string
		want     bool
	}{
		{"thriller", "Thriller", true},
		{"Thriller", "Psychological Thriller", true},
		{"thriller", "Suspense", true},
		{"thriller", "Crime", true},
		{"fantasy", "Magic", true},
		{"fantasy", "Supernatural", true},
		{"action", "Adventure", true},
		{"sci-fi", "Science Fiction", true},
		{"science fiction", "Sci-Fi", true},
		{"romance", "Horror", false},
		{"", "Drama", false},
		{"drama", "", false},
	}
	for _, tc := range cases {
		if got := GenreMatches(tc.selected, tc.item); got != tc.want {
			t.Fatalf("GenreMatches(%q, %q) = %v, want %v", tc.selected, tc.item, got, tc.want)
		}
	}
}

func TestMatchesSelectedGenres(t *testing.T) {
	item := domain.MediaItem{Genres: []string{"Drama", "Crime"}}
	if !matchesSelectedGenres(item, []string{"thriller"}) {
		t.Fatalf("crime item should satisfy a thriller selection")
	}
	if matchesSelectedGenres(item, []string{"romance"}) {
		t.Fatalf("drama/crime item should not satisfy a romance selection")
	}
	if !matchesSelectedGenres(item, nil) {
		t.Fatalf("empty selection must match everything")
	}
}
