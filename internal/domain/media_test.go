package domain

import (
	"reflect"
	"testing"
)

func TestParseContentType(t *testing.T) {
	cases := []struct {
		in   string
		want ContentType
		ok   bool
	}{
		{"movie", ContentTypeMovie, true},
		{"Movie", ContentTypeMovie, true},
		{"  SERIES ", ContentTypeSeries, true},
		{"book", ContentTypeBook, true},
		{"anime", ContentTypeAnime, true},
		{"podcast", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseContentType(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseContentType(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRatingHelpers(t *testing.T) {
	if got := HalveRating(8.6); got != 4.3 {
		t.Fatalf("HalveRating(8.6) = %f", got)
	}
	if got := HalveRating(12); got != RatingMax {
		t.Fatalf("HalveRating(12) = %f, want clamp to %f", got, RatingMax)
	}
	if got := ClampRating(-1); got != 0 {
		t.Fatalf("ClampRating(-1) = %f", got)
	}
	if got := ClampRating(7); got != RatingMax {
		t.Fatalf("ClampRating(7) = %f", got)
	}
	if got := ClampRating(3.3); got != 3.3 {
		t.Fatalf("ClampRating(3.3) = %f", got)
	}
}

func TestDedupGenres(t *testing.T) {
	got := DedupGenres([]string{"Drama", "drama", " Thriller ", "", "DRAMA", "Crime"})
	want := []string{"Drama", "Thriller", "Crime"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DedupGenres = %v, want %v", got, want)
	}
	if DedupGenres(nil) != nil {
		t.Fatalf("nil input must yield nil")
	}
}

func TestNormalizeMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"refresh", ModeRefresh},
		{"loadMore", ModeLoadMore},
		{"initial", ModeInitial},
		{"", ModeInitial},
		{"garbage", ModeInitial},
	}
	for _, tc := range cases {
		if got := NormalizeMode(tc.in); got != tc.want {
			t.Fatalf("NormalizeMode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMediaItemKey(t *testing.T) {
	a := MediaItem{ID: "42", Type: ContentTypeMovie}
	b := MediaItem{ID: "42", Type: ContentTypeBook}
	if a.Key() == b.Key() {
		t.Fatalf("same id across types must not collide: %s", a.Key())
	}
	if a.Key() != "movie:42" {
		t.Fatalf("Key() = %q", a.Key())
	}
}
