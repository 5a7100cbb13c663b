package recs

import (
	"strings"

	"mediapick/recservice/internal/domain"
)

// maxSelectedGenres matches the UI limit of three picked genres.
const maxSelectedGenres = 3

// moodGenres maps a mood preset onto the genre set it implies. A mood is an
// alternative to explicit genre selection, never combined with it.
var moodGenres = map[string][]string{
	"feel-good":     {"Comedy", "Adventure", "Romance"},
	"suspenseful":   {"Thriller", "Horror", "Crime"},
	"light-hearted": {"Comedy", "Adventure", "Romance"},
	"mind-bending":  {"Sci-Fi", "Mystery", "Fantasy"},
}

// GenresForMood resolves a mood preset to its genre list, or nil for an
// unknown mood.
func GenresForMood(mood string) []string {
	genres := moodGenres[strings.ToLower(strings.TrimSpace(mood))]
	if genres == nil {
		return nil
	}
	return append([]string(nil), genres...)
}

// genreSynonyms widens fuzzy matching across labels that upstream catalogs
// use interchangeably. Applied symmetrically: either side of a pair may be
// the user's selection.
var genreSynonyms = map[string][]string{
	"thriller": {"suspense", "crime"},
	"fantasy":  {"magic", "supernatural"},
	"action":   {"adventure"},
	"sci-fi":   {"science fiction"},
}

// GenreMatches reports whether an item genre satisfies a selected genre.
// Matching is case-insensitive substring overlap in either direction plus
// the synonym table.
func GenreMatches(selected, itemGenre string) bool {
	sel := strings.ToLower(strings.TrimSpace(selected))
	item := strings.ToLower(strings.TrimSpace(itemGenre))
	if sel == "" || item == "" {
		return false
	}
	if strings.Contains(item, sel) || strings.Contains(sel, item) {
		return true
	}
	for _, synonym := range genreSynonyms[sel] {
		if strings.Contains(item, synonym) {
			return true
		}
	}
	for _, synonym := range genreSynonyms[item] {
		if strings.Contains(sel, synonym) {
			return true
		}
	}
	return false
}

// matchesSelectedGenres reports whether any of the item's genres satisfies
// any selected genre. Books get the same fuzzy rules; their upstream genre
// metadata is sparse, so the aggregator additionally stuffs the user's
// selection into book genre lists at normalization time (see the books
// source), which makes the lenient path implicit here.
func matchesSelectedGenres(item domain.MediaItem, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, sel := range selected {
		for _, genre := range item.Genres {
			if GenreMatches(sel, genre) {
				return true
			}
		}
	}
	return false
}
