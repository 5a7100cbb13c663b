package tmdb

import (
	"sort"
	"strconv"
	"strings"

	"mediapick/recservice/internal/domain"
)

// movieGenreIDs and seriesGenreIDs map the display genre labels onto the
// upstream numeric ids. Television reuses combined ids for a few labels
// (Action and Adventure share 10759, Fantasy and Sci-Fi share 10765).
var movieGenreIDs = map[string]int{
	"action":     28,
	"adventure":  12,
	"comedy":     35,
	"crime":      80,
	"drama":      18,
	"fantasy":    14,
	"historical": 36,
	"horror":     27,
	"mystery":    9648,
	"romance":    10749,
	"sci-fi":     878,
	"thriller":   53,
}

var seriesGenreIDs = map[string]int{
	"action":     10759,
	"adventure":  10759,
	"comedy":     35,
	"crime":      80,
	"drama":      18,
	"fantasy":    10765,
	"historical": 10768,
	"horror":     9648,
	"mystery":    9648,
	"romance":    10749,
	"sci-fi":     10765,
	"thriller":   80,
}

var movieGenreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "Historical",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Sci-Fi",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

var seriesGenreNames = map[int]string{
	10759: "Action & Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	10762: "Kids",
	9648:  "Mystery",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
	10749: "Romance",
	37:    "Western",
}

// genreIDParam builds the with_genres query value for the selected labels.
// Unknown labels are skipped; an empty result means no genre bias upstream.
func genreIDParam(genres []string, ids map[string]int) string {
	if len(genres) == 0 {
		return ""
	}
	seen := make(map[int]struct{}, len(genres))
	mapped := make([]int, 0, len(genres))
	for _, genre := range genres {
		id, ok := ids[strings.ToLower(strings.TrimSpace(genre))]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		mapped = append(mapped, id)
	}
	if len(mapped) == 0 {
		return ""
	}
	sort.Ints(mapped)
	parts := make([]string, len(mapped))
	for i, id := range mapped {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// genreLabels resolves upstream genre ids to display labels, substituting
// GenreOther for anything unmapped.
func genreLabels(ids []int, names map[int]string) []string {
	if len(ids) == 0 {
		return nil
	}
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		label, ok := names[id]
		if !ok {
			label = domain.GenreOther
		}
		labels = append(labels, label)
	}
	return domain.DedupGenres(labels)
}
