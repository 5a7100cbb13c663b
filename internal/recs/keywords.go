package recs

import "strings"

const (
	maxKeywords       = 3
	minKeywordLength  = 3
	longTitleCutoff   = 20
	longTitleWordKeep = 3
)

// ExtractKeywords derives up to three short keywords from free-text
// "titles you've enjoyed before" input. It splits on common separators,
// drops fragments too short to be meaningful, and truncates verbose titles
// to their first few words so search backends get a usable query.
// Empty or whitespace-only input yields no keywords.
func ExtractKeywords(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	fragments := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ',', ';', '/', '\n':
			return true
		}
		return false
	})

	keywords := make([]string, 0, maxKeywords)
	for _, fragment := range fragments {
		title := strings.TrimSpace(fragment)
		if len(title) < minKeywordLength {
			continue
		}
		if len(title) > longTitleCutoff {
			words := strings.Fields(title)
			if len(words) > longTitleWordKeep {
				words = words[:longTitleWordKeep]
			}
			title = strings.Join(words, " ")
		}
		keywords = append(keywords, title)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
