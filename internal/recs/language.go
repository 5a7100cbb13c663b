package recs

import (
	"strings"

	"golang.org/x/text/language"
)

// displayNameTags maps the language names the UI offers to their BCP 47 tags.
// Anything else is parsed as a raw tag and reduced to its base language.
var displayNameTags = map[string]language.Tag{
	"english":  language.English,
	"hindi":    language.Hindi,
	"japanese": language.Japanese,
	"korean":   language.Korean,
	"spanish":  language.Spanish,
	"french":   language.French,
	"german":   language.German,
}

// NormalizeLanguage turns a user-facing language selection ("Hindi", "hi",
// "hi-IN") into the two-letter code upstream catalogs expect. Unrecognized
// input yields the empty string, meaning no language bias.
func NormalizeLanguage(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if tag, ok := displayNameTags[strings.ToLower(value)]; ok {
		base, _ := tag.Base()
		return base.String()
	}
	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}
