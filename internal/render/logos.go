package render

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlaceholderLogo is a grey "NA" badge used when a team has no logo file.
const PlaceholderLogo = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMzYiIGhlaWdodD0iMzYiIHZpZXdCb3g9IjAgMCAzNiAzNiIgZmlsbD0ibm9uZSIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMzYiIGhlaWdodD0iMzYiIGZpbGw9IiNFRUVFRUUiLz48dGV4dCB4PSI1MCUiIHk9IjUwJSIgZG9taW5hbnQtYmFzZWxpbmU9Im1pZGRsZSIgdGV4dC1hbmNob3I9Im1pZGRsZSIgZmlsbD0iIzk5OTk5OSIgZm9udC1mYW1pbHk9InNhbnMtc2VyaWYiIGZvbnQtc2l6ZT0iMTIiPk5BPC90ZXh0Pjwvc3ZnPg=="

// LogoPath is where team logos are served from.
const LogoPath = "/static/logos/"

var spaces = regexp.MustCompile(`\s+`)

// Slug turns a team name into its file and URL form: "Red Wings" -> "red_wings".
func Slug(team string) string {
	return spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(team)), "_")
}

// TeamFromSlug maps a slug back to a team name. Known names are matched
// first; otherwise underscores become spaces and each word is capitalized.
func TeamFromSlug(slug string, known []string) string {
	for _, name := range known {
		if Slug(name) == strings.ToLower(slug) {
			return name
		}
	}

	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// LogoCandidates lists the image sources to try for team, in order. The
// last entry is always the placeholder.
func LogoCandidates(team string) []string {
	slug := Slug(team)
	if slug == "" {
		return []string{PlaceholderLogo}
	}
	return []string{
		LogoPath + slug + ".png",
		LogoPath + slug + ".svg",
		PlaceholderLogo,
	}
}
