package sheets

import (
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// ParseLine splits one line of sheet CSV into trimmed fields.
//
// A double quote toggles quoted mode and is not copied into the field; commas
// inside quotes are literal. An unterminated quote keeps the rest of the line
// in one field. The empty line yields a single empty field.
func ParseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}

// SplitLines splits a CSV body into lines, accepting both LF and CRLF endings.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// Field returns fields[i], or "" when the row is too short.
func Field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}
