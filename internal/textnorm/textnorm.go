// Package textnorm normalizes text for file names and terminal output.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks: "Místnost Č. 3" -> "Mistnost C. 3".
// Letters without a decomposition (for example "ł") are kept.
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// placeholder replaces anything that cannot appear in a path segment.
const placeholder = "_"

// SafeSegment turns one location segment into a portable file or directory
// name. Characters reserved on common file systems and control characters
// become "_", and so do segments that are empty, "." or "..". With ascii
// set, accents are stripped first.
func SafeSegment(segment string, ascii bool) string {
	if ascii {
		segment = StripAccents(segment)
	}

	segment = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, segment)

	switch segment {
	case "", ".", "..":
		return placeholder
	}
	return segment
}
