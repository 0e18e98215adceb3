// Package slug generates URL-safe identifiers from titles.
package slug

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Make converts a title into a lowercase, hyphen-separated slug.
// Non-alphanumeric runs collapse into a single hyphen.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// Disambiguate appends a millisecond timestamp suffix to an already-taken
// slug. Collisions after suffixing are possible in principle but the unique
// constraint on the column remains the backstop.
func Disambiguate(s string) string {
	return s + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
