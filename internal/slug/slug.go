// Package slug derives URL-safe, collection-unique identifiers from titles.
package slug

import (
	"fmt"
	"strings"
	"unicode"
)

// Make normalizes a title into a base slug: lowercase, every run of
// non-alphanumeric characters collapsed to a single hyphen, leading and
// trailing hyphens stripped. A fully non-alphanumeric title yields "".
func Make(title string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Taken reports whether a candidate slug is already in use.
type Taken func(candidate string) (bool, error)

// Unique returns base if it is free, otherwise probes base-1, base-2, ...
// until a free candidate is found. An empty base still terminates: the
// numeric suffix is appended to the empty string.
func Unique(base string, taken Taken) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		inUse, err := taken(candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// ForTitle is the common path: derive the base from title and uniquify it.
func ForTitle(title string, taken Taken) (string, error) {
	return Unique(Make(title), taken)
}
