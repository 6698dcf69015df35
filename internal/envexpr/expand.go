// Package envexpr expands ${env.KEY} expressions in configuration text.
package envexpr

import (
	"os"
	"strings"
	"unicode"
)

const prefix = "${env."

// Expand replaces every ${env.KEY} in text with the value of the environment
// variable KEY. Unset variables expand to an empty string.
func Expand(text string) string {
	return ExpandWith(text, os.Getenv)
}

// ExpandWith is Expand resolving keys with lookup.
// An expression whose key is empty or holds characters other than letters,
// digits or '_' is kept verbatim up to the key, which is then scanned again.
// An expression without a closing brace is kept verbatim.
func ExpandWith(text string, lookup func(key string) string) string {
	var b strings.Builder
	for {
		index := strings.Index(text, prefix)
		if index == -1 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:index])
		rest := text[index+len(prefix):]
		end := strings.IndexByte(rest, '}')
		if end == -1 {
			b.WriteString(text[index:])
			return b.String()
		}
		key := rest[:end]
		if !isKey(key) {
			b.WriteString(prefix)
			text = rest
			continue
		}
		b.WriteString(lookup(key))
		text = rest[end+1:]
	}
}

func isKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
