// Package util holds small helpers shared across the application.
package util

import (
	"strings"
	"unicode"
)

// commonTypos maps frequent misspellings to their corrections. A real
// dictionary-backed checker stays out until the dependency is worth it;
// this covers the typos that actually show up in review text.
var commonTypos = map[string]string{
	"teh":        "the",
	"recieve":    "receive",
	"adress":     "address",
	"definately": "definitely",
	"seperate":   "separate",
	"ocassion":   "occasion",
	"occurence":  "occurrence",
}

// Spellcheck replaces known typos in text, preserving the original
// capitalization shape of each corrected word.
func Spellcheck(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))

	word := make([]rune, 0, 16)
	flush := func() {
		if len(word) == 0 {
			return
		}
		b.WriteString(correctWord(string(word)))
		word = word[:0]
	}

	for _, r := range text {
		if unicode.IsLetter(r) {
			word = append(word, r)
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()

	return b.String()
}

func correctWord(word string) string {
	replacement, ok := commonTypos[strings.ToLower(word)]
	if !ok {
		return word
	}

	switch {
	case word == strings.ToUpper(word) && len(word) > 1:
		return strings.ToUpper(replacement)
	case unicode.IsUpper([]rune(word)[0]):
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	default:
		return replacement
	}
}
