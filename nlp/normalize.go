package nlp

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/rangetable"
)

const (
	alefWasla = 'ٱ'
	alef      = 'ا'
	tatweel   = 'ـ'
)

// diacritics covers harakat, tanween, shadda, sukun, maddah, hamza marks,
// subscript/superscript alef and the Qur'anic annotation marks.
var diacritics = rangetable.New(appendRange(nil,
	[2]rune{0x0610, 0x061A},
	[2]rune{0x064B, 0x065F},
	[2]rune{0x0670, 0x0670},
	[2]rune{0x06D6, 0x06DC},
	[2]rune{0x06DF, 0x06E4},
	[2]rune{0x06E7, 0x06E8},
	[2]rune{0x06EA, 0x06ED},
)...)

var diacriticSet = runes.In(diacritics)

var keyFolder = strings.NewReplacer(string(alefWasla), string(alef), string(tatweel), "")

func appendRange(dst []rune, ranges ...[2]rune) []rune {
	for _, r := range ranges {
		for c := r[0]; c <= r[1]; c++ {
			dst = append(dst, c)
		}
	}
	return dst
}

// IsDiacritic reports whether r is one of the combining marks removed by Strip.
func IsDiacritic(r rune) bool {
	return diacriticSet.Contains(r)
}

// Strip removes every Arabic combining diacritic from s.
// The stored surface form is never replaced by this value; use it only for comparison.
func Strip(s string) string {
	result, _, err := transform.String(runes.Remove(diacriticSet), s)
	if err != nil {
		return s
	}
	return result
}

// Fold maps alef wasla to alef and drops tatweel.
func Fold(s string) string {
	return keyFolder.Replace(s)
}

// Key is the dictionary lookup key: Strip followed by Fold.
func Key(s string) string {
	return Fold(Strip(s))
}

// LetterCount counts base letters, ignoring diacritics.
func LetterCount(s string) int {
	count := 0
	for _, r := range s {
		if !IsDiacritic(r) {
			count++
		}
	}
	return count
}

// SplitLetters splits s after the n-th base letter, keeping the combining
// marks that follow that letter on the left-hand side.
func SplitLetters(s string, n int) (head, tail string) {
	seen := 0
	for i, r := range s {
		if IsDiacritic(r) {
			continue
		}
		if seen == n {
			return s[:i], s[i:]
		}
		seen++
	}
	return s, ""
}
