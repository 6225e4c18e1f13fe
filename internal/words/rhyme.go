package words

import "strings"

// Endings too common to carry a rhyme on their own. When a word's final
// vowel group lands on one of these, the rhyme tail extends back to the
// previous vowel group, so "batter" keys on "atter" rather than "er".
var weakEndings = map[string]bool{
	"er": true, "y": true, "ey": true, "ie": true, "le": true, "en": true,
	"ed": true, "es": true, "ing": true, "ly": true, "or": true, "el": true,
}

func isVowel(r byte) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// RhymeTail returns the portion of word that must match for two words to
// rhyme. Words without vowels rhyme on their whole spelling.
func RhymeTail(word string) string {
	w := strings.ToLower(word)
	// silent trailing e: "late" keys on "ate", not on the final "e"
	end := len(w)
	if end > 2 && w[end-1] == 'e' && !isVowel(w[end-2]) {
		end--
	}

	start := lastVowelGroup(w, end)
	if start < 0 {
		return w
	}
	if weakEndings[w[start:]] || weakEndings[w[start:end]] {
		if prev := lastVowelGroup(w, start); prev >= 0 {
			start = prev
		}
	}
	return w[start:]
}

// lastVowelGroup returns the start index of the last run of vowels that
// begins before end, or -1.
func lastVowelGroup(w string, end int) int {
	i := end - 1
	for i >= 0 && !isVowel(w[i]) {
		i--
	}
	if i < 0 {
		return -1
	}
	for i > 0 && isVowel(w[i-1]) {
		i--
	}
	return i
}

// Rhymes reports whether a and b share a rhyme tail. A word does not rhyme
// with itself.
func Rhymes(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" || a == b {
		return false
	}
	return RhymeTail(a) == RhymeTail(b)
}
