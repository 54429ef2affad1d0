package automaton

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Tokenize splits s into symbols. When the alphabet contains multi-character
// symbols the longest declared symbol matching at each position wins;
// otherwise, and for characters not starting any declared symbol, each rune
// is its own symbol. Undeclared runes are kept so the engine can report them
// as invalid.
func Tokenize(s string, alphabet []Symbol) []Symbol {
	if s == "" {
		return []Symbol{}
	}

	candidates := make([]Symbol, 0, len(alphabet))
	for _, sym := range alphabet {
		if utf8.RuneCountInString(sym) > 1 {
			candidates = append(candidates, sym)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})

	out := make([]Symbol, 0, utf8.RuneCountInString(s))

	for len(s) > 0 {
		matched := ""

		for _, sym := range candidates {
			if strings.HasPrefix(s, sym) {
				matched = sym

				break
			}
		}

		if matched == "" {
			_, size := utf8.DecodeRuneInString(s)
			matched = s[:size]
		}

		out = append(out, matched)
		s = s[len(matched):]
	}

	return out
}

// Fields splits s on whitespace, for alphabets whose symbols are written
// space separated.
func Fields(s string) []Symbol {
	return strings.Fields(s)
}

// Join renders symbols back to text. Multi-character symbols are separated
// by spaces so the result can be tokenized again.
func Join(symbols []Symbol) string {
	for _, sym := range symbols {
		if utf8.RuneCountInString(sym) != 1 {
			return strings.Join(symbols, " ")
		}
	}

	return strings.Join(symbols, "")
}
