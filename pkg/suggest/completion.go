package suggest

import (
	"sort"
	"unicode"
)

// Suggestion is one ranked whole-word completion.
type Suggestion struct {
	Word      string
	Frequency int
}

// Complete returns up to limit words starting with key, heaviest first, ties in
// lexical order. key is matched as given and must already be normalized the way
// the vocabulary was. Runes marked in capitals are upper-cased in the returned
// words. A limit <= 0 yields no suggestions.
func (v *Vocabulary) Complete(key string, capitals []bool, limit int) []Suggestion {
	if limit <= 0 {
		return []Suggestion{}
	}

	suggestions := SearchTrie(v.trie, key, capitals)
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Frequency != suggestions[j].Frequency {
			return suggestions[i].Frequency > suggestions[j].Frequency
		}
		return suggestions[i].Word < suggestions[j].Word
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// CapitalPositions marks the upper-case runes of prefix.
func CapitalPositions(prefix string) []bool {
	positions := make([]bool, 0, len(prefix))
	for _, r := range prefix {
		positions = append(positions, unicode.IsUpper(r))
	}
	return positions
}

// ApplyCapitalization upper-cases the runes of word at the positions
// marked in capitalPositions.
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] {
			wordRunes[i] = unicode.ToUpper(wordRunes[i])
		}
	}
	return string(wordRunes)
}
