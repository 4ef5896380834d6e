// Package suggest keeps the model vocabulary in a Patricia trie and
// ranks whole-word completions for a partially typed prefix.
package suggest

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Vocabulary maps each known word to a weight: how often it was counted as a
// continuation, text starts included.
// It is not safe for concurrent use; the owning store serializes access.
type Vocabulary struct {
	trie *patricia.Trie
	size int
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{trie: patricia.NewTrie()}
}

// Add registers word and raises its weight by delta.
// A zero delta only registers the word.
func (v *Vocabulary) Add(word string, delta int) {
	if word == "" {
		return
	}
	key := patricia.Prefix(word)
	if item := v.trie.Get(key); item != nil {
		v.trie.Set(key, itemWeight(item, word)+delta)
		return
	}
	v.trie.Insert(key, delta)
	v.size++
}

// Weight returns the weight of word and whether it is known.
func (v *Vocabulary) Weight(word string) (int, bool) {
	item := v.trie.Get(patricia.Prefix(word))
	if item == nil {
		return 0, false
	}
	return itemWeight(item, word), true
}

// Len returns the number of distinct words.
func (v *Vocabulary) Len() int {
	return v.size
}

// Reset drops every word.
func (v *Vocabulary) Reset() {
	v.trie = patricia.NewTrie()
	v.size = 0
}

// SearchTrie collects every word under key except key itself.
func SearchTrie(trie *patricia.Trie, key string, capitalPositions []bool) []Suggestion {
	if trie == nil {
		return []Suggestion{}
	}

	var suggestions []Suggestion
	err := trie.VisitSubtree(patricia.Prefix(key), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == key {
			return nil
		}
		suggestions = append(suggestions, Suggestion{
			Word:      ApplyCapitalization(word, capitalPositions),
			Frequency: itemWeight(item, word),
		})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
	}
	return suggestions
}

func itemWeight(item patricia.Item, word string) int {
	switch v := item.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint32:
		return int(v)
	default:
		log.Errorf("Unknown item type: %T for word %s", item, word)
		return 0
	}
}
