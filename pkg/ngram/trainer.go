package ngram

import (
	"github.com/bastiangx/wordpredict/pkg/tokenize"
)

// Train folds every window of Order() consecutive tokens into s and returns
// the number of windows folded. The first Order()-1 tokens are also counted
// after their shorter leading contexts so back-off sees them. Shorter sequences
// fold nothing.
func Train(s *Store, tokens []string) int {
	n := s.Order()
	if len(tokens) < n {
		return 0
	}

	for i := 0; i < n-1; i++ {
		s.AddLeading(tokens[:i], tokens[i], 1)
	}
	windows := 0
	for i := 0; i+n <= len(tokens); i++ {
		s.Increment(tokens[i:i+n-1], tokens[i+n-1])
		windows++
	}
	return windows
}

// TrainTexts tokenizes each text on its own and trains on it, so windows
// never span two texts.
func TrainTexts(s *Store, tk *tokenize.Tokenizer, texts []string) int {
	windows := 0
	for _, text := range texts {
		windows += Train(s, tk.Tokenize(text))
	}
	return windows
}
