// Package tokenize splits raw user text into normalized word tokens.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Options fixes the normalization policy of a Tokenizer.
type Options struct {
	// KeepCase disables case folding.
	KeepCase bool
}

// Tokenizer is immutable and safe for concurrent use.
type Tokenizer struct {
	keepCase bool
}

// New returns a Tokenizer with the given policy.
func New(opts Options) *Tokenizer {
	return &Tokenizer{keepCase: opts.KeepCase}
}

// Default returns the case-folding tokenizer used by the predictor.
func Default() *Tokenizer {
	return New(Options{})
}

// Tokenize returns the word tokens of text in order.
// Whitespace separates tokens; leading and trailing punctuation or symbols are
// stripped from each token, inner ones ("don't", "e-mail") are kept.
func (t *Tokenizer) Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	text = norm.NFKC.String(text)
	if !t.keepCase {
		// Casers carry state and must not be shared between goroutines.
		text = cases.Fold().String(text)
	}

	fields := strings.FieldsFunc(text, unicode.IsSpace)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, isEdgeRune)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Normalize applies the token normalization to a single word without splitting
// or trimming it, so a partially typed word can be matched against tokens.
func (t *Tokenizer) Normalize(word string) string {
	word = norm.NFKC.String(word)
	if !t.keepCase {
		word = cases.Fold().String(word)
	}
	return word
}

// KeepsCase reports whether t leaves case untouched.
func (t *Tokenizer) KeepsCase() bool {
	return t.keepCase
}

// Tail returns at most n trailing tokens of text.
func (t *Tokenizer) Tail(text string, n int) []string {
	tokens := t.Tokenize(text)
	if n <= 0 {
		return []string{}
	}
	if len(tokens) > n {
		tokens = tokens[len(tokens)-n:]
	}
	return tokens
}

// EndsWithSpace reports whether the last word of text is finished,
// i.e. text is empty or ends in whitespace.
func EndsWithSpace(text string) bool {
	if text == "" {
		return true
	}
	r := []rune(text)
	return unicode.IsSpace(r[len(r)-1])
}

func isEdgeRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsControl(r)
}
