/*
Package ngram is the statistical core of the predictor: an order-n count store,
the trainer that folds token windows into it, and the back-off ranker that turns
counts into next-word predictions.

The primary relation maps every context of exactly n-1 tokens to a table of
continuation counts. Alongside it the store keeps a back-off index: for each
suffix length j < n-1 the counts of every continuation after the last j tokens
of a context. Every write to the primary relation also counts the window's
suffixes in the index. The first n-1 tokens of a text have no full context; they
are recorded as leading windows, which feed the index only. A store is fully
described by its order, its primary (context, token, count) triples and its
leading triples.

A Store is not safe for concurrent use. Callers serialize writers against
readers, see pkg/predictor.
*/
package ngram

import (
	"encoding/binary"
	"slices"
	"sort"
	"strings"

	"github.com/bastiangx/wordpredict/pkg/suggest"
)

// MinOrder is the smallest supported n.
const MinOrder = 2

// Table is a read-only view of the continuation counts under one context.
type Table struct {
	context []string
	counts  map[string]int
	total   int
}

func newTable(context []string) *Table {
	return &Table{
		context: slices.Clone(context),
		counts:  make(map[string]int),
	}
}

// Count returns the occurrences of token under this context.
func (t *Table) Count(token string) int {
	return t.counts[token]
}

// Total returns the sum of all counts in the table.
func (t *Table) Total() int {
	return t.total
}

// Len returns the number of distinct continuations.
func (t *Table) Len() int {
	return len(t.counts)
}

// Context returns a copy of the context tokens keying this table.
func (t *Table) Context() []string {
	return slices.Clone(t.context)
}

// Tokens returns the continuations in lexical order.
func (t *Table) Tokens() []string {
	tokens := make([]string, 0, len(t.counts))
	for tok := range t.counts {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// Record is one (context, token, count) triple.
type Record struct {
	Context []string
	Token   string
	Count   int
}

// Stats summarizes a store for diagnostics.
type Stats struct {
	Order      int
	Contexts   int
	NGrams     int
	Vocabulary int
	Total      int
}

// Store holds n-gram counts for a fixed order.
type Store struct {
	order int
	// levels[j] holds the tables for contexts of j tokens;
	// levels[order-1] is the primary relation.
	levels []map[string]*Table
	// leading holds the windows seen before a full context existed.
	leading map[string]*Table
	ngrams  int
	vocab   *suggest.Vocabulary
}

// NewStore returns an empty store of the given order.
// It panics if order < MinOrder.
func NewStore(order int) *Store {
	if order < MinOrder {
		panic(&OrderError{Order: order})
	}
	s := &Store{order: order}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.levels = make([]map[string]*Table, s.order)
	for j := range s.levels {
		s.levels[j] = make(map[string]*Table)
	}
	s.leading = make(map[string]*Table)
	s.ngrams = 0
	if s.vocab == nil {
		s.vocab = suggest.NewVocabulary()
	} else {
		s.vocab.Reset()
	}
}

// Order returns n.
func (s *Store) Order() int {
	return s.order
}

// Increment adds one occurrence of token after context.
// context must hold exactly Order()-1 tokens.
func (s *Store) Increment(context []string, token string) {
	s.Add(context, token, 1)
}

// Add adds k occurrences of token after context.
// context must hold exactly Order()-1 tokens and k must be positive.
func (s *Store) Add(context []string, token string, k int) {
	s.checkContext(context, s.order-1, s.order-1)
	if k < 1 {
		panic(&CountError{Count: k})
	}

	if t, ok := s.levels[s.order-1][contextKey(context)]; !ok || t.counts[token] == 0 {
		s.ngrams++
	}
	s.fold(context, token, k)
}

// AddLeading adds k occurrences of token after a context that is shorter than
// Order()-1 tokens because it sits at the start of a text. Only the back-off
// index sees it. k must be positive.
func (s *Store) AddLeading(context []string, token string, k int) {
	s.checkContext(context, 0, s.order-2)
	if k < 1 {
		panic(&CountError{Count: k})
	}

	key := contextKey(context)
	table, ok := s.leading[key]
	if !ok {
		table = newTable(context)
		s.leading[key] = table
	}
	table.counts[token] += k
	table.total += k

	s.fold(context, token, k)
}

// fold counts token under context and every suffix of it.
func (s *Store) fold(context []string, token string, k int) {
	for j := len(context); j >= 0; j-- {
		suffix := context[len(context)-j:]
		key := contextKey(suffix)
		table, ok := s.levels[j][key]
		if !ok {
			table = newTable(suffix)
			s.levels[j][key] = table
		}
		table.counts[token] += k
		table.total += k
	}

	s.vocab.Add(token, k)
	for _, tok := range context {
		s.vocab.Add(tok, 0)
	}
}

// Lookup returns the continuation table of a full (Order()-1)-token context.
// The returned table must not be used after the store is modified.
func (s *Store) Lookup(context []string) (*Table, bool) {
	s.checkContext(context, s.order-1, s.order-1)
	return s.lookup(context)
}

// LookupSuffix is Lookup against the back-off index; context may hold
// anywhere from 0 to Order()-1 tokens.
func (s *Store) LookupSuffix(context []string) (*Table, bool) {
	s.checkContext(context, 0, s.order-1)
	return s.lookup(context)
}

func (s *Store) lookup(context []string) (*Table, bool) {
	table, ok := s.levels[len(context)][contextKey(context)]
	if !ok || table.Len() == 0 {
		return nil, false
	}
	return table, true
}

// Clear drops every count, including the back-off index and vocabulary.
func (s *Store) Clear() {
	s.reset()
}

// Records returns the primary relation sorted by context, then token.
func (s *Store) Records() []Record {
	return sortedRecords(s.levels[s.order-1], s.ngrams)
}

// LeadingRecords returns the leading windows sorted by context, then token.
func (s *Store) LeadingRecords() []Record {
	return sortedRecords(s.leading, len(s.leading))
}

func sortedRecords(tables map[string]*Table, sizeHint int) []Record {
	sorted := make([]*Table, 0, len(tables))
	for _, t := range tables {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return slices.Compare(sorted[i].context, sorted[j].context) < 0
	})

	records := make([]Record, 0, sizeHint)
	for _, t := range sorted {
		for _, tok := range t.Tokens() {
			records = append(records, Record{
				Context: append([]string{}, t.context...),
				Token:   tok,
				Count:   t.counts[tok],
			})
		}
	}
	return records
}

// Stats returns a snapshot of the store sizes. Total is the number of tokens
// counted at the empty context, which for trained text is every token.
func (s *Store) Stats() Stats {
	total := 0
	if root, ok := s.levels[0][contextKey(nil)]; ok {
		total = root.total
	}
	return Stats{
		Order:      s.order,
		Contexts:   len(s.levels[s.order-1]),
		NGrams:     s.ngrams,
		Vocabulary: s.vocab.Len(),
		Total:      total,
	}
}

// Complete returns ranked vocabulary words starting with key, which must
// already be normalized the way tokens were. capitals marks the runes to
// upper-case in the results; nil leaves them as stored.
func (s *Store) Complete(key string, capitals []bool, limit int) []suggest.Suggestion {
	return s.vocab.Complete(key, capitals, limit)
}

func (s *Store) checkContext(context []string, minLen, maxLen int) {
	if len(context) < minLen || len(context) > maxLen {
		panic(&ContextLengthError{Order: s.order, Min: minLen, Max: maxLen, Got: len(context)})
	}
}

// contextKey length-prefixes every token so distinct token sequences
// never share a key.
func contextKey(context []string) string {
	var b strings.Builder
	buf := make([]byte, 0, binary.MaxVarintLen64)
	for _, tok := range context {
		buf = binary.AppendUvarint(buf[:0], uint64(len(tok)))
		b.Write(buf)
		b.WriteString(tok)
	}
	return b.String()
}
