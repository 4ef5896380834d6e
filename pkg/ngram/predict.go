package ngram

import (
	"container/heap"
	"sort"

	"github.com/bastiangx/wordpredict/pkg/tokenize"
)

// Prediction is one ranked next-token candidate.
type Prediction struct {
	Token string
	Score float64
}

// Predict ranks the likely next tokens after the raw context text.
// See PredictTokens for the ranking rules.
func Predict(s *Store, tk *tokenize.Tokenizer, context string, count int) []Prediction {
	if count <= 0 {
		return []Prediction{}
	}
	return PredictTokens(s, tk.Tail(context, s.Order()-1), count)
}

// PredictTokens ranks the likely next tokens after the given context tokens.
//
// Only the last Order()-1 tokens are used. When that context was never seen the
// leftmost token is dropped and the lookup retried, down to the empty context.
// The first non-empty table scores each token by count/total; results are
// sorted by score descending with ties in lexical order and cut to count.
// No observations at any level yield an empty slice.
func PredictTokens(s *Store, context []string, count int) []Prediction {
	if count <= 0 {
		return []Prediction{}
	}
	if keep := s.Order() - 1; len(context) > keep {
		context = context[len(context)-keep:]
	}

	for j := len(context); j >= 0; j-- {
		suffix := context[len(context)-j:]
		var (
			table *Table
			ok    bool
		)
		if j == s.Order()-1 {
			table, ok = s.Lookup(suffix)
		} else {
			table, ok = s.LookupSuffix(suffix)
		}
		if ok {
			return rank(table, count)
		}
	}
	return []Prediction{}
}

type candidate struct {
	token string
	count int
}

// better orders candidates by count descending, then token ascending.
func better(a, b candidate) bool {
	if a.count != b.count {
		return a.count > b.count
	}
	return a.token < b.token
}

// worstFirst is a min-heap on better, so the root is the weakest kept candidate.
type worstFirst []candidate

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// rank keeps the best count candidates of table in O(len * log count).
func rank(table *Table, count int) []Prediction {
	if count > table.Len() {
		count = table.Len()
	}

	h := make(worstFirst, 0, count)
	for tok, c := range table.counts {
		cand := candidate{token: tok, count: c}
		if len(h) < count {
			heap.Push(&h, cand)
			continue
		}
		if better(cand, h[0]) {
			h[0] = cand
			heap.Fix(&h, 0)
		}
	}

	sort.Slice(h, func(i, j int) bool { return better(h[i], h[j]) })

	total := float64(table.total)
	out := make([]Prediction, len(h))
	for i, c := range h {
		out[i] = Prediction{Token: c.token, Score: float64(c.count) / total}
	}
	return out
}
