package ngram

import "fmt"

// ContextLengthError reports a context whose length does not fit the store
// order. It signals a windowing bug in the caller and is raised by panic.
type ContextLengthError struct {
	Order int
	Min   int
	Max   int
	Got   int
}

func (e *ContextLengthError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("ngram: context of %d tokens for order %d store (want %d)", e.Got, e.Order, e.Max)
	}
	return fmt.Sprintf("ngram: context of %d tokens for order %d store (want %d..%d)", e.Got, e.Order, e.Min, e.Max)
}

// OrderError reports an unsupported store order.
type OrderError struct {
	Order int
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("ngram: order %d is below the minimum of %d", e.Order, MinOrder)
}

// CountError reports a non-positive count passed to Store.Add.
type CountError struct {
	Count int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("ngram: count %d must be positive", e.Count)
}
