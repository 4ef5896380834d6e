package predictor

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bastiangx/wordpredict/pkg/ngram"
	"github.com/bastiangx/wordpredict/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Handle identifies a live predictor in a Registry. Zero is never valid.
type Handle int64

// ErrInvalidHandle is returned for handles that were never issued or have
// been destroyed.
var ErrInvalidHandle = errors.New("invalid predictor handle")

// Registry maps handles to predictors. It is safe for concurrent use; calls on
// one handle are serialized by that predictor's own locks.
type Registry struct {
	opts Options

	mu         sync.RWMutex
	predictors map[Handle]*Predictor
	next       Handle
}

// NewRegistry returns an empty registry whose predictors use opts.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:       opts.withDefaults(),
		predictors: make(map[Handle]*Predictor),
	}
}

// Create opens the model at path (see Open) and returns its new handle.
// Handles strictly increase and are never reused.
func (r *Registry) Create(path string, order int, seed []string) (Handle, error) {
	p, err := Open(path, order, seed, r.opts)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.next++
	h := r.next
	r.predictors[h] = p
	r.mu.Unlock()

	log.Debugf("Created predictor %d for %s (order %d)", h, path, p.Order())
	return h, nil
}

func (r *Registry) get(h Handle) (*Predictor, error) {
	r.mu.RLock()
	p, ok := r.predictors[h]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return p, nil
}

// invalid maps a predictor closed under a concurrent Destroy to ErrInvalidHandle.
func invalid(h Handle, err error) error {
	if errors.Is(err, errClosed) {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return err
}

// Destroy invalidates h, waits for its scheduled training to finish and
// releases the predictor.
func (r *Registry) Destroy(h Handle) error {
	r.mu.Lock()
	p, ok := r.predictors[h]
	delete(r.predictors, h)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}

	p.Close()
	log.Debugf("Destroyed predictor %d", h)
	return nil
}

// AddHistory appends text to the history of h.
func (r *Registry) AddHistory(h Handle, text string) error {
	p, err := r.get(h)
	if err != nil {
		return err
	}
	return invalid(h, p.AddHistory(text))
}

// Predict returns up to count ranked next words for context.
func (r *Registry) Predict(h Handle, context string, count int) ([]ngram.Prediction, error) {
	p, err := r.get(h)
	if err != nil {
		return nil, err
	}
	return p.Predict(context, count), nil
}

// Complete returns up to count completions of the word being typed in text.
func (r *Registry) Complete(h Handle, text string, count int) ([]suggest.Suggestion, error) {
	p, err := r.get(h)
	if err != nil {
		return nil, err
	}
	return p.Complete(text, count), nil
}

// ForceTrain trains h on its buffered history now and persists. A nil error
// is success; a *modelfile.PersistenceError means the counts were updated in
// memory but not saved.
func (r *Registry) ForceTrain(h Handle) error {
	p, err := r.get(h)
	if err != nil {
		return err
	}
	return invalid(h, p.ForceTrain())
}

// ClearHistory drops the buffered history of h.
func (r *Registry) ClearHistory(h Handle) error {
	p, err := r.get(h)
	if err != nil {
		return err
	}
	p.ClearHistory()
	return nil
}

// Reset clears both the history and the learned counts of h.
func (r *Registry) Reset(h Handle) error {
	p, err := r.get(h)
	if err != nil {
		return err
	}
	return p.Reset()
}

// Info returns a diagnostic snapshot of h.
func (r *Registry) Info(h Handle) (Info, error) {
	p, err := r.get(h)
	if err != nil {
		return Info{}, err
	}
	return p.Info(), nil
}

// ModelInfo returns the human-readable model summary of h.
func (r *Registry) ModelInfo(h Handle) (string, error) {
	info, err := r.Info(h)
	if err != nil {
		return "", err
	}
	return info.String(), nil
}

// Handles returns the live handles in ascending order.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	handles := make([]Handle, 0, len(r.predictors))
	for h := range r.predictors {
		handles = append(handles, h)
	}
	r.mu.RUnlock()
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// Close destroys every live predictor. The registry stays usable and keeps
// counting handles from where it was.
func (r *Registry) Close() {
	r.mu.Lock()
	predictors := r.predictors
	r.predictors = make(map[Handle]*Predictor)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for h, p := range predictors {
		wg.Add(1)
		go func(h Handle, p *Predictor) {
			defer wg.Done()
			p.Close()
			log.Debugf("Destroyed predictor %d", h)
		}(h, p)
	}
	wg.Wait()
}
