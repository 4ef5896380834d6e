/*
Package predictor binds n-gram models to their history buffers and model files
and hands them out behind integer handles.

A Predictor owns one model: the count store, a buffer of user submissions not yet
trained on, the path it persists to and a background worker. Once the buffer
holds HistoryThreshold submissions the batch moves to the worker, which folds it
into the store and writes the model file without blocking the caller.
Predictions wait for every batch scheduled before them, so text added through
AddHistory is visible to the next Predict even when training ran in the
background.

The Registry is the public entry point and maps Handle values to predictors:

	reg := predictor.NewRegistry(predictor.Options{})
	h, err := reg.Create("model.bin", 3, []string{"the cat sat", "the cat ran"})
	preds, err := reg.Predict(h, "the cat ", 2) // [{ran 0.5} {sat 0.5}]
	err = reg.Destroy(h)
*/
package predictor

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/bastiangx/wordpredict/internal/utils"
	"github.com/bastiangx/wordpredict/pkg/modelfile"
	"github.com/bastiangx/wordpredict/pkg/ngram"
	"github.com/bastiangx/wordpredict/pkg/suggest"
	"github.com/bastiangx/wordpredict/pkg/tokenize"
	"github.com/charmbracelet/log"
)

// DefaultHistoryThreshold is the number of AddHistory submissions that
// triggers a background training pass.
const DefaultHistoryThreshold = 100

var errClosed = errors.New("predictor closed")

// Options configures new predictors.
type Options struct {
	// HistoryThreshold is counted in submitted texts. Zero means DefaultHistoryThreshold.
	HistoryThreshold int
	// KeepCase disables case folding in the tokenizer.
	KeepCase bool
}

func (o Options) withDefaults() Options {
	if o.HistoryThreshold <= 0 {
		o.HistoryThreshold = DefaultHistoryThreshold
	}
	return o
}

// Info is a diagnostic snapshot of one predictor.
type Info struct {
	Path             string
	Order            int
	Contexts         int
	NGrams           int
	Vocabulary       int
	TotalWords       int
	History          int
	HistoryThreshold int
	PendingPasses    int
	TrainedTexts     int
	LastError        string
}

// String renders the snapshot as the multi-line model info text.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "n: %d\n", i.Order)
	fmt.Fprintf(&b, "Vocabulary size: %s\n", utils.FormatWithCommas(i.Vocabulary))
	fmt.Fprintf(&b, "Contexts: %s\n", utils.FormatWithCommas(i.Contexts))
	fmt.Fprintf(&b, "N-grams: %s\n", utils.FormatWithCommas(i.NGrams))
	fmt.Fprintf(&b, "Total words: %s\n", utils.FormatWithCommas(i.TotalWords))
	fmt.Fprintf(&b, "History entries: %d/%d\n", i.History, i.HistoryThreshold)
	fmt.Fprintf(&b, "Smoothing: relative frequency with back-off\n")
	fmt.Fprintf(&b, "Model file: %s", i.Path)
	if i.LastError != "" {
		fmt.Fprintf(&b, "\nLast error: %s", i.LastError)
	}
	return b.String()
}

// Predictor is one live model with its history buffer and model file.
type Predictor struct {
	path string
	tk   *tokenize.Tokenizer
	// raw keeps case so completions can mirror what was typed.
	raw *tokenize.Tokenizer

	// mu guards store and trainedTexts. saveMu serializes writers of the model file.
	mu           sync.RWMutex
	store        *ngram.Store
	trainedTexts int
	saveMu       sync.Mutex

	// histMu guards hist, queue and closed.
	histMu sync.Mutex
	hist   history
	queue  [][]string
	closed bool

	wake       chan struct{}
	workerDone chan struct{}

	// passMu guards the pass counters and lastErr.
	passMu    sync.Mutex
	passDone  *sync.Cond
	scheduled uint64
	completed uint64
	lastErr   error
}

// Open loads the model at path or, when it is missing or unreadable, starts an
// empty store of the given order and trains it on seed. A loaded model keeps
// its own order. A failed save of the seeded model is logged and remembered as
// the last error but does not fail Open.
func Open(path string, order int, seed []string, opts Options) (*Predictor, error) {
	if order < ngram.MinOrder {
		return nil, fmt.Errorf("invalid order %d: must be at least %d", order, ngram.MinOrder)
	}
	if order > modelfile.MaxOrder {
		return nil, fmt.Errorf("invalid order %d: must be at most %d", order, modelfile.MaxOrder)
	}
	opts = opts.withDefaults()

	p := &Predictor{
		path:       path,
		tk:         tokenize.New(tokenize.Options{KeepCase: opts.KeepCase}),
		raw:        tokenize.New(tokenize.Options{KeepCase: true}),
		hist:       history{threshold: opts.HistoryThreshold},
		wake:       make(chan struct{}, 1),
		workerDone: make(chan struct{}),
	}
	p.passDone = sync.NewCond(&p.passMu)

	store, err := modelfile.Load(path)
	switch {
	case err == nil:
		if store.Order() != order {
			log.Warnf("Model %s has order %d, requested %d: keeping the file's order", path, store.Order(), order)
		}
		p.store = store
	default:
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("No model at %s, creating order %d model", path, order)
		} else {
			log.Warnf("Failed to load model, creating new one: %v", err)
		}
		p.store = ngram.NewStore(order)
		if len(seed) > 0 {
			windows := ngram.TrainTexts(p.store, p.tk, seed)
			p.trainedTexts = len(seed)
			log.Debugf("Trained on %d seed texts (%d windows)", len(seed), windows)
			if err := p.persist(); err != nil {
				log.Errorf("Failed to save seeded model: %v", err)
				p.lastErr = err
			}
		}
	}

	go p.worker()
	return p, nil
}

// Path returns the model file path.
func (p *Predictor) Path() string {
	return p.path
}

// Order returns the model order n.
func (p *Predictor) Order() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store.Order()
}

// AddHistory buffers text. When the buffer reaches the threshold the batch is
// scheduled for background training and the buffer starts over. It never waits
// for training.
func (p *Predictor) AddHistory(text string) error {
	p.histMu.Lock()
	defer p.histMu.Unlock()
	if p.closed {
		return errClosed
	}

	batch := p.hist.add(text)
	log.Debugf("Added to history. Current size: %d/%d", p.hist.len(), p.hist.threshold)
	if batch != nil {
		log.Debugf("History threshold reached, scheduling training on %d entries", len(batch))
		p.schedule(batch)
	}
	return nil
}

// schedule queues a batch for the worker. Caller holds histMu.
func (p *Predictor) schedule(batch []string) {
	p.queue = append(p.queue, batch)

	p.passMu.Lock()
	p.scheduled++
	p.passMu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// worker folds scheduled batches until the predictor is closed and the queue
// is drained.
func (p *Predictor) worker() {
	defer close(p.workerDone)
	for {
		p.histMu.Lock()
		batches, closed := p.queue, p.closed
		p.queue = nil
		p.histMu.Unlock()

		for _, batch := range batches {
			err := p.train(batch)
			if err != nil {
				log.Errorf("Background training on %s failed to persist: %v", p.path, err)
			}
			p.finishPass(err)
		}

		if len(batches) > 0 {
			continue
		}
		if closed {
			return
		}
		<-p.wake
	}
}

func (p *Predictor) finishPass(err error) {
	p.passMu.Lock()
	p.completed++
	p.lastErr = err
	p.passDone.Broadcast()
	p.passMu.Unlock()
}

// waitPending blocks until every pass scheduled before the call has completed.
func (p *Predictor) waitPending() {
	p.passMu.Lock()
	defer p.passMu.Unlock()
	target := p.scheduled
	for p.completed < target {
		p.passDone.Wait()
	}
}

// train folds batch into the store and persists. The in-memory update stands
// even when persisting fails.
func (p *Predictor) train(batch []string) error {
	p.mu.Lock()
	windows := ngram.TrainTexts(p.store, p.tk, batch)
	p.trainedTexts += len(batch)
	p.mu.Unlock()

	log.Debugf("Trained on %d history entries (%d windows)", len(batch), windows)
	return p.persist()
}

// persist writes a snapshot of the store to the model file.
func (p *Predictor) persist() error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return modelfile.Save(p.path, p.store)
}

// Predict returns up to count ranked next-word candidates for context.
func (p *Predictor) Predict(context string, count int) []ngram.Prediction {
	p.waitPending()
	p.mu.RLock()
	defer p.mu.RUnlock()
	log.Debugf("Predicting for context: %q", context)
	return ngram.Predict(p.store, p.tk, context, count)
}

// Complete returns up to count known words starting with the last, partially
// typed word of text. The word is normalized like trained tokens; when case is
// folded, its capitals are carried onto the results.
func (p *Predictor) Complete(text string, count int) []suggest.Suggestion {
	if count <= 0 || tokenize.EndsWithSpace(text) {
		return []suggest.Suggestion{}
	}
	tail := p.raw.Tail(text, 1)
	if len(tail) == 0 {
		return []suggest.Suggestion{}
	}

	key := p.tk.Normalize(tail[0])
	var capitals []bool
	if !p.tk.KeepsCase() {
		capitals = suggest.CapitalPositions(tail[0])
	}

	p.waitPending()
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store.Complete(key, capitals, count)
}

// ForceTrain waits for background passes, then folds whatever is buffered and
// persists. An empty buffer is a successful no-op that writes nothing.
func (p *Predictor) ForceTrain() error {
	p.waitPending()

	p.histMu.Lock()
	if p.closed {
		p.histMu.Unlock()
		return errClosed
	}
	batch := p.hist.take()
	p.histMu.Unlock()

	if len(batch) == 0 {
		log.Debug("No history to train on")
		return nil
	}

	log.Debugf("Training on %d history entries", len(batch))
	err := p.train(batch)
	p.passMu.Lock()
	p.lastErr = err
	p.passMu.Unlock()
	return err
}

// ClearHistory drops buffered submissions without training on them.
func (p *Predictor) ClearHistory() {
	p.histMu.Lock()
	n := len(p.hist.take())
	p.histMu.Unlock()
	log.Debugf("Cleared %d history entries", n)
}

// Reset forgets everything learned: buffered history and all counts. The
// emptied model is persisted.
func (p *Predictor) Reset() error {
	p.waitPending()

	p.histMu.Lock()
	p.hist.take()
	p.histMu.Unlock()

	p.mu.Lock()
	p.store.Clear()
	p.trainedTexts = 0
	p.mu.Unlock()

	log.Debugf("Model %s reset", p.path)
	err := p.persist()
	p.passMu.Lock()
	p.lastErr = err
	p.passMu.Unlock()
	return err
}

// Info returns a diagnostic snapshot.
func (p *Predictor) Info() Info {
	p.mu.RLock()
	st := p.store.Stats()
	trained := p.trainedTexts
	p.mu.RUnlock()

	p.histMu.Lock()
	buffered, threshold := p.hist.len(), p.hist.threshold
	p.histMu.Unlock()

	p.passMu.Lock()
	pending := int(p.scheduled - p.completed)
	lastErr := ""
	if p.lastErr != nil {
		lastErr = p.lastErr.Error()
	}
	p.passMu.Unlock()

	return Info{
		Path:             p.path,
		Order:            st.Order,
		Contexts:         st.Contexts,
		NGrams:           st.NGrams,
		Vocabulary:       st.Vocabulary,
		TotalWords:       st.Total,
		History:          buffered,
		HistoryThreshold: threshold,
		PendingPasses:    pending,
		TrainedTexts:     trained,
		LastError:        lastErr,
	}
}

// Close stops accepting history, lets the worker finish every scheduled pass
// and waits for it to exit. Buffered history that never reached the threshold
// is dropped. Close is idempotent.
func (p *Predictor) Close() {
	p.histMu.Lock()
	if !p.closed {
		p.closed = true
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
	p.histMu.Unlock()
	<-p.workerDone
}
