package predictor

// history buffers raw submissions since the last training pass.
// It is guarded by Predictor.histMu.
type history struct {
	texts     []string
	threshold int
}

// add appends text and returns the whole buffer when it reached the threshold,
// leaving the buffer empty. Otherwise it returns nil.
func (h *history) add(text string) []string {
	h.texts = append(h.texts, text)
	if len(h.texts) < h.threshold {
		return nil
	}
	return h.take()
}

// take empties the buffer and returns what it held.
func (h *history) take() []string {
	batch := h.texts
	h.texts = nil
	return batch
}

func (h *history) len() int {
	return len(h.texts)
}
