/*
Package server implements the IPC protocol for next-word prediction.

Clients write requests to stdin and read exactly one response per request from
stdout. The default codec is a stream of MessagePack maps; the json codec uses
one JSON object per line instead. Both carry the same keys.

# IPC

Every request names an operation and, except for create, logging and health,
the predictor handle it applies to:

	{"id": "r1", "op": "create", "path": "~/.local/share/wordpredict/model.bin", "order": 3, "seed": ["the cat sat"]}
	{"id": "r2", "op": "add", "h": 1, "text": "the dog barked"}
	{"id": "r3", "op": "predict", "h": 1, "ctx": "the cat ", "n": 3}

Responses echo the id (a UUID is generated when the request has none) and report
the time spent in microseconds:

	{"id": "r1", "status": "ok", "h": 1, "t": 812}
	{"id": "r3", "status": "ok", "p": [{"w": "sat", "s": 1}], "t": 14}

Failures carry a message and a code: 400 for malformed requests, 404 for
unknown or destroyed handles and 500 when the model file could not be written.

	{"id": "r4", "status": "error", "e": "invalid predictor handle: 9", "code": 404, "t": 2}

# Operations

	create    path, order, seed   -> h
	add       h, text
	predict   h, ctx, n           -> p
	complete  h, text, n          -> c
	train     h
	clear     h
	reset     h
	info      h                   -> info, text
	destroy   h
	logging   on
	health                        -> handles

n defaults to the configured default count and is capped at max_count.
Contexts longer than max_context runes are cut to their tail.
*/
package server

// Operations understood by the server.
const (
	OpCreate   = "create"
	OpAdd      = "add"
	OpPredict  = "predict"
	OpComplete = "complete"
	OpTrain    = "train"
	OpClear    = "clear"
	OpReset    = "reset"
	OpInfo     = "info"
	OpDestroy  = "destroy"
	OpLogging  = "logging"
	OpHealth   = "health"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request is a single client message.
type Request struct {
	ID      string   `msgpack:"id" json:"id"`
	Op      string   `msgpack:"op" json:"op"`
	Handle  int64    `msgpack:"h,omitempty" json:"h,omitempty"`
	Text    string   `msgpack:"text,omitempty" json:"text,omitempty"`
	Context string   `msgpack:"ctx,omitempty" json:"ctx,omitempty"`
	Count   *int     `msgpack:"n,omitempty" json:"n,omitempty"`
	Path    string   `msgpack:"path,omitempty" json:"path,omitempty"`
	Order   int      `msgpack:"order,omitempty" json:"order,omitempty"`
	Seed    []string `msgpack:"seed,omitempty" json:"seed,omitempty"`
	On      *bool    `msgpack:"on,omitempty" json:"on,omitempty"`
}

// Prediction is one ranked next word.
type Prediction struct {
	Word  string  `msgpack:"w" json:"w"`
	Score float64 `msgpack:"s" json:"s"`
}

// Completion is one completed word with its learned weight.
type Completion struct {
	Word   string `msgpack:"w" json:"w"`
	Weight int    `msgpack:"f" json:"f"`
}

// ModelInfo mirrors predictor.Info on the wire.
type ModelInfo struct {
	Path             string `msgpack:"path" json:"path"`
	Order            int    `msgpack:"order" json:"order"`
	Contexts         int    `msgpack:"contexts" json:"contexts"`
	NGrams           int    `msgpack:"ngrams" json:"ngrams"`
	Vocabulary       int    `msgpack:"vocab" json:"vocab"`
	TotalWords       int    `msgpack:"total" json:"total"`
	History          int    `msgpack:"history" json:"history"`
	HistoryThreshold int    `msgpack:"threshold" json:"threshold"`
	PendingPasses    int    `msgpack:"pending" json:"pending"`
	LastError        string `msgpack:"last_error,omitempty" json:"last_error,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	ID          string       `msgpack:"id" json:"id"`
	Status      string       `msgpack:"status" json:"status"`
	Error       string       `msgpack:"e,omitempty" json:"e,omitempty"`
	Code        int          `msgpack:"code,omitempty" json:"code,omitempty"`
	Handle      int64        `msgpack:"h,omitempty" json:"h,omitempty"`
	Predictions []Prediction `msgpack:"p,omitempty" json:"p,omitempty"`
	Completions []Completion `msgpack:"c,omitempty" json:"c,omitempty"`
	Info        *ModelInfo   `msgpack:"info,omitempty" json:"info,omitempty"`
	Text        string       `msgpack:"text,omitempty" json:"text,omitempty"`
	Handles     []int64      `msgpack:"handles,omitempty" json:"handles,omitempty"`
	TimeTaken   int64        `msgpack:"t" json:"t"`
}
