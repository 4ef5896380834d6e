package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/wordpredict/internal/logger"
	"github.com/bastiangx/wordpredict/internal/utils"
	"github.com/bastiangx/wordpredict/pkg/config"
	"github.com/bastiangx/wordpredict/pkg/predictor"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Server handles the IPC for next-word predictions
type Server struct {
	registry *predictor.Registry
	config   *config.Config
	// seed is used by create requests that carry none.
	seed []string
}

// NewServer creates a server dispatching to registry with limits from cfg.
func NewServer(registry *predictor.Registry, cfg *config.Config, seed []string) *Server {
	return &Server{
		registry: registry,
		config:   cfg,
		seed:     seed,
	}
}

// Start serves requests from stdin to stdout until stdin closes.
func (s *Server) Start() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve runs the request loop over r and w with the configured codec.
// It returns nil when r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	codec, err := NewCodec(s.config.Server.Codec, r, w)
	if err != nil {
		return err
	}
	log.Debugf("Starting server (codec=%s)", s.config.Server.Codec)

	var requests int
	for {
		var req Request
		err := codec.Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debugf("Input closed after %d requests", requests)
				return nil
			}
			if errors.Is(err, errMalformed) {
				log.Warnf("Discarding request: %v", err)
				if err := codec.Encode(errorResponse(uuid.NewString(), err.Error(), 400, 0)); err != nil {
					return err
				}
				continue
			}
			log.Errorf("Reading request: %v", err)
			_ = codec.Encode(errorResponse(uuid.NewString(), fmt.Sprintf("malformed request: %v", err), 400, 0))
			return err
		}

		requests++
		resp := s.Handle(&req)
		if err := codec.Encode(resp); err != nil {
			log.Errorf("Writing response: %v", err)
			return err
		}
	}
}

// Handle executes one request and always returns a response.
func (s *Server) Handle(req *Request) *Response {
	start := time.Now()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	resp, err := s.dispatch(req)
	elapsed := time.Since(start).Microseconds()
	if err != nil {
		code := errorCode(err)
		log.Debugf("Request %s (%s) failed with %d: %v", req.ID, req.Op, code, err)
		return errorResponse(req.ID, err.Error(), code, elapsed)
	}

	resp.ID = req.ID
	resp.Status = StatusOK
	resp.TimeTaken = elapsed
	return resp
}

// badRequest marks errors caused by the request itself.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

// errorCode maps err to 404 for bad handles, 400 for bad requests and 500 for
// everything else, which in practice is a failed model file write.
func errorCode(err error) int {
	var br *badRequest
	switch {
	case errors.Is(err, predictor.ErrInvalidHandle):
		return 404
	case errors.As(err, &br):
		return 400
	default:
		return 500
	}
}

func errorResponse(id, msg string, code int, elapsed int64) *Response {
	return &Response{
		ID:        id,
		Status:    StatusError,
		Error:     msg,
		Code:      code,
		TimeTaken: elapsed,
	}
}

func (s *Server) dispatch(req *Request) (*Response, error) {
	h := predictor.Handle(req.Handle)

	switch req.Op {
	case OpCreate:
		return s.handleCreate(req)

	case OpAdd:
		return &Response{}, s.registry.AddHistory(h, req.Text)

	case OpPredict:
		count, err := s.count(req)
		if err != nil {
			return nil, err
		}
		preds, err := s.registry.Predict(h, s.clampContext(req.Context), count)
		if err != nil {
			return nil, err
		}
		out := make([]Prediction, len(preds))
		for i, p := range preds {
			out[i] = Prediction{Word: p.Token, Score: p.Score}
		}
		return &Response{Predictions: out}, nil

	case OpComplete:
		count, err := s.count(req)
		if err != nil {
			return nil, err
		}
		sugs, err := s.registry.Complete(h, s.clampContext(req.Text), count)
		if err != nil {
			return nil, err
		}
		out := make([]Completion, len(sugs))
		for i, sg := range sugs {
			out[i] = Completion{Word: sg.Word, Weight: sg.Frequency}
		}
		return &Response{Completions: out}, nil

	case OpTrain:
		return &Response{}, s.registry.ForceTrain(h)

	case OpClear:
		return &Response{}, s.registry.ClearHistory(h)

	case OpReset:
		return &Response{}, s.registry.Reset(h)

	case OpInfo:
		info, err := s.registry.Info(h)
		if err != nil {
			return nil, err
		}
		return &Response{
			Info: &ModelInfo{
				Path:             info.Path,
				Order:            info.Order,
				Contexts:         info.Contexts,
				NGrams:           info.NGrams,
				Vocabulary:       info.Vocabulary,
				TotalWords:       info.TotalWords,
				History:          info.History,
				HistoryThreshold: info.HistoryThreshold,
				PendingPasses:    info.PendingPasses,
				LastError:        info.LastError,
			},
			Text: info.String(),
		}, nil

	case OpDestroy:
		return &Response{}, s.registry.Destroy(h)

	case OpLogging:
		if req.On == nil {
			return nil, badRequestf("missing 'on' parameter")
		}
		logger.SetLogging(*req.On)
		return &Response{}, nil

	case OpHealth:
		handles := s.registry.Handles()
		out := make([]int64, len(handles))
		for i, h := range handles {
			out[i] = int64(h)
		}
		return &Response{Handles: out}, nil

	case "":
		return nil, badRequestf("missing 'op' parameter")
	default:
		return nil, badRequestf("unknown op: %s", req.Op)
	}
}

func (s *Server) handleCreate(req *Request) (*Response, error) {
	path := req.Path
	if path == "" {
		path = s.config.ModelFile()
	}
	path = utils.ExpandHome(path)

	order := req.Order
	if order == 0 {
		order = s.config.Engine.Order
	}
	seed := req.Seed
	if seed == nil {
		seed = s.seed
	}

	h, err := s.registry.Create(path, order, seed)
	if err != nil {
		return nil, &badRequest{msg: err.Error()}
	}
	return &Response{Handle: int64(h)}, nil
}

// count resolves the requested result count against the configured limits.
func (s *Server) count(req *Request) (int, error) {
	if req.Count == nil {
		return min(s.config.Engine.DefaultCount, s.config.Server.MaxCount), nil
	}
	n := *req.Count
	if n < 0 {
		return 0, badRequestf("'n' must not be negative, got %d", n)
	}
	return min(n, s.config.Server.MaxCount), nil
}

// clampContext keeps the last max_context runes of text.
func (s *Server) clampContext(text string) string {
	limit := s.config.Server.MaxContext
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	log.Debugf("Context of %d runes cut to %d", len(runes), limit)
	return string(runes[len(runes)-limit:])
}
