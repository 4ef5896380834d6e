// Package cli handles cmd line input for trying out predictions in real time.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/wordpredict/internal/logger"
	"github.com/bastiangx/wordpredict/pkg/predictor"
	"github.com/charmbracelet/log"
)

// errQuit ends the input loop without an error.
var errQuit = errors.New("quit")

// InputHandler reads lines from stdin and prints the predicted next words for
// each one. Lines starting with ':' are commands that feed history, train or
// inspect the model.
type InputHandler struct {
	registry     *predictor.Registry
	handle       predictor.Handle
	count        int
	showScores   bool
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler for one predictor.
func NewInputHandler(registry *predictor.Registry, h predictor.Handle, count int, showScores bool) *InputHandler {
	return &InputHandler{
		registry:   registry,
		handle:     h,
		count:      count,
		showScores: showScores,
	}
}

// Start runs the loop on stdin and stdout.
func (h *InputHandler) Start() error {
	return h.Run(os.Stdin, os.Stdout)
}

// Run reads lines from r until EOF or :quit and writes results to w.
// The prompt is only shown when r is a terminal.
func (h *InputHandler) Run(r io.Reader, w io.Writer) error {
	term := newTerminal(r, w)
	term.banner()

	reader := bufio.NewReader(r)
	for {
		term.showPrompt()
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			if herr := h.handleInput(term, line); herr != nil {
				if errors.Is(herr, errQuit) {
					return nil
				}
				term.failure(herr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// command is one parsed input line. An empty name means "predict after arg".
type command struct {
	name string
	arg  string
}

// parseCommand splits a line into a command and its argument and validates the
// argument where the command needs one.
func parseCommand(line string) (command, error) {
	if !strings.HasPrefix(line, ":") {
		return command{arg: line}, nil
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	cmd := command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}

	switch cmd.name {
	case "add", "complete":
		if cmd.arg == "" {
			return cmd, fmt.Errorf(":%s needs some text", cmd.name)
		}
	case "n":
		n, err := strconv.Atoi(cmd.arg)
		if err != nil || n < 0 {
			return cmd, fmt.Errorf(":n needs a count >= 0, got '%s'", cmd.arg)
		}
	case "log":
		if cmd.arg != "on" && cmd.arg != "off" {
			return cmd, fmt.Errorf(":log needs 'on' or 'off', got '%s'", cmd.arg)
		}
	case "train", "clear", "reset", "info", "help", "quit", "q":
	default:
		return cmd, fmt.Errorf("unknown command ':%s' (try :help)", cmd.name)
	}
	return cmd, nil
}

// handleInput executes a single line.
func (h *InputHandler) handleInput(term *terminal, line string) error {
	cmd, err := parseCommand(line)
	if err != nil {
		return err
	}
	h.requestCount++

	switch cmd.name {
	case "":
		start := time.Now()
		preds, err := h.registry.Predict(h.handle, cmd.arg, h.count)
		if err != nil {
			return err
		}
		log.Debugf("Request #%d took [ %v ] for context '%s'", h.requestCount, time.Since(start), cmd.arg)
		term.predictions(cmd.arg, preds, h.showScores)

	case "complete":
		sugs, err := h.registry.Complete(h.handle, cmd.arg, h.count)
		if err != nil {
			return err
		}
		term.completions(cmd.arg, sugs)

	case "add":
		if err := h.registry.AddHistory(h.handle, cmd.arg); err != nil {
			return err
		}
		info, err := h.registry.Info(h.handle)
		if err != nil {
			return err
		}
		term.notice(fmt.Sprintf("Added to history (%d/%d)", info.History, info.HistoryThreshold))

	case "train":
		if err := h.registry.ForceTrain(h.handle); err != nil {
			return err
		}
		term.notice("Trained on buffered history")

	case "clear":
		if err := h.registry.ClearHistory(h.handle); err != nil {
			return err
		}
		term.notice("History cleared")

	case "reset":
		if err := h.registry.Reset(h.handle); err != nil {
			return err
		}
		term.notice("Model reset")

	case "info":
		text, err := h.registry.ModelInfo(h.handle)
		if err != nil {
			return err
		}
		term.text(text)

	case "n":
		h.count, _ = strconv.Atoi(cmd.arg)
		term.notice(fmt.Sprintf("Showing %d predictions", h.count))

	case "log":
		logger.SetLogging(cmd.arg == "on")
		term.notice("Logging " + cmd.arg)

	case "help":
		term.text(helpText)

	case "quit", "q":
		return errQuit
	}
	return nil
}

const helpText = `Type some text and press Enter to see the next words.
  :add TEXT        add TEXT to the history buffer
  :complete TEXT   complete the last word of TEXT
  :train           train on buffered history now
  :clear           drop buffered history
  :reset           forget everything the model learned
  :info            show model info
  :n N             show N predictions
  :log on|off      toggle debug logging
  :quit            exit`
