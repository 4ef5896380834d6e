package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/wordpredict/pkg/predictor"
)

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		input       string
		name        string
		arg         string
		wantErr     bool
		description string
	}{
		{"the cat", "", "the cat", false, "plain text predicts"},
		{":add the dog barked", "add", "the dog barked", false, "add with text"},
		{":ADD  spaced ", "add", "spaced", false, "name folded and arg trimmed"},
		{":add", "add", "", true, "add without text"},
		{":complete the ca", "complete", "the ca", false, "complete"},
		{":n 7", "n", "7", false, "count"},
		{":n -1", "n", "-1", true, "negative count"},
		{":n many", "n", "many", true, "non-numeric count"},
		{":log on", "log", "on", false, "log on"},
		{":log maybe", "log", "maybe", true, "bad log flag"},
		{":train", "train", "", false, "train"},
		{":q", "q", "", false, "short quit"},
		{":fly", "fly", "", true, "unknown command"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			cmd, err := parseCommand(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Input '%s': expected error=%v, got %v", tc.input, tc.wantErr, err)
			}
			if cmd.name != tc.name || cmd.arg != tc.arg {
				t.Errorf("Input '%s': expected (%s, %s), got (%s, %s)", tc.input, tc.name, tc.arg, cmd.name, cmd.arg)
			}
		})
	}
}

func newHandler(t *testing.T) (*InputHandler, *predictor.Registry, predictor.Handle) {
	t.Helper()
	r := predictor.NewRegistry(predictor.Options{HistoryThreshold: 10})
	t.Cleanup(r.Close)
	h, err := r.Create(filepath.Join(t.TempDir(), "model.bin"), 3, []string{"the cat sat", "the cat ran"})
	if err != nil {
		t.Fatal(err)
	}
	return NewInputHandler(r, h, 5, true), r, h
}

func TestRunSession(t *testing.T) {
	handler, r, h := newHandler(t)

	input := strings.Join([]string{
		"the cat",
		":add the cat slept",
		":add the cat slept",
		":train",
		":n 1",
		"the cat",
		":bogus",
		":info",
		":quit",
		"never reached",
	}, "\n")

	var out bytes.Buffer
	if err := handler.Run(strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"Found 2 predictions after 'the cat':",
		"50.0%",
		"Added to history (1/10)",
		"Trained on buffered history",
		"Found 1 predictions after 'the cat':",
		"slept",
		"unknown command ':bogus'",
		"n: 3",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain '%s', got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "never reached") {
		t.Errorf("input after :quit was processed:\n%s", got)
	}
	if strings.Contains(got, "> ") {
		t.Errorf("prompt shown for non-interactive input:\n%s", got)
	}

	info, err := r.Info(h)
	if err != nil {
		t.Fatal(err)
	}
	if info.History != 0 || info.TotalWords != 12 {
		t.Errorf("unexpected model state after session: %+v", info)
	}
}

func TestRunEndsAtEOFWithoutNewline(t *testing.T) {
	handler, r, h := newHandler(t)
	var out bytes.Buffer
	if err := handler.Run(strings.NewReader(":add last line"), &out); err != nil {
		t.Fatal(err)
	}
	info, err := r.Info(h)
	if err != nil {
		t.Fatal(err)
	}
	if info.History != 1 {
		t.Errorf("expected the unterminated line to be handled, got history %d", info.History)
	}
}

func TestCompleteCommand(t *testing.T) {
	handler, _, _ := newHandler(t)
	var out bytes.Buffer
	if err := handler.Run(strings.NewReader(":complete the s\n:complete xyz\n"), &out); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "Found 1 completions for 'the s':") || !strings.Contains(got, "sat") {
		t.Errorf("expected completion of 'sat', got:\n%s", got)
	}
	if !strings.Contains(got, "No completions for 'xyz'") {
		t.Errorf("expected no completions for 'xyz', got:\n%s", got)
	}
}

func TestDestroyedHandleReportsError(t *testing.T) {
	handler, r, h := newHandler(t)
	if err := r.Destroy(h); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := handler.Run(strings.NewReader("the cat\n"), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "invalid predictor handle") {
		t.Errorf("expected invalid handle error, got:\n%s", out.String())
	}
}
