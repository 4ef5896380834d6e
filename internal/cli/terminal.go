package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/bastiangx/wordpredict/internal/logger"
	"github.com/bastiangx/wordpredict/internal/utils"
	"github.com/bastiangx/wordpredict/pkg/ngram"
	"github.com/bastiangx/wordpredict/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// terminal renders results for the input loop. Colors are only emitted when
// w supports them; the prompt only when the input is interactive.
type terminal struct {
	w           io.Writer
	out         *log.Logger
	interactive bool

	word   lipgloss.Style
	faint  lipgloss.Style
	prompt lipgloss.Style
}

func newTerminal(r io.Reader, w io.Writer) *terminal {
	renderer := lipgloss.NewRenderer(w)
	return &terminal{
		w:           w,
		out:         logger.NewWithConfig(w, "", log.InfoLevel, false, false, log.TextFormatter),
		interactive: isTerminal(r),
		word:        renderer.NewStyle().Foreground(lipgloss.Color("75")),
		faint:       renderer.NewStyle().Faint(true),
		prompt:      renderer.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}),
	}
}

// isTerminal reports whether r is a tty.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *terminal) banner() {
	if !t.interactive {
		return
	}
	t.out.Print("WordPredict CLI [BETA]")
	t.out.Print("type some text and press Enter to see the next words (:help for commands, Ctrl+C to exit):")
}

func (t *terminal) showPrompt() {
	if t.interactive {
		fmt.Fprint(t.w, t.prompt.Render("> "))
	}
}

func (t *terminal) predictions(context string, preds []ngram.Prediction, showScores bool) {
	if len(preds) == 0 {
		t.out.Printf("No predictions for '%s'", context)
		return
	}
	t.out.Printf("Found %d predictions after '%s':", len(preds), context)
	for i, p := range preds {
		if showScores {
			t.out.Printf("%2d. %-30s %s", i+1, t.word.Render(p.Token), t.faint.Render(utils.FormatScore(p.Score)))
			continue
		}
		t.out.Printf("%2d. %s", i+1, t.word.Render(p.Token))
	}
}

func (t *terminal) completions(text string, sugs []suggest.Suggestion) {
	if len(sugs) == 0 {
		t.out.Printf("No completions for '%s'", text)
		return
	}
	t.out.Printf("Found %d completions for '%s':", len(sugs), text)
	for i, s := range sugs {
		t.out.Printf("%2d. %-30s (freq: %8s)", i+1, t.word.Render(s.Word), utils.FormatWithCommas(s.Frequency))
	}
}

func (t *terminal) notice(msg string) {
	t.out.Print(t.faint.Render(msg))
}

func (t *terminal) text(msg string) {
	fmt.Fprintln(t.w, msg)
}

func (t *terminal) failure(err error) {
	t.out.Error(err.Error())
}
