package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/visaire/pkg/model"
)

// terminal renders controller output as text. It implements animation.UI.
type terminal struct {
	mu sync.Mutex
	w  io.Writer

	// Confirm reads answers from rl when set, otherwise from in
	rl *readline.Instance
	in *bufio.Reader

	spinner   *spinner.Spinner
	spinning  bool
	assumeYes bool

	errorShown bool
	draft      string
}

type terminalOption func(*terminal)

func withReadline(rl *readline.Instance) terminalOption {
	return func(t *terminal) {
		t.rl = rl
	}
}

func withInput(r io.Reader) terminalOption {
	return func(t *terminal) {
		t.in = bufio.NewReader(r)
	}
}

func withAssumeYes(yes bool) terminalOption {
	return func(t *terminal) {
		t.assumeYes = yes
	}
}

func newTerminal(w io.Writer, opts ...terminalOption) *terminal {
	t := &terminal{w: w}
	for _, opt := range opts {
		opt(t)
	}

	t.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	t.spinner.Suffix = " Generating..."
	return t
}

func (t *terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.w, format, args...)
}

func (t *terminal) SetStatus(status model.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("API status: %s\n", status)
}

func (t *terminal) SetBusy(busy bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if busy {
		t.spinner.Start()
		t.spinning = true
	} else {
		t.stopSpinner()
	}
}

// stopSpinner clears the busy line so following output starts on a clean
// line. t.mu must be held.
func (t *terminal) stopSpinner() {
	if !t.spinning {
		return
	}
	t.spinner.Stop()
	t.spinning = false
}

func (t *terminal) ShowError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopSpinner()
	t.errorShown = true
	t.printf("Error: %s\n", message)
}

func (t *terminal) HideError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errorShown = false
}

// ErrorShown reports whether an error is currently displayed
func (t *terminal) ErrorShown() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errorShown
}

func (t *terminal) ShowVideo(video model.Video, downloadURL string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopSpinner()
	t.printf("\nVideo:    %s\n", video.URL)
	t.printf("Prompt:   %q\n", video.Prompt)
	t.printf("Download: %s\n", downloadURL)
	t.printf("Type /share to share this animation.\n\n")
}

func (t *terminal) RenderHistory(history model.History) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(history) == 0 {
		t.printf("No animations created yet\n")
		return
	}

	t.printf("Recent animations:\n")
	for _, item := range history {
		age := ""
		if created := item.CreatedAt(); !created.IsZero() {
			age = " (" + humanize.Time(created) + ")"
		}
		t.printf("  %d\t%s%s\t%s\n", item.ID, item.Date, age, item.Prompt)
	}
}

func (t *terminal) SetPromptText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = text
	if t.rl != nil {
		t.printf("Prompt: %s\n(press Enter to generate, or type a new prompt)\n", text)
	}
}

// takeDraft returns and clears the text placed by SetPromptText
func (t *terminal) takeDraft() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	draft := t.draft
	t.draft = ""
	return draft
}

func (t *terminal) Confirm(message string) bool {
	if t.assumeYes {
		return true
	}

	question := message + " [y/N]: "
	var answer string
	switch {
	case t.rl != nil:
		t.rl.SetPrompt(question)
		line, err := t.rl.Readline()
		t.rl.SetPrompt(sessionPrompt)
		if err != nil {
			return false
		}
		answer = line
	case t.in != nil:
		t.printf("%s", question)
		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		answer = line
	default:
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (t *terminal) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("%s\n", message)
}

func (t *terminal) PresentURL(message, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("%s\n  %s\n", message, url)
}
