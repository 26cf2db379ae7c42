package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/m-mizutani/visaire/pkg/model"
	"github.com/m-mizutani/visaire/pkg/usecase/animation"
)

const sessionPrompt = "visaire> "

const sessionHelp = `Type a prompt and press Enter to generate an animation.
Commands:
  /examples        list example prompts
  /example <n>     use example prompt n
  /history         show recent animations
  /load <id>       show a video from history
  /delete <id>     delete an item from history
  /clear           clear all history
  /share           share the current video
  /status          check the service status
  /help            show this help
  /exit            quit
`

// session dispatches lines typed in the interactive prompt
type session struct {
	ctrl     *animation.Controller
	ui       *terminal
	w        io.Writer
	examples []string
}

// handle processes a single input line and reports whether the session
// should end
func (s *session) handle(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		draft := s.ui.takeDraft()
		if trimmed == "" && draft != "" {
			line = draft
		} else if trimmed != "" {
			s.ctrl.InputChanged()
		}
		s.ctrl.Submit(ctx, line)
		return false
	}

	s.ctrl.InputChanged()
	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/exit", "/quit":
		return true

	case "/help":
		fmt.Fprint(s.w, sessionHelp)

	case "/examples":
		for i, example := range s.examples {
			fmt.Fprintf(s.w, "  %d. %s\n", i+1, example)
		}

	case "/example":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(s.examples) {
			fmt.Fprintf(s.w, "Choose an example between 1 and %d\n", len(s.examples))
			return false
		}
		s.ctrl.UseExample(s.examples[n-1])

	case "/history":
		s.ui.RenderHistory(s.ctrl.History())

	case "/load", "/delete":
		id, err := parseHistoryID(arg)
		if err != nil {
			fmt.Fprintf(s.w, "Usage: %s <id>\n", name)
			return false
		}
		if name == "/load" {
			err = s.ctrl.LoadHistoryItem(ctx, id)
		} else {
			err = s.ctrl.DeleteHistoryItem(ctx, id)
		}
		if errors.Is(err, animation.ErrHistoryItemNotFound) {
			fmt.Fprintf(s.w, "No history item with id %d\n", id)
		}

	case "/clear":
		if s.ctrl.ClearHistory(ctx) {
			fmt.Fprintln(s.w, "History cleared")
		}

	case "/share":
		if err := s.ctrl.ShareCurrent(ctx); errors.Is(err, animation.ErrNoVideo) {
			fmt.Fprintln(s.w, "No video to share yet")
		}

	case "/status":
		s.ctrl.CheckHealth(ctx)

	default:
		fmt.Fprintf(s.w, "Unknown command %s, type /help for commands\n", name)
	}

	return false
}

func parseHistoryID(s string) (model.HistoryID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return model.HistoryID(id), nil
}
