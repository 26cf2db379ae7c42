package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "run",
		Usage: "Start an interactive animation session",
		Flags: allFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx, c)
			if err != nil {
				return err
			}

			// Background work started by the session must not outlive it
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          sessionPrompt,
				HistoryFile:     filepath.Join(cfg.dataDir, "prompt_history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "/exit",
				Stdin:           sessionInput(c.Root().Reader),
				Stdout:          c.Root().Writer,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to initialize prompt")
			}
			defer rl.Close()

			w := rl.Stdout()
			ui := newTerminal(w, withReadline(rl))
			ctrl, release, err := cfg.newController(ctx, ui)
			if err != nil {
				return err
			}
			defer release()

			fmt.Fprintf(w, "Visaire session started. Type /help for commands.\n")
			ctrl.Init(ctx)

			s := &session{ctrl: ctrl, ui: ui, w: w, examples: cfg.examples}
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						break
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read prompt")
				}

				if s.handle(ctx, line) {
					break
				}
			}

			cancel()
			ctrl.Wait()
			fmt.Fprintf(w, "Session ended\n")
			return nil
		},
	}
}

// sessionInput returns r as readline input. nil keeps readline's own
// cancelable stdin.
func sessionInput(r io.Reader) io.ReadCloser {
	if r == nil || r == os.Stdin {
		return nil
	}
	return io.NopCloser(r)
}
