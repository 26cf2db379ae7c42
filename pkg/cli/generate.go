package cli

import (
	"context"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func generateCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Generate an animation from a prompt",
		ArgsUsage: "<prompt...>",
		Flags:     allFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx, c)
			if err != nil {
				return err
			}

			ui := newTerminal(c.Root().Writer, withInput(os.Stdin))
			ctrl, release, err := cfg.newController(ctx, ui)
			if err != nil {
				return err
			}
			defer release()

			ctrl.Load(ctx)
			prompt := strings.Join(c.Args().Slice(), " ")
			if !ctrl.Submit(ctx, prompt) {
				return goerr.New("animation was not generated")
			}
			return nil
		},
	}
}
