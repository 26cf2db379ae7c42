package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/repository"
	"github.com/m-mizutani/visaire/pkg/usecase/animation"
	"github.com/urfave/cli/v3"
)

func healthCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "health",
		Usage: "Check the status of the generation service",
		Flags: append(globalFlags(&cfg), serviceFlags(&cfg)...),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx, c)
			if err != nil {
				return err
			}

			service, err := cfg.newService()
			if err != nil {
				return err
			}

			// History is not touched by a health check
			ctrl, err := animation.New(animation.NewInput{
				Service: service,
				UI:      newTerminal(c.Root().Writer),
				Store:   repository.NewHistoryStore(repository.NewMemory()),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create controller")
			}

			// The status is advisory; an unreachable service is reported, not failed
			ctrl.CheckHealth(ctx)
			return nil
		},
	}
}
