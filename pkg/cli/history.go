package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/model"
	"github.com/m-mizutani/visaire/pkg/usecase/animation"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Manage the local animation history",
		Commands: []*cli.Command{
			historyListCommand(),
			historyShowCommand(),
			historyDeleteCommand(),
			historyClearCommand(),
		},
	}
}

// historyIDFlag returns the flag selecting a history item
func historyIDFlag(id *int64, usage string) cli.Flag {
	return &cli.IntFlag{
		Name:        "id",
		Aliases:     []string{"i"},
		Usage:       usage,
		Sources:     cli.EnvVars("VISAIRE_HISTORY_ID"),
		Destination: id,
		Required:    true,
	}
}

// withHistory runs fn with a controller whose history has been loaded
func withHistory(ctx context.Context, c *cli.Command, cfg *config, ui *terminal, fn func(ctx context.Context, ctrl *animation.Controller) error) error {
	ctx, err := cfg.setup(ctx, c)
	if err != nil {
		return err
	}

	ctrl, release, err := cfg.newController(ctx, ui)
	if err != nil {
		return err
	}
	defer release()

	ctrl.Load(ctx)
	return fn(ctx, ctrl)
}

func historyListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List recent animations",
		Flags: allFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ui := newTerminal(c.Root().Writer)
			return withHistory(ctx, c, &cfg, ui, func(ctx context.Context, ctrl *animation.Controller) error {
				ui.RenderHistory(ctrl.History())
				return nil
			})
		},
	}
}

func historyShowCommand() *cli.Command {
	var (
		cfg config
		id  int64
	)

	flags := []cli.Flag{
		historyIDFlag(&id, "History item ID to show"),
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "show",
		Usage: "Show the video of a history item",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ui := newTerminal(c.Root().Writer)
			return withHistory(ctx, c, &cfg, ui, func(ctx context.Context, ctrl *animation.Controller) error {
				if err := ctrl.LoadHistoryItem(ctx, model.HistoryID(id)); err != nil {
					return goerr.Wrap(err, "failed to show history item")
				}
				return nil
			})
		},
	}
}

func historyDeleteCommand() *cli.Command {
	var (
		cfg config
		id  int64
	)

	flags := []cli.Flag{
		historyIDFlag(&id, "History item ID to delete"),
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a history item",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ui := newTerminal(c.Root().Writer)
			return withHistory(ctx, c, &cfg, ui, func(ctx context.Context, ctrl *animation.Controller) error {
				if err := ctrl.DeleteHistoryItem(ctx, model.HistoryID(id)); err != nil {
					return goerr.Wrap(err, "failed to delete history item")
				}
				fmt.Fprintf(c.Root().Writer, "Deleted history item %d\n", id)
				return nil
			})
		},
	}
}

func historyClearCommand() *cli.Command {
	var (
		cfg config
		yes bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "yes",
			Aliases:     []string{"y"},
			Usage:       "Clear without asking for confirmation",
			Destination: &yes,
		},
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "clear",
		Usage: "Clear all history",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ui := newTerminal(c.Root().Writer, withInput(os.Stdin), withAssumeYes(yes))
			return withHistory(ctx, c, &cfg, ui, func(ctx context.Context, ctrl *animation.Controller) error {
				if ctrl.ClearHistory(ctx) {
					fmt.Fprintln(c.Root().Writer, "History cleared")
				}
				return nil
			})
		},
	}
}
