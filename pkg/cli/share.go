package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/model"
	"github.com/m-mizutani/visaire/pkg/usecase/animation"
	"github.com/urfave/cli/v3"
)

func shareCommand() *cli.Command {
	var (
		cfg config
		id  int64
	)

	flags := []cli.Flag{
		historyIDFlag(&id, "History item ID to share"),
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "share",
		Usage: "Share the video of a history item",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ui := newTerminal(c.Root().Writer)
			return withHistory(ctx, c, &cfg, ui, func(ctx context.Context, ctrl *animation.Controller) error {
				item := ctrl.History().Find(model.HistoryID(id))
				if item == nil {
					return goerr.Wrap(animation.ErrHistoryItemNotFound, "failed to share", goerr.V("id", id))
				}
				ctrl.Share(ctx, item.Video())
				return nil
			})
		},
	}
}
