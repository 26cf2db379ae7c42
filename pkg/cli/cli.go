package cli

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/visaire/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	loadDotEnv(ctx, ".env")

	cmd := &cli.Command{
		Name:      "visaire",
		Usage:     "Generate animations from text prompts",
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			runCommand(),
			generateCommand(),
			healthCommand(),
			historyCommand(),
			shareCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", logging.ErrAttr(err))
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

// loadDotEnv loads environment variables from path if it exists. Variables
// already set in the environment are kept.
func loadDotEnv(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.From(ctx).Warn("cannot access dotenv file", "path", path, "error", err)
		}
		return
	}
	if err := godotenv.Load(path); err != nil {
		logging.From(ctx).Warn("failed to load dotenv file", "path", path, "error", err)
	}
}
