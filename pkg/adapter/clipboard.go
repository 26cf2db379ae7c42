package adapter

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/model"
	"github.com/m-mizutani/visaire/pkg/usecase/animation"
)

// Terminal is the share platform of a terminal session. Terminals have no
// native share sheet, so sharing falls back to the system clipboard.
type Terminal struct{}

func NewTerminal() *Terminal {
	return &Terminal{}
}

func (t *Terminal) Share(ctx context.Context, data model.ShareData) error {
	return animation.ErrShareUnsupported
}

func (t *Terminal) CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return goerr.New("clipboard is not supported on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return goerr.Wrap(err, "failed to write clipboard")
	}
	return nil
}
