package animation

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/model"
)

var (
	// ErrShareUnsupported is returned by Platform.Share when no native share
	// capability is available
	ErrShareUnsupported = goerr.New("native share is not supported")

	// ErrNoVideo is returned when an operation needs a displayed video
	ErrNoVideo = goerr.New("no video is displayed")

	// ErrHistoryItemNotFound is returned for an unknown history id
	ErrHistoryItemNotFound = goerr.New("history item not found")
)

// Service is the remote animation generation service
type Service interface {
	CheckHealth(ctx context.Context) (model.Status, error)
	Generate(ctx context.Context, prompt string) (*model.GenerateResult, error)
}

// URLResolver turns a video reference into an absolute URL
type URLResolver interface {
	ResolveURL(ref string) string
}

// Platform provides sharing capabilities of the environment
type Platform interface {
	// Share invokes a native share capability, or returns ErrShareUnsupported
	Share(ctx context.Context, data model.ShareData) error
	CopyToClipboard(text string) error
}

// UI is the rendering surface driven by the controller. Implementations must
// accept calls from the background health check goroutine.
type UI interface {
	SetStatus(status model.Status)
	SetBusy(busy bool)
	ShowError(message string)
	HideError()

	// ShowVideo renders a playable video with its prompt, a download link to
	// downloadURL and a share affordance
	ShowVideo(video model.Video, downloadURL string)
	RenderHistory(history model.History)
	SetPromptText(text string)

	Confirm(message string) bool
	Notify(message string)
	PresentURL(message, url string)
}
