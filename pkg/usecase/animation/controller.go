package animation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/model"
	"github.com/m-mizutani/visaire/pkg/repository"
	"github.com/m-mizutani/visaire/pkg/utils/logging"
)

const (
	MsgEmptyPrompt    = "Please enter a prompt for your animation"
	MsgGenerateFailed = "Failed to generate animation"
	MsgCopied         = "Video URL copied to clipboard!"
	MsgCopyManually   = "Copy this URL to share:"
	MsgConfirmClear   = "Are you sure you want to clear all animation history?"
)

// Controller mediates between UI events, the generation service and the
// persisted history
type Controller struct {
	service  Service
	resolver URLResolver
	platform Platform
	ui       UI
	store    *repository.HistoryStore
	now      func() time.Time

	mu      sync.Mutex
	status  model.Status
	busy    bool
	current *model.Video
	history model.History

	wg sync.WaitGroup
}

// NewInput contains dependencies of a Controller
type NewInput struct {
	Service  Service
	Platform Platform
	UI       UI
	Store    *repository.HistoryStore

	// Resolver builds absolute video URLs. Optional: references are used as
	// they are when nil.
	Resolver URLResolver

	// Now is the clock used for history items. Optional.
	Now func() time.Time
}

func New(input NewInput) (*Controller, error) {
	if input.Service == nil {
		return nil, goerr.New("service is required")
	}
	if input.UI == nil {
		return nil, goerr.New("ui is required")
	}
	if input.Store == nil {
		return nil, goerr.New("history store is required")
	}

	c := &Controller{
		service:  input.Service,
		resolver: input.Resolver,
		platform: input.Platform,
		ui:       input.UI,
		store:    input.Store,
		now:      input.Now,
		history:  model.History{},
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Init loads the persisted history, renders it and starts a health check in
// the background. Init never fails on unreadable history.
func (c *Controller) Init(ctx context.Context) {
	history := c.Load(ctx)
	c.ui.RenderHistory(history)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.CheckHealth(ctx)
	}()
}

// Load replaces the in-memory history with the persisted one without
// rendering it
func (c *Controller) Load(ctx context.Context) model.History {
	history := c.store.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = history
	return append(model.History{}, history...)
}

// Wait blocks until background work started by Init has finished
func (c *Controller) Wait() {
	c.wg.Wait()
}

// CheckHealth queries the service and updates the status indicator
func (c *Controller) CheckHealth(ctx context.Context) model.Status {
	status, err := c.service.CheckHealth(ctx)
	if err != nil {
		logging.From(ctx).Debug("health check failed", logging.ErrAttr(err))
		status = model.StatusOffline
	}

	c.mu.Lock()
	c.status = status
	c.mu.Unlock()

	c.ui.SetStatus(status)
	return status
}

// Status returns the last observed health status
func (c *Controller) Status() model.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Busy reports whether a submission is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Submit validates text and requests an animation. It reports whether a video
// was generated. A call made while another submission is in flight is ignored.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		c.ui.ShowError(MsgEmptyPrompt)
		return false
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		logging.From(ctx).Debug("submission ignored while busy")
		return false
	}
	c.busy = true
	c.mu.Unlock()

	c.ui.SetBusy(true)
	c.ui.HideError()
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
		c.ui.SetBusy(false)
	}()

	result, err := c.service.Generate(ctx, prompt)
	if err != nil {
		logging.From(ctx).Warn("generation failed", logging.ErrAttr(err))
		c.ui.ShowError(failureMessage(err))
		return false
	}

	video := model.Video{URL: result.VideoURL, Prompt: prompt}
	c.ShowVideo(video)
	c.addToHistory(ctx, prompt, result.VideoURL)
	return true
}

func failureMessage(err error) string {
	var svcErr *model.ServiceError
	if errors.As(err, &svcErr) && svcErr.Detail != "" {
		return svcErr.Detail
	}
	return MsgGenerateFailed
}

// ShowVideo displays video and makes it the current one
func (c *Controller) ShowVideo(video model.Video) {
	c.mu.Lock()
	c.current = &video
	c.mu.Unlock()

	c.ui.ShowVideo(video, c.absoluteURL(video.URL))
}

// Current returns the displayed video, if any
func (c *Controller) Current() (model.Video, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return model.Video{}, false
	}
	return *c.current, true
}

func (c *Controller) absoluteURL(ref string) string {
	if c.resolver == nil {
		return ref
	}
	return c.resolver.ResolveURL(ref)
}

// Share shares video through the native share capability, falling back to
// the clipboard and finally to presenting the URL for manual copying.
func (c *Controller) Share(ctx context.Context, video model.Video) {
	shareURL := c.absoluteURL(video.URL)

	if c.platform == nil {
		c.ui.PresentURL(MsgCopyManually, shareURL)
		return
	}

	err := c.platform.Share(ctx, model.NewShareData(video, shareURL))
	if err == nil {
		return
	}
	if !errors.Is(err, ErrShareUnsupported) {
		// A dismissed share sheet lands here as well
		logging.From(ctx).Debug("native share did not complete", logging.ErrAttr(err))
		return
	}

	if err := c.platform.CopyToClipboard(shareURL); err != nil {
		logging.From(ctx).Debug("clipboard is unavailable", logging.ErrAttr(err))
		c.ui.PresentURL(MsgCopyManually, shareURL)
		return
	}
	c.ui.Notify(MsgCopied)
}

// ShareCurrent shares the displayed video
func (c *Controller) ShareCurrent(ctx context.Context) error {
	video, ok := c.Current()
	if !ok {
		return ErrNoVideo
	}
	c.Share(ctx, video)
	return nil
}

// UseExample places an example prompt into the prompt field
func (c *Controller) UseExample(prompt string) {
	c.ui.SetPromptText(prompt)
	c.ui.HideError()
}

// InputChanged is called whenever the prompt field is edited
func (c *Controller) InputChanged() {
	c.ui.HideError()
}

// HandleKey submits text when the event is the confirm shortcut. It reports
// whether the event was handled. It is for front ends that observe key
// modifiers; the line oriented terminal submits on Enter instead.
func (c *Controller) HandleKey(ctx context.Context, ev model.KeyEvent, text string) bool {
	if !ev.IsSubmitShortcut() {
		return false
	}
	c.Submit(ctx, text)
	return true
}
