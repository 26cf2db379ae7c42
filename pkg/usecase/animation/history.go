package animation

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/model"
	"github.com/m-mizutani/visaire/pkg/utils/logging"
)

// History returns a snapshot of the history list, newest first
func (c *Controller) History() model.History {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(model.History{}, c.history...)
}

func (c *Controller) addToHistory(ctx context.Context, prompt, videoURL string) {
	c.mu.Lock()
	item := model.NewHistoryItem(prompt, videoURL, c.now(), c.history.Latest())
	c.history = c.history.Add(item)
	history := c.history
	c.mu.Unlock()

	c.persist(ctx, history)
	c.ui.RenderHistory(history)
}

// LoadHistoryItem re-displays the video of a history item and puts its
// prompt into the prompt field
func (c *Controller) LoadHistoryItem(ctx context.Context, id model.HistoryID) error {
	c.mu.Lock()
	item := c.history.Find(id)
	c.mu.Unlock()

	if item == nil {
		return goerr.Wrap(ErrHistoryItemNotFound, "cannot load", goerr.V("id", id))
	}

	c.ShowVideo(item.Video())
	c.ui.SetPromptText(item.Prompt)
	return nil
}

// DeleteHistoryItem removes the item identified by id
func (c *Controller) DeleteHistoryItem(ctx context.Context, id model.HistoryID) error {
	c.mu.Lock()
	if c.history.Find(id) == nil {
		c.mu.Unlock()
		return goerr.Wrap(ErrHistoryItemNotFound, "cannot delete", goerr.V("id", id))
	}
	c.history = c.history.Delete(id)
	history := c.history
	c.mu.Unlock()

	c.persist(ctx, history)
	c.ui.RenderHistory(history)
	return nil
}

// ClearHistory removes every item after the user confirms. It reports
// whether the history was cleared.
func (c *Controller) ClearHistory(ctx context.Context) bool {
	if !c.ui.Confirm(MsgConfirmClear) {
		return false
	}

	c.mu.Lock()
	c.history = model.History{}
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		logging.From(ctx).Warn("failed to clear persisted history", logging.ErrAttr(err))
	}
	c.ui.RenderHistory(model.History{})
	return true
}

// persist writes history. The in-memory list stays authoritative when the
// write fails.
func (c *Controller) persist(ctx context.Context, history model.History) {
	if err := c.store.Save(ctx, history); err != nil {
		logging.From(ctx).Warn("failed to persist history", logging.ErrAttr(err))
	}
}
