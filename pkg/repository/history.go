package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/visaire/pkg/model"
	"github.com/m-mizutani/visaire/pkg/utils/logging"
)

// HistoryKey is the fixed key holding the serialized history list
const HistoryKey = "animationHistory"

// HistoryStore persists the history list as a JSON array in a KV
type HistoryStore struct {
	kv KV
}

func NewHistoryStore(kv KV) *HistoryStore {
	return &HistoryStore{kv: kv}
}

// Load returns the persisted history. A missing, unreadable or malformed value
// yields an empty history; Load never fails.
func (s *HistoryStore) Load(ctx context.Context) model.History {
	data, err := s.kv.Get(ctx, HistoryKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.From(ctx).Debug("history is unavailable, starting empty", logging.ErrAttr(err))
		}
		return model.History{}
	}

	var history model.History
	if err := json.Unmarshal(data, &history); err != nil {
		logging.From(ctx).Debug("history is malformed, starting empty", "error", err, "size", len(data))
		return model.History{}
	}

	// null entries are not items
	result := make(model.History, 0, len(history))
	for _, item := range history {
		if item != nil {
			result = append(result, item)
		}
	}
	return result
}

// Save replaces the persisted history
func (s *HistoryStore) Save(ctx context.Context, history model.History) error {
	if history == nil {
		history = model.History{}
	}

	data, err := json.Marshal(history)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal history")
	}
	if err := s.kv.Set(ctx, HistoryKey, data); err != nil {
		return goerr.Wrap(err, "failed to save history", goerr.V("items", len(history)))
	}
	return nil
}

// Clear removes the persisted history
func (s *HistoryStore) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, HistoryKey); err != nil {
		return goerr.Wrap(err, "failed to clear history")
	}
	return nil
}
