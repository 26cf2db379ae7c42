package model

import (
	"time"
	"unicode/utf8"
)

const (
	// HistoryCapacity is the maximum number of items kept in history
	HistoryCapacity = 10

	// HistoryPromptLimit is the number of prompt characters kept in a history item
	HistoryPromptLimit = 100

	historyTimestampFormat = "2006-01-02T15:04:05.000Z"
	historyDateFormat      = "1/2/2006"
)

type HistoryID int64

// HistoryItem is a record of a past successful generation. It is never
// mutated after creation.
type HistoryItem struct {
	ID        HistoryID `json:"id"`
	Prompt    string    `json:"prompt"`
	VideoURL  string    `json:"videoUrl"`
	Timestamp string    `json:"timestamp"`
	Date      string    `json:"date"`
}

// NewHistoryItem creates a history item for a generated video at now. The id
// is derived from now in milliseconds and bumped above latest when the clock
// would produce a duplicate or smaller id.
func NewHistoryItem(prompt, videoURL string, now time.Time, latest HistoryID) *HistoryItem {
	id := HistoryID(now.UnixMilli())
	if id <= latest {
		id = latest + 1
	}

	return &HistoryItem{
		ID:        id,
		Prompt:    TruncatePrompt(prompt),
		VideoURL:  videoURL,
		Timestamp: now.UTC().Format(historyTimestampFormat),
		Date:      now.Local().Format(historyDateFormat),
	}
}

// TruncatePrompt shortens prompt to HistoryPromptLimit characters followed by
// "..." when it is longer than the limit.
func TruncatePrompt(prompt string) string {
	if utf8.RuneCountInString(prompt) <= HistoryPromptLimit {
		return prompt
	}
	runes := []rune(prompt)
	return string(runes[:HistoryPromptLimit]) + "..."
}

// CreatedAt parses Timestamp. Zero time is returned for a malformed value.
func (x *HistoryItem) CreatedAt() time.Time {
	t, err := time.Parse(historyTimestampFormat, x.Timestamp)
	if err != nil {
		// Items written by other clients may use a different precision
		t, err = time.Parse(time.RFC3339Nano, x.Timestamp)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// Video returns the video and prompt pair to display for the item
func (x *HistoryItem) Video() Video {
	return Video{URL: x.VideoURL, Prompt: x.Prompt}
}

// History is the ordered list of history items, newest first.
type History []*HistoryItem

// Latest returns the id of the newest item, or zero if empty
func (x History) Latest() HistoryID {
	var latest HistoryID
	for _, item := range x {
		if item.ID > latest {
			latest = item.ID
		}
	}
	return latest
}

// Add returns a new list with item inserted at the head, evicting tail items
// beyond HistoryCapacity.
func (x History) Add(item *HistoryItem) History {
	result := make(History, 0, min(len(x)+1, HistoryCapacity))
	result = append(result, item)
	for _, v := range x {
		if len(result) >= HistoryCapacity {
			break
		}
		result = append(result, v)
	}
	return result
}

// Delete returns a new list without the item identified by id
func (x History) Delete(id HistoryID) History {
	result := make(History, 0, len(x))
	for _, v := range x {
		if v.ID != id {
			result = append(result, v)
		}
	}
	return result
}

// Find returns the item identified by id, or nil
func (x History) Find(id HistoryID) *HistoryItem {
	for _, v := range x {
		if v.ID == id {
			return v
		}
	}
	return nil
}
