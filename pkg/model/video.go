package model

import "fmt"

// Video is the currently displayed video reference and its originating prompt
type Video struct {
	URL    string
	Prompt string
}

// GenerateResult is a successful response of the generation service
type GenerateResult struct {
	VideoURL string
}

const ShareTitle = "Visaire Animation"

// ShareData is handed to a native share capability
type ShareData struct {
	Title string
	Text  string
	URL   string
}

// NewShareData builds share content for a video available at absoluteURL
func NewShareData(video Video, absoluteURL string) ShareData {
	return ShareData{
		Title: ShareTitle,
		Text:  fmt.Sprintf("Check out this animation: \"%s\"", video.Prompt),
		URL:   absoluteURL,
	}
}

// KeyEvent is a key press observed by a UI
type KeyEvent struct {
	Key  string
	Ctrl bool
	Meta bool
}

// IsSubmitShortcut reports whether the event is the confirm shortcut
// (Ctrl+Enter or Cmd+Enter).
func (x KeyEvent) IsSubmitShortcut() bool {
	return (x.Ctrl || x.Meta) && x.Key == "Enter"
}
