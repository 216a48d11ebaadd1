package pasteboard

import (
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/raaihank/clip-sentinel/internal/detector"
)

// TextReader reads the current plain text of a clipboard
type TextReader interface {
	ReadText() (string, error)
}

// SystemClipboard reads the host clipboard
type SystemClipboard struct{}

// ReadText returns the clipboard text. Platforms without clipboard support
// report detector.ErrSourceUnavailable.
func (SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("%w: clipboard not supported on %s", detector.ErrSourceUnavailable, runtime.GOOS)
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	return text, nil
}

// StaticText serves a fixed string in place of a clipboard
type StaticText string

func (s StaticText) ReadText() (string, error) {
	return string(s), nil
}
