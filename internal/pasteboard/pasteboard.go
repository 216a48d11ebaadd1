package pasteboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/raaihank/clip-sentinel/internal/detector"
	"github.com/raaihank/clip-sentinel/internal/logger"
	"github.com/raaihank/clip-sentinel/internal/patterns"
	"go.uber.org/zap"
)

// Recognizer finds patterns in a text. It is the opaque platform detector;
// nothing in this repository implements recognition itself.
type Recognizer interface {
	Patterns(ctx context.Context, text string, keys []patterns.Key) ([]patterns.Key, error)
	Values(ctx context.Context, text string, keys []patterns.Key) (*patterns.Snapshot, error)
}

// Pasteboard combines a clipboard with a recognizer into a detector.Source.
// The clipboard is re-read for every query.
type Pasteboard struct {
	reader     TextReader
	recognizer Recognizer
	logger     *logger.Logger
	notice     sync.Once
}

var _ detector.Source = (*Pasteboard)(nil)

// New creates a pasteboard over reader and recognizer
func New(reader TextReader, recognizer Recognizer, log *logger.Logger) *Pasteboard {
	if log == nil {
		log = logger.Nop()
	}
	return &Pasteboard{
		reader:     reader,
		recognizer: recognizer,
		logger:     log,
	}
}

// HasText reports whether the clipboard holds non-empty plain text
func (p *Pasteboard) HasText(ctx context.Context) bool {
	_, err := p.text()
	return err == nil
}

// Patterns runs an existence query against the current clipboard text
func (p *Pasteboard) Patterns(ctx context.Context, keys []patterns.Key) ([]patterns.Key, error) {
	text, err := p.text()
	if err != nil {
		return nil, err
	}
	return p.recognizer.Patterns(ctx, text, keys)
}

// Values resolves matched values from the current clipboard text. The
// first resolution is logged as clipboard content access.
func (p *Pasteboard) Values(ctx context.Context, keys []patterns.Key) (*patterns.Snapshot, error) {
	text, err := p.text()
	if err != nil {
		return nil, err
	}

	p.notice.Do(func() {
		p.logger.Info("Clipboard content accessed for value resolution", zap.Int("kinds", len(keys)))
	})

	return p.recognizer.Values(ctx, text, keys)
}

func (p *Pasteboard) text() (string, error) {
	text, err := p.reader.ReadText()
	if err != nil {
		if errors.Is(err, detector.ErrSourceUnavailable) {
			return "", err
		}
		p.logger.Debug("Clipboard read failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", detector.ErrSourceUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", detector.ErrSourceUnavailable
	}
	return text, nil
}
