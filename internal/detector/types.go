package detector

import (
	"context"
	"errors"
	"fmt"

	"github.com/raaihank/clip-sentinel/internal/patterns"
)

// Source is the recognition service the detector queries. Implementations
// only read the underlying text and must be safe for concurrent use.
type Source interface {
	// HasText reports whether the source currently holds plain text
	HasText(ctx context.Context) bool
	// Patterns returns the subset of keys with at least one match in the text
	Patterns(ctx context.Context, keys []patterns.Key) ([]patterns.Key, error)
	// Values resolves the matched values for keys
	Values(ctx context.Context, keys []patterns.Key) (*patterns.Snapshot, error)
}

var (
	// ErrSourceUnavailable means the source holds no text. Detect reports it
	// as "no detection" rather than an error.
	ErrSourceUnavailable = errors.New("text source unavailable")

	// ErrRecognition matches every RecognitionError
	ErrRecognition = errors.New("pattern recognition failed")

	// ErrUnknownPreset is returned for a preset name that is not configured
	ErrUnknownPreset = errors.New("unknown preset")
)

// Query stages
const (
	StageDisallowed = "disallowed"
	StageWanted     = "wanted"
	StageValues     = "values"
)

// RecognitionError wraps a failure of the recognition service
type RecognitionError struct {
	Stage string
	Err   error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("pattern recognition failed during %s query: %v", e.Stage, e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRecognition) hold
func (e *RecognitionError) Is(target error) bool {
	return target == ErrRecognition
}

// Preset is a named want/tolerate pair
type Preset struct {
	Name     string          `json:"name"`
	Want     []patterns.Kind `json:"want"`
	Tolerate []patterns.Kind `json:"tolerate"`
}
