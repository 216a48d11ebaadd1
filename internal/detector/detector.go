package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raaihank/clip-sentinel/internal/logger"
	"github.com/raaihank/clip-sentinel/internal/metrics"
	"github.com/raaihank/clip-sentinel/internal/patterns"
	"go.uber.org/zap"
)

// Detector decides whether the source holds exactly the wanted kinds of
// data and resolves their values
type Detector struct {
	source  Source
	logger  *logger.Logger
	mu      sync.RWMutex
	presets map[string]Preset
}

// New creates a detector over source. The default presets are installed
// first and the given presets override or extend them.
func New(source Source, log *logger.Logger, presets ...Preset) (*Detector, error) {
	if source == nil {
		return nil, errors.New("detector requires a source")
	}
	if log == nil {
		log = logger.Nop()
	}

	d := &Detector{
		source: source,
		logger: log,
	}

	if err := d.SetPresets(presets); err != nil {
		return nil, fmt.Errorf("failed to configure presets: %w", err)
	}

	log.Info("Pattern detector initialized",
		zap.Int("catalog_kinds", len(patterns.All())),
		zap.Int("presets", len(d.Presets())),
	)

	return d, nil
}

// Detect returns one detection per wanted kind present in the source, in
// the order given by want. It returns nil when the source holds no text,
// when any kind outside want and tolerate matches, or when no wanted kind
// resolves to a value. Tolerated kinds never appear in the result.
func (d *Detector) Detect(ctx context.Context, want, tolerate []patterns.Kind) ([]patterns.Detection, error) {
	start := time.Now()

	if err := validateKinds(want); err != nil {
		return nil, err
	}
	if err := validateKinds(tolerate); err != nil {
		return nil, err
	}

	detections, outcome, err := d.detect(ctx, want, tolerate)
	metrics.ObserveDetection(outcome, start)

	if err != nil {
		d.logger.Warn("Pattern detection failed", zap.Error(err))
		return nil, err
	}
	if outcome == metrics.OutcomeDetected {
		d.logger.LogDetections("Patterns detected", detections, zap.Duration("duration", time.Since(start)))
	}
	return detections, nil
}

func (d *Detector) detect(ctx context.Context, want, tolerate []patterns.Kind) ([]patterns.Detection, string, error) {
	if !d.source.HasText(ctx) {
		d.logger.Debug("Source holds no text")
		return nil, metrics.OutcomeNoText, nil
	}

	wantSet := patterns.NewKindSet(want...)
	disallowed := wantSet.Union(patterns.NewKindSet(tolerate...)).Complement()

	// Any match outside want and tolerate invalidates the whole query
	if disallowed.Len() > 0 {
		found, err := d.query(ctx, StageDisallowed, disallowed)
		if err != nil {
			return d.failed(err)
		}
		if found.Len() > 0 {
			d.logger.Debug("Disallowed patterns present",
				logger.KindsField("disallowed", found),
			)
			return nil, metrics.OutcomeSuppressed, nil
		}
	}

	if wantSet.Len() == 0 {
		return nil, metrics.OutcomeNoMatch, nil
	}

	hits, err := d.query(ctx, StageWanted, wantSet)
	if err != nil {
		return d.failed(err)
	}
	if hits.Len() == 0 {
		d.logger.Debug("No wanted patterns present", logger.KindsField("want", wantSet))
		return nil, metrics.OutcomeNoMatch, nil
	}

	// Resolving values is the expensive step, so it only covers the kinds
	// that passed both existence checks
	snapshot, err := d.source.Values(ctx, hits.Keys())
	metrics.ObserveQuery(StageValues, err)
	if err != nil {
		return d.failed(&RecognitionError{Stage: StageValues, Err: err})
	}

	var detections []patterns.Detection
	emitted := make(patterns.KindSet, hits.Len())
	for _, k := range want {
		if !hits.Contains(k) || emitted.Contains(k) {
			continue
		}
		emitted[k] = struct{}{}

		detection, ok := snapshot.Detection(k)
		if !ok {
			d.logger.Debug("Matched pattern resolved to no value", zap.Stringer("kind", k))
			continue
		}
		detections = append(detections, detection)
	}

	if len(detections) == 0 {
		return nil, metrics.OutcomeNoMatch, nil
	}
	return detections, metrics.OutcomeDetected, nil
}

// query runs an existence query and returns the matched kinds of kinds
func (d *Detector) query(ctx context.Context, stage string, kinds patterns.KindSet) (patterns.KindSet, error) {
	keys, err := d.source.Patterns(ctx, kinds.Keys())
	metrics.ObserveQuery(stage, err)
	if err != nil {
		return nil, &RecognitionError{Stage: stage, Err: err}
	}

	found := patterns.KindsFromKeys(keys)
	for k := range found {
		if !kinds.Contains(k) {
			delete(found, k)
		}
	}
	return found, nil
}

// failed maps a source failure to a detect outcome. A source that lost its
// text between queries is an empty result, not an error.
func (d *Detector) failed(err error) ([]patterns.Detection, string, error) {
	if errors.Is(err, ErrSourceUnavailable) {
		d.logger.Debug("Source became unavailable", zap.Error(err))
		return nil, metrics.OutcomeNoText, nil
	}
	return nil, metrics.OutcomeError, err
}

func validateKinds(kinds []patterns.Kind) error {
	for _, k := range kinds {
		if !k.Valid() {
			return fmt.Errorf("unknown pattern kind: %d", int(k))
		}
	}
	return nil
}
