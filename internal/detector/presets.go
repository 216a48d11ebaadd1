package detector

import (
	"context"
	"fmt"
	"sort"

	"github.com/raaihank/clip-sentinel/internal/patterns"
	"go.uber.org/zap"
)

// Built-in preset names
const (
	PresetNumber      = "number"
	PresetNumberLoose = "number-loose"
	PresetEmail       = "email"
	PresetEmailLoose  = "email-loose"
	PresetPhone       = "phone"
	PresetMoney       = "money"
)

// DefaultPresets returns the built-in presets.
//
// Tolerated kinds are picked from how the recognizer labels the wanted kind
// on its own: a bare number is also seen as a phone number and a web search,
// an email address as a web search. Tolerating a kind does not widen the
// search. A number embedded in a longer web-search-like text is still
// suppressed because each kind is evaluated against the whole text.
func DefaultPresets() []Preset {
	return []Preset{
		{
			Name:     PresetNumber,
			Want:     []patterns.Kind{patterns.Number},
			Tolerate: []patterns.Kind{patterns.PhoneNumbers, patterns.ProbableWebSearch},
		},
		{
			Name:     PresetNumberLoose,
			Want:     []patterns.Kind{patterns.Number},
			Tolerate: patterns.All(),
		},
		{
			Name:     PresetEmail,
			Want:     []patterns.Kind{patterns.EmailAddresses},
			Tolerate: []patterns.Kind{patterns.ProbableWebSearch},
		},
		{
			Name:     PresetEmailLoose,
			Want:     []patterns.Kind{patterns.EmailAddresses},
			Tolerate: patterns.All(),
		},
		{
			Name:     PresetPhone,
			Want:     []patterns.Kind{patterns.PhoneNumbers},
			Tolerate: []patterns.Kind{patterns.ProbableWebSearch, patterns.ShipmentTrackingNumbers},
		},
		{
			Name:     PresetMoney,
			Want:     []patterns.Kind{patterns.MoneyAmounts},
			Tolerate: []patterns.Kind{patterns.Number},
		},
	}
}

// SetPresets replaces the preset table with the defaults plus overrides
func (d *Detector) SetPresets(overrides []Preset) error {
	table := make(map[string]Preset)
	for _, p := range DefaultPresets() {
		table[p.Name] = p
	}

	for _, p := range overrides {
		if p.Name == "" {
			return fmt.Errorf("preset without name")
		}
		if err := validateKinds(p.Want); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
		if err := validateKinds(p.Tolerate); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
		table[p.Name] = p
	}

	d.mu.Lock()
	d.presets = table
	d.mu.Unlock()

	d.logger.Debug("Presets configured", zap.Int("presets", len(table)), zap.Int("overrides", len(overrides)))
	return nil
}

// Presets returns the configured presets sorted by name
func (d *Detector) Presets() []Preset {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Preset, 0, len(d.presets))
	for _, p := range d.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Preset looks up a preset by name
func (d *Detector) Preset(name string) (Preset, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.presets[name]
	return p, ok
}

// DetectPreset runs Detect with a named preset
func (d *Detector) DetectPreset(ctx context.Context, name string) ([]patterns.Detection, error) {
	p, ok := d.Preset(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return d.Detect(ctx, p.Want, p.Tolerate)
}

// SearchNumbers returns the number the source holds, or nil. When strict is
// false every other kind is tolerated.
func (d *Detector) SearchNumbers(ctx context.Context, strict bool) (*float64, error) {
	name := PresetNumber
	if !strict {
		name = PresetNumberLoose
	}

	detections, err := d.runBuiltin(ctx, name)
	if err != nil || len(detections) == 0 {
		return nil, err
	}

	number, ok := detections[0].(patterns.NumberDetection)
	if !ok {
		return nil, nil
	}
	return number.Value, nil
}

// SearchEmail returns the email addresses the source holds. The result is
// empty, not nil, when nothing was found.
func (d *Detector) SearchEmail(ctx context.Context, strict bool) ([]patterns.EmailAddress, error) {
	name := PresetEmail
	if !strict {
		name = PresetEmailLoose
	}

	detections, err := d.runBuiltin(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(detections) > 0 {
		if emails, ok := detections[0].(patterns.EmailAddressesDetection); ok {
			return emails, nil
		}
	}
	return []patterns.EmailAddress{}, nil
}

// SearchPhoneNumbers returns the phone numbers the source holds
func (d *Detector) SearchPhoneNumbers(ctx context.Context) ([]patterns.PhoneNumber, error) {
	detections, err := d.runBuiltin(ctx, PresetPhone)
	if err != nil {
		return nil, err
	}
	if len(detections) > 0 {
		if numbers, ok := detections[0].(patterns.PhoneNumbersDetection); ok {
			return numbers, nil
		}
	}
	return []patterns.PhoneNumber{}, nil
}

// SearchMoneyAmounts returns the money amounts the source holds
func (d *Detector) SearchMoneyAmounts(ctx context.Context) ([]patterns.MoneyAmount, error) {
	detections, err := d.runBuiltin(ctx, PresetMoney)
	if err != nil {
		return nil, err
	}
	if len(detections) > 0 {
		if amounts, ok := detections[0].(patterns.MoneyAmountsDetection); ok {
			return amounts, nil
		}
	}
	return []patterns.MoneyAmount{}, nil
}

// runBuiltin runs a built-in preset regardless of configured overrides
func (d *Detector) runBuiltin(ctx context.Context, name string) ([]patterns.Detection, error) {
	for _, p := range DefaultPresets() {
		if p.Name == name {
			return d.Detect(ctx, p.Want, p.Tolerate)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
}
