package patterns

import (
	"encoding/json"
	"fmt"
)

// Detection pairs one kind with its resolved values. The set of
// implementations is closed; consumers type-switch over them.
type Detection interface {
	Kind() Kind
	// Empty reports whether the detection carries no usable value
	Empty() bool
	detection()
}

type (
	CalendarEventsDetection          []CalendarEvent
	EmailAddressesDetection          []EmailAddress
	FlightNumbersDetection           []FlightNumber
	LinksDetection                   []Link
	MoneyAmountsDetection            []MoneyAmount
	PhoneNumbersDetection            []PhoneNumber
	PostalAddressesDetection         []PostalAddress
	ProbableWebSearchDetection       string
	ProbableWebURLDetection          string
	ShipmentTrackingNumbersDetection []ShipmentTrackingNumber
)

// NumberDetection holds the single numeric value of the text, if any
type NumberDetection struct {
	Value *float64
}

func (CalendarEventsDetection) Kind() Kind          { return CalendarEvents }
func (EmailAddressesDetection) Kind() Kind          { return EmailAddresses }
func (FlightNumbersDetection) Kind() Kind           { return FlightNumbers }
func (LinksDetection) Kind() Kind                   { return Links }
func (MoneyAmountsDetection) Kind() Kind            { return MoneyAmounts }
func (NumberDetection) Kind() Kind                  { return Number }
func (PhoneNumbersDetection) Kind() Kind            { return PhoneNumbers }
func (PostalAddressesDetection) Kind() Kind         { return PostalAddresses }
func (ProbableWebSearchDetection) Kind() Kind       { return ProbableWebSearch }
func (ProbableWebURLDetection) Kind() Kind          { return ProbableWebURL }
func (ShipmentTrackingNumbersDetection) Kind() Kind { return ShipmentTrackingNumbers }

func (d CalendarEventsDetection) Empty() bool          { return len(d) == 0 }
func (d EmailAddressesDetection) Empty() bool          { return len(d) == 0 }
func (d FlightNumbersDetection) Empty() bool           { return len(d) == 0 }
func (d LinksDetection) Empty() bool                   { return len(d) == 0 }
func (d MoneyAmountsDetection) Empty() bool            { return len(d) == 0 }
func (d NumberDetection) Empty() bool                  { return d.Value == nil }
func (d PhoneNumbersDetection) Empty() bool            { return len(d) == 0 }
func (d PostalAddressesDetection) Empty() bool         { return len(d) == 0 }
func (d ProbableWebSearchDetection) Empty() bool       { return d == "" }
func (d ProbableWebURLDetection) Empty() bool          { return d == "" }
func (d ShipmentTrackingNumbersDetection) Empty() bool { return len(d) == 0 }

func (CalendarEventsDetection) detection()          {}
func (EmailAddressesDetection) detection()          {}
func (FlightNumbersDetection) detection()           {}
func (LinksDetection) detection()                   {}
func (MoneyAmountsDetection) detection()            {}
func (NumberDetection) detection()                  {}
func (PhoneNumbersDetection) detection()            {}
func (PostalAddressesDetection) detection()         {}
func (ProbableWebSearchDetection) detection()       {}
func (ProbableWebURLDetection) detection()          {}
func (ShipmentTrackingNumbersDetection) detection() {}

// Empty returns the identity-only representative of kind
func Empty(kind Kind) Detection {
	switch kind {
	case CalendarEvents:
		return CalendarEventsDetection{}
	case EmailAddresses:
		return EmailAddressesDetection{}
	case FlightNumbers:
		return FlightNumbersDetection{}
	case Links:
		return LinksDetection{}
	case MoneyAmounts:
		return MoneyAmountsDetection{}
	case Number:
		return NumberDetection{}
	case PhoneNumbers:
		return PhoneNumbersDetection{}
	case PostalAddresses:
		return PostalAddressesDetection{}
	case ProbableWebSearch:
		return ProbableWebSearchDetection("")
	case ProbableWebURL:
		return ProbableWebURLDetection("")
	case ShipmentTrackingNumbers:
		return ShipmentTrackingNumbersDetection{}
	}
	panic("patterns: empty detection for unknown kind " + kind.String())
}

// Count returns how many values a detection carries
func Count(d Detection) int {
	switch v := d.(type) {
	case CalendarEventsDetection:
		return len(v)
	case EmailAddressesDetection:
		return len(v)
	case FlightNumbersDetection:
		return len(v)
	case LinksDetection:
		return len(v)
	case MoneyAmountsDetection:
		return len(v)
	case PhoneNumbersDetection:
		return len(v)
	case PostalAddressesDetection:
		return len(v)
	case ShipmentTrackingNumbersDetection:
		return len(v)
	case NumberDetection, ProbableWebSearchDetection, ProbableWebURLDetection:
		if d.Empty() {
			return 0
		}
		return 1
	}
	return 0
}

// encodedDetection is the wire shape of a detection
type encodedDetection struct {
	Kind   Kind `json:"kind"`
	Values any  `json:"values"`
}

// MarshalDetections encodes detections as a JSON array of {kind, values}
func MarshalDetections(detections []Detection) ([]byte, error) {
	encoded, err := EncodeDetections(detections)
	if err != nil {
		return nil, err
	}
	return json.Marshal(encoded)
}

// EncodeDetections converts detections into values ready for JSON encoding
func EncodeDetections(detections []Detection) ([]any, error) {
	out := make([]any, 0, len(detections))
	for _, d := range detections {
		if d == nil {
			return nil, fmt.Errorf("nil detection")
		}
		var values any
		switch v := d.(type) {
		case NumberDetection:
			values = v.Value
		case ProbableWebSearchDetection:
			values = string(v)
		case ProbableWebURLDetection:
			values = string(v)
		default:
			values = v
		}
		out = append(out, encodedDetection{Kind: d.Kind(), Values: values})
	}
	return out, nil
}
