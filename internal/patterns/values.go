package patterns

import "time"

// CalendarEvent is a date or date range found in text
type CalendarEvent struct {
	MatchedString string    `json:"matchedString"`
	Start         time.Time `json:"start,omitempty"`
	End           time.Time `json:"end,omitempty"`
	AllDay        bool      `json:"allDay,omitempty"`
	TimeZone      string    `json:"timeZone,omitempty"`
}

// EmailAddress is an email address found in text
type EmailAddress struct {
	MatchedString string `json:"matchedString"`
	Address       string `json:"address"`
	Label         string `json:"label,omitempty"`
}

// FlightNumber is an airline flight designator found in text
type FlightNumber struct {
	MatchedString string `json:"matchedString"`
	Airline       string `json:"airline"`
	Flight        string `json:"flight"`
}

// Link is a URL found in text
type Link struct {
	MatchedString string `json:"matchedString"`
	URL           string `json:"url"`
}

// MoneyAmount is a currency amount found in text
type MoneyAmount struct {
	MatchedString string  `json:"matchedString"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}

// PhoneNumber is a phone number found in text
type PhoneNumber struct {
	MatchedString string `json:"matchedString"`
	Number        string `json:"number"`
	Label         string `json:"label,omitempty"`
}

// PostalAddress is a postal address found in text
type PostalAddress struct {
	MatchedString string `json:"matchedString"`
	Street        string `json:"street,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Country       string `json:"country,omitempty"`
}

// ShipmentTrackingNumber is a parcel tracking number found in text
type ShipmentTrackingNumber struct {
	MatchedString  string `json:"matchedString"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
}

// Snapshot holds every value the recognizer resolved for a text.
// It is read-only evidence.
type Snapshot struct {
	CalendarEvents          []CalendarEvent          `json:"calendar_events,omitempty"`
	EmailAddresses          []EmailAddress           `json:"email_addresses,omitempty"`
	FlightNumbers           []FlightNumber           `json:"flight_numbers,omitempty"`
	Links                   []Link                   `json:"links,omitempty"`
	MoneyAmounts            []MoneyAmount            `json:"money_amounts,omitempty"`
	Number                  *float64                 `json:"number,omitempty"`
	PhoneNumbers            []PhoneNumber            `json:"phone_numbers,omitempty"`
	PostalAddresses         []PostalAddress          `json:"postal_addresses,omitempty"`
	ProbableWebSearch       string                   `json:"probable_web_search,omitempty"`
	ProbableWebURL          string                   `json:"probable_web_url,omitempty"`
	ShipmentTrackingNumbers []ShipmentTrackingNumber `json:"shipment_tracking_numbers,omitempty"`
}

// Detection returns the typed detection for kind, or false when the snapshot
// holds nothing usable for it.
func (s *Snapshot) Detection(kind Kind) (Detection, bool) {
	if s == nil {
		return nil, false
	}

	var d Detection
	switch kind {
	case CalendarEvents:
		d = CalendarEventsDetection(s.CalendarEvents)
	case EmailAddresses:
		d = EmailAddressesDetection(s.EmailAddresses)
	case FlightNumbers:
		d = FlightNumbersDetection(s.FlightNumbers)
	case Links:
		d = LinksDetection(s.Links)
	case MoneyAmounts:
		d = MoneyAmountsDetection(s.MoneyAmounts)
	case Number:
		d = NumberDetection{Value: s.Number}
	case PhoneNumbers:
		d = PhoneNumbersDetection(s.PhoneNumbers)
	case PostalAddresses:
		d = PostalAddressesDetection(s.PostalAddresses)
	case ProbableWebSearch:
		d = ProbableWebSearchDetection(s.ProbableWebSearch)
	case ProbableWebURL:
		d = ProbableWebURLDetection(s.ProbableWebURL)
	case ShipmentTrackingNumbers:
		d = ShipmentTrackingNumbersDetection(s.ShipmentTrackingNumbers)
	default:
		panic("patterns: snapshot lookup for unknown kind " + kind.String())
	}

	if d.Empty() {
		return nil, false
	}
	return d, true
}

// Keys returns the recognizer keys of every kind with a usable value
func (s *Snapshot) Keys() []Key {
	var keys []Key
	for _, k := range All() {
		if _, ok := s.Detection(k); ok {
			keys = append(keys, k.Key())
		}
	}
	return keys
}
