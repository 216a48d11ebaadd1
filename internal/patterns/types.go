package patterns

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies one category of recognizable textual pattern
type Kind int

const (
	CalendarEvents Kind = iota
	EmailAddresses
	FlightNumbers
	Links
	MoneyAmounts
	Number
	PhoneNumbers
	PostalAddresses
	ProbableWebSearch
	ProbableWebURL
	ShipmentTrackingNumbers

	kindCount
)

// Key is the identifier the recognition service uses to select a kind
type Key string

// kindInfo maps each kind to its display name and recognizer key
var kindInfo = [kindCount]struct {
	name string
	key  Key
}{
	CalendarEvents:          {"calendarEvents", "calendar_events"},
	EmailAddresses:          {"emailAddresses", "email_addresses"},
	FlightNumbers:           {"flightNumbers", "flight_numbers"},
	Links:                   {"links", "links"},
	MoneyAmounts:            {"moneyAmounts", "money_amounts"},
	Number:                  {"number", "number"},
	PhoneNumbers:            {"phoneNumbers", "phone_numbers"},
	PostalAddresses:         {"postalAddresses", "postal_addresses"},
	ProbableWebSearch:       {"probableWebSearch", "probable_web_search"},
	ProbableWebURL:          {"probableWebURL", "probable_web_url"},
	ShipmentTrackingNumbers: {"shipmentTrackingNumbers", "shipment_tracking_numbers"},
}

// All returns every kind in catalog order
func All() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k belongs to the catalog
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindInfo[k].name
}

// Key returns the recognizer key for k
func (k Kind) Key() Key {
	if !k.Valid() {
		panic(fmt.Sprintf("patterns: key for unknown kind %d", int(k)))
	}
	return kindInfo[k].key
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown pattern kind: %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a kind by name. Matching ignores case and accepts the
// recognizer key spelling as well.
func ParseKind(name string) (Kind, error) {
	trimmed := strings.TrimSpace(name)
	for k := Kind(0); k < kindCount; k++ {
		if strings.EqualFold(trimmed, kindInfo[k].name) || strings.EqualFold(trimmed, string(kindInfo[k].key)) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown pattern kind: %q", name)
}

// ParseKinds resolves a list of names, failing on the first unknown one
func ParseKinds(names []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// KindForKey returns the kind selected by a recognizer key
func KindForKey(key Key) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if kindInfo[k].key == key {
			return k, true
		}
	}
	return 0, false
}

// KindSet is an unordered set of kinds
type KindSet map[Kind]struct{}

// NewKindSet builds a set from the given kinds
func NewKindSet(kinds ...Kind) KindSet {
	set := make(KindSet, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}

// Contains reports whether k is in the set
func (s KindSet) Contains(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Len returns the number of kinds in the set
func (s KindSet) Len() int {
	return len(s)
}

// Union returns a new set holding the kinds of both sets
func (s KindSet) Union(other KindSet) KindSet {
	out := make(KindSet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Without returns the kinds of s that are not in other
func (s KindSet) Without(other KindSet) KindSet {
	out := make(KindSet, len(s))
	for k := range s {
		if !other.Contains(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Complement returns every catalog kind missing from s
func (s KindSet) Complement() KindSet {
	return NewKindSet(All()...).Without(s)
}

// Kinds returns the members in catalog order
func (s KindSet) Kinds() []Kind {
	kinds := make([]Kind, 0, len(s))
	for k := range s {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Keys returns the recognizer keys of the members in catalog order
func (s KindSet) Keys() []Key {
	kinds := s.Kinds()
	keys := make([]Key, len(kinds))
	for i, k := range kinds {
		keys[i] = k.Key()
	}
	return keys
}

// KindsFromKeys maps recognizer keys back to a set, ignoring keys outside the catalog
func KindsFromKeys(keys []Key) KindSet {
	set := make(KindSet, len(keys))
	for _, key := range keys {
		if k, ok := KindForKey(key); ok {
			set[k] = struct{}{}
		}
	}
	return set
}
