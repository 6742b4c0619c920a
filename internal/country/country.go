// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package country holds the fixed catalog of supported calling codes and the
selection the sign-in flow validates against.

The catalog is ordered for display; its first entry is the domestic country
and the default selection.
*/
package country

import (
	"errors"
	"sync"
)

// DomesticISO is the country whose numbering plan gets the strict mobile rule.
const DomesticISO = "ir"

// ErrUnknownCountry is returned when selecting an ISO code outside the catalog.
var ErrUnknownCountry = errors.New("country: unknown ISO code")

// # Catalog

// Entry is one supported calling code. Values are immutable.
type Entry struct {
	ISOCode     string `json:"isoCode"`
	DisplayName string `json:"displayName"`
	DialCode    string `json:"dialCode"`
	FlagURL     string `json:"flagUrl"`
}

// IsDomestic reports whether the entry is the domestic country.
func (entry Entry) IsDomestic() bool {
	return entry.ISOCode == DomesticISO
}

var catalog = []Entry{
	{ISOCode: "ir", DisplayName: "ایران", DialCode: "98", FlagURL: flagURL("ir")},
	{ISOCode: "iq", DisplayName: "عراق", DialCode: "964", FlagURL: flagURL("iq")},
	{ISOCode: "af", DisplayName: "افغانستان", DialCode: "93", FlagURL: flagURL("af")},
	{ISOCode: "tr", DisplayName: "ترکیه", DialCode: "90", FlagURL: flagURL("tr")},
	{ISOCode: "ae", DisplayName: "امارات", DialCode: "971", FlagURL: flagURL("ae")},
	{ISOCode: "sa", DisplayName: "عربستان", DialCode: "966", FlagURL: flagURL("sa")},
}

func flagURL(iso string) string {
	return "https://flagcdn.com/w20/" + iso + ".png"
}

// Catalog returns a copy of the ordered catalog.
func Catalog() []Entry {
	entries := make([]Entry, len(catalog))
	copy(entries, catalog)
	return entries
}

// Lookup finds an entry by ISO code.
func Lookup(iso string) (Entry, bool) {
	for _, entry := range catalog {
		if entry.ISOCode == iso {
			return entry, true
		}
	}
	return Entry{}, false
}

// LookupByDialCode finds an entry by calling code, without the leading plus.
func LookupByDialCode(dialCode string) (Entry, bool) {
	for _, entry := range catalog {
		if entry.DialCode == dialCode {
			return entry, true
		}
	}
	return Entry{}, false
}

// SplitInternational separates a dial-code-prefixed number into its catalog
// entry and national digits. The longest matching dial code wins.
func SplitInternational(digits string) (Entry, string, bool) {
	var best Entry
	for _, entry := range catalog {
		if len(entry.DialCode) > len(best.DialCode) && len(digits) > len(entry.DialCode) &&
			digits[:len(entry.DialCode)] == entry.DialCode {
			best = entry
		}
	}
	if best.DialCode == "" {
		return Entry{}, "", false
	}
	return best, digits[len(best.DialCode):], true
}

// # Selection

// Selector tracks the active catalog entry. It is safe for concurrent use.
type Selector struct {
	mu      sync.RWMutex
	current Entry
}

// NewSelector starts with the first catalog entry active.
func NewSelector() *Selector {
	return &Selector{current: catalog[0]}
}

// NewSelectorFor starts with iso active, falling back to the first entry.
func NewSelectorFor(iso string) *Selector {
	selector := NewSelector()
	_, _ = selector.Select(iso)
	return selector
}

// Select makes iso the active entry. It performs no validation of any number.
func (selector *Selector) Select(iso string) (Entry, error) {
	entry, ok := Lookup(iso)
	if !ok {
		return selector.Current(), ErrUnknownCountry
	}

	selector.mu.Lock()
	selector.current = entry
	selector.mu.Unlock()

	return entry, nil
}

// Current returns the active entry.
func (selector *Selector) Current() Entry {
	selector.mu.RLock()
	defer selector.mu.RUnlock()
	return selector.current
}
