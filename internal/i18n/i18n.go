// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package i18n holds the localized messages of the sign-in flow.

Messages are registered in a golang.org/x/text catalog for every supported
language. Keys missing from a translation fall back to English at build time,
so a lookup never returns an empty string.

Usage:

	tr := i18n.New("fa")
	tr.T(i18n.InvalidIranMobile)
*/
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the catalog languages in matcher priority order.
var Supported = []language.Tag{
	language.English,
	language.Persian,
	language.Arabic,
	language.Turkish,
}

var (
	sharedCatalog = mustBuildCatalog()
	matcher       = language.NewMatcher(Supported)
)

// Translator renders message keys in one language. It is safe for concurrent use.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for the closest supported match of lang.
// Unknown or malformed tags resolve to English.
func New(lang string) *Translator {
	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		_, index, confidence := matcher.Match(parsed)
		if confidence != language.No {
			tag = Supported[index]
		}
	}

	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(sharedCatalog)),
	}
}

// T returns the localized message for key.
func (translator *Translator) T(key string) string {
	return translator.printer.Sprintf(key)
}

// Language reports the resolved language tag.
func (translator *Translator) Language() language.Tag {
	return translator.tag
}

// mustBuildCatalog registers every key for every supported language.
func mustBuildCatalog() *catalog.Builder {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	english := dictionaries[language.English]

	for _, tag := range Supported {
		translations := dictionaries[tag]
		for key, fallback := range english {
			text, ok := translations[key]
			if !ok {
				text = fallback
			}
			if err := builder.SetString(tag, key, text); err != nil {
				panic(fmt.Sprintf("i18n: failed to register %s/%s: %v", tag, key, err))
			}
		}
	}

	return builder
}
