// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mobile validates and formats the national part of a mobile number.

Every function here is pure and cheap enough to run on each keystroke.
Input is sanitized first: any rune that is not an ASCII digit is dropped.
*/
package mobile

import (
	"strings"

	"github.com/taibuivan/safar/internal/country"
	"github.com/taibuivan/safar/internal/i18n"
)

// Length bounds for non-domestic numbers.
const (
	MinInternationalDigits = 5
	MaxInternationalDigits = 15
	DomesticDigits         = 10
)

// Result is the outcome of a validation. Message is empty when IsValid.
type Result struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

// Validator applies the per-country rules and localizes failures.
type Validator struct {
	translator *i18n.Translator
}

// NewValidator creates a Validator that reports failures through translator.
func NewValidator(translator *i18n.Translator) *Validator {
	return &Validator{translator: translator}
}

// Validate checks raw against the rule of countryISO.
//
// The domestic country requires exactly 10 digits beginning with 9 (the trunk
// zero is omitted). Any other country accepts 5 to 15 digits and leaves deeper
// checks to the backend.
func (validator *Validator) Validate(raw, countryISO string) Result {
	digits := Sanitize(raw)

	if countryISO == country.DomesticISO {
		if IsDomestic(digits) {
			return Result{IsValid: true}
		}
		return Result{Message: validator.translator.T(i18n.InvalidIranMobile)}
	}

	if IsInternational(digits) {
		return Result{IsValid: true}
	}
	return Result{Message: validator.translator.T(i18n.InvalidInternationalMobile)}
}

// IsDomestic reports whether digits match ^9[0-9]{9}$.
func IsDomestic(digits string) bool {
	return len(digits) == DomesticDigits && digits[0] == '9' && allDigits(digits)
}

// IsInternational reports whether digits has an accepted length.
func IsInternational(digits string) bool {
	return len(digits) >= MinInternationalDigits && len(digits) <= MaxInternationalDigits && allDigits(digits)
}

// Sanitize drops every rune that is not an ASCII digit.
func Sanitize(raw string) string {
	var builder strings.Builder
	builder.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// International joins a dial code and national digits into the number the
// backend receives, e.g. "98" + "9123456789".
func International(dialCode, national string) string {
	return Sanitize(dialCode) + Sanitize(national)
}

// Format renders national digits for display. A complete domestic number is
// grouped 3-3-4; anything else is shown unchanged after the dial code.
func Format(dialCode, national string) string {
	digits := Sanitize(national)
	prefix := "+" + Sanitize(dialCode) + " "

	if dialCode == "98" && IsDomestic(digits) {
		return prefix + digits[:3] + " " + digits[3:6] + " " + digits[6:]
	}
	return prefix + digits
}

func allDigits(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
