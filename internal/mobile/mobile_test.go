// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mobile_test

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/safar/internal/i18n"
	"github.com/taibuivan/safar/internal/mobile"
)

var domesticPattern = regexp.MustCompile(`^9[0-9]{9}$`)

func newValidator() *mobile.Validator {
	return mobile.NewValidator(i18n.New("en"))
}

/*
TestValidate_Domestic covers the Iranian numbering rule.
*/
func TestValidate_Domestic(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		isValid bool
	}{
		{"valid", "9123456789", true},
		{"valid_with_separators", "912-345 6789", true},
		{"leading_zero", "09123456789", false},
		{"wrong_prefix", "8123456789", false},
		{"too_short", "912345678", false},
		{"too_long", "91234567890", false},
		{"empty", "", false},
		{"letters_only", "abc", false},
	}

	validator := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.Validate(tt.input, "ir")
			assert.Equal(t, tt.isValid, result.IsValid)
			if tt.isValid {
				assert.Empty(t, result.Message)
			} else {
				assert.Equal(t, i18n.New("en").T(i18n.InvalidIranMobile), result.Message)
			}
		})
	}
}

/*
TestValidate_International covers the length-only rule for other countries.
*/
func TestValidate_International(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		isValid bool
	}{
		{"min_length", "12345", true},
		{"max_length", "123456789012345", true},
		{"below_min", "1234", false},
		{"above_max", "1234567890123456", false},
		{"leading_zero_allowed", "0501234567", true},
		{"stripped_to_short", "+1-2-3", false},
	}

	validator := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.Validate(tt.input, "tr")
			assert.Equal(t, tt.isValid, result.IsValid)
			if !tt.isValid {
				assert.Equal(t, i18n.New("en").T(i18n.InvalidInternationalMobile), result.Message)
			}
		})
	}
}

/*
TestValidate_Properties checks both rules against random digit strings.
*/
func TestValidate_Properties(t *testing.T) {
	validator := newValidator()
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		length := random.Intn(18)
		var builder strings.Builder
		for j := 0; j < length; j++ {
			builder.WriteByte(byte('0' + random.Intn(10)))
		}
		digits := builder.String()

		assert.Equal(t, domesticPattern.MatchString(digits), validator.Validate(digits, "ir").IsValid, digits)
		assert.Equal(t, length >= 5 && length <= 15, validator.Validate(digits, "ae").IsValid, digits)
	}
}

/*
TestValidate_SameDigitsDifferentCountries shows why a country change revalidates.
*/
func TestValidate_SameDigitsDifferentCountries(t *testing.T) {
	validator := newValidator()

	assert.False(t, validator.Validate("7701234567", "ir").IsValid)
	assert.True(t, validator.Validate("7701234567", "iq").IsValid)
}

/*
TestSanitize drops everything except ASCII digits.
*/
func TestSanitize(t *testing.T) {
	assert.Equal(t, "9123456789", mobile.Sanitize(" +91 2-34(5)6789 "))
	assert.Equal(t, "", mobile.Sanitize("۰۹۱۲"))
	assert.Equal(t, "", mobile.Sanitize(""))
}

/*
TestFormat groups complete domestic numbers only.
*/
func TestFormat(t *testing.T) {
	assert.Equal(t, "+98 912 345 6789", mobile.Format("98", "9123456789"))
	assert.Equal(t, "+98 91234", mobile.Format("98", "91234"))
	assert.Equal(t, "+90 5321234567", mobile.Format("90", "5321234567"))
	assert.Equal(t, "989123456789", mobile.International("98", "912 345 6789"))
}
