// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/taibuivan/safar/internal/i18n"
)

/*
TestNew_Resolution maps requested languages onto the supported set.
*/
func TestNew_Resolution(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected language.Tag
	}{
		{"english", "en", language.English},
		{"persian", "fa", language.Persian},
		{"persian_region", "fa-IR", language.Persian},
		{"arabic", "ar", language.Arabic},
		{"turkish", "tr", language.Turkish},
		{"malformed", "not a tag!", language.English},
		{"empty", "", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, i18n.New(tt.input).Language())
		})
	}
}

/*
TestTranslator_T checks translated and fallback lookups.
*/
func TestTranslator_T(t *testing.T) {
	english := i18n.New("en")
	persian := i18n.New("fa")
	turkish := i18n.New("tr")

	assert.Equal(t, "The verification code must be 6 digits.", english.T(i18n.VerificationCodeLength))
	assert.Equal(t, "رمز عبور نامعتبر است", persian.T(i18n.InvalidPassword))

	// Turkish carries no backend strings and falls back to English
	assert.Equal(t, english.T(i18n.ServerCodeSent), turkish.T(i18n.ServerCodeSent))
}

/*
TestTranslator_AllKeysNonEmpty guards against blank catalog entries.
*/
func TestTranslator_AllKeysNonEmpty(t *testing.T) {
	keys := []string{
		i18n.InvalidIranMobile, i18n.InvalidInternationalMobile, i18n.ServerConnection,
		i18n.SendCodeError, i18n.VerificationCodeLength, i18n.InvalidVerificationCode,
		i18n.EnterPassword, i18n.InvalidPassword, i18n.SessionSave,
		i18n.PasswordMinLength, i18n.PasswordsNotMatch, i18n.PasswordSetError,
	}

	for _, tag := range i18n.Supported {
		translator := i18n.New(tag.String())
		for _, key := range keys {
			text := translator.T(key)
			assert.NotEmpty(t, text, "%s/%s", tag, key)
			assert.NotEqual(t, key, text, "%s/%s", tag, key)
		}
	}
}
