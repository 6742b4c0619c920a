// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package devauth

import (
	"strings"
	"time"

	"github.com/taibuivan/safar/internal/country"
	"github.com/taibuivan/safar/internal/identity"
	"github.com/taibuivan/safar/internal/mobile"
	"github.com/taibuivan/safar/internal/platform/sec"
)

// UserTypeGuest marks accounts that have not completed their profile.
const UserTypeGuest = "GUEST"

// Account is a traveller registered by mobile number.
//
// # Rules
//   - Mobile is the full international number without "+" or trunk zeros.
//   - PasswordHash is empty until the traveller sets a password; such
//     accounts can only sign in with a one-time code.
type Account struct {
	ID             string
	Mobile         string
	CountryCode    string
	MobileNumber   string
	Role           sec.UserRole
	PasswordHash   string
	FirstName      string
	LastName       string
	ProfileImage   string
	NationalCode   string
	PassportNumber string
	Address        string
	UserType       string
	IsVerified     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile is the part of an account the traveller fills in after sign-up.
// Empty fields leave the stored value unchanged.
type Profile struct {
	FirstName      string
	LastName       string
	NationalCode   string
	PassportNumber string
	Address        string
}

// IsEmpty reports whether the profile carries no field at all.
func (profile Profile) IsEmpty() bool {
	return profile == Profile{}
}

func (profile Profile) applyTo(account *Account) {
	for _, field := range []struct {
		value  string
		target *string
	}{
		{profile.FirstName, &account.FirstName},
		{profile.LastName, &account.LastName},
		{profile.NationalCode, &account.NationalCode},
		{profile.PassportNumber, &account.PassportNumber},
		{profile.Address, &account.Address},
	} {
		if field.value != "" {
			*field.target = field.value
		}
	}
}

// HasPassword reports whether password sign-in is possible.
func (account *Account) HasPassword() bool {
	return account.PasswordHash != ""
}

// Principal projects the account onto the profile sent to clients.
func (account *Account) Principal() *identity.Principal {
	return &identity.Principal{
		ID:             identity.ID(account.ID),
		Mobile:         account.Mobile,
		Role:           string(account.Role),
		FirstName:      account.FirstName,
		LastName:       account.LastName,
		ProfileImage:   account.ProfileImage,
		NationalCode:   account.NationalCode,
		PassportNumber: account.PassportNumber,
		Address:        account.Address,
		UserType:       account.UserType,
		HasPassword:    account.HasPassword(),
		CountryCode:    account.CountryCode,
		MobileNumber:   account.MobileNumber,
	}
}

// StandardizeMobile keeps the digits of raw and drops leading zeros.
func StandardizeMobile(raw string) string {
	return strings.TrimLeft(mobile.Sanitize(raw), "0")
}

// SplitMobile validates a standardized number against the catalog and
// returns its dial code and national part. It mirrors the client rules so
// that anything the sign-in form accepts is accepted here.
func SplitMobile(standardized string) (dialCode, national string, ok bool) {
	entry, national, found := country.SplitInternational(standardized)
	if !found {
		return "", "", false
	}

	if entry.IsDomestic() {
		if !mobile.IsDomestic(national) {
			return "", "", false
		}
	} else if !mobile.IsInternational(national) {
		return "", "", false
	}

	return entry.DialCode, national, true
}
