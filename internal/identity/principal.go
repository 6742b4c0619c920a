// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity defines the authenticated principal exchanged between the
auth backend, the sign-in flow and the session store.

The flow only passes a Principal through; the session store owns it once written.
*/
package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// ID is an account identifier. Backends send it either as a JSON number or
// as a string; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("identity_id_decode_failed: %w", err)
		}
		*id = ID(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("identity_id_decode_failed: %w", err)
	}
	*id = ID(number.String())
	return nil
}

// Principal is the profile of a signed-in account.
//
// The typed fields are the ones the client reads. Any other member of the
// backend's user object is kept verbatim in Extra and written back on encode,
// so the stored profile never loses what the backend sent.
type Principal struct {
	ID             ID     `json:"id"`
	Mobile         string `json:"mobile"`
	Role           string `json:"role"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	ProfileImage   string `json:"profileImage,omitempty"`
	NationalCode   string `json:"nationalCode,omitempty"`
	PassportNumber string `json:"passportNumber,omitempty"`
	Address        string `json:"address,omitempty"`
	UserType       string `json:"userType,omitempty"`
	HasPassword    bool   `json:"hasPassword"`
	CountryCode    string `json:"countryCode,omitempty"`
	MobileNumber   string `json:"mobileNumber,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// principalFields has the layout of Principal without its codec methods.
type principalFields Principal

// knownFields are the JSON names of the typed fields.
var knownFields = func() []string {
	layout := reflect.TypeOf(principalFields{})
	names := make([]string, 0, layout.NumField())
	for i := 0; i < layout.NumField(); i++ {
		name, _, _ := strings.Cut(layout.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names = append(names, name)
		}
	}
	return names
}()

// UnmarshalJSON decodes the typed fields and keeps every other member in Extra.
func (principal *Principal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var fields principalFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("identity_principal_decode_failed: %w", err)
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("identity_principal_decode_failed: %w", err)
	}
	for name := range members {
		if isKnownField(name) {
			delete(members, name)
		}
	}

	*principal = Principal(fields)
	principal.Extra = nil
	if len(members) > 0 {
		principal.Extra = members
	}
	return nil
}

// MarshalJSON encodes the typed fields over the preserved members.
// A typed field always wins over an Extra member of the same name.
func (principal Principal) MarshalJSON() ([]byte, error) {
	typed, err := json.Marshal(principalFields(principal))
	if err != nil || len(principal.Extra) == 0 {
		return typed, err
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(typed, &known); err != nil {
		return nil, fmt.Errorf("identity_principal_encode_failed: %w", err)
	}

	merged := make(map[string]json.RawMessage, len(principal.Extra)+len(known))
	for name, value := range principal.Extra {
		if !isKnownField(name) {
			merged[name] = value
		}
	}
	for name, value := range known {
		merged[name] = value
	}
	return json.Marshal(merged)
}

func isKnownField(name string) bool {
	for _, known := range knownFields {
		if strings.EqualFold(name, known) {
			return true
		}
	}
	return false
}

// DisplayName returns the full name, or the mobile number when no name is set.
func (principal *Principal) DisplayName() string {
	switch {
	case principal.FirstName != "" && principal.LastName != "":
		return principal.FirstName + " " + principal.LastName
	case principal.FirstName != "":
		return principal.FirstName
	case principal.LastName != "":
		return principal.LastName
	default:
		return principal.Mobile
	}
}
