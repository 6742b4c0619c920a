// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authflow

import (
	"github.com/taibuivan/safar/internal/country"
	"github.com/taibuivan/safar/internal/identity"
	"github.com/taibuivan/safar/internal/mobile"
)

// # Steps

// Step is the screen the flow is on.
type Step int

const (
	StepMobileEntry Step = iota
	StepPasswordEntry
	StepCodeVerification
)

// String implements fmt.Stringer.
func (step Step) String() string {
	switch step {
	case StepMobileEntry:
		return "mobile_entry"
	case StepPasswordEntry:
		return "password_entry"
	case StepCodeVerification:
		return "code_verification"
	default:
		return "unknown"
	}
}

// # Status

// Status is exactly one of [Idle], [Loading] or [Failed].
// A flow can never be loading and failed at the same time.
type Status interface {
	isStatus()
}

// Idle means nothing is in flight and no error is shown.
type Idle struct{}

// Loading means a gateway call is in flight.
type Loading struct{}

// Failed carries the message shown next to the current step.
type Failed struct {
	Message string
}

func (Idle) isStatus()    {}
func (Loading) isStatus() {}
func (Failed) isStatus()  {}

// # Snapshot

// State is an immutable snapshot of the flow.
type State struct {
	Step        Step
	Country     country.Entry
	Mobile      string
	Pinned      string
	Password    string
	Code        string
	UserExists  bool
	HasPassword bool
	Status      Status
	Validation  mobile.Result
}

// Loading reports whether a gateway call is in flight.
func (state State) Loading() bool {
	_, ok := state.Status.(Loading)
	return ok
}

// Error returns the message of a failed status, or "".
func (state State) Error() string {
	if failed, ok := state.Status.(Failed); ok {
		return failed.Message
	}
	return ""
}

// FullMobile is the number sent to the backend. Past mobile entry it is the
// pinned number; before that, the dial code then the national digits.
func (state State) FullMobile() string {
	if state.Pinned != "" {
		return state.Pinned
	}
	return mobile.International(state.Country.DialCode, state.Mobile)
}

// Authenticated is delivered to the completion callback.
type Authenticated struct {
	Token      string
	User       *identity.Principal
	FirstLogin bool
}
