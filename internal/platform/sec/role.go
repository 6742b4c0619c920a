// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Account Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Back-office operators of the admin panel
	RoleAdmin UserRole = "ADMIN"

	// Default role for travellers who signed in with their mobile number
	RoleUser UserRole = "USER"
)

// IsAdmin reports whether the role opens the admin panel.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}
