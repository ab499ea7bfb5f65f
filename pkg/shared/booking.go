// Copyright (c) 2024 Adam Wyatt
//
// This software is licensed under the MIT License.
// See the LICENSE file in the root of the repository for details.

package shared

import "time"

// Credential is one portal account. The order of a []Credential decides
// the booking sequence.
type Credential struct {
	Username string
	Password string
}

// Outcome is the result of one account's booking attempt.
type Outcome struct {
	Username  string
	Resource  string
	SlotStart time.Time
	Success   bool
	Err       error
}
