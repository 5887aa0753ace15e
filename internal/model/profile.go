// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// ENUMERATIONS
// =============================================================================

// GenderOptions are the selectable gender values, in display order.
var GenderOptions = []string{"Male", "Female", "Other"}

// ExamOptions are the selectable exam-preparation tracks, in display order.
var ExamOptions = []string{"JEE Mains", "NEET", "JEE Advanced", "Other"}

// ValidGender reports whether g is one of the fixed gender options.
func ValidGender(g string) bool {
	for _, opt := range GenderOptions {
		if g == opt {
			return true
		}
	}
	return false
}

// ValidExam reports whether e is one of the fixed exam options.
func ValidExam(e string) bool {
	for _, opt := range ExamOptions {
		if e == opt {
			return true
		}
	}
	return false
}

// =============================================================================
// PROFILE TYPE
// =============================================================================

// Profile is the durable record of a user's identity and onboarding answers.
// It is persisted twice: in the remote users table and in the local cache.
//
// ID is empty until a remote record exists for this user.
type Profile struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name"`
	Gender    string `json:"gender,omitempty"`
	Exam      string `json:"exam,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// IsComplete reports whether the profile can leave the onboarding form:
// name, gender and exam must all be non-empty.
func (p Profile) IsComplete() bool {
	return strings.TrimSpace(p.Name) != "" && p.Gender != "" && p.Exam != ""
}

// IsOnboarded reports whether the onboarding answers are present. This is the
// derived flag stored in the remote record: gender and exam both set.
func (p Profile) IsOnboarded() bool {
	return p.Gender != "" && p.Exam != ""
}

// DisplayName returns the profile name, or a fallback for an unnamed profile.
func (p Profile) DisplayName() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "there"
	}
	return name
}

// FirstName returns the first whitespace-separated component of the name.
func (p Profile) FirstName() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return p.DisplayName()
	}
	return fields[0]
}
