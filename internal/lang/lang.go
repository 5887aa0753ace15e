// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lang holds the registry of languages a chat session can be
// started in. A session's language is fixed at creation; the registry maps
// BCP 47 codes to the native display names shown in the picker and sent to
// the completion service.
package lang

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultCode is used when no language preference is stored.
const DefaultCode = "en"

// Language is one supported chat language.
type Language struct {
	Code  string // BCP 47 code, e.g. "hi"
	Label string // native display name, e.g. "हिन्दी"
}

// supportedCodes lists the selectable languages, in picker order.
var supportedCodes = []string{
	"en", "hi", "mr", "bn", "ta", "te", "gu", "kn", "pa", "or",
}

// Supported is the full registry, in picker order.
var Supported []Language

func init() {
	Supported = make([]Language, 0, len(supportedCodes))
	for _, code := range supportedCodes {
		tag := language.MustParse(code)
		Supported = append(Supported, Language{
			Code:  code,
			Label: display.Self.Name(tag),
		})
	}
}

// IsSupported reports whether code is in the registry.
func IsSupported(code string) bool {
	for _, l := range Supported {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Lookup returns the language for code, falling back to the default when the
// code is unknown or empty.
func Lookup(code string) Language {
	for _, l := range Supported {
		if l.Code == code {
			return l
		}
	}
	return Lookup(DefaultCode)
}

// Label returns the native display name for code, or the default language's
// name when the code is unknown.
func Label(code string) string {
	return Lookup(code).Label
}
