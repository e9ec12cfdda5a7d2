// Package i18n resolves the display language of catalog content.
package i18n

import "strings"

const DefaultLanguage = "fr"

var supported = map[string]bool{"fr": true, "en": true, "ar": true}

// NormalizeLang maps "en-US,en;q=0.9" style values to a supported code,
// falling back to French.
func NormalizeLang(lang string) string {
	lang = strings.TrimSpace(strings.ToLower(lang))
	if i := strings.IndexAny(lang, ",;"); i >= 0 {
		lang = lang[:i]
	}
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	if supported[lang] {
		return lang
	}
	return DefaultLanguage
}

func IsSupported(lang string) bool {
	return supported[strings.ToLower(lang)]
}

// Fallback returns the translated value when it is set and non-blank, else base.
func Fallback(translated *string, base string) string {
	if translated != nil && strings.TrimSpace(*translated) != "" {
		return *translated
	}
	return base
}

// FallbackPtr is Fallback for nullable base columns.
func FallbackPtr(translated, base *string) *string {
	if translated != nil && strings.TrimSpace(*translated) != "" {
		return translated
	}
	return base
}
