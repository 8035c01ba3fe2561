// Package masking produces display-safe renditions of secrets.
//
// Masking is one-way: these functions only ever see plaintext that has already
// been decrypted for display and never reveal more than a short suffix.
package masking

import (
	"net/url"
	"strings"
)

const (
	// DefaultVisibleChars is the suffix length left visible by MaskDefault.
	DefaultVisibleChars = 4

	// URLFallbackVisibleChars is the suffix length used when a URL cannot be parsed.
	URLFallbackVisibleChars = 10

	maskChar        = "*"
	emptyMask       = "****"
	urlPathMask     = "/***"
	emailKeepPrefix = 2
	emailShortLocal = 3
)

// Mask replaces all but the last visible runes of value with '*'. Empty input
// yields a fixed four-character mask and a value no longer than visible is masked
// completely.
func Mask(value string, visible int) string {
	if value == "" {
		return emptyMask
	}
	if visible < 0 {
		visible = 0
	}

	runes := []rune(value)
	if len(runes) <= visible {
		return strings.Repeat(maskChar, len(runes))
	}

	hidden := len(runes) - visible
	return strings.Repeat(maskChar, hidden) + string(runes[hidden:])
}

// MaskDefault masks value leaving DefaultVisibleChars visible.
func MaskDefault(value string) string {
	return Mask(value, DefaultVisibleChars)
}

// MaskEmail keeps the domain and the first two characters of the local part.
// Local parts of three characters or fewer are masked completely.
func MaskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 0 {
		return MaskDefault(value)
	}

	local := []rune(value[:at])
	domain := value[at:]

	if len(local) <= emailShortLocal {
		return strings.Repeat(maskChar, len(local)) + domain
	}
	return string(local[:emailKeepPrefix]) + strings.Repeat(maskChar, len(local)-emailKeepPrefix) + domain
}

// MaskURL keeps the scheme, host and port. User info and query are dropped and a
// non-trivial path is replaced by a placeholder. Values that are not absolute
// URLs fall back to Mask with a ten character suffix.
func MaskURL(value string) string {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Mask(value, URLFallbackVisibleChars)
	}

	masked := u.Scheme + "://" + u.Host
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" {
		masked += urlPathMask
	}
	return masked
}

// IsMasked reports whether value looks like the output of one of the mask functions.
func IsMasked(value string) bool {
	return strings.HasPrefix(value, maskChar) || strings.Contains(value, maskChar+maskChar)
}

// ShouldUpdateField decides whether a value submitted from an edit form replaces
// the stored secret. An empty submission, an unchanged value and the masked form
// of the original all keep the stored secret.
func ShouldUpdateField(current, incoming, original string) bool {
	if incoming == "" {
		return false
	}
	if incoming == current {
		return false
	}
	if incoming == MaskDefault(original) {
		return false
	}
	return true
}
