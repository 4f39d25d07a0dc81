// Package sanitize turns arbitrary strings into names that are safe to use as a
// single path element on Linux, macOS and Windows.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLength of a file name in bytes on most file systems
const MaxLength = 255

var (
	illegalRegex  = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlRegex  = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	reservedRegex = regexp.MustCompile(`^\.+$`)

	windowsReservedRegex = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	windowsTrailingRegex = regexp.MustCompile(`[. ]+$`)
)

// Filename removes the characters that are illegal in file names, the names
// reserved by the OS, and trims the result to MaxLength bytes.
// When trimming, the extension is preserved if it is shorter than the limit.
// The result may be empty.
func Filename(s string) string {
	s = illegalRegex.ReplaceAllString(s, "")
	s = controlRegex.ReplaceAllString(s, "")
	s = reservedRegex.ReplaceAllString(s, "")
	s = windowsReservedRegex.ReplaceAllString(s, "")
	s = windowsTrailingRegex.ReplaceAllString(s, "")

	return truncate(s, MaxLength)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	ext := filepath.Ext(s)
	if len(ext) >= max {
		ext = ""
	}

	base := Cut(strings.TrimSuffix(s, ext), max-len(ext))

	return windowsTrailingRegex.ReplaceAllString(base, "") + ext
}

// Cut s to at most n bytes without splitting a rune
func Cut(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
