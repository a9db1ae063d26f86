package utils

import (
	"regexp"
	"strings"
)

const maxFilenameLength = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
	// Anything outside printable ASCII cannot go into a quoted header value
	nonPrintableASCII = regexp.MustCompile(`[^\x20-\x7E]`)
)

// SanitizeFilename turns a book title into a file name that is safe both on
// disk and inside a quoted Content-Disposition parameter. Titles that
// sanitize to nothing yield fallback.
func SanitizeFilename(title, fallback string) string {
	name := invalidFilenameChars.ReplaceAllString(title, "")
	name = whitespaceChars.ReplaceAllString(name, " ")
	name = nonPrintableASCII.ReplaceAllString(name, "")
	name = multipleSpaces.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	// Limit length (most filesystems support 255, but leave room for extension)
	if len(name) > maxFilenameLength {
		name = strings.TrimSpace(name[:maxFilenameLength])
	}

	if name == "" {
		return fallback
	}
	return name
}
