// Package composefile resolves locale identifiers to on-disk compose
// files. The compose-sequence core treats this as an external
// collaborator (spec.md §1): it calls Locator when the caller requests
// a locale-driven load, or when expanding the %L / %S path escapes in
// an include directive. The core never reads these paths itself beyond
// that call.
package composefile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Locator resolves a locale identifier to its default compose file,
// and reports the system-wide compose directory.
type Locator interface {
	// ComposeFileForLocale returns the path of the default compose
	// file for locale, or an error if none can be determined.
	ComposeFileForLocale(locale string) (string, error)

	// SystemComposeDir returns the system-wide compose directory
	// (the expansion of the %S include-path escape).
	SystemComposeDir() string
}

const defaultSystemComposeDir = "/usr/share/X11/locale"

// DefaultLocator returns a Locator that walks the system compose
// directory the way libxkbcommon's xlocaledir resolution does:
// XLOCALEDIR overrides the system directory if set, and a locale's
// compose file is <dir>/<locale>/Compose unless a compose.dir alias
// file in that directory maps the locale to a different file name.
//
// This mirrors the teacher's sample-driven CLI's directory-walk idiom
// (os.ReadDir + filepath.Join), generalized from "load every sample
// file" to "resolve one locale's compose file".
func DefaultLocator() Locator {
	return &defaultLocator{}
}

type defaultLocator struct{}

func (defaultLocator) SystemComposeDir() string {
	if dir := os.Getenv("XLOCALEDIR"); dir != "" {
		return dir
	}
	return defaultSystemComposeDir
}

func (l defaultLocator) ComposeFileForLocale(locale string) (string, error) {
	if locale == "" {
		return "", fmt.Errorf("composefile: empty locale")
	}
	dir := l.SystemComposeDir()

	if alias, ok := readComposeDirAlias(dir, locale); ok {
		return filepath.Join(dir, alias), nil
	}

	path := filepath.Join(dir, locale, "Compose")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("composefile: no compose file for locale %q under %s: %w", locale, dir, err)
	}
	return path, nil
}

// readComposeDirAlias consults "<dir>/compose.dir", a file of
// "<locale>: <relative path>" lines, the same alias-file convention
// X11 locale directories use. Missing or unreadable alias files are
// not an error; the caller falls back to the plain <locale>/Compose
// layout.
func readComposeDirAlias(dir, locale string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "compose.dir"))
	if err != nil {
		return "", false
	}
	lines := splitLines(data)
	for _, line := range lines {
		name, rel, ok := parseAliasLine(line)
		if ok && name == locale {
			return rel, true
		}
	}
	return "", false
}

func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

// parseAliasLine parses one "<locale>: <path>" line, tolerating
// leading/trailing space and blank or comment ("#...") lines.
func parseAliasLine(line string) (locale, path string, ok bool) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if i >= len(line) || line[i] == '#' {
		return "", "", false
	}
	rest := line[i:]
	colon := -1
	for j := 0; j < len(rest); j++ {
		if rest[j] == ':' {
			colon = j
			break
		}
	}
	if colon < 0 {
		return "", "", false
	}
	locale = rest[:colon]
	path = trimSpace(rest[colon+1:])
	if locale == "" || path == "" {
		return "", "", false
	}
	return locale, path, true
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}
