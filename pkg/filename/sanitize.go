// Package filename turns untrusted text (model output, browser-supplied names)
// into a single safe storage key segment.
package filename

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLength caps a sanitized name, extension included, in runes.
const MaxLength = 80

// Sanitize keeps the first non-empty line of raw, drops surrounding quotes and
// markup, replaces path separators and characters that are illegal on common
// filesystems, and caps the length. It returns "" if nothing usable remains.
func Sanitize(raw string) string {
	line := firstLine(raw)
	line = strings.Trim(line, " \t\"'`*_#>")

	var b strings.Builder
	lastSep := false
	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			r = '_'
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' ||
			r == '<' || r == '>' || r == '|' || r == '\'' || r == '`' || unicode.IsControl(r):
			r = '-'
		case !unicode.IsPrint(r):
			continue
		}
		sep := r == '-' || r == '_'
		if sep && lastSep {
			continue
		}
		lastSep = sep
		b.WriteRune(r)
	}

	name := strings.Trim(b.String(), ".-_")
	return truncate(name, MaxLength)
}

// WithExtension sanitizes raw and forces ext (without the dot). An existing
// different extension is kept as part of the stem.
func WithExtension(raw, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := Sanitize(raw)
	if name == "" {
		return ""
	}
	if strings.EqualFold(Ext(name), ext) {
		stem := strings.TrimSuffix(name, path.Ext(name))
		return truncate(stem, MaxLength-len(ext)-1) + "." + ext
	}
	return strings.TrimRight(truncate(name, MaxLength-len(ext)-1), ".-_") + "." + ext
}

// Ext returns the lower-cased extension of name without the dot.
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// Allowed reports whether name carries one of the whitelisted extensions.
func Allowed(name string, allowed []string) bool {
	ext := Ext(name)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return true
		}
	}
	return false
}

func firstLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
