package model

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	controlChars   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	inlineSpace    = regexp.MustCompile("[ \t ]+")
	anyWhitespace  = regexp.MustCompile(`\s+`)
	emptySentinels = map[string]struct{}{"nan": {}, "none": {}, "null": {}}

	// stripMarks removes combining marks after NFD decomposition, which
	// drops diacritics while keeping the base letters.
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeText is the shared text normalization primitive: NFKC fold,
// control character removal, whitespace collapse. With keepNewlines,
// runs of blank lines collapse to one; otherwise all whitespace becomes
// single spaces. The spreadsheet-era empty sentinels ("nan", "none",
// "null") fold to the empty string.
func NormalizeText(value string, keepNewlines bool) string {
	if value == "" {
		return ""
	}
	if _, ok := emptySentinels[strings.ToLower(strings.TrimSpace(value))]; ok {
		return ""
	}

	text := strings.ReplaceAll(value, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = norm.NFKC.String(text)
	text = controlChars.ReplaceAllString(text, "")

	if keepNewlines {
		lines := strings.Split(text, "\n")
		collapsed := make([]string, 0, len(lines))
		lastBlank := false
		for _, line := range lines {
			line = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
			blank := line == ""
			if blank && lastBlank {
				continue
			}
			collapsed = append(collapsed, line)
			lastBlank = blank
		}
		return strings.TrimSpace(strings.Join(collapsed, "\n"))
	}

	text = inlineSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(anyWhitespace.ReplaceAllString(text, " "))
}

// NormalizedKey produces the lookup key for catalog matching and text
// deduplication: normalized, diacritics stripped, case-folded.
func NormalizedKey(value string) string {
	text := NormalizeText(value, false)
	if text == "" {
		return ""
	}
	if stripped, _, err := transform.String(stripMarks, text); err == nil {
		text = stripped
	}
	return strings.ToLower(text)
}

// ListSeparator splits free-text list fields. A semicolon only: commas
// appear inside catalog names ("... 1,80 m") and must not split.
const ListSeparator = ";"

// SplitList splits a free-text list field, normalizing each entry and
// dropping empties.
func SplitList(value string) []string {
	text := NormalizeText(value, false)
	if text == "" {
		return nil
	}
	parts := strings.Split(text, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if normalized := NormalizeText(part, false); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

// JoinList renders list entries back into the stored free-text form
func JoinList(values []string) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		if normalized := NormalizeText(value, false); normalized != "" {
			parts = append(parts, normalized)
		}
	}
	return strings.Join(parts, ListSeparator+" ")
}

// UniqueStrings removes duplicate strings while preserving order
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
