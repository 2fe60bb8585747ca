// Package language holds the language catalog served to front-ends and the
// tag normalization shared by the proxy and the CLI.
package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
)

// DefaultSource is the only source language this deployment translates from.
const DefaultSource = "sa"

type Option struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

var labels = map[string]Option{
	"sa": {Code: "sa", Label: "Sanskrit", Native: "संस्कृतम्"},
	"en": {Code: "en", Label: "English", Native: "English"},
	"hi": {Code: "hi", Label: "Hindi", Native: "हिन्दी"},
	"ta": {Code: "ta", Label: "Tamil", Native: "தமிழ்"},
	"te": {Code: "te", Label: "Telugu", Native: "తెలుగు"},
	"ml": {Code: "ml", Label: "Malayalam", Native: "മലയാളം"},
}

// targetOrder keeps the dropdown order stable: English first, then the Indic languages.
var targetOrder = []string{"en", "hi", "ta", "te", "ml"}

// DefaultTarget is preselected when a caller does not choose a target.
const DefaultTarget = "en"

// Targets returns the selectable target languages.
func Targets() []Option {
	out := make([]Option, 0, len(targetOrder))
	for _, code := range targetOrder {
		out = append(out, labels[code])
	}
	return out
}

// Source returns the catalog entry of the fixed source language.
func Source() Option {
	return labels[DefaultSource]
}

// Lookup resolves a tag such as "HI-in" to its catalog entry.
func Lookup(raw string) (Option, bool) {
	opt, ok := labels[NormalizeCode(raw)]
	return opt, ok
}

// IsTarget reports whether raw names one of the selectable target languages.
func IsTarget(raw string) bool {
	code := NormalizeCode(raw)
	for _, target := range targetOrder {
		if target == code {
			return true
		}
	}
	return false
}

// TargetCodes lists the selectable target codes in display order.
func TargetCodes() []string {
	return append([]string(nil), targetOrder...)
}

// SourceOrDefault returns the normalized source tag, falling back to DefaultSource.
func SourceOrDefault(raw string) string {
	if tag := NormalizeTag(raw); tag != "" {
		return tag
	}
	return DefaultSource
}

// NormalizeTag parses a BCP 47 tag (underscores accepted) and returns its
// canonical form in lower case, for example "hi-in" for "HI_in". Blank or
// malformed tags normalize to "".
func NormalizeTag(raw string) string {
	tag, ok := parseTag(raw)
	if !ok {
		return ""
	}
	return strings.ToLower(tag.String())
}

// NormalizeCode returns the base language ("hi" for "hi-IN").
func NormalizeCode(raw string) string {
	tag, ok := parseTag(raw)
	if !ok {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return ""
	}
	return base.String()
}

func parseTag(raw string) (xlanguage.Tag, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return xlanguage.Und, false
	}
	tag, err := xlanguage.Parse(trimmed)
	if err != nil || tag == xlanguage.Und {
		return xlanguage.Und, false
	}
	return tag, true
}
