package core

import (
	"regexp"
	"strings"

	"github.com/huangsam/timemachine/schema"
)

// FeaturePattern tags every match of Pattern with Type.
type FeaturePattern struct {
	Type    string
	Pattern *regexp.Regexp
}

// DefaultFeaturePatterns returns the built-in reference patterns in match order.
func DefaultFeaturePatterns() []FeaturePattern {
	return []FeaturePattern{
		{
			Type:    schema.FeatureIssueCloses,
			Pattern: regexp.MustCompile(`(?i)\b(?:fix(?:e[sd])?|close[sd]?|resolve[sd]?)\s+#(?P<num>\d+)`),
		},
		{
			Type:    schema.FeatureTicketID,
			Pattern: regexp.MustCompile(`\b(?P<ticket>[A-Z][A-Z0-9]+-\d+)\b`),
		},
	}
}

// DefaultRationaleVocabulary holds the lower-case words that mark a message as explaining itself.
// "introduc" covers introduce, introduced and introduction.
var DefaultRationaleVocabulary = []string{
	"why", "because", "reason", "motivation", "rfc", "design", "introduc", "decision",
}

// FeatureExtractor scans commit messages for references and rationale markers.
type FeatureExtractor struct {
	Patterns   []FeaturePattern
	Vocabulary []string
}

// NewFeatureExtractor returns an extractor with the default patterns and vocabulary.
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{
		Patterns:   DefaultFeaturePatterns(),
		Vocabulary: DefaultRationaleVocabulary,
	}
}

// Extract returns one row per pattern match, in pattern order, plus at most one rationale row.
func (fe *FeatureExtractor) Extract(commitID, message string) []schema.FeatureReference {
	var rows []schema.FeatureReference
	for _, p := range fe.Patterns {
		for _, m := range p.Pattern.FindAllStringSubmatch(message, -1) {
			rows = append(rows, schema.FeatureReference{
				CommitID:  commitID,
				Type:      p.Type,
				Reference: reference(p.Pattern, m),
			})
		}
	}
	if word, ok := fe.rationale(message); ok {
		rows = append(rows, schema.FeatureReference{
			CommitID:  commitID,
			Type:      schema.FeatureRationale,
			Reference: word,
		})
	}
	return rows
}

// rationale returns the first vocabulary word found in the lower-cased message.
func (fe *FeatureExtractor) rationale(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, word := range fe.Vocabulary {
		if strings.Contains(lower, word) {
			return word, true
		}
	}
	return "", false
}

// reference prefers the num capture, then the ticket capture, then the whole match.
func reference(re *regexp.Regexp, match []string) string {
	for _, name := range []string{"num", "ticket"} {
		if i := re.SubexpIndex(name); i > 0 && i < len(match) && match[i] != "" {
			return match[i]
		}
	}
	return match[0]
}
